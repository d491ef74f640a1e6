// Package eval measures answer quality over a fixed question set.
package eval

// Item is one evaluation case: a question, the expected answer, and the blog
// to ask it against.
type Item struct {
	Question    string `json:"question"`
	GroundTruth string `json:"ground_truth"`
	BlogID      string `json:"blog_id"`
}

// Dataset is the built-in evaluation set.
var Dataset = []Item{
	{
		Question:    "Go에서 goroutine이란 무엇인가요?",
		GroundTruth: "goroutine은 Go 런타임이 관리하는 경량 스레드로, go 키워드를 사용하여 함수를 동시에 실행할 수 있다.",
		BlogID:      "blog-v2",
	},
	{
		Question:    "Go에서 iota는 어떻게 사용하나요?",
		GroundTruth: "iota는 Go의 const 선언에서 사용하는 predefined identifier로, 연속적인 정수 상수 0, 1, 2, ...를 나타낸다.",
		BlogID:      "blog-v2",
	},
	{
		Question:    "Java에서 Stream API의 주요 특징은?",
		GroundTruth: "Java Stream API는 컬렉션 데이터를 함수형 스타일로 처리할 수 있는 API로, filter, map, reduce 등의 연산을 체이닝할 수 있다.",
		BlogID:      "blog-v2",
	},
	{
		Question:    "Docker와 컨테이너의 차이점은?",
		GroundTruth: "Docker는 컨테이너를 생성하고 관리하는 플랫폼이고, 컨테이너는 애플리케이션과 그 의존성을 격리하여 실행하는 가상화 기술이다.",
		BlogID:      "blog-v2",
	},
	{
		Question:    "Git rebase와 merge의 차이는?",
		GroundTruth: "merge는 두 브랜치의 히스토리를 합치는 커밋을 만들고, rebase는 한 브랜치의 커밋을 다른 브랜치 위에 재배치하여 선형 히스토리를 만든다.",
		BlogID:      "blog-v2",
	},
}

// ItemsForBlog filters the dataset to one blog.
func ItemsForBlog(items []Item, blogID string) []Item {
	var out []Item
	for _, item := range items {
		if item.BlogID == blogID {
			out = append(out, item)
		}
	}
	return out
}
