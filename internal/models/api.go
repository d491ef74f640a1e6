package models

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "human" | "ai"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	BlogID      string        `json:"blog_id"`
	Question    string        `json:"question"`
	ChatHistory []ChatMessage `json:"chat_history,omitempty"`
}

// Source is a cited post in a chat answer, deduplicated by URL.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	MessageID string   `json:"message_id"`
}

// IndexResponse is the body of a successful POST /index/{blog_id}.
type IndexResponse struct {
	Status        string `json:"status"`
	BlogID        string `json:"blog_id"`
	IndexedChunks int    `json:"indexed_chunks"`
}

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	MessageID string `json:"message_id"`
	BlogID    string `json:"blog_id"`
	Question  string `json:"question"`
	Rating    string `json:"rating"` // "up" | "down"
}

// StatsResponse aggregates the dashboard numbers for GET /admin/stats.
// Each field is computed by an independent query; the five numbers are not
// read in one transaction.
type StatsResponse struct {
	DailyCounts       []DailyCount    `json:"daily_counts"`
	TopQuestions      []QuestionCount `json:"top_questions"`
	Feedback          FeedbackRatio   `json:"feedback"`
	AvgResponseTimeMs float64         `json:"avg_response_time_ms"`
	SearchFailureRate float64         `json:"search_failure_rate"`
}
