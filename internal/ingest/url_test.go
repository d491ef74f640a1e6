package ingest

import "testing"

func TestBuildPostURL(t *testing.T) {
	tests := []struct {
		rel    string
		blogID string
		want   string
	}{
		{"go/my-post/index.md", "blog-v2", "https://blog-v2.advenoh.pe.kr/my-post"},
		{"stock/why-etf/index.md", "investment", "https://investment.advenoh.pe.kr/why-etf"},
		{"x/y/index.md", "unknown-blog", "/y"},
		{"index.md", "blog-v2", "https://blog-v2.advenoh.pe.kr"},
		{"index.md", "unknown-blog", ""},
	}
	for _, tt := range tests {
		if got := BuildPostURL(tt.rel, tt.blogID); got != tt.want {
			t.Errorf("BuildPostURL(%q, %q) = %q, want %q", tt.rel, tt.blogID, got, tt.want)
		}
	}
}

func TestBuildPostURL_SlugIsParentDirNotFilename(t *testing.T) {
	// The leaf filename is arbitrary; the slug comes from the parent directory.
	got := BuildPostURL("go/enums-in-go/post.md", "blog-v2")
	if got != "https://blog-v2.advenoh.pe.kr/enums-in-go" {
		t.Errorf("got %q", got)
	}
}
