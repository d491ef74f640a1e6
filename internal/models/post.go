// Package models defines core data structures for blog posts, chunks, and API payloads.
package models

// PostMeta is the metadata attached to a blog post and inherited verbatim by
// every chunk produced from it. Tags is omitted from serialized forms when
// empty; the vector store rejects empty multi-valued fields.
type PostMeta struct {
	BlogID      string   `json:"blog_id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
}

// BlogPost is a loaded Markdown post: frontmatter-derived metadata plus the
// body with frontmatter removed.
type BlogPost struct {
	Meta PostMeta `json:"metadata"`
	Body string   `json:"body"`
}

// Chunk is a contiguous piece of a post body carrying an exact copy of the
// parent post's metadata. Chunks preserve body order.
type Chunk struct {
	Meta    PostMeta `json:"metadata"`
	Content string   `json:"content"`
}
