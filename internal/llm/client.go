// Package llm provides chat completion via a hosted provider.
package llm

import "context"

// Role constants for chat messages sent to the provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client generates a completion for a sequence of chat messages.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
