package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/advenoh/ragchat/internal/llm"
	"github.com/advenoh/ragchat/internal/models"
)

// Result is a generated answer together with the chunks it was grounded on.
type Result struct {
	Answer  string
	Context []models.Chunk
}

// Chain answers a question in three steps: condense the question using chat
// history, retrieve relevant chunks, and synthesize an answer over them.
type Chain struct {
	llm       llm.Client
	retriever Retriever
	topK      int
}

// NewChain creates a chain over the given completion client and retriever.
func NewChain(client llm.Client, retriever Retriever, topK int) *Chain {
	if topK <= 0 {
		topK = 5
	}
	return &Chain{llm: client, retriever: retriever, topK: topK}
}

// Ask answers question, optionally taking conversation history into account.
// Provider and retrieval errors propagate; they are the caller's server error.
func (c *Chain) Ask(ctx context.Context, question string, history []models.ChatMessage) (*Result, error) {
	search := question
	if len(history) > 0 {
		condensed, err := c.condense(ctx, question, history)
		if err != nil {
			return nil, fmt.Errorf("failed to condense question: %w", err)
		}
		if condensed != "" {
			search = condensed
		}
	}

	chunks, err := c.retriever.Retrieve(ctx, search, c.topK)
	if err != nil {
		return nil, err
	}

	answer, err := c.synthesize(ctx, question, history, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return &Result{Answer: answer, Context: chunks}, nil
}

// condense rewrites question into a standalone question using the history.
func (c *Chain) condense(ctx context.Context, question string, history []models.ChatMessage) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: condensePrompt})
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	out, err := c.llm.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// synthesize answers the original question over the retrieved chunks.
func (c *Chain) synthesize(ctx context.Context, question string, history []models.ChatMessage, chunks []models.Chunk) (string, error) {
	excerpts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		excerpts = append(excerpts, chunk.Content)
	}
	system := fmt.Sprintf(answerPrompt, strings.Join(excerpts, "\n\n"))

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	return c.llm.Complete(ctx, messages)
}

// historyMessages maps API roles onto provider roles: human→user, ai→assistant.
func historyMessages(history []models.ChatMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		role := llm.RoleAssistant
		if msg.Role == "human" {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}
	return messages
}

// Sources extracts cited posts from retrieved chunks, deduplicated by URL in
// retrieval order. Chunks without a URL are skipped.
func Sources(chunks []models.Chunk) []models.Source {
	seen := make(map[string]bool)
	sources := make([]models.Source, 0, len(chunks))
	for _, chunk := range chunks {
		url := chunk.Meta.URL
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		sources = append(sources, models.Source{Title: chunk.Meta.Title, URL: url})
	}
	return sources
}
