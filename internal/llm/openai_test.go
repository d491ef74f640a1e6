package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model       string    `json:"model"`
			Messages    []Message `json:"messages"`
			Temperature float64   `json:"temperature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model: got %q", req.Model)
		}
		if req.Temperature != 0 {
			t.Errorf("temperature: got %v", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
			t.Errorf("messages: got %+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"an answer"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "k"})
	got, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "be helpful"},
		{Role: RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "an answer" {
		t.Errorf("got %q", got)
	}
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{BaseURL: srv.URL, APIKey: "k"})
	if _, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatal("expected error")
	}
}
