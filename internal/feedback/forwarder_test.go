package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advenoh/ragchat/internal/models"
)

func TestForwarder_Forward(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, 0)
	err := f.Forward(context.Background(), &models.Feedback{
		MessageID: "m1", BlogID: "blog-v2", Question: "q", Rating: "up",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got["message_id"] != "m1" || got["rating"] != "up" {
		t.Errorf("payload: got %v", got)
	}
}

func TestForwarder_DisabledWithoutWebhook(t *testing.T) {
	f := NewForwarder("", 0)
	if f.Enabled() {
		t.Error("forwarder should be disabled")
	}
	if err := f.Forward(context.Background(), &models.Feedback{}); err != nil {
		t.Errorf("disabled forwarder should be a no-op, got %v", err)
	}
}

func TestForwarder_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, 0)
	if err := f.Forward(context.Background(), &models.Feedback{}); err == nil {
		t.Fatal("expected error")
	}
}
