package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8000 {
		t.Errorf("server defaults: got %+v", cfg.Server)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" || cfg.OpenAI.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("openai defaults: got %+v", cfg.OpenAI)
	}
	if cfg.Vector.URL != "http://localhost:6333" {
		t.Errorf("vector url: got %q", cfg.Vector.URL)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 || cfg.RAG.TopK != 5 {
		t.Errorf("rag defaults: got %+v", cfg.RAG)
	}
	if !cfg.KnownBlog("blog-v2") || !cfg.KnownBlog("investment") {
		t.Errorf("default blogs missing: %+v", cfg.Blogs)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
rag:
  chunk_size: 500
  top_k: 3
blogs:
  blog-v2:
    name: IT Blog
    contents_dir: ./contents/it
analytics:
  database_path: ./data/analytics.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host default should still apply, got %q", cfg.Server.Host)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.TopK != 3 {
		t.Errorf("rag: got %+v", cfg.RAG)
	}
	if cfg.RAG.ChunkOverlap != 200 {
		t.Errorf("chunk overlap default should still apply, got %d", cfg.RAG.ChunkOverlap)
	}

	// "./" paths resolve relative to the config file's directory.
	wantContents := filepath.Join(dir, "contents/it")
	if cfg.Blogs["blog-v2"].ContentsDir != wantContents {
		t.Errorf("contents dir: got %q, want %q", cfg.Blogs["blog-v2"].ContentsDir, wantContents)
	}
	wantDB := filepath.Join(dir, "data/analytics.db")
	if cfg.Analytics.DatabasePath != wantDB {
		t.Errorf("database path: got %q, want %q", cfg.Analytics.DatabasePath, wantDB)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RAG_INDEX_TOKEN", "index-secret")
	t.Setenv("QDRANT_URL", "http://qdrant.internal:6333")
	t.Setenv("FEEDBACK_WEBHOOK_URL", "https://hooks.example.com/feedback")

	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key: got %q", cfg.OpenAI.APIKey)
	}
	if cfg.IndexToken != "index-secret" {
		t.Errorf("index token: got %q", cfg.IndexToken)
	}
	if cfg.Vector.URL != "http://qdrant.internal:6333" {
		t.Errorf("vector url: got %q", cfg.Vector.URL)
	}
	if cfg.Feedback.WebhookURL != "https://hooks.example.com/feedback" {
		t.Errorf("webhook url: got %q", cfg.Feedback.WebhookURL)
	}
}

func TestKnownBlog(t *testing.T) {
	cfg := &Config{Blogs: map[string]BlogConfig{"blog-v2": {Name: "IT Blog"}}}
	if !cfg.KnownBlog("blog-v2") {
		t.Error("blog-v2 should be known")
	}
	if cfg.KnownBlog("unknown") {
		t.Error("unknown should not be known")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		path string
		want string
	}{
		{"/abs/path.db", "/abs/path.db"},
		{"./rel.db", filepath.Join("/cfg", "rel.db")},
		{"data/rel.db", filepath.Join(home, "data/rel.db")},
	}
	for _, tt := range tests {
		if got := expandPath(tt.path, "/cfg"); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
