package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_MarkdownChangeTriggersReindex(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var changed []string
	w := NewWatcher(map[string]string{"blog-v2": root}, func(blogID string) {
		mu.Lock()
		changed = append(changed, blogID)
		mu.Unlock()
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(root, "index.md"), "# hello")
	time.Sleep(700 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(changed) != 1 || changed[0] != "blog-v2" {
		t.Errorf("expected one reindex of blog-v2, got %v", changed)
	}
}

func TestWatcher_CoalescesRapidWrites(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	count := 0
	w := NewWatcher(map[string]string{"blog-v2": root}, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(root, "index.md"), "# rev")
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(700 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("expected writes to coalesce into one reindex, got %d", count)
	}
}

func TestWatcher_IgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	count := 0
	w := NewWatcher(map[string]string{"blog-v2": root}, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(root, "cover.png"), "not markdown")
	time.Sleep(700 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("non-markdown writes should not trigger a reindex, got %d", count)
	}
}

func TestWatcher_MissingRootIsSkipped(t *testing.T) {
	w := NewWatcher(map[string]string{
		"blog-v2": filepath.Join(t.TempDir(), "does-not-exist"),
	}, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("missing root should be skipped, not fail Start: %v", err)
	}
	w.Stop()
}

func TestBlogFor(t *testing.T) {
	w := NewWatcher(map[string]string{
		"blog-v2":    "/content/it",
		"investment": "/content/money",
	}, nil, zap.NewNop())

	tests := []struct {
		path   string
		blogID string
		ok     bool
	}{
		{"/content/it/go/post/index.md", "blog-v2", true},
		{"/content/money/index.md", "investment", true},
		{"/content/other/index.md", "", false},
		{"/content/it/../money/index.md", "investment", true},
	}
	for _, tt := range tests {
		blogID, ok := w.blogFor(tt.path)
		if blogID != tt.blogID || ok != tt.ok {
			t.Errorf("blogFor(%q) = %q, %v; want %q, %v", tt.path, blogID, ok, tt.blogID, tt.ok)
		}
	}
}
