// Package watcher triggers blog reindexing when content trees change on disk.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches each blog's content root and invokes onChange(blogID) after
// changes settle. A reindex rebuilds the whole collection, so all events for a
// blog coalesce into one callback per debounce window.
type Watcher struct {
	roots    map[string]string // content root -> blog id
	onChange func(blogID string)
	debounce time.Duration
	logger   *zap.Logger

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timers   map[string]*time.Timer // blog id -> pending reindex
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher over the given blogs (blog id -> content root).
// onChange is called once per blog after its content tree stops changing.
func NewWatcher(blogs map[string]string, onChange func(blogID string), logger *zap.Logger) *Watcher {
	roots := make(map[string]string, len(blogs))
	for blogID, root := range blogs {
		if root != "" {
			roots[filepath.Clean(root)] = blogID
		}
	}
	return &Watcher{
		roots:    roots,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
// Blogs whose content root does not exist are logged and skipped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	for root, blogID := range w.roots {
		if err := w.addTreeLocked(root); err != nil {
			w.logger.Warn("Skipping unwatchable content root",
				zap.String("blog_id", blogID), zap.String("root", root), zap.Error(err))
		}
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("Watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	blogID, ok := w.blogFor(ev.Name)
	if !ok {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// A folder moved in: watch its subtree, then reindex once.
			w.mu.Lock()
			if w.watcher != nil {
				_ = w.addTreeLocked(ev.Name)
			}
			w.mu.Unlock()
			w.scheduleReindex(blogID)
			return
		}
		if isMarkdown(ev.Name) {
			w.scheduleReindex(blogID)
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		// The rebuild drops the collection first, so removals need no
		// special handling beyond triggering a reindex.
		if isMarkdown(ev.Name) {
			w.scheduleReindex(blogID)
		}
	}
}

// blogFor maps an event path to the blog whose content root contains it.
func (w *Watcher) blogFor(path string) (string, bool) {
	clean := filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	for root, blogID := range w.roots {
		if clean == root || inDir(root, clean) {
			return blogID, true
		}
	}
	return "", false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

func (w *Watcher) scheduleReindex(blogID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[blogID]; ok {
		t.Stop()
	}
	w.timers[blogID] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, blogID)
		w.mu.Unlock()
		w.logger.Info("Content changed, reindexing", zap.String("blog_id", blogID))
		if w.onChange != nil {
			w.onChange(blogID)
		}
	})
}

// addTreeLocked registers root and all of its subdirectories with fsnotify.
func (w *Watcher) addTreeLocked(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Stop stops the watcher and cancels pending reindex timers.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for blogID, t := range w.timers {
		t.Stop()
		delete(w.timers, blogID)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
