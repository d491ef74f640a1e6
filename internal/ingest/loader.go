package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/advenoh/ragchat/internal/models"
)

// ErrContentRootNotFound is returned when the contents directory does not exist.
var ErrContentRootNotFound = errors.New("contents directory not found")

// LoadBlogDocuments walks contentsDir for files named index.md and returns one
// BlogPost per readable post, sorted lexicographically by relative path. The
// sort order fixes chunk and index iteration order downstream, so re-indexing
// an unchanged tree is reproducible.
//
// A post that cannot be read or is not valid UTF-8 is logged and skipped;
// a single malformed post must not block indexing the rest of the blog.
func LoadBlogDocuments(contentsDir, blogID string, logger *zap.Logger) ([]models.BlogPost, error) {
	info, err := os.Stat(contentsDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrContentRootNotFound, contentsDir)
	}

	var posts []models.BlogPost
	root := os.DirFS(contentsDir)
	// fs.WalkDir visits entries in lexical order, so discovery is deterministic.
	err = fs.WalkDir(root, ".", func(rel string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("failed to walk contents entry", zap.String("path", rel), zap.Error(walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != "index.md" {
			return nil
		}

		raw, readErr := os.ReadFile(filepath.Join(contentsDir, filepath.FromSlash(rel)))
		if readErr != nil {
			logger.Warn("failed to read post", zap.String("path", rel), zap.Error(readErr))
			return nil
		}
		if !utf8.Valid(raw) {
			logger.Warn("skipping post with invalid encoding", zap.String("path", rel))
			return nil
		}

		meta, body := ParseFrontmatter(string(raw))
		posts = append(posts, models.BlogPost{
			Meta: buildMeta(meta, rel, blogID),
			Body: body,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk contents directory: %w", err)
	}
	return posts, nil
}

// buildMeta maps parsed frontmatter onto a PostMeta for the post at rel.
func buildMeta(meta map[string]any, rel, blogID string) models.PostMeta {
	title := stringValue(meta["title"])
	if title == "" {
		base := filepath.Base(rel)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// The category is the first path segment; posts at the content root have none.
	category := ""
	if parts := strings.Split(rel, "/"); len(parts) > 1 {
		category = parts[0]
	}

	return models.PostMeta{
		BlogID:      blogID,
		Title:       title,
		Date:        stringValue(meta["date"]),
		Description: stringValue(meta["description"]),
		Category:    category,
		Tags:        stringSlice(meta["tags"]),
		Source:      rel,
		URL:         BuildPostURL(rel, blogID),
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// stringSlice coerces a frontmatter tag list to strings. Empty or absent tag
// lists return nil so the field is omitted downstream.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		tags = append(tags, stringValue(item))
	}
	return tags
}
