// Package ingest loads blog Markdown posts and splits them into chunks for indexing.
package ingest

import (
	"regexp"

	"gopkg.in/yaml.v3"
)

// frontmatterRe matches a leading "---" delimited block followed by the body.
// (?s) lets the lazy block and the body span newlines.
var frontmatterRe = regexp.MustCompile(`(?s)\A---[ \t]*\n(.*?)\n---[ \t]*\n(.*)\z`)

// ParseFrontmatter splits raw file text into YAML frontmatter metadata and the
// remaining body.
//
// Text without the delimited pattern returns empty metadata and the input
// unchanged. A block that matches structurally but fails to parse as YAML also
// returns empty metadata, paired with the body after the closing delimiter;
// a malformed frontmatter block never aborts loading.
func ParseFrontmatter(content string) (map[string]any, string) {
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return map[string]any{}, content
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(m[1]), &meta); err != nil || meta == nil {
		return map[string]any{}, m[2]
	}
	return meta, m[2]
}
