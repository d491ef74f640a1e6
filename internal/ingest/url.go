package ingest

import "path"

// baseURLs maps known blog identifiers to their public hosts. Unknown blogs
// get an empty base, producing host-less "/slug" URLs.
var baseURLs = map[string]string{
	"blog-v2":    "https://blog-v2.advenoh.pe.kr",
	"investment": "https://investment.advenoh.pe.kr",
}

// BuildPostURL reconstructs the canonical public URL for a post from its
// content-root-relative path and blog identifier. The slug is the post's
// parent directory name, not the filename:
//
//	go/my-post/index.md → {base_url}/my-post
//
// A post directly under the content root maps to the bare base URL.
func BuildPostURL(relativePath, blogID string) string {
	base := baseURLs[blogID]
	slug := path.Base(path.Dir(relativePath))
	if slug == "" || slug == "." || slug == "/" {
		return base
	}
	return base + "/" + slug
}
