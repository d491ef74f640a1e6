package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/advenoh/ragchat/internal/models"
)

// markdownSeparators are tried coarsest first: H2/H3/H4 headings, paragraph
// breaks, line breaks, then word boundaries. A chunk is only broken at a finer
// boundary when the coarser one cannot keep it under the size limit.
var markdownSeparators = []string{"\n## ", "\n### ", "\n#### ", "\n\n", "\n", " "}

// Splitter splits post bodies into overlapping chunks aligned to Markdown
// boundaries. Splitting is deterministic for a given (text, size, overlap).
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter. chunkSize is the target maximum chunk length
// and chunkOverlap the trailing length carried into the next chunk, both in
// runes; chunkOverlap must be smaller than chunkSize.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   markdownSeparators,
	}
}

// SplitDocuments splits each post body and stamps every chunk with an exact
// copy of the parent post's metadata. An empty body yields no chunks; a body
// shorter than chunkSize yields exactly one.
func (s *Splitter) SplitDocuments(posts []models.BlogPost) []models.Chunk {
	var chunks []models.Chunk
	for _, post := range posts {
		for _, piece := range s.SplitText(post.Body) {
			chunks = append(chunks, models.Chunk{Meta: post.Meta, Content: piece})
		}
	}
	return chunks
}

// SplitText splits text into chunks of at most chunkSize runes, preferring the
// coarsest separator that appears in the text and recursing into finer ones
// only for pieces that are still too large.
func (s *Splitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the coarsest separator present; the remaining finer ones are the
	// fallbacks for oversized pieces.
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var chunks []string
	var pending []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if runeLen(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending)...)
			pending = nil
		}
		if len(finer) == 0 {
			// No finer boundary exists; emit oversized as-is.
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, finer)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending)...)
	}
	return chunks
}

// merge greedily packs adjacent pieces into chunks of at most chunkSize runes.
// When a chunk is emitted, pieces are dropped from the front until at most
// chunkOverlap runes remain; those runes open the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0
	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			if chunk := joinPieces(current); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.chunkOverlap || (total+n > s.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if chunk := joinPieces(current); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepSeparator splits text by sep, keeping sep attached to the start of
// the piece that follows it so heading markers stay with their section.
func splitKeepSeparator(text, sep string) []string {
	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	if parts[0] != "" {
		pieces = append(pieces, parts[0])
	}
	for _, part := range parts[1:] {
		pieces = append(pieces, sep+part)
	}
	return pieces
}

func joinPieces(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
