package ingest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/advenoh/ragchat/internal/models"
)

func TestSplitText_ShortBodySingleChunk(t *testing.T) {
	s := NewSplitter(1000, 200)
	body := "A short post that easily fits in one chunk."
	chunks := s.SplitText(body)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != body {
		t.Errorf("chunk should equal body, got %q", chunks[0])
	}
}

func TestSplitText_EmptyBody(t *testing.T) {
	s := NewSplitter(1000, 200)
	if chunks := s.SplitText(""); chunks != nil {
		t.Errorf("empty body should produce zero chunks, got %v", chunks)
	}
	if chunks := s.SplitText("  \n\t "); chunks != nil {
		t.Errorf("whitespace-only body should produce zero chunks, got %v", chunks)
	}
}

func TestSplitText_BreaksAtHeadings(t *testing.T) {
	s := NewSplitter(30, 0)
	text := "## One\nfirst section body\n## Two\nsecond section body"
	want := []string{"## One\nfirst section body", "## Two\nsecond section body"}
	if got := s.SplitText(text); !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestSplitText_FallsBackToParagraphs(t *testing.T) {
	s := NewSplitter(15, 0)
	text := "para one text\n\npara two text"
	want := []string{"para one text", "para two text"}
	if got := s.SplitText(text); !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestSplitText_OverlapCarriesTrailingWords(t *testing.T) {
	s := NewSplitter(10, 3)
	got := s.SplitText("aa bb cc dd ee")
	want := []string{"aa bb cc", "cc dd ee"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestSplitText_ChunksStayUnderSize(t *testing.T) {
	s := NewSplitter(50, 10)
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("## Heading\nsome words in the section body here\n")
	}
	for i, chunk := range s.SplitText(b.String()) {
		if runeLen(chunk) > 50 {
			t.Errorf("chunk %d exceeds size: %d runes", i, runeLen(chunk))
		}
	}
}

func TestSplitText_PrefersCoarsestBoundary(t *testing.T) {
	// H2 split suffices, so the H3 markers must stay inside the chunks.
	s := NewSplitter(30, 0)
	text := "## A\nshort\n### A.1\ntiny\n## B\nalso short"
	chunks := s.SplitText(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "### A.1") {
		t.Errorf("H3 section should stay within the H2 chunk: %q", chunks[0])
	}
}

func TestSplitDocuments_MetadataCopiedOntoEveryChunk(t *testing.T) {
	s := NewSplitter(30, 0)
	post := models.BlogPost{
		Meta: models.PostMeta{
			BlogID:   "blog-v2",
			Title:    "Enums in Go",
			Date:     "2021-03-01",
			Category: "go",
			Tags:     []string{"go", "enum"},
			Source:   "go/enums-in-go/index.md",
			URL:      "https://blog-v2.advenoh.pe.kr/enums-in-go",
		},
		Body: "## One\nfirst section body\n## Two\nsecond section body",
	}
	chunks := s.SplitDocuments([]models.BlogPost{post})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !reflect.DeepEqual(chunk.Meta, post.Meta) {
			t.Errorf("chunk %d metadata differs from post metadata", i)
		}
	}
}

func TestSplitDocuments_EmptyBodyYieldsNoChunks(t *testing.T) {
	s := NewSplitter(1000, 200)
	chunks := s.SplitDocuments([]models.BlogPost{{Meta: models.PostMeta{BlogID: "blog-v2"}}})
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitDocuments_PreservesBodyOrder(t *testing.T) {
	s := NewSplitter(30, 0)
	post := models.BlogPost{
		Meta: models.PostMeta{BlogID: "blog-v2"},
		Body: "## One\nfirst section body\n## Two\nsecond section body",
	}
	chunks := s.SplitDocuments([]models.BlogPost{post})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Content, "## One") || !strings.HasPrefix(chunks[1].Content, "## Two") {
		t.Errorf("chunks out of order: %#v", chunks)
	}
}
