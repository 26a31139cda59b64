package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/lexigrade/api/internal/config"
)

func articleHTML(paragraphs int) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>The Test Article</title></head><body>")
	sb.WriteString("<nav><a href=\"/\">Home</a><a href=\"/about\">About</a></nav>")
	sb.WriteString("<article><h1>The Test Article</h1>")
	for i := 0; i < paragraphs; i++ {
		sb.WriteString("<p>")
		sb.WriteString(strings.Repeat("This paragraph carries enough real sentence content to satisfy main content detection. ", 5))
		sb.WriteString("</p>")
	}
	sb.WriteString("</article><footer>Copyright</footer></body></html>")
	return sb.String()
}

func TestExtractReadability(t *testing.T) {
	e := NewExtractor(nil, 200)

	content, err := e.Extract(articleHTML(6), "https://example.com/post/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Title != "The Test Article" {
		t.Errorf("title = %q", content.Title)
	}
	if !strings.Contains(content.PlainText, "main content detection") {
		t.Errorf("plain text missing article body")
	}
	if strings.Contains(content.PlainText, "<p>") {
		t.Errorf("plain text still contains markup")
	}
	if content.SingleChunk {
		t.Errorf("SingleChunk set without an override")
	}
}

func TestExtractTooShort(t *testing.T) {
	e := NewExtractor(nil, 200)

	_, err := e.Extract("<html><body><article><p>tiny</p></article></body></html>", "https://example.com/x")
	if !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestExtractDomainOverrideSkip(t *testing.T) {
	overrides := []config.DomainOverride{
		{Match: "awkward-site.example", SkipExtraction: true, SingleChunk: true},
	}
	e := NewExtractor(overrides, 50)

	markup := "<html><head><title>Raw Page</title><script>var x=1;</script></head>" +
		"<body><div>" + strings.Repeat("raw body text ", 20) + "</div></body></html>"

	content, err := e.Extract(markup, "https://www.awkward-site.example/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Title != "Raw Page" {
		t.Errorf("title = %q", content.Title)
	}
	if !content.SingleChunk {
		t.Errorf("expected SingleChunk from override")
	}
	if strings.Contains(content.PlainText, "var x=1") {
		t.Errorf("script content not stripped")
	}
	if !strings.Contains(content.PlainText, "raw body text") {
		t.Errorf("near-raw markup body missing")
	}
}

func TestExtractOverrideOnlyMatchesHost(t *testing.T) {
	overrides := []config.DomainOverride{
		{Match: "awkward-site.example", SkipExtraction: true, SingleChunk: true},
	}
	e := NewExtractor(overrides, 200)

	// same substring in the path must not trigger the override
	content, err := e.Extract(articleHTML(6), "https://example.com/awkward-site.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.SingleChunk {
		t.Errorf("override matched on path instead of hostname")
	}
}
