package segment

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lexigrade/api/internal/textutil"
)

var pastedOpts = Options{MinWords: 50, TargetWords: 250, MaxWords: 500}

// paragraph builds a paragraph of exactly n words ending with a period.
func paragraph(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ") + "."
}

// sentences builds a paragraph of count sentences with perSentence words each.
func sentences(count, perSentence int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		words := make([]string, perSentence)
		for j := range words {
			words[j] = fmt.Sprintf("s%dw%d", i, j)
		}
		sb.WriteString(strings.Join(words, " "))
		sb.WriteString(".")
	}
	return sb.String()
}

func wordSequence(text string) []string {
	return strings.Fields(text)
}

func TestSegmentEmpty(t *testing.T) {
	if got := Segment("", pastedOpts); got != nil {
		t.Errorf("expected no chunks for empty input, got %v", got)
	}
	if got := Segment("   \n\n  ", pastedOpts); got != nil {
		t.Errorf("expected no chunks for whitespace input, got %v", got)
	}
}

func TestSegmentMergesTrailingRunt(t *testing.T) {
	// 80 + 400 + 30 word paragraphs: the 30-word runt must merge into the
	// 400-word paragraph (430 <= 500), yielding exactly two chunks.
	input := paragraph(80) + "\n\n" + paragraph(400) + "\n\n" + paragraph(30)

	chunks := Segment(input, pastedOpts)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := textutil.CountWords(chunks[0]); got != 80 {
		t.Errorf("first chunk has %d words, want 80", got)
	}
	if got := textutil.CountWords(chunks[1]); got != 430 {
		t.Errorf("second chunk has %d words, want 430", got)
	}
}

func TestSegmentBandInvariant(t *testing.T) {
	// 60 sentences of 12 words: 720 words in one paragraph, over MaxWords,
	// must be re-split at sentence boundaries into chunks within the band.
	input := sentences(60, 12)

	chunks := Segment(input, pastedOpts)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d words, got %d", 720, len(chunks))
	}
	for i, chunk := range chunks {
		n := textutil.CountWords(chunk)
		if n < pastedOpts.MinWords || n > pastedOpts.MaxWords {
			t.Errorf("chunk %d has %d words, outside [%d,%d]",
				i, n, pastedOpts.MinWords, pastedOpts.MaxWords)
		}
	}
}

func TestSegmentPreservesWordOrder(t *testing.T) {
	input := sentences(40, 11) + "\n\n" + paragraph(90) + "\n\n" + sentences(30, 9)

	chunks := Segment(input, pastedOpts)
	got := wordSequence(strings.Join(chunks, " "))
	want := wordSequence(input)
	if len(got) != len(want) {
		t.Fatalf("concatenated chunks have %d tokens, input has %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d differs: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSegmentRunOnSentence(t *testing.T) {
	// A single long sentence with no terminator is returned as one
	// oversized chunk rather than being split mid-sentence.
	words := make([]string, 600)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	input := strings.Join(words, " ")

	chunks := Segment(input, pastedOpts)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for run-on sentence, got %d", len(chunks))
	}
	if got := textutil.CountWords(chunks[0]); got != 600 {
		t.Errorf("run-on chunk has %d words, want 600", got)
	}
}

func TestSegmentSingleNewlineFallback(t *testing.T) {
	// No blank lines anywhere: a single 900-word block with single-newline
	// breaks must fall back to newline splitting.
	input := paragraph(300) + "\n" + paragraph(300) + "\n" + paragraph(300)

	chunks := Segment(input, pastedOpts)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks from newline fallback, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if got := textutil.CountWords(chunk); got != 300 {
			t.Errorf("chunk %d has %d words, want 300", i, got)
		}
	}
}

func TestSegmentMergesSmallNeighbors(t *testing.T) {
	// Four paragraphs all under MinWords merge into a single chunk.
	input := strings.Join([]string{
		paragraph(20), paragraph(15), paragraph(10), paragraph(25),
	}, "\n\n")

	chunks := Segment(input, pastedOpts)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 merged chunk, got %d", len(chunks))
	}
	if got := textutil.CountWords(chunks[0]); got != 70 {
		t.Errorf("merged chunk has %d words, want 70", got)
	}
}

func TestSegmentURLBand(t *testing.T) {
	urlOpts := Options{MinWords: 250, TargetWords: 1500, MaxWords: 2500}
	input := sentences(150, 20) // 3000 words, over the URL-band max

	chunks := Segment(input, urlOpts)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		n := textutil.CountWords(chunk)
		if n < urlOpts.MinWords || n > urlOpts.MaxWords {
			t.Errorf("chunk %d has %d words, outside [%d,%d]",
				i, n, urlOpts.MinWords, urlOpts.MaxWords)
		}
	}
}
