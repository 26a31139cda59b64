// Package segment turns raw plain text into an ordered list of
// bounded-size chunks for translation. Chunk boundaries fall on
// paragraph or sentence boundaries, never mid-sentence.
package segment

import (
	"regexp"
	"strings"

	"github.com/lexigrade/api/internal/textutil"
)

// Options bounds the word count of produced chunks.
type Options struct {
	MinWords    int
	TargetWords int
	MaxWords    int
}

var blankLine = regexp.MustCompile(`\n\s*\n`)

// Segment splits text into chunks whose word counts lie within the
// configured band. Concatenating the chunks in order reproduces the
// input's word sequence. Empty input yields no chunks. A single
// sentence with no terminator is never split, even when oversized.
func Segment(text string, opts Options) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	segments := splitParagraphs(text, opts)
	segments = splitOversized(segments, opts)
	return mergeSmall(segments, opts)
}

// splitParagraphs splits on blank-line boundaries. If that yields a
// single oversized segment (no blank lines in the source), it retries
// on single newlines.
func splitParagraphs(text string, opts Options) []string {
	paragraphs := collect(blankLine.Split(text, -1))
	if len(paragraphs) == 1 && textutil.CountWords(paragraphs[0]) > opts.MaxWords {
		if lines := collect(strings.Split(text, "\n")); len(lines) > 1 {
			return lines
		}
	}
	return paragraphs
}

// splitOversized re-splits any segment over MaxWords at sentence
// boundaries, accumulating sentences up to TargetWords per sub-chunk.
func splitOversized(segments []string, opts Options) []string {
	var out []string
	for _, seg := range segments {
		if textutil.CountWords(seg) <= opts.MaxWords {
			out = append(out, seg)
			continue
		}
		out = append(out, accumulateSentences(textutil.SplitSentences(seg), opts)...)
	}
	return out
}

func accumulateSentences(sentences []string, opts Options) []string {
	var chunks []string
	var cur strings.Builder
	curWords := 0

	for _, sentence := range sentences {
		n := textutil.CountWords(sentence)
		if curWords > 0 && curWords+n > opts.TargetWords {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curWords = 0
		}
		if curWords > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(sentence)
		curWords += n
	}
	if curWords > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// mergeSmall greedily merges adjacent segments while either is under
// MinWords, or both are under TargetWords, provided the merged size
// still fits MaxWords. A trailing segment under MinWords is folded into
// its predecessor under the same size constraint.
func mergeSmall(segments []string, opts Options) []string {
	if len(segments) == 0 {
		return nil
	}

	var merged []string
	cur := segments[0]
	curWords := textutil.CountWords(cur)

	for _, next := range segments[1:] {
		nextWords := textutil.CountWords(next)
		if shouldMerge(curWords, nextWords, opts) {
			cur = cur + "\n\n" + next
			curWords += nextWords
			continue
		}
		merged = append(merged, cur)
		cur, curWords = next, nextWords
	}

	// fold a trailing runt into its predecessor when it still fits
	if curWords < opts.MinWords && len(merged) > 0 {
		last := merged[len(merged)-1]
		if textutil.CountWords(last)+curWords <= opts.MaxWords {
			merged[len(merged)-1] = last + "\n\n" + cur
			return merged
		}
	}
	return append(merged, cur)
}

func shouldMerge(a, b int, opts Options) bool {
	if a+b > opts.MaxWords {
		return false
	}
	if a < opts.MinWords || b < opts.MinWords {
		return true
	}
	return a < opts.TargetWords && b < opts.TargetWords
}

func collect(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
