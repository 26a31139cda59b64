// Package textutil provides pure text helpers used by the segmenter:
// Unicode-aware word counting and sentence splitting.
package textutil

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// CountWords returns the number of words in text using UAX #29 word
// segmentation. Tokens without a letter or digit (punctuation, spaces)
// are not counted. Hyphenated compounds count once per component, so
// "well-known" is two words.
func CountWords(text string) int {
	count := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		if isWord(tokens.Value()) {
			count++
		}
	}
	return count
}

func isWord(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// sentence terminators; a sentence boundary is a terminator run followed
// by whitespace or end of input.
const terminators = ".!?"

// SplitSentences splits text at sentence boundaries, keeping the
// terminating punctuation with each sentence. Text with no terminator
// comes back as a single sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !strings.ContainsRune(terminators, runes[i]) {
			continue
		}
		// consume a run of terminators (e.g. "?!", "...")
		for i+1 < len(runes) && strings.ContainsRune(terminators, runes[i+1]) {
			i++
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

// CollapseWhitespace normalizes runs of spaces and tabs inside a line to
// a single space and trims each line.
func CollapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}
