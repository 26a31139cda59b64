// Package extract converts fetched markup into translatable plain text.
// The default path runs readability-style main-content extraction; a
// small per-domain override table handles sources where that performs
// poorly.
package extract

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/lexigrade/api/internal/config"
	"github.com/lexigrade/api/internal/textutil"
)

// ErrTooShort means the extracted text is below the minimum character
// threshold. This is terminal for the job: retrying will not help.
var ErrTooShort = errors.New("extracted content too short")

// Content is the extraction output.
type Content struct {
	Title     string
	PlainText string
	// SingleChunk disables segmentation: the whole document becomes one
	// chunk (per-domain override).
	SingleChunk bool
}

// Extractor holds the override policy and content threshold.
type Extractor struct {
	overrides []config.DomainOverride
	minChars  int
}

// NewExtractor creates an extractor with the given per-domain overrides
// and minimum extracted-content length.
func NewExtractor(overrides []config.DomainOverride, minChars int) *Extractor {
	return &Extractor{overrides: overrides, minChars: minChars}
}

// Extract produces {title, plain text} from markup fetched at sourceURL.
func (e *Extractor) Extract(markup, sourceURL string) (*Content, error) {
	override := e.findOverride(sourceURL)

	if override != nil && override.SkipExtraction {
		text := stripNoise(markup)
		if len(strings.TrimSpace(text)) < e.minChars {
			return nil, ErrTooShort
		}
		return &Content{
			Title:       htmlTitle(markup),
			PlainText:   text,
			SingleChunk: override.SingleChunk,
		}, nil
	}

	parsed, err := url.Parse(sourceURL)
	if err != nil {
		parsed = nil
	}

	article, err := readability.FromReader(strings.NewReader(markup), parsed)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	text := textutil.CollapseWhitespace(article.TextContent)
	if len(strings.TrimSpace(text)) < e.minChars {
		return nil, ErrTooShort
	}

	return &Content{
		Title:       article.Title,
		PlainText:   text,
		SingleChunk: override != nil && override.SingleChunk,
	}, nil
}

func (e *Extractor) findOverride(sourceURL string) *config.DomainOverride {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}
	host := parsed.Hostname()
	for i := range e.overrides {
		if e.overrides[i].Match != "" && strings.Contains(host, e.overrides[i].Match) {
			return &e.overrides[i]
		}
	}
	return nil
}

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleBlock  = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	titleTag    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// stripNoise removes script, style and comment blocks but otherwise
// keeps the markup intact; the translator handles the remaining tags.
func stripNoise(markup string) string {
	markup = scriptBlock.ReplaceAllString(markup, "")
	markup = styleBlock.ReplaceAllString(markup, "")
	markup = htmlComment.ReplaceAllString(markup, "")
	return strings.TrimSpace(markup)
}

func htmlTitle(markup string) string {
	m := titleTag.FindStringSubmatch(markup)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
