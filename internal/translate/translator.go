// Package translate adapts the LLM chat service into the two
// pipeline-facing operations: language detection and leveled chunk
// translation. Both degrade gracefully on unusable model output.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lexigrade/api/internal/client"
	"github.com/lexigrade/api/internal/model"
)

// Translator turns one source chunk into a leveled translation with one
// LLM call per chunk.
type Translator struct {
	llm     client.ChatCompleter
	timeout time.Duration
}

// NewTranslator creates a translator with a per-call timeout.
func NewTranslator(llm client.ChatCompleter, timeout time.Duration) *Translator {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Translator{llm: llm, timeout: timeout}
}

// TranslateChunk translates one chunk to the target language at the
// given level. A transport-level failure is returned as an error; a
// malformed or missing model response degrades to the original chunk
// text so one bad response never aborts the batch.
func (t *Translator) TranslateChunk(ctx context.Context, chunk string, target model.Language, level model.Level) (model.TranslatedChunk, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	response, err := t.llm.ChatCompletion(callCtx, t.systemPrompt(target, level), t.userPrompt(chunk))
	if err != nil {
		return model.TranslatedChunk{}, fmt.Errorf("translation call failed: %w", err)
	}

	var result struct {
		Translation string `json:"translation"`
		Bridge      string `json:"bridge"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil || strings.TrimSpace(result.Translation) == "" {
		// unusable model output: hand back the original unchanged
		return model.TranslatedChunk{Text: chunk, Degraded: true}, nil
	}

	return model.TranslatedChunk{
		Text:   result.Translation,
		Bridge: result.Bridge,
	}, nil
}

func (t *Translator) systemPrompt(target model.Language, level model.Level) string {
	return fmt.Sprintf(`You are a professional translator producing graded reading material for language learners.
Target language: %s. Learner level: %s (CEFR).
Level constraints: %s
Preserve the meaning and order of the source text. Drop website boilerplate such as navigation labels, cookie notices, calls to action and bylines.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`, target, level, Guidelines(target, level))
}

func (t *Translator) userPrompt(chunk string) string {
	return fmt.Sprintf(`Translate the following text.

%s

Output as JSON: {"translation": "<leveled translation>", "bridge": "<literal word-order-preserving back-translation into English>"}`, chunk)
}

// Detector identifies the source language of a text sample.
type Detector struct {
	llm     client.ChatCompleter
	timeout time.Duration
}

// NewDetector creates a detector with a per-call timeout.
func NewDetector(llm client.ChatCompleter, timeout time.Duration) *Detector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Detector{llm: llm, timeout: timeout}
}

// sample size sent for detection; more adds cost without accuracy
const detectSampleChars = 600

// Detect returns the ISO 639-1 code of the text's language, or
// LanguageUnknown when the call fails or the response is unusable.
func (d *Detector) Detect(ctx context.Context, text string) model.Language {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	sample := text
	if len(sample) > detectSampleChars {
		// back up to a rune start so the cut never produces invalid UTF-8
		cut := detectSampleChars
		for cut > 0 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut]
	}

	system := `You identify the language of a text sample.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`
	user := fmt.Sprintf("Identify the language of this text:\n\n%s\n\nOutput as JSON: {\"language\": \"<ISO 639-1 code>\"}", sample)

	response, err := d.llm.ChatCompletion(callCtx, system, user)
	if err != nil {
		return model.LanguageUnknown
	}

	var result struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil {
		return model.LanguageUnknown
	}

	code := strings.ToLower(strings.TrimSpace(result.Language))
	if len(code) < 2 || len(code) > 3 {
		return model.LanguageUnknown
	}
	return model.Language(code)
}

// extractJSON pulls the JSON object out of a model response that may be
// wrapped in code fences or prose.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		response = response[idx+7:]
		if end := strings.Index(response, "```"); end != -1 {
			response = response[:end]
		}
	} else if idx := strings.Index(response, "```"); idx != -1 {
		response = response[idx+3:]
		if end := strings.Index(response, "```"); end != -1 {
			response = response[:end]
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end != -1 && end > start {
		response = response[start : end+1]
	}

	return strings.TrimSpace(response)
}
