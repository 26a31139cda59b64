package translate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lexigrade/api/internal/model"
)

type fakeChat struct {
	response string
	err      error
	lastSys  string
	lastUser string
}

func (f *fakeChat) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	f.lastSys = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeChat) IsConfigured() bool { return true }

func TestTranslateChunkSuccess(t *testing.T) {
	chat := &fakeChat{response: `{"translation": "El gato duerme.", "bridge": "The cat sleeps."}`}
	tr := NewTranslator(chat, time.Second)

	chunk, err := tr.TranslateChunk(context.Background(), "The cat is sleeping.", "es", model.LevelA2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunk.Text != "El gato duerme." {
		t.Errorf("text = %q", chunk.Text)
	}
	if chunk.Bridge != "The cat sleeps." {
		t.Errorf("bridge = %q", chunk.Bridge)
	}
	if chunk.Degraded {
		t.Errorf("unexpected degraded flag")
	}
	if !strings.Contains(chat.lastSys, "A2") {
		t.Errorf("system prompt missing level: %s", chat.lastSys)
	}
	if !strings.Contains(chat.lastSys, Guidelines("es", model.LevelA2)) {
		t.Errorf("system prompt missing level guidelines")
	}
}

func TestTranslateChunkFencedJSON(t *testing.T) {
	chat := &fakeChat{response: "Here you go:\n```json\n{\"translation\": \"Bonjour.\"}\n```"}
	tr := NewTranslator(chat, time.Second)

	chunk, err := tr.TranslateChunk(context.Background(), "Hello.", "fr", model.LevelB1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunk.Text != "Bonjour." {
		t.Errorf("text = %q", chunk.Text)
	}
}

func TestTranslateChunkDegradesOnMalformedResponse(t *testing.T) {
	original := "This text must survive unchanged."
	chat := &fakeChat{response: "I cannot help with that."}
	tr := NewTranslator(chat, time.Second)

	chunk, err := tr.TranslateChunk(context.Background(), original, "es", model.LevelB1)
	if err != nil {
		t.Fatalf("malformed response must not error, got: %v", err)
	}
	if chunk.Text != original {
		t.Errorf("degraded chunk text = %q, want original", chunk.Text)
	}
	if !chunk.Degraded {
		t.Errorf("degraded flag not set")
	}
}

func TestTranslateChunkErrorsOnCallFailure(t *testing.T) {
	chat := &fakeChat{err: errors.New("connection refused")}
	tr := NewTranslator(chat, time.Second)

	_, err := tr.TranslateChunk(context.Background(), "text", "es", model.LevelB1)
	if err == nil {
		t.Fatal("expected error for transport failure")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     model.Language
	}{
		{"clean", `{"language": "de"}`, nil, "de"},
		{"uppercase", `{"language": "DE"}`, nil, "de"},
		{"fenced", "```json\n{\"language\": \"pt\"}\n```", nil, "pt"},
		{"garbage", "the language appears to be German", nil, model.LanguageUnknown},
		{"call failure", "", errors.New("timeout"), model.LanguageUnknown},
		{"implausible code", `{"language": "germanic"}`, nil, model.LanguageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{response: tt.response, err: tt.err}
			d := NewDetector(chat, time.Second)
			if got := d.Detect(context.Background(), "Der Hund schläft."); got != tt.want {
				t.Errorf("Detect = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSampleStaysValidUTF8(t *testing.T) {
	// "a" shifts every following 2-byte rune onto an odd offset, so a
	// naive byte cut at the sample limit would land mid-rune
	text := "a" + strings.Repeat("é", 600)
	chat := &fakeChat{response: `{"language": "fr"}`}
	d := NewDetector(chat, time.Second)

	if got := d.Detect(context.Background(), text); got != "fr" {
		t.Errorf("Detect = %q, want fr", got)
	}
	if !utf8.ValidString(chat.lastUser) {
		t.Errorf("detection prompt contains invalid UTF-8 after truncation")
	}
}

func TestGuidelinesFallback(t *testing.T) {
	if Guidelines("xx", "Z9") != levelGuidelines[model.LevelB1] {
		t.Errorf("unknown level should fall back to B1 guidelines")
	}
	if !strings.Contains(Guidelines("es", model.LevelA1), "subjunctive") {
		t.Errorf("language-specific note missing for es/A1")
	}
}
