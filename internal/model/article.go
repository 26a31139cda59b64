package model

import "time"

// Article is the persisted unit of work: one end-to-end translation
// request and its progress. It is mutated exclusively by the pipeline
// orchestrator once queued.
type Article struct {
	ID         string     `json:"id"`
	SourceKind SourceKind `json:"sourceKind"`
	// SourceRef is the URL for url sources, the R2 object key for pdf
	// sources, and empty for pasted text (the text itself lives in
	// PastedText).
	SourceRef  string `json:"sourceRef"`
	PastedText string `json:"pastedText,omitempty"`
	Title      string `json:"title,omitempty"`

	SourceLanguage Language `json:"sourceLanguage,omitempty"`
	TargetLanguage Language `json:"targetLanguage"`
	Level          Level    `json:"level"`

	// OriginalChunks is nil until extraction completes. TotalChunks is
	// fixed at that point and never changes on resume.
	OriginalChunks   []string          `json:"originalChunks,omitempty"`
	TranslatedChunks []TranslatedChunk `json:"translatedChunks,omitempty"`
	CompletedChunks  int               `json:"completedChunks"`
	TotalChunks      int               `json:"totalChunks"`
	WordCount        int               `json:"wordCount,omitempty"`

	Status     ArticleStatus `json:"status"`
	Error      *ArticleError `json:"error,omitempty"`
	RetryCount int           `json:"retryCount"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// TranslatedChunk pairs a leveled translation with an optional literal
// bridge translation the reader can cross-reference against.
type TranslatedChunk struct {
	Text   string `json:"text"`
	Bridge string `json:"bridge,omitempty"`
	// Degraded marks a chunk whose translation call failed; Text holds
	// the original source text in that case.
	Degraded bool `json:"degraded,omitempty"`
}

// ArticleError records why a job failed.
type ArticleError struct {
	Message   string    `json:"message"`
	Code      ErrorCode `json:"code"`
	Retryable bool      `json:"retryable"`
}

// TranslateTaskPayload is the asynq task body for an article translation.
type TranslateTaskPayload struct {
	ArticleID string `json:"articleId"`
}
