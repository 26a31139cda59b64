package model

import "time"

// SubmitRequest represents the request to submit a translation job
type SubmitRequest struct {
	SourceKind     SourceKind `json:"sourceKind" validate:"required,oneof=url pasted-text pdf"`
	SourceRef      string     `json:"sourceRef" validate:"required_unless=SourceKind pasted-text"`
	PastedText     string     `json:"pastedText" validate:"required_if=SourceKind pasted-text"`
	TargetLanguage Language   `json:"targetLanguage" validate:"required,bcp47_language_tag"`
	Level          Level      `json:"level" validate:"required,oneof=A1 A2 B1 B2 C1 C2"`
}

// SubmitResponse acknowledges an accepted job before any work starts.
type SubmitResponse struct {
	ArticleID       string        `json:"articleId"`
	Status          ArticleStatus `json:"status"`
	CompletedChunks int           `json:"completedChunks"`
	TotalChunks     int           `json:"totalChunks"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Progress reports chunk-level completion while translating.
type Progress struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// StatusResponse represents the polled status of a translation job
type StatusResponse struct {
	ArticleID  string        `json:"articleId"`
	Status     ArticleStatus `json:"status"`
	Progress   *Progress     `json:"progress"`
	Title      string        `json:"title,omitempty"`
	Error      *ArticleError `json:"error"`
	RetryCount int           `json:"retryCount"`
}

// ChunkPair is one aligned original/translated chunk in the result.
type ChunkPair struct {
	Original string `json:"original"`
	Text     string `json:"text"`
	Bridge   string `json:"bridge,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// ResultResponse represents the result of a completed translation job
type ResultResponse struct {
	ArticleID      string      `json:"articleId"`
	Title          string      `json:"title,omitempty"`
	SourceLanguage Language    `json:"sourceLanguage"`
	TargetLanguage Language    `json:"targetLanguage"`
	Level          Level       `json:"level"`
	WordCount      int         `json:"wordCount"`
	Chunks         []ChunkPair `json:"chunks"`
	CreatedAt      time.Time   `json:"createdAt"`
	CompletedAt    *time.Time  `json:"completedAt"`
}

// UploadResponse is returned after a PDF upload is stored.
type UploadResponse struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}
