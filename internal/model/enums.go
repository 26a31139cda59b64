package model

// Source kinds
type SourceKind string

const (
	SourceURL    SourceKind = "url"
	SourcePasted SourceKind = "pasted-text"
	SourcePDF    SourceKind = "pdf"
)

var ValidSourceKinds = []SourceKind{SourceURL, SourcePasted, SourcePDF}

// Article status. Statuses advance in order; failed is reachable from
// any non-terminal status.
type ArticleStatus string

const (
	StatusQueued      ArticleStatus = "queued"
	StatusFetching    ArticleStatus = "fetching"
	StatusExtracting  ArticleStatus = "extracting"
	StatusDetecting   ArticleStatus = "detecting"
	StatusTranslating ArticleStatus = "translating"
	StatusCompleted   ArticleStatus = "completed"
	StatusFailed      ArticleStatus = "failed"
)

// IsTerminal reports whether no further pipeline work happens in this status.
func (s ArticleStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Proficiency levels (CEFR)
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

var ValidLevels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Language is an ISO 639-1 code, or Unknown when detection fails.
type Language string

const LanguageUnknown Language = "unknown"

// Machine-readable error codes surfaced to callers.
type ErrorCode string

const (
	ErrCodeFetchFailed       ErrorCode = "FETCH_FAILED"
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeContentTooShort   ErrorCode = "CONTENT_TOO_SHORT"
	ErrCodeTranslationFailed ErrorCode = "TRANSLATION_FAILED"
	ErrCodeUploadFailed      ErrorCode = "UPLOAD_FAILED"
)

// Retryable reports whether resubmitting the job can succeed. Content
// that is too short or unextractable will not improve on retry.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrCodeExtractionFailed, ErrCodeContentTooShort:
		return false
	default:
		return true
	}
}
