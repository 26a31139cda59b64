// Package pipeline drives one article through the translation state
// machine: fetch, extract, detect, translate, persist. Progress is
// persisted after every phase and every translation wave, so an
// interrupted job resumes from its last checkpoint instead of
// restarting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lexigrade/api/internal/config"
	"github.com/lexigrade/api/internal/extract"
	"github.com/lexigrade/api/internal/fetch"
	"github.com/lexigrade/api/internal/model"
	"github.com/lexigrade/api/internal/segment"
	"github.com/lexigrade/api/internal/textutil"
)

// Fetcher retrieves raw markup for URL sources.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Extractor converts markup to plain text.
type Extractor interface {
	Extract(markup, sourceURL string) (*extract.Content, error)
}

// Detector identifies the source language.
type Detector interface {
	Detect(ctx context.Context, text string) model.Language
}

// Translator translates one chunk.
type Translator interface {
	TranslateChunk(ctx context.Context, chunk string, target model.Language, level model.Level) (model.TranslatedChunk, error)
}

// Store persists article records. The pipeline is the only writer for a
// running article.
type Store interface {
	GetArticle(ctx context.Context, id string) (*model.Article, error)
	SaveArticle(ctx context.Context, article *model.Article) error
}

// BlobStore reads uploaded source blobs (PDF sources) and removes them
// once a job no longer needs them.
type BlobStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Notifier pushes progress to subscribers. Implementations must not block.
type Notifier interface {
	NotifyProgress(article *model.Article)
	NotifyComplete(article *model.Article)
	NotifyError(article *model.Article)
}

// Options bounds pipeline behavior.
type Options struct {
	// WaveSize is the maximum number of in-flight translation calls.
	WaveSize int
	// MinContentChars is the minimum extracted text length.
	MinContentChars int
	// Chunking selects the segmenter band per source kind.
	Chunking config.ChunkingConfig
}

// Pipeline is the orchestrator for article translation jobs.
type Pipeline struct {
	fetcher    Fetcher
	extractor  Extractor
	detector   Detector
	translator Translator
	store      Store
	blobs      BlobStore
	notifier   Notifier
	opts       Options
}

// New creates a pipeline. blobs and notifier may be nil.
func New(fetcher Fetcher, extractor Extractor, detector Detector, translator Translator, store Store, blobs BlobStore, notifier Notifier, opts Options) *Pipeline {
	if opts.WaveSize <= 0 {
		opts.WaveSize = 15
	}
	return &Pipeline{
		fetcher:    fetcher,
		extractor:  extractor,
		detector:   detector,
		translator: translator,
		store:      store,
		blobs:      blobs,
		notifier:   notifier,
		opts:       opts,
	}
}

// Run executes or resumes the job for articleID. A failed article
// re-enters at the first phase whose output was never persisted: if no
// chunks exist it restarts from fetching, otherwise it continues
// translating from CompletedChunks.
func (p *Pipeline) Run(ctx context.Context, articleID string) error {
	article, err := p.store.GetArticle(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to load article: %w", err)
	}

	if article.Status == model.StatusCompleted {
		return nil
	}

	if article.StartedAt == nil {
		now := time.Now()
		article.StartedAt = &now
	}
	article.Error = nil

	if article.TotalChunks == 0 {
		if err := p.prepare(ctx, article); err != nil {
			return p.fail(ctx, article, err)
		}
	} else {
		// resume: the persisted chunk list is authoritative, never
		// re-extract. Guard against a crash between appends.
		article.CompletedChunks = len(article.TranslatedChunks)
		log.Printf("Resuming article %s from chunk %d/%d", article.ID, article.CompletedChunks, article.TotalChunks)
	}

	if err := p.translateChunks(ctx, article); err != nil {
		return p.fail(ctx, article, err)
	}

	return p.complete(ctx, article)
}

// prepare runs the sequential phases up to and including segmentation:
// fetching, extracting, detecting. Each phase persists its result
// before the next begins.
func (p *Pipeline) prepare(ctx context.Context, article *model.Article) error {
	text, singleChunk, err := p.obtainText(ctx, article)
	if err != nil {
		return err
	}

	if err := p.setStatus(ctx, article, model.StatusDetecting); err != nil {
		return err
	}
	article.SourceLanguage = p.detector.Detect(ctx, text)
	if err := p.save(ctx, article, model.ErrCodeTranslationFailed); err != nil {
		return err
	}

	var chunks []string
	if singleChunk {
		chunks = []string{text}
	} else {
		chunks = segment.Segment(text, p.bandFor(article.SourceKind))
	}
	if len(chunks) == 0 {
		return newError(model.ErrCodeContentTooShort, "no translatable content found", nil)
	}

	article.OriginalChunks = chunks
	article.TotalChunks = len(chunks)
	article.CompletedChunks = 0
	article.TranslatedChunks = nil
	article.Status = model.StatusTranslating
	return p.save(ctx, article, model.ErrCodeTranslationFailed)
}

// obtainText resolves the raw plain text for the article's source kind.
func (p *Pipeline) obtainText(ctx context.Context, article *model.Article) (string, bool, error) {
	switch article.SourceKind {
	case model.SourceURL:
		if err := p.setStatus(ctx, article, model.StatusFetching); err != nil {
			return "", false, err
		}
		res, err := p.fetcher.Fetch(ctx, article.SourceRef)
		if err != nil {
			return "", false, newError(model.ErrCodeFetchFailed, "could not retrieve the page", err)
		}
		log.Printf("Fetched %s via %s strategy", article.SourceRef, res.Strategy)

		if err := p.setStatus(ctx, article, model.StatusExtracting); err != nil {
			return "", false, err
		}
		content, err := p.extractor.Extract(res.Markup, article.SourceRef)
		if err != nil {
			if errors.Is(err, extract.ErrTooShort) {
				return "", false, newError(model.ErrCodeContentTooShort, "the page did not contain enough readable text", err)
			}
			return "", false, newError(model.ErrCodeExtractionFailed, "could not extract readable content from the page", err)
		}
		article.Title = content.Title
		if err := p.save(ctx, article, model.ErrCodeExtractionFailed); err != nil {
			return "", false, err
		}
		return content.PlainText, content.SingleChunk, nil

	case model.SourcePDF:
		if err := p.setStatus(ctx, article, model.StatusFetching); err != nil {
			return "", false, err
		}
		if p.blobs == nil {
			return "", false, newError(model.ErrCodeFetchFailed, "blob storage is not configured", nil)
		}
		data, err := p.blobs.Download(ctx, article.SourceRef)
		if err != nil {
			return "", false, newError(model.ErrCodeFetchFailed, "could not retrieve the uploaded PDF", err)
		}

		if err := p.setStatus(ctx, article, model.StatusExtracting); err != nil {
			return "", false, err
		}
		text, err := extract.PDFText(data)
		if err != nil {
			return "", false, newError(model.ErrCodeExtractionFailed, "could not extract text from the PDF", err)
		}
		if len(strings.TrimSpace(text)) < p.opts.MinContentChars {
			return "", false, newError(model.ErrCodeContentTooShort, "the PDF did not contain enough readable text", nil)
		}
		return text, false, nil

	case model.SourcePasted:
		if err := p.setStatus(ctx, article, model.StatusExtracting); err != nil {
			return "", false, err
		}
		text := strings.TrimSpace(article.PastedText)
		if len(text) < p.opts.MinContentChars {
			return "", false, newError(model.ErrCodeContentTooShort, "the pasted text is too short to translate", nil)
		}
		return text, false, nil

	default:
		return "", false, newError(model.ErrCodeExtractionFailed, fmt.Sprintf("unsupported source kind %q", article.SourceKind), nil)
	}
}

// translateChunks dispatches the remaining chunks in bounded waves.
// Every wave is awaited in full and persisted before the next starts,
// so a crash loses at most one wave of work.
func (p *Pipeline) translateChunks(ctx context.Context, article *model.Article) error {
	if article.Status != model.StatusTranslating {
		if err := p.setStatus(ctx, article, model.StatusTranslating); err != nil {
			return err
		}
	}

	for article.CompletedChunks < article.TotalChunks {
		start := article.CompletedChunks
		end := start + p.opts.WaveSize
		if end > article.TotalChunks {
			end = article.TotalChunks
		}

		results := p.runWave(ctx, article, article.OriginalChunks[start:end])

		// results are indexed by wave position, so appending in order
		// preserves chunk order even though calls ran concurrently
		article.TranslatedChunks = append(article.TranslatedChunks, results...)
		article.CompletedChunks = len(article.TranslatedChunks)

		if err := p.save(ctx, article, model.ErrCodeTranslationFailed); err != nil {
			return err
		}
		p.notifyProgress(article)
	}

	return nil
}

// runWave translates one wave of chunks concurrently. Each chunk's
// outcome is captured independently: a failed call degrades to the
// original text rather than cancelling its siblings, so the wave always
// produces a full, ordered result slice.
func (p *Pipeline) runWave(ctx context.Context, article *model.Article, chunks []string) []model.TranslatedChunk {
	results := make([]model.TranslatedChunk, len(chunks))
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			translated, err := p.translator.TranslateChunk(ctx, chunk, article.TargetLanguage, article.Level)
			if err != nil {
				log.Printf("Chunk %d of article %s failed, keeping original: %v", article.CompletedChunks+i, article.ID, err)
				translated = model.TranslatedChunk{Text: chunk, Degraded: true}
			}
			results[i] = translated
		}(i, chunk)
	}

	wg.Wait()
	return results
}

// complete persists the final state: full chunk list, word count and
// progress in a single record write.
func (p *Pipeline) complete(ctx context.Context, article *model.Article) error {
	wordCount := 0
	for _, chunk := range article.TranslatedChunks {
		wordCount += textutil.CountWords(chunk.Text)
	}

	now := time.Now()
	article.Status = model.StatusCompleted
	article.WordCount = wordCount
	article.CompletedChunks = article.TotalChunks
	article.CompletedAt = &now
	article.Error = nil

	if err := p.save(ctx, article, model.ErrCodeTranslationFailed); err != nil {
		return p.fail(ctx, article, err)
	}

	log.Printf("Article %s completed: %d chunks, %d words", article.ID, article.TotalChunks, wordCount)
	p.cleanupBlob(ctx, article)
	if p.notifier != nil {
		p.notifier.NotifyComplete(article)
	}
	return nil
}

// cleanupBlob removes the uploaded PDF once the job is done with it.
// The extracted chunks live on the article record, so the blob is only
// needed while a retryable failure might restart the prepare phases.
func (p *Pipeline) cleanupBlob(ctx context.Context, article *model.Article) {
	if article.SourceKind != model.SourcePDF || p.blobs == nil {
		return
	}
	if err := p.blobs.Delete(ctx, article.SourceRef); err != nil {
		log.Printf("Failed to delete blob %s for article %s: %v", article.SourceRef, article.ID, err)
	}
}

// fail moves the article to failed, preserving all accumulated chunks,
// and records the user-facing message, machine code and retryability.
func (p *Pipeline) fail(ctx context.Context, article *model.Article, cause error) error {
	var perr *Error
	if !errors.As(cause, &perr) {
		perr = newError(model.ErrCodeTranslationFailed, "translation pipeline failed", cause)
	}

	article.Status = model.StatusFailed
	article.Error = &model.ArticleError{
		Message:   perr.Message,
		Code:      perr.Code,
		Retryable: perr.Retryable(),
	}
	article.RetryCount++

	if err := p.store.SaveArticle(ctx, article); err != nil {
		log.Printf("Failed to persist failure for article %s: %v", article.ID, err)
	}
	log.Printf("Article %s failed: %v", article.ID, perr)
	if !perr.Retryable() {
		p.cleanupBlob(ctx, article)
	}
	if p.notifier != nil {
		p.notifier.NotifyError(article)
	}
	return perr
}

func (p *Pipeline) setStatus(ctx context.Context, article *model.Article, status model.ArticleStatus) error {
	article.Status = status
	if err := p.save(ctx, article, codeForPhase(status)); err != nil {
		return err
	}
	p.notifyProgress(article)
	return nil
}

// save wraps store errors in a pipeline error carrying the code of the
// phase that was interrupted.
func (p *Pipeline) save(ctx context.Context, article *model.Article, code model.ErrorCode) error {
	if err := p.store.SaveArticle(ctx, article); err != nil {
		return newError(code, "failed to persist progress", err)
	}
	return nil
}

func (p *Pipeline) notifyProgress(article *model.Article) {
	if p.notifier != nil {
		p.notifier.NotifyProgress(article)
	}
}

func (p *Pipeline) bandFor(kind model.SourceKind) segment.Options {
	var band config.ChunkBand
	switch kind {
	case model.SourceURL:
		band = p.opts.Chunking.URL
	case model.SourcePDF:
		band = p.opts.Chunking.PDF
	default:
		band = p.opts.Chunking.Pasted
	}
	return segment.Options{
		MinWords:    band.MinWords,
		TargetWords: band.TargetWords,
		MaxWords:    band.MaxWords,
	}
}

func codeForPhase(status model.ArticleStatus) model.ErrorCode {
	switch status {
	case model.StatusFetching:
		return model.ErrCodeFetchFailed
	case model.StatusExtracting:
		return model.ErrCodeExtractionFailed
	default:
		return model.ErrCodeTranslationFailed
	}
}
