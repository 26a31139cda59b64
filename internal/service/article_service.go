package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lexigrade/api/internal/model"
)

const (
	TaskTypeTranslate = "article:translate"

	articleKeyPrefix = "article:"
	indexKeyPrefix   = "article:index:"
)

// ErrArticleNotFound is returned when no record exists for an ID.
var ErrArticleNotFound = errors.New("article not found")

// ErrArticleNotReady is returned when a result is requested before the
// job has completed.
var ErrArticleNotReady = errors.New("article not completed")

// ArticleService manages translation job records and their queue entries.
// Records live in Redis as JSON and expire after the configured retention
// window.
type ArticleService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
	retention   time.Duration
}

func NewArticleService(redisClient *redis.Client, asynqClient *asynq.Client, retention time.Duration) *ArticleService {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &ArticleService{
		redis:       redisClient,
		asynqClient: asynqClient,
		retention:   retention,
	}
}

// Submit accepts a translation request and queues it. Submission is
// idempotent on (source, target language, level): while an earlier job
// for the same tuple is still live, its ID is returned instead of
// starting a duplicate. A failed job with a retryable error is
// re-enqueued so it resumes from its last checkpoint.
func (s *ArticleService) Submit(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResponse, error) {
	indexKey := submissionIndexKey(req)

	// replacing means the index may point at a dead record (terminal
	// non-retryable, or a record that already expired) and a fresh job
	// is allowed to overwrite the index entry
	replacing := false
	if existingID, err := s.redis.Get(ctx, indexKey).Result(); err == nil {
		existing, err := s.GetArticle(ctx, existingID)
		if err != nil {
			replacing = true
		} else {
			switch {
			case !existing.Status.IsTerminal() || existing.Status == model.StatusCompleted:
				return submitResponse(existing), nil
			case existing.Error != nil && existing.Error.Retryable:
				if err := s.enqueue(ctx, existing.ID); err != nil {
					return nil, fmt.Errorf("failed to enqueue task: %w", err)
				}
				log.Printf("Re-enqueued failed article %s (attempt %d)", existing.ID, existing.RetryCount+1)
				return submitResponse(existing), nil
			default:
				replacing = true
			}
		}
	}

	now := time.Now()
	article := &model.Article{
		ID:             uuid.New().String(),
		SourceKind:     req.SourceKind,
		SourceRef:      req.SourceRef,
		PastedText:     req.PastedText,
		TargetLanguage: req.TargetLanguage,
		Level:          req.Level,
		Status:         model.StatusQueued,
		CreatedAt:      now,
	}

	if err := s.SaveArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	if replacing {
		if err := s.redis.Set(ctx, indexKey, article.ID, s.retention).Err(); err != nil {
			return nil, fmt.Errorf("failed to save submission index: %w", err)
		}
	} else {
		// SET NX so two concurrent submissions of the same tuple cannot
		// both create a job; the loser adopts the winner's record
		claimed, err := s.redis.SetNX(ctx, indexKey, article.ID, s.retention).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to save submission index: %w", err)
		}
		if !claimed {
			if winner := s.adoptWinner(ctx, indexKey); winner != nil {
				s.redis.Del(ctx, articleKeyPrefix+article.ID)
				return submitResponse(winner), nil
			}
			// the winner vanished between claim and load; take over
			if err := s.redis.Set(ctx, indexKey, article.ID, s.retention).Err(); err != nil {
				return nil, fmt.Errorf("failed to save submission index: %w", err)
			}
		}
	}

	if err := s.enqueue(ctx, article.ID); err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return submitResponse(article), nil
}

// adoptWinner loads the article a concurrent submission registered
// under indexKey, or nil when it cannot be resolved.
func (s *ArticleService) adoptWinner(ctx context.Context, indexKey string) *model.Article {
	winnerID, err := s.redis.Get(ctx, indexKey).Result()
	if err != nil {
		return nil
	}
	winner, err := s.GetArticle(ctx, winnerID)
	if err != nil {
		return nil
	}
	return winner
}

// GetStatus returns the polled status of a translation job.
func (s *ArticleService) GetStatus(ctx context.Context, articleID string) (*model.StatusResponse, error) {
	article, err := s.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	resp := &model.StatusResponse{
		ArticleID:  article.ID,
		Status:     article.Status,
		Title:      article.Title,
		Error:      article.Error,
		RetryCount: article.RetryCount,
	}
	if article.TotalChunks > 0 {
		resp.Progress = &model.Progress{
			Current: article.CompletedChunks,
			Total:   article.TotalChunks,
			Percent: float64(article.CompletedChunks) / float64(article.TotalChunks) * 100,
		}
	}
	return resp, nil
}

// GetResult returns the aligned chunk pairs of a completed job.
func (s *ArticleService) GetResult(ctx context.Context, articleID string) (*model.ResultResponse, error) {
	article, err := s.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	if article.Status != model.StatusCompleted {
		return nil, ErrArticleNotReady
	}

	chunks := make([]model.ChunkPair, len(article.TranslatedChunks))
	for i, translated := range article.TranslatedChunks {
		chunks[i] = model.ChunkPair{
			Original: article.OriginalChunks[i],
			Text:     translated.Text,
			Bridge:   translated.Bridge,
			Degraded: translated.Degraded,
		}
	}

	return &model.ResultResponse{
		ArticleID:      article.ID,
		Title:          article.Title,
		SourceLanguage: article.SourceLanguage,
		TargetLanguage: article.TargetLanguage,
		Level:          article.Level,
		WordCount:      article.WordCount,
		Chunks:         chunks,
		CreatedAt:      article.CreatedAt,
		CompletedAt:    article.CompletedAt,
	}, nil
}

// GetArticle loads a job record. Implements the pipeline store.
func (s *ArticleService) GetArticle(ctx context.Context, articleID string) (*model.Article, error) {
	data, err := s.redis.Get(ctx, articleKeyPrefix+articleID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	var article model.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// SaveArticle persists a job record with the retention TTL. Implements
// the pipeline store.
func (s *ArticleService) SaveArticle(ctx context.Context, article *model.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, articleKeyPrefix+article.ID, data, s.retention).Err()
}

func (s *ArticleService) enqueue(ctx context.Context, articleID string) error {
	payload, err := json.Marshal(&model.TranslateTaskPayload{ArticleID: articleID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskTypeTranslate, payload)
	_, err = s.asynqClient.EnqueueContext(ctx, task,
		asynq.Queue("translate"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	return err
}

// submissionIndexKey hashes the submission tuple that defines a
// duplicate: the source identity plus target language and level.
func submissionIndexKey(req *model.SubmitRequest) string {
	h := sha256.New()
	h.Write([]byte(string(req.SourceKind)))
	h.Write([]byte{0})
	if req.SourceKind == model.SourcePasted {
		h.Write([]byte(req.PastedText))
	} else {
		h.Write([]byte(req.SourceRef))
	}
	h.Write([]byte{0})
	h.Write([]byte(string(req.TargetLanguage)))
	h.Write([]byte{0})
	h.Write([]byte(string(req.Level)))
	return indexKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func submitResponse(article *model.Article) *model.SubmitResponse {
	return &model.SubmitResponse{
		ArticleID:       article.ID,
		Status:          article.Status,
		CompletedChunks: article.CompletedChunks,
		TotalChunks:     article.TotalChunks,
		CreatedAt:       article.CreatedAt,
	}
}
