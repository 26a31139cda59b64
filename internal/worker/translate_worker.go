package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/lexigrade/api/internal/model"
	"github.com/lexigrade/api/internal/pipeline"
)

// TranslateWorker processes article translation tasks.
type TranslateWorker struct {
	pipeline *pipeline.Pipeline
}

func NewTranslateWorker(p *pipeline.Pipeline) *TranslateWorker {
	return &TranslateWorker{pipeline: p}
}

// ProcessTask runs one article through the translation pipeline. The
// pipeline persists its own failure state; this handler only decides
// whether asynq should retry. Retries re-run the same article, which
// resumes from its last persisted checkpoint.
func (w *TranslateWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.TranslateTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Starting translation job: %s", payload.ArticleID)

	if err := w.pipeline.Run(ctx, payload.ArticleID); err != nil {
		var perr *pipeline.Error
		if errors.As(err, &perr) && !perr.Retryable() {
			return fmt.Errorf("%v: %w", perr, asynq.SkipRetry)
		}
		return err
	}
	return nil
}
