package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lexigrade/api/internal/client"
	"github.com/lexigrade/api/internal/extract"
	"github.com/lexigrade/api/internal/model"
)

// UploadService stores uploaded PDF sources in R2 before a translation
// job is submitted against them.
type UploadService struct {
	r2Client client.StorageClient
}

func NewUploadService(r2Client client.StorageClient) *UploadService {
	return &UploadService{
		r2Client: r2Client,
	}
}

// UploadPDF validates that data is a parseable PDF and stores it. The
// returned key is used as the SourceRef of a pdf submission.
func (s *UploadService) UploadPDF(ctx context.Context, data []byte) (*model.UploadResponse, error) {
	if s.r2Client == nil {
		return nil, fmt.Errorf("blob storage is not configured")
	}

	// Reject garbage before it is stored; the text itself is re-extracted
	// by the pipeline.
	if _, err := extract.PDFText(data); err != nil {
		return nil, fmt.Errorf("not a readable PDF: %w", err)
	}

	key := fmt.Sprintf("uploads/%s.pdf", uuid.New().String())
	if _, err := s.r2Client.Upload(ctx, key, bytes.NewReader(data), "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to upload PDF: %w", err)
	}

	return &model.UploadResponse{
		Key:  key,
		Size: int64(len(data)),
	}, nil
}

// Download fetches a stored PDF by key. Implements the pipeline blob
// store.
func (s *UploadService) Download(ctx context.Context, key string) ([]byte, error) {
	if s.r2Client == nil {
		return nil, fmt.Errorf("blob storage is not configured")
	}
	return s.r2Client.Download(ctx, key)
}

// Delete removes a stored PDF once the pipeline no longer needs it,
// after the job completes or fails for good.
func (s *UploadService) Delete(ctx context.Context, key string) error {
	if s.r2Client == nil {
		return nil
	}
	return s.r2Client.Delete(ctx, key)
}
