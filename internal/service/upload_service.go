package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// FileInput is an uploaded file held in memory.
type FileInput struct {
	Name    string
	Content []byte
}

// UploadResult locates a stored file.
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

type UploadService struct {
	store    storage.Store
	maxBytes int64
}

// NewUploadService creates an UploadService. maxBytes <= 0 disables the size limit.
func NewUploadService(store storage.Store, maxBytes int64) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes}
}

// UploadFile stores in under a random name in bucket, below folder when folder is non-empty.
func (s *UploadService) UploadFile(ctx context.Context, in FileInput, bucket, folder string) (_ *UploadResult, err error) {
	defer observability.TrackOperation("upload_file")(&err)
	defer func() {
		if r := recover(); r != nil {
			err = fail(ctx, "Error uploading file", fmt.Errorf("panic: %v", r))
		}
	}()
	ctx, op := observability.StartOperation(ctx, "service.UploadFile",
		attribute.String("upload.bucket", bucket),
		attribute.Int("upload.size", len(in.Content)),
	)
	defer op.Finish(&err)

	if len(in.Content) == 0 {
		return nil, models.NewValidationError("File is empty")
	}
	if s.maxBytes > 0 && int64(len(in.Content)) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %d bytes)", s.maxBytes))
	}
	if !storage.ValidBucket(bucket) {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid bucket %q", bucket))
	}

	objectPath := objectName(in.Name)
	if folder = strings.Trim(folder, "/"); folder != "" {
		objectPath = path.Join(folder, objectPath)
	}

	if err := s.store.Upload(ctx, bucket, objectPath, in.Content); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, models.NewValidationError("Invalid upload folder")
		}
		return nil, fail(ctx, "Error uploading file", err)
	}

	return &UploadResult{
		URL:  s.store.PublicURL(bucket, objectPath),
		Path: objectPath,
	}, nil
}

// objectName returns a random file name keeping the original extension.
func objectName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}
