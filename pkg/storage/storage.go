// Package storage holds the raw-upload object store. Every accepted document
// is persisted here before processing so batch workers can fetch it and
// operators can audit what was submitted.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/feichai0017/ai-ready-data/pkg/logger"
	"github.com/feichai0017/ai-ready-data/pkg/storage/minio"
	"github.com/feichai0017/ai-ready-data/pkg/storage/s3"
)

type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

type Storage interface {
	// Store persists an uploaded document under key and returns the key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get fetches a stored document.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored document.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes documents last modified before threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage picks a backend by type.
func NewStorage(storageType StorageType, logger logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeS3:
		return s3.GetClient(logger)
	case StorageTypeMinio:
		return minio.GetClient(logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
