// internal/utils/validator/document.go
package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// UploadValidator rejects uploads before any credits are spent on them.
type UploadValidator struct {
	maxFileSize int64
	supported   map[string]bool
	logger      logger.Logger
}

func NewUploadValidator(log logger.Logger, maxFileSize int64, supportedExts []string) *UploadValidator {
	supported := make(map[string]bool, len(supportedExts))
	for _, ext := range supportedExts {
		supported[strings.ToLower(ext)] = true
	}
	return &UploadValidator{
		maxFileSize: maxFileSize,
		supported:   supported,
		logger:      log,
	}
}

// Validate checks size and file type. File-type failures carry
// ErrUnsupportedFileType so the API layer can map them.
func (v *UploadValidator) Validate(header *multipart.FileHeader) error {
	if header.Size > v.maxFileSize {
		return fmt.Errorf("file size %d exceeds maximum of %d bytes", header.Size, v.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		return fmt.Errorf("%w: %s has no extension", models.ErrUnsupportedFileType, header.Filename)
	}
	if !v.supported[ext] {
		return fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, ext)
	}

	return nil
}

// ContentHash computes the sha256 of the upload, used in audit object keys.
// The reader is rewound afterwards.
func ContentHash(file multipart.File) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
