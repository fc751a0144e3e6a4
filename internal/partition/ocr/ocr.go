// Package ocr provides the OCR-backed partitioning used for image files and
// the ocr_only strategy. Two engines are supported: AWS Textract and a local
// Tesseract install, selected by configuration.
package ocr

import (
	"context"
	"fmt"

	"github.com/feichai0017/ai-ready-data/internal/partition"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// Engine names an OCR backend.
type Engine string

const (
	EngineTextract  Engine = "textract"
	EngineTesseract Engine = "tesseract"
	// EngineNone disables OCR partitioning entirely.
	EngineNone Engine = ""
)

// NewPartitioner builds the configured OCR backend. A nil partitioner with a
// nil error means OCR is disabled.
func NewPartitioner(ctx context.Context, engine Engine, log logger.Logger) (partition.Partitioner, error) {
	switch engine {
	case EngineTextract:
		return NewTextract(ctx, log)
	case EngineTesseract:
		return NewTesseract(log), nil
	case EngineNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine: %s", engine)
	}
}
