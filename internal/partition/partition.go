// Package partition defines the consumed partitioner contract and the
// per-extension dispatch used by the pipeline. The heavy lifting of document
// parsing stays behind the Partitioner interface; the pipeline only consumes
// the resulting element stream.
package partition

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// Partitioner turns raw file bytes into an ordered element sequence.
type Partitioner interface {
	Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error)
}

// Func adapts a plain function to the Partitioner interface.
type Func func(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error)

func (f Func) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	return f(ctx, content, filename, opts)
}

// Registry maps file extensions to an ordered partitioner chain: the first
// entry is the primary strategy, later entries are degraded fallbacks tried
// in turn when the primary fails.
type Registry struct {
	chains map[string][]Partitioner
	ocr    Partitioner
	logger logger.Logger
}

// NewRegistry wires the default chains. ocr may be nil when no OCR backend
// is configured; image files and the ocr_only strategy then report
// ErrUnsupportedFileType.
func NewRegistry(log logger.Logger, ocr Partitioner, chains map[string][]Partitioner) *Registry {
	return &Registry{
		chains: chains,
		ocr:    ocr,
		logger: log,
	}
}

// Chain resolves the partitioner sequence for one file. The ocr_only
// strategy routes every supported format through the OCR backend.
func (r *Registry) Chain(filename string, strategy models.PartitionStrategy) ([]Partitioner, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if strategy == models.StrategyOCROnly {
		if r.ocr == nil {
			return nil, fmt.Errorf("%w: ocr_only strategy requested but no OCR backend is configured", models.ErrUnsupportedFileType)
		}
		return []Partitioner{r.ocr}, nil
	}

	if chain, ok := r.chains[ext]; ok {
		return chain, nil
	}

	// Images are only readable through OCR.
	if isImageExt(ext) && r.ocr != nil {
		return []Partitioner{r.ocr}, nil
	}

	return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, ext)
}

// Supported lists the extensions the registry can dispatch.
func (r *Registry) Supported() []string {
	exts := make([]string, 0, len(r.chains)+4)
	for ext := range r.chains {
		exts = append(exts, ext)
	}
	if r.ocr != nil {
		exts = append(exts, ".png", ".jpg", ".jpeg", ".tiff")
	}
	return exts
}

func isImageExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".tiff":
		return true
	default:
		return false
	}
}
