package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/otiai10/gosseract/v2"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/partition"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// Tesseract runs a local Tesseract install over preprocessed images. One
// page per file; paragraphs are classified heuristically.
type Tesseract struct {
	languages     []string
	preprocessors []Preprocessor
	logger        logger.Logger
}

func NewTesseract(log logger.Logger) *Tesseract {
	return &Tesseract{
		languages:     []string{"eng"},
		preprocessors: defaultPreprocessors(),
		logger:        log,
	}
}

func (t *Tesseract) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	prepared, err := prepareImage(content, t.preprocessors)
	if err != nil {
		return nil, err
	}

	// gosseract clients are not safe for concurrent reuse; one per call.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(t.languages, "+")); err != nil {
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return nil, fmt.Errorf("failed to set OCR image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR extraction failed: %w", err)
	}

	var elements []models.Element
	for _, para := range partition.SplitParagraphs(text) {
		elements = append(elements, models.Element{
			ID:   uuid.New().String(),
			Type: partition.ClassifyParagraph(para),
			Text: para,
			Metadata: models.ElementMetadata{
				PageNumber: models.PageNumberOf(1),
				Filename:   filename,
			},
		})
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("no text recognized in %s", filename)
	}
	return elements, nil
}
