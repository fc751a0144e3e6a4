package pdftext

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/partition"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// Fallback is the degraded PDF path used when layout-aware extraction
// fails: plain text per page, split into paragraphs, with short uppercase
// paragraphs classified as titles and everything else as narrative text.
type Fallback struct {
	logger logger.Logger
}

func NewFallback(log logger.Logger) *Fallback {
	return &Fallback{logger: log}
}

func (f *Fallback) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	reader := bytes.NewReader(content)
	doc, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var elements []models.Element
	numPages := doc.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			f.logger.Warn("Skipping unreadable page",
				logger.String("filename", filename),
				logger.Int("page", pageNum),
				logger.Error(err),
			)
			continue
		}

		for _, para := range partition.SplitParagraphs(text) {
			elements = append(elements, models.Element{
				ID:   uuid.New().String(),
				Type: paragraphType(para),
				Text: para,
				Metadata: models.ElementMetadata{
					PageNumber: models.PageNumberOf(pageNum),
					Filename:   filename,
				},
			})
		}
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", filename)
	}
	return elements, nil
}

func paragraphType(para string) models.ElementType {
	if t := partition.ClassifyParagraph(para); t == models.TypeTitle {
		return models.TypeTitle
	}
	return models.TypeNarrativeText
}
