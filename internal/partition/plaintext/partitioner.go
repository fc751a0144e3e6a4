// Package plaintext partitions .txt files: paragraphs split on blank lines
// and classified heuristically.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/partition"
)

type Partitioner struct{}

func New() *Partitioner {
	return &Partitioner{}
}

func (p *Partitioner) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text", filename)
	}

	var elements []models.Element
	for _, para := range partition.SplitParagraphs(string(content)) {
		elements = append(elements, models.Element{
			ID:   uuid.New().String(),
			Type: partition.ClassifyParagraph(para),
			Text: para,
			Metadata: models.ElementMetadata{
				Filename: filename,
			},
		})
	}
	return elements, nil
}
