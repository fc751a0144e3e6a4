// Package sheet partitions XLSX workbooks: one Title element per sheet name
// followed by one Table element holding the sheet's cell grid.
package sheet

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

type Partitioner struct{}

func New() *Partitioner {
	return &Partitioner{}
}

func (p *Partitioner) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	var elements []models.Element
	for idx, sheetName := range wb.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := wb.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
		}

		page := models.PageNumberOf(idx + 1)
		elements = append(elements, models.Element{
			ID:   uuid.New().String(),
			Type: models.TypeTitle,
			Text: sheetName,
			Metadata: models.ElementMetadata{
				PageNumber: page,
				Filename:   filename,
			},
		})

		if grid := gridText(rows); grid != "" {
			elements = append(elements, models.Element{
				ID:   uuid.New().String(),
				Type: models.TypeTable,
				Text: grid,
				Metadata: models.ElementMetadata{
					PageNumber: page,
					Filename:   filename,
				},
			})
		}
	}
	return elements, nil
}

func gridText(rows [][]string) string {
	var lines []string
	for _, row := range rows {
		line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
