package ocr

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/google/uuid"

	cfg "github.com/feichai0017/ai-ready-data/config"
	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/internal/partition"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// minLineConfidence drops low-confidence OCR lines.
const minLineConfidence float32 = 80.0

// Textract partitions scanned documents through AWS Textract document
// analysis: LINE blocks become text elements, TABLE blocks become Table
// elements with their cell grid flattened.
type Textract struct {
	client *textract.Client
	logger logger.Logger
}

func NewTextract(ctx context.Context, log logger.Logger) (*Textract, error) {
	tc := cfg.GetTextractConfig()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(tc.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			tc.AccessKey,
			tc.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &Textract{
		client: textract.NewFromConfig(awsCfg),
		logger: log,
	}, nil
}

func (t *Textract) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	input := &textract.AnalyzeDocumentInput{
		Document:     &types.Document{Bytes: content},
		FeatureTypes: []types.FeatureType{types.FeatureTypeTables},
	}

	result, err := t.client.AnalyzeDocument(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("textract analysis failed: %w", err)
	}

	byID := make(map[string]types.Block, len(result.Blocks))
	for _, b := range result.Blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	// Cells belonging to a table are emitted through the table element, not
	// as standalone lines.
	inTable := make(map[string]struct{})
	for _, b := range result.Blocks {
		if b.BlockType != types.BlockTypeTable {
			continue
		}
		for _, id := range childIDs(b) {
			inTable[id] = struct{}{}
			for _, wordID := range childIDs(byID[id]) {
				inTable[wordID] = struct{}{}
			}
		}
	}

	var elements []models.Element
	for _, b := range result.Blocks {
		switch b.BlockType {
		case types.BlockTypeLine:
			if b.Text == nil || b.Confidence == nil || *b.Confidence < minLineConfidence {
				continue
			}
			if b.Id != nil {
				if _, skip := inTable[*b.Id]; skip {
					continue
				}
			}
			elements = append(elements, models.Element{
				ID:   uuid.New().String(),
				Type: partition.ClassifyParagraph(*b.Text),
				Text: *b.Text,
				Metadata: models.ElementMetadata{
					PageNumber:  blockPage(b),
					Filename:    filename,
					Coordinates: blockCoordinates(b),
				},
			})
		case types.BlockTypeTable:
			text := tableGrid(b, byID)
			if text == "" {
				continue
			}
			elements = append(elements, models.Element{
				ID:   uuid.New().String(),
				Type: models.TypeTable,
				Text: text,
				Metadata: models.ElementMetadata{
					PageNumber:  blockPage(b),
					Filename:    filename,
					Coordinates: blockCoordinates(b),
				},
			})
		}
	}
	return elements, nil
}

// tableGrid flattens a TABLE block into tab-separated rows.
func tableGrid(table types.Block, byID map[string]types.Block) string {
	var rows, cols int32
	cells := make(map[[2]int32]string)

	for _, id := range childIDs(table) {
		cell, ok := byID[id]
		if !ok || cell.BlockType != types.BlockTypeCell || cell.RowIndex == nil || cell.ColumnIndex == nil {
			continue
		}
		if *cell.RowIndex > rows {
			rows = *cell.RowIndex
		}
		if *cell.ColumnIndex > cols {
			cols = *cell.ColumnIndex
		}
		cells[[2]int32{*cell.RowIndex, *cell.ColumnIndex}] = cellText(cell, byID)
	}
	if rows == 0 || cols == 0 {
		return ""
	}

	var lines []string
	for r := int32(1); r <= rows; r++ {
		parts := make([]string, 0, cols)
		for c := int32(1); c <= cols; c++ {
			parts = append(parts, cells[[2]int32{r, c}])
		}
		lines = append(lines, strings.TrimRight(strings.Join(parts, "\t"), "\t "))
	}
	return strings.Join(lines, "\n")
}

func cellText(cell types.Block, byID map[string]types.Block) string {
	var words []string
	for _, id := range childIDs(cell) {
		if w, ok := byID[id]; ok && w.Text != nil {
			words = append(words, *w.Text)
		}
	}
	return strings.Join(words, " ")
}

func childIDs(b types.Block) []string {
	for _, rel := range b.Relationships {
		if rel.Type == types.RelationshipTypeChild {
			return rel.Ids
		}
	}
	return nil
}

func blockPage(b types.Block) *int {
	if b.Page == nil {
		return nil
	}
	return models.PageNumberOf(int(*b.Page))
}

func blockCoordinates(b types.Block) *models.Coordinates {
	if b.Geometry == nil || b.Geometry.BoundingBox == nil {
		return nil
	}
	box := b.Geometry.BoundingBox
	left, top := float64(box.Left), float64(box.Top)
	w, h := float64(box.Width), float64(box.Height)
	return &models.Coordinates{
		Points: [][2]float64{
			{left, top},
			{left + w, top},
			{left + w, top + h},
			{left, top + h},
		},
		System: "RelativeCoordinates",
	}
}
