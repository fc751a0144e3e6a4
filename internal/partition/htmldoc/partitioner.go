// Package htmldoc partitions HTML documents into typed elements using CSS
// traversal in document order.
package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// contentSelector enumerates the node kinds that map to elements. Matches
// are visited in document order.
const contentSelector = "h1, h2, h3, h4, h5, h6, p, li, table, img, header, footer, blockquote, pre"

type Partitioner struct{}

func New() *Partitioner {
	return &Partitioner{}
}

func (p *Partitioner) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var elements []models.Element
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		// Tables contain p/li descendants of their own; skip nodes nested
		// inside a table so each table maps to exactly one element.
		if s.ParentsFiltered("table").Length() > 0 {
			return
		}

		el, ok := elementFor(s, filename)
		if !ok {
			return
		}
		elements = append(elements, el)
	})
	return elements, nil
}

func elementFor(s *goquery.Selection, filename string) (models.Element, bool) {
	tag := goquery.NodeName(s)
	text := normalizeSpace(s.Text())

	var t models.ElementType
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		t = models.TypeTitle
	case "li":
		t = models.TypeListItem
	case "table":
		t = models.TypeTable
		text = tableText(s)
	case "img":
		alt, _ := s.Attr("alt")
		return models.Element{
			ID:       uuid.New().String(),
			Type:     models.TypeImage,
			Text:     normalizeSpace(alt),
			Metadata: models.ElementMetadata{Filename: filename},
		}, true
	case "header":
		t = models.TypeHeader
	case "footer":
		t = models.TypeFooter
	default:
		t = models.TypeNarrativeText
	}

	if text == "" {
		return models.Element{}, false
	}
	return models.Element{
		ID:       uuid.New().String(),
		Type:     t,
		Text:     text,
		Metadata: models.ElementMetadata{Filename: filename},
	}, true
}

// tableText flattens a table row by row, cells joined by tabs.
func tableText(table *goquery.Selection) string {
	var rows []string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, "\t"))
		}
	})
	return strings.Join(rows, "\n")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
