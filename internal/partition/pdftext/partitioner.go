// Package pdftext extracts elements from PDF files without OCR. The primary
// partitioner walks the embedded text objects with font and position
// information; Fallback degrades to plain-text-per-page extraction.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// maxPageWorkers bounds parallel page extraction.
const maxPageWorkers = 4

// titleSizeRatio marks a line as a heading when its font size exceeds the
// page's dominant size by this factor.
const titleSizeRatio = 1.2

type Partitioner struct {
	logger logger.Logger
}

func New(log logger.Logger) *Partitioner {
	return &Partitioner{logger: log}
}

// Partition extracts typed elements page by page. Pages are processed in
// parallel but the returned sequence preserves document order.
func (p *Partitioner) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	reader := bytes.NewReader(content)
	doc, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := doc.NumPage()
	pages := make([][]models.Element, numPages)

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxPageWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			page := doc.Page(pageNum)
			if page.V.IsNull() {
				return nil
			}
			elements, err := p.partitionPage(page, pageNum, filename)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageNum, err)
			}
			pages[pageNum-1] = elements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var elements []models.Element
	for i, pageElements := range pages {
		elements = append(elements, pageElements...)
		if opts.IncludePageBreaks && i < numPages-1 && len(pageElements) > 0 {
			elements = append(elements, models.Element{
				ID:   uuid.New().String(),
				Type: models.TypePageBreak,
				Metadata: models.ElementMetadata{
					PageNumber: models.PageNumberOf(i + 1),
					Filename:   filename,
				},
			})
		}
	}
	return elements, nil
}

// line is a horizontal run of text objects sharing a baseline.
type line struct {
	text     string
	fontSize float64
	x, y     float64
}

func (p *Partitioner) partitionPage(page pdf.Page, pageNum int, filename string) ([]models.Element, error) {
	texts := page.Content().Text
	if len(texts) == 0 {
		return nil, nil
	}

	lines := assembleLines(texts)
	if len(lines) == 0 {
		return nil, nil
	}
	bodySize := dominantFontSize(lines)

	var (
		elements []models.Element
		para     []line
	)
	flush := func(t models.ElementType) {
		if len(para) == 0 {
			return
		}
		elements = append(elements, lineElement(para, t, pageNum, filename))
		para = para[:0]
	}

	prevY := lines[0].y
	for _, ln := range lines {
		// A vertical gap larger than the body leading ends the paragraph.
		if len(para) > 0 && prevY-ln.y > bodySize*1.8 {
			flush(models.TypeNarrativeText)
		}
		prevY = ln.y

		if ln.fontSize > bodySize*titleSizeRatio {
			flush(models.TypeNarrativeText)
			para = append(para, ln)
			flush(models.TypeTitle)
			continue
		}
		para = append(para, ln)
	}
	flush(models.TypeNarrativeText)

	return elements, nil
}

func lineElement(lines []line, t models.ElementType, pageNum int, filename string) models.Element {
	var buf bytes.Buffer
	for i, ln := range lines {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(ln.text)
	}
	return models.Element{
		ID:   uuid.New().String(),
		Type: t,
		Text: buf.String(),
		Metadata: models.ElementMetadata{
			PageNumber: models.PageNumberOf(pageNum),
			Filename:   filename,
			Coordinates: &models.Coordinates{
				Points: [][2]float64{{lines[0].x, lines[0].y}},
				System: "PixelSpace",
			},
		},
	}
}

// assembleLines groups text objects by baseline, sorted top to bottom and
// left to right within a line.
func assembleLines(texts []pdf.Text) []line {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	for _, t := range sorted {
		if t.S == "" {
			continue
		}
		if n := len(lines); n > 0 && lines[n-1].y == t.Y {
			lines[n-1].text += t.S
			if t.FontSize > lines[n-1].fontSize {
				lines[n-1].fontSize = t.FontSize
			}
			continue
		}
		lines = append(lines, line{text: t.S, fontSize: t.FontSize, x: t.X, y: t.Y})
	}

	// Drop whitespace-only lines.
	out := lines[:0]
	for _, ln := range lines {
		if strings.TrimSpace(ln.text) != "" {
			out = append(out, ln)
		}
	}
	return out
}

// dominantFontSize returns the most frequent line font size, which stands in
// for the body text size.
func dominantFontSize(lines []line) float64 {
	counts := make(map[float64]int, 8)
	for _, ln := range lines {
		counts[ln.fontSize]++
	}
	var best float64
	bestCount := -1
	for size, n := range counts {
		if n > bestCount {
			best, bestCount = size, n
		}
	}
	if best == 0 {
		best = 12
	}
	return best
}
