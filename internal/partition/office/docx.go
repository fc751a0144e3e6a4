package office

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// Docx partitions Word documents by streaming word/document.xml.
type Docx struct{}

func NewDocx() *Docx {
	return &Docx{}
}

func (d *Docx) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	archive, err := openArchive(content)
	if err != nil {
		return nil, err
	}
	body, err := readPart(archive, "word/document.xml")
	if err != nil {
		return nil, err
	}

	p := docxParser{filename: filename, page: 1}
	if err := p.run(bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("failed to parse document.xml: %w", err)
	}
	return p.elements, nil
}

type docxParser struct {
	filename string
	elements []models.Element
	page     int

	para     strings.Builder
	paraType models.ElementType
	inPara   bool

	tableDepth int
	tableRows  []string
	tableCells []string
	cell       strings.Builder
}

func (p *docxParser) run(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.startElement(t)
		case xml.EndElement:
			p.endElement(t)
		case xml.CharData:
			if p.tableDepth > 0 {
				p.cell.Write(t)
			} else if p.inPara {
				p.para.Write(t)
			}
		}
	}
}

func (p *docxParser) startElement(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		p.tableDepth++
	case "tr":
		if p.tableDepth == 1 {
			p.tableCells = p.tableCells[:0]
		}
	case "tc":
		if p.tableDepth == 1 {
			p.cell.Reset()
		}
	case "p":
		if p.tableDepth == 0 {
			p.inPara = true
			p.para.Reset()
			p.paraType = models.TypeNarrativeText
		}
	case "pStyle":
		if style := attrValue(t, "val"); isHeadingStyle(style) {
			p.paraType = models.TypeTitle
		}
	case "numPr":
		if p.paraType != models.TypeTitle {
			p.paraType = models.TypeListItem
		}
	case "tab", "br":
		if p.inPara {
			p.para.WriteByte(' ')
		}
	case "lastRenderedPageBreak":
		p.page++
	}
}

func (p *docxParser) endElement(t xml.EndElement) {
	switch t.Name.Local {
	case "tbl":
		p.tableDepth--
		if p.tableDepth == 0 {
			p.flushTable()
		}
	case "tr":
		if p.tableDepth == 1 && len(p.tableCells) > 0 {
			p.tableRows = append(p.tableRows, strings.Join(p.tableCells, "\t"))
		}
	case "tc":
		if p.tableDepth == 1 {
			p.tableCells = append(p.tableCells, strings.TrimSpace(p.cell.String()))
		}
	case "p":
		if p.tableDepth == 0 && p.inPara {
			p.inPara = false
			p.flushParagraph()
		}
	}
}

func (p *docxParser) flushParagraph() {
	text := strings.TrimSpace(p.para.String())
	if text == "" {
		return
	}
	p.elements = append(p.elements, models.Element{
		ID:   uuid.New().String(),
		Type: p.paraType,
		Text: text,
		Metadata: models.ElementMetadata{
			PageNumber: models.PageNumberOf(p.page),
			Filename:   p.filename,
		},
	})
}

func (p *docxParser) flushTable() {
	if len(p.tableRows) == 0 {
		return
	}
	p.elements = append(p.elements, models.Element{
		ID:   uuid.New().String(),
		Type: models.TypeTable,
		Text: strings.Join(p.tableRows, "\n"),
		Metadata: models.ElementMetadata{
			PageNumber: models.PageNumberOf(p.page),
			Filename:   p.filename,
		},
	})
	p.tableRows = nil
}

func isHeadingStyle(style string) bool {
	return style == "Title" || strings.HasPrefix(style, "Heading")
}

func attrValue(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
