package office

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Pptx partitions PowerPoint decks slide by slide. Each slide maps to one
// page; title placeholders become Title elements.
type Pptx struct{}

func NewPptx() *Pptx {
	return &Pptx{}
}

func (d *Pptx) Partition(ctx context.Context, content []byte, filename string, opts models.ProcessingOptions) ([]models.Element, error) {
	archive, err := openArchive(content)
	if err != nil {
		return nil, err
	}

	slides := slideParts(archive)
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides in %s", filename)
	}

	var elements []models.Element
	for _, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := readPart(archive, s.name)
		if err != nil {
			return nil, err
		}
		p := slideParser{filename: filename, slide: s.number}
		if err := p.run(bytes.NewReader(body)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", s.name, err)
		}
		elements = append(elements, p.elements...)
	}
	return elements, nil
}

type slidePart struct {
	name   string
	number int
}

func slideParts(archive *zip.Reader) []slidePart {
	var slides []slidePart
	for _, f := range archive.File {
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slidePart{name: f.Name, number: n})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })
	return slides
}

type slideParser struct {
	filename string
	slide    int
	elements []models.Element

	para         strings.Builder
	inText       bool
	shapeIsTitle bool
}

func (p *slideParser) run(r io.Reader) error {
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
			switch t.Name.Local {
			case "sp":
				p.shapeIsTitle = false
			case "ph":
				switch attrValue(t, "type") {
				case "title", "ctrTitle", "subTitle":
					p.shapeIsTitle = true
				}
			case "p":
				p.para.Reset()
			case "t":
				p.inText = true
			case "br":
				p.para.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				p.inText = false
			case "p":
				p.flushParagraph()
			}
		case xml.CharData:
			if p.inText {
				p.para.Write(t)
			}
		}
	}
}

func (p *slideParser) flushParagraph() {
	text := strings.TrimSpace(p.para.String())
	if text == "" {
		return
	}
	t := models.TypeNarrativeText
	if p.shapeIsTitle {
		t = models.TypeTitle
	}
	p.elements = append(p.elements, models.Element{
		ID:   uuid.New().String(),
		Type: t,
		Text: text,
		Metadata: models.ElementMetadata{
			PageNumber: models.PageNumberOf(p.slide),
			Filename:   p.filename,
		},
	})
}
