package office

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

func buildArchive(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range parts {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Project Plan</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>Kickoff happens</w:t><w:tab/><w:t>next week.</w:t></w:r>
    </w:p>
    <w:p>
      <w:pPr><w:numPr><w:ilvl w:val="0"/></w:numPr></w:pPr>
      <w:r><w:t>hire the team</w:t></w:r>
    </w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Task</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Owner</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>Design</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Ana</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
    <w:p>
      <w:r><w:lastRenderedPageBreak/><w:t>Second page text.</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

func TestDocxPartition(t *testing.T) {
	content := buildArchive(t, map[string]string{
		"word/document.xml": docxBody,
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
	})

	elements, err := NewDocx().Partition(context.Background(), content, "plan.docx", models.DefaultProcessingOptions())
	require.NoError(t, err)
	require.Len(t, elements, 5)

	assert.Equal(t, models.TypeTitle, elements[0].Type)
	assert.Equal(t, "Project Plan", elements[0].Text)

	assert.Equal(t, models.TypeNarrativeText, elements[1].Type)
	assert.Equal(t, "Kickoff happens next week.", elements[1].Text)

	assert.Equal(t, models.TypeListItem, elements[2].Type)
	assert.Equal(t, "hire the team", elements[2].Text)

	assert.Equal(t, models.TypeTable, elements[3].Type)
	assert.Equal(t, "Task\tOwner\nDesign\tAna", elements[3].Text)

	assert.Equal(t, "Second page text.", elements[4].Text)
	require.NotNil(t, elements[4].Metadata.PageNumber)
	assert.Equal(t, 2, *elements[4].Metadata.PageNumber)

	require.NotNil(t, elements[0].Metadata.PageNumber)
	assert.Equal(t, 1, *elements[0].Metadata.PageNumber)
}

func TestDocxMissingDocumentPart(t *testing.T) {
	content := buildArchive(t, map[string]string{"other.xml": "<x/>"})

	_, err := NewDocx().Partition(context.Background(), content, "bad.docx", models.DefaultProcessingOptions())
	assert.Error(t, err)
}

func TestDocxNotAnArchive(t *testing.T) {
	_, err := NewDocx().Partition(context.Background(), []byte("plain bytes"), "bad.docx", models.DefaultProcessingOptions())
	assert.Error(t, err)
}

func slideXML(title, body string) string {
	return `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>
    <p:sp>
      <p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
      <p:txBody><a:p><a:r><a:t>` + title + `</a:t></a:r></a:p></p:txBody>
    </p:sp>
    <p:sp>
      <p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>
      <p:txBody><a:p><a:r><a:t>` + body + `</a:t></a:r></a:p></p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:sld>`
}

func TestPptxPartition(t *testing.T) {
	content := buildArchive(t, map[string]string{
		"ppt/slides/slide2.xml": slideXML("Second Slide", "more detail"),
		"ppt/slides/slide1.xml": slideXML("First Slide", "the agenda"),
		"ppt/presentation.xml":  "<p/>",
	})

	elements, err := NewPptx().Partition(context.Background(), content, "deck.pptx", models.DefaultProcessingOptions())
	require.NoError(t, err)
	require.Len(t, elements, 4)

	// Slides come back in numeric order regardless of archive order.
	assert.Equal(t, models.TypeTitle, elements[0].Type)
	assert.Equal(t, "First Slide", elements[0].Text)
	require.NotNil(t, elements[0].Metadata.PageNumber)
	assert.Equal(t, 1, *elements[0].Metadata.PageNumber)

	assert.Equal(t, models.TypeNarrativeText, elements[1].Type)
	assert.Equal(t, "the agenda", elements[1].Text)

	assert.Equal(t, "Second Slide", elements[2].Text)
	require.NotNil(t, elements[2].Metadata.PageNumber)
	assert.Equal(t, 2, *elements[2].Metadata.PageNumber)
}

func TestPptxNoSlides(t *testing.T) {
	content := buildArchive(t, map[string]string{"ppt/presentation.xml": "<p/>"})

	_, err := NewPptx().Partition(context.Background(), content, "empty.pptx", models.DefaultProcessingOptions())
	assert.Error(t, err)
}
