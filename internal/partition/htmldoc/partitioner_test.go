package htmldoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

const samplePage = `<!DOCTYPE html>
<html><body>
<h1>Annual Report</h1>
<p>The year in   review.</p>
<ul><li>north region</li><li>south region</li></ul>
<table>
  <tr><th>Region</th><th>Sales</th></tr>
  <tr><td>North</td><td>120</td></tr>
</table>
<img src="chart.png" alt="sales chart">
<footer>page 1 of 1</footer>
</body></html>`

func TestPartitionHTML(t *testing.T) {
	elements, err := New().Partition(context.Background(), []byte(samplePage), "report.html", models.DefaultProcessingOptions())
	require.NoError(t, err)
	require.Len(t, elements, 7)

	assert.Equal(t, models.TypeTitle, elements[0].Type)
	assert.Equal(t, "Annual Report", elements[0].Text)

	assert.Equal(t, models.TypeNarrativeText, elements[1].Type)
	assert.Equal(t, "The year in review.", elements[1].Text)

	assert.Equal(t, models.TypeListItem, elements[2].Type)
	assert.Equal(t, "north region", elements[2].Text)
	assert.Equal(t, models.TypeListItem, elements[3].Type)

	assert.Equal(t, models.TypeTable, elements[4].Type)
	assert.Equal(t, "Region\tSales\nNorth\t120", elements[4].Text)

	assert.Equal(t, models.TypeImage, elements[5].Type)
	assert.Equal(t, "sales chart", elements[5].Text)

	assert.Equal(t, models.TypeFooter, elements[6].Type)
}

func TestPartitionHTMLSkipsEmptyNodes(t *testing.T) {
	elements, err := New().Partition(context.Background(), []byte("<p></p><p>kept</p>"), "x.html", models.DefaultProcessingOptions())
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "kept", elements[0].Text)
}

func TestPartitionHTMLTableCellsNotDuplicated(t *testing.T) {
	// Paragraphs inside a table must not surface as standalone elements.
	page := `<table><tr><td><p>cell text</p></td></tr></table>`

	elements, err := New().Partition(context.Background(), []byte(page), "t.html", models.DefaultProcessingOptions())
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, models.TypeTable, elements[0].Type)
	assert.Equal(t, "cell text", elements[0].Text)
}
