package schemamap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

func sampleElements() []models.Element {
	page := 2
	return []models.Element{
		{ID: "e1", Type: models.TypeTitle, Text: "Report"},
		{
			ID:   "e2",
			Type: models.TypeNarrativeText,
			Text: "abcde",
			Metadata: models.ElementMetadata{
				PageNumber: &page,
				Filename:   "report.pdf",
				ParentID:   "e1",
			},
		},
	}
}

func TestApplyWithoutSchemaReturnsElements(t *testing.T) {
	elements := sampleElements()
	opts := models.DefaultProcessingOptions()

	out := Apply(elements, nil, "report.pdf", opts)

	assert.Equal(t, elements, out.Elements)
	assert.Nil(t, out.Content)
	assert.Nil(t, out.Schema)
	assert.Equal(t, 2, out.Metadata.TotalElements)
	assert.Equal(t, models.SchemaVersion, out.Metadata.SchemaVersion)
	assert.Equal(t, "report.pdf", out.Metadata.Filename)
	assert.WithinDuration(t, time.Now().UTC(), out.Metadata.ProcessingTimestamp, time.Minute)
}

func TestApplyWithSchemaBuildsRecords(t *testing.T) {
	elements := sampleElements()
	fields := []models.SchemaField{
		{FieldName: "content", FieldType: models.FieldExtractedText},
		{FieldName: "length", FieldType: models.FieldTextLength},
		{FieldName: "page", FieldType: models.FieldPageNumber},
		{FieldName: "note", FieldType: models.FieldCustom, Description: "summary of the section"},
	}

	out := Apply(elements, fields, "report.pdf", models.DefaultProcessingOptions())

	assert.Nil(t, out.Elements)
	require.Len(t, out.Content, 2)
	require.Len(t, out.Schema, 4)

	first := out.Content[0]
	assert.Equal(t, "e1", first["element_id"])
	assert.Equal(t, "Title", first["type"])
	assert.Equal(t, "Report", first["content"])
	assert.Equal(t, 6, first["length"])
	assert.Nil(t, first["page"])
	assert.Equal(t, "Custom field: summary of the section", first["note"])

	second := out.Content[1]
	assert.Equal(t, "abcde", second["content"])
	assert.Equal(t, 5, second["length"])
	assert.Equal(t, 2, second["page"])
}

func TestApplyHistogramCoversAllElements(t *testing.T) {
	elements := []models.Element{
		{ID: "a", Type: models.TypeTitle, Text: "A"},
		{ID: "b", Type: models.TypeNarrativeText, Text: "B"},
		{ID: "c", Type: models.TypeNarrativeText, Text: "C"},
	}

	out := Apply(elements, nil, "x.txt", models.DefaultProcessingOptions())

	assert.Equal(t, map[string]int{
		"Title":         1,
		"NarrativeText": 2,
	}, out.Metadata.ElementTypes)
}

func TestApplyEmptyInput(t *testing.T) {
	out := Apply(nil, nil, "empty.txt", models.DefaultProcessingOptions())

	assert.Equal(t, 0, out.Metadata.TotalElements)
	assert.Empty(t, out.Elements)
	assert.Empty(t, out.Content)
}

func TestValidateSchemaFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  []models.SchemaField
		wantErr bool
	}{
		{"valid", []models.SchemaField{{FieldName: "a", FieldType: models.FieldExtractedText}}, false},
		{"empty name", []models.SchemaField{{FieldName: "", FieldType: models.FieldString}}, true},
		{"duplicate", []models.SchemaField{
			{FieldName: "a", FieldType: models.FieldString},
			{FieldName: "a", FieldType: models.FieldTextLength},
		}, true},
		{"unknown type", []models.SchemaField{{FieldName: "a", FieldType: "bogus"}}, true},
		{"none", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := models.ValidateSchemaFields(tt.fields)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
