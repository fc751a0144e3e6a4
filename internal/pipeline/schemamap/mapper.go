// Package schemamap projects the final element sequence into the
// user-defined output record shape.
package schemamap

import (
	"time"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// Apply builds the structured output envelope. With schema fields present,
// each element becomes one record carrying the four fixed keys plus one key
// per field; without fields the standard envelope serializes the elements
// natively. The element-type histogram always spans the whole element set.
func Apply(elements []models.Element, fields []models.SchemaField, filename string, opts models.ProcessingOptions) *models.StructuredOutput {
	out := &models.StructuredOutput{
		Metadata: models.OutputMetadata{
			TotalElements:       len(elements),
			ElementTypes:        models.CountElementTypes(elements),
			SchemaVersion:       models.SchemaVersion,
			ProcessingTimestamp: time.Now().UTC(),
			Filename:            filename,
			Options:             opts,
		},
	}

	if len(fields) == 0 {
		out.Elements = elements
		return out
	}

	out.Schema = make(map[string]models.FieldSpec, len(fields))
	for _, f := range fields {
		out.Schema[f.FieldName] = models.FieldSpec{
			Type:        f.FieldType,
			Description: f.Description,
			Required:    f.Required,
		}
	}

	out.Content = make([]models.Record, 0, len(elements))
	for i := range elements {
		el := &elements[i]
		record := models.Record{
			"element_id": el.ID,
			"type":       string(el.Type),
			"text":       el.Text,
			"metadata":   el.Metadata,
		}
		for j := range fields {
			record[fields[j].FieldName] = fields[j].Resolve(el)
		}
		out.Content = append(out.Content, record)
	}
	return out
}
