package models

// schemaPresets are ready-made field lists for common downstream targets,
// selectable by name instead of sending a full schema with every request.
var schemaPresets = map[string][]SchemaField{
	"content_index": {
		{FieldName: "content", FieldType: FieldExtractedText},
		{FieldName: "kind", FieldType: FieldElementType},
		{FieldName: "page", FieldType: FieldPageNumber},
		{FieldName: "words", FieldType: FieldWordCount},
	},
	"layout": {
		{FieldName: "content", FieldType: FieldExtractedText},
		{FieldName: "kind", FieldType: FieldElementType},
		{FieldName: "page", FieldType: FieldPageNumber},
		{FieldName: "position", FieldType: FieldCoordinates},
	},
	"catalog": {
		{FieldName: "source", FieldType: FieldFilename},
		{FieldName: "content", FieldType: FieldExtractedText},
		{FieldName: "length", FieldType: FieldTextLength},
		{FieldName: "parent", FieldType: FieldParentID},
	},
}

// SchemaPreset looks up a named preset. The returned slice is a copy.
func SchemaPreset(name string) ([]SchemaField, bool) {
	fields, ok := schemaPresets[name]
	if !ok {
		return nil, false
	}
	out := make([]SchemaField, len(fields))
	copy(out, fields)
	return out, true
}

// SchemaPresetNames lists the available presets.
func SchemaPresetNames() []string {
	names := make([]string, 0, len(schemaPresets))
	for name := range schemaPresets {
		names = append(names, name)
	}
	return names
}
