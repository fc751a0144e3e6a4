package models

import "time"

const SchemaVersion = "2.0"

// OutputMetadata summarizes one processing run.
type OutputMetadata struct {
	TotalElements       int               `json:"total_elements"`
	ElementTypes        map[string]int    `json:"element_types"`
	SchemaVersion       string            `json:"schema_version"`
	ProcessingTimestamp time.Time         `json:"processing_timestamp"`
	Filename            string            `json:"filename"`
	Options             ProcessingOptions `json:"processing_options"`
}

// FieldSpec echoes a schema field definition in the envelope.
type FieldSpec struct {
	Type        FieldType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

// Record is one per-element output row: the four fixed keys (element_id,
// type, text, metadata) plus one key per schema field.
type Record map[string]any

// StructuredOutput is the pipeline's final envelope. When schema fields were
// supplied, Content holds the mapped records; otherwise Elements holds the
// standard serialization of every element.
type StructuredOutput struct {
	Metadata OutputMetadata       `json:"metadata"`
	Schema   map[string]FieldSpec `json:"schema,omitempty"`
	Content  []Record             `json:"content,omitempty"`
	Elements []Element            `json:"elements,omitempty"`
	// StructuredData carries the optional LLM extraction result.
	StructuredData map[string]any `json:"structured_data,omitempty"`
}
