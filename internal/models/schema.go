package models

import (
	"fmt"
	"strings"
)

// FieldType enumerates the value a schema field resolves to per element.
type FieldType string

const (
	FieldString        FieldType = "string"
	FieldExtractedText FieldType = "extracted_text"
	FieldElementType   FieldType = "element_type"
	FieldPageNumber    FieldType = "page_number"
	FieldCoordinates   FieldType = "coordinates"
	FieldTextLength    FieldType = "text_length"
	FieldWordCount     FieldType = "word_count"
	FieldParentID      FieldType = "parent_id"
	FieldFilename      FieldType = "filename"
	FieldCustom        FieldType = "custom"
)

// SchemaField is one user-defined output column. Order within the field list
// affects output column order only.
type SchemaField struct {
	FieldName   string    `json:"field_name"`
	FieldType   FieldType `json:"field_type"`
	Description string    `json:"description"`
	// Required is captured for schema display but deliberately not enforced
	// at mapping time; missing values never fail a request.
	Required bool `json:"required"`
}

// Resolve computes the field's value for one element. Resolution is a pure
// function of (element, field type).
func (f *SchemaField) Resolve(e *Element) any {
	switch f.FieldType {
	case FieldExtractedText:
		return e.Text
	case FieldElementType:
		return string(e.Type)
	case FieldPageNumber:
		if e.Metadata.PageNumber == nil {
			return nil
		}
		return *e.Metadata.PageNumber
	case FieldCoordinates:
		if e.Metadata.Coordinates == nil {
			return nil
		}
		return e.Metadata.Coordinates
	case FieldTextLength:
		return len(e.Text)
	case FieldWordCount:
		return len(strings.Fields(e.Text))
	case FieldParentID:
		if e.Metadata.ParentID == "" {
			return nil
		}
		return e.Metadata.ParentID
	case FieldFilename:
		if e.Metadata.Filename == "" {
			return nil
		}
		return e.Metadata.Filename
	case FieldCustom:
		// Reserved for caller-side post-processing; only the description is
		// echoed as a placeholder.
		return fmt.Sprintf("Custom field: %s", f.Description)
	case FieldString:
		// Caller-filled elsewhere; unresolved values emit an empty string.
		return ""
	default:
		return nil
	}
}

// ValidateSchemaFields rejects empty or duplicate field names. Fields with an
// unknown type are rejected as well.
func ValidateSchemaFields(fields []SchemaField) error {
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		name := fields[i].FieldName
		if name == "" {
			return fmt.Errorf("%w: schema field %d has no name", ErrConfiguration, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate schema field %q", ErrConfiguration, name)
		}
		seen[name] = struct{}{}

		switch fields[i].FieldType {
		case FieldString, FieldExtractedText, FieldElementType, FieldPageNumber,
			FieldCoordinates, FieldTextLength, FieldWordCount, FieldParentID,
			FieldFilename, FieldCustom:
		default:
			return fmt.Errorf("%w: unknown field type %q for %q", ErrConfiguration, fields[i].FieldType, name)
		}
	}
	return nil
}
