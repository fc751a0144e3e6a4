package models

// ElementType classifies one unit of extracted document content.
type ElementType string

const (
	TypeTitle         ElementType = "Title"
	TypeNarrativeText ElementType = "NarrativeText"
	TypeText          ElementType = "Text"
	TypeListItem      ElementType = "ListItem"
	TypeTable         ElementType = "Table"
	TypeImage         ElementType = "Image"
	TypeHeader        ElementType = "Header"
	TypeFooter        ElementType = "Footer"
	TypePageBreak     ElementType = "PageBreak"
	// TypeComposite is minted by the chunking stage when adjacent source
	// elements are merged into one chunk.
	TypeComposite ElementType = "CompositeElement"
)

// Coordinates describes the position of an element on its source page.
type Coordinates struct {
	Points       [][2]float64 `json:"points,omitempty"`
	System       string       `json:"system,omitempty"`
	LayoutWidth  float64      `json:"layout_width,omitempty"`
	LayoutHeight float64      `json:"layout_height,omitempty"`
}

// ElementMetadata carries positional and provenance information.
// OrigElementIDs is populated only on composite elements and links a chunk
// back to the ids of the elements it was merged from.
type ElementMetadata struct {
	PageNumber     *int         `json:"page_number,omitempty"`
	Filename       string       `json:"filename,omitempty"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	ParentID       string       `json:"parent_id,omitempty"`
	OrigElementIDs []string     `json:"orig_element_ids,omitempty"`
}

// Element is one atomic unit of extracted content. The id stays stable
// through cleaning; chunking discards source elements and mints new ids for
// the composites it produces.
type Element struct {
	ID       string          `json:"element_id"`
	Type     ElementType     `json:"type"`
	Text     string          `json:"text"`
	Metadata ElementMetadata `json:"metadata"`
}

// HasText reports whether the element carries textual content at all.
// Images and page breaks never do and pass through cleaning untouched.
func (e *Element) HasText() bool {
	switch e.Type {
	case TypeImage, TypePageBreak:
		return false
	default:
		return true
	}
}

// PageNumberOf returns the page number or nil when unknown.
func PageNumberOf(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// CountElementTypes builds a histogram of element type occurrences across
// the whole element set.
func CountElementTypes(elements []Element) map[string]int {
	counts := make(map[string]int, 8)
	for i := range elements {
		counts[string(elements[i].Type)]++
	}
	return counts
}
