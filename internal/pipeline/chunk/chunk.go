// Package chunk groups cleaned elements into larger semantic units. Source
// elements are consumed: every produced chunk is a freshly minted composite
// element that keeps a back-reference to the ids it was built from.
package chunk

import (
	"strings"

	"github.com/google/uuid"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// Separator joins the texts of merged elements inside one chunk.
const Separator = "\n\n"

// Apply dispatches on the configured chunking strategy. "none" is identity.
// Chunking never reorders elements and an empty input yields empty output.
func Apply(elements []models.Element, opts models.ProcessingOptions) []models.Element {
	switch opts.ChunkingStrategy {
	case models.ChunkByTitle:
		return ByTitle(elements, opts.MaxChunkSize, opts.NewAfterChars, opts.CombineUnderChars)
	case models.ChunkBasic:
		return Basic(elements, opts.MaxChunkSize)
	default:
		return elements
	}
}

// ByTitle walks elements in order and starts a new chunk at every Title
// element, whenever appending the next element would exceed maxChars, or
// once the running chunk has grown past newAfterChars. Trailing chunks
// shorter than combineUnderChars are merged back into their predecessor when
// the result still fits maxChars.
func ByTitle(elements []models.Element, maxChars, newAfterChars, combineUnderChars int) []models.Element {
	if len(elements) == 0 {
		return nil
	}

	var (
		chunks []models.Element
		b      builder
	)
	for i := range elements {
		el := &elements[i]
		if !b.empty() && (el.Type == models.TypeTitle || b.wouldOverflow(el, maxChars) || b.length() > newAfterChars) {
			chunks = append(chunks, b.finish())
		}
		b.add(el)
	}
	if !b.empty() {
		chunks = append(chunks, b.finish())
	}

	return combineTrailing(chunks, maxChars, combineUnderChars)
}

// Basic merges purely by size, ignoring Title boundaries.
func Basic(elements []models.Element, maxChars int) []models.Element {
	if len(elements) == 0 {
		return nil
	}

	var (
		chunks []models.Element
		b      builder
	)
	for i := range elements {
		el := &elements[i]
		if !b.empty() && b.wouldOverflow(el, maxChars) {
			chunks = append(chunks, b.finish())
		}
		b.add(el)
	}
	if !b.empty() {
		chunks = append(chunks, b.finish())
	}
	return chunks
}

// combineTrailing folds short chunks into the preceding one where the merge
// does not overflow maxChars.
func combineTrailing(chunks []models.Element, maxChars, combineUnderChars int) []models.Element {
	if combineUnderChars <= 0 || len(chunks) < 2 {
		return chunks
	}

	out := chunks[:1]
	for i := 1; i < len(chunks); i++ {
		cur := chunks[i]
		prev := &out[len(out)-1]
		if len(cur.Text) < combineUnderChars && mergedLen(prev.Text, cur.Text) <= maxChars {
			*prev = mergeChunks(*prev, cur)
			continue
		}
		out = append(out, cur)
	}
	return out
}

func mergedLen(a, b string) int {
	switch {
	case a == "":
		return len(b)
	case b == "":
		return len(a)
	default:
		return len(a) + len(Separator) + len(b)
	}
}

func mergeChunks(a, b models.Element) models.Element {
	text := a.Text
	if b.Text != "" {
		if text != "" {
			text += Separator
		}
		text += b.Text
	}
	merged := a
	merged.Text = text
	merged.Metadata.OrigElementIDs = append(a.Metadata.OrigElementIDs, b.Metadata.OrigElementIDs...)
	return merged
}

// builder accumulates one chunk in progress.
type builder struct {
	texts     []string
	ids       []string
	first     *models.Element
	joinedLen int
}

func (b *builder) empty() bool { return b.first == nil }

func (b *builder) length() int { return b.joinedLen }

// wouldOverflow reports whether appending el pushes the joined text past
// maxChars. A single element longer than maxChars still becomes its own
// chunk unsplit: elements are never truncated mid-text.
func (b *builder) wouldOverflow(el *models.Element, maxChars int) bool {
	if el.Text == "" {
		return false
	}
	added := len(el.Text)
	if b.joinedLen > 0 {
		added += len(Separator)
	}
	return b.joinedLen+added > maxChars
}

func (b *builder) add(el *models.Element) {
	if b.first == nil {
		b.first = el
	}
	b.ids = append(b.ids, el.ID)
	if el.Text != "" {
		if b.joinedLen > 0 {
			b.joinedLen += len(Separator)
		}
		b.joinedLen += len(el.Text)
		b.texts = append(b.texts, el.Text)
	}
}

// finish mints the composite element for the accumulated sources and resets
// the builder. Page number and filename come from the first source element.
func (b *builder) finish() models.Element {
	chunk := models.Element{
		ID:   uuid.New().String(),
		Type: models.TypeComposite,
		Text: strings.Join(b.texts, Separator),
		Metadata: models.ElementMetadata{
			PageNumber:     b.first.Metadata.PageNumber,
			Filename:       b.first.Metadata.Filename,
			OrigElementIDs: b.ids,
		},
	}
	*b = builder{}
	return chunk
}
