package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

func textElement(text string) models.Element {
	return models.Element{ID: "e1", Type: models.TypeNarrativeText, Text: text}
}

func TestExtraWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello   world", "hello world"},
		{"  leading and trailing  ", "leading and trailing"},
		{"line\none\n\nline two", "line one line two"},
		{"tabs\t\tcollapse", "tabs collapse"},
		{"non breaking", "non breaking"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtraWhitespace(tt.in))
	}
}

func TestNonASCII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"café", "caf"},
		{"plain ascii", "plain ascii"},
		{"数据 data", " data"},
		{"em—dash", "emdash"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NonASCII(tt.in))
	}
}

func TestBullets(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"• first point", "first point"},
		{"- second point", "second point"},
		{"* third point", "third point"},
		{"◦ nested point", "nested point"},
		{"no bullet here", "no bullet here"},
		// A marker glued to text is not a bullet.
		{"-inline-hyphen", "-inline-hyphen"},
		{"*emphasis*", "*emphasis*"},
		// Stacked markers are consumed in a single pass.
		{"• • double", "double"},
		{"- - - deep", "deep"},
		{"•", ""},
		{"- -", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Bullets(tt.in))
	}
}

func TestApplyMinTextLength(t *testing.T) {
	opts := Options{MinTextLength: 5}

	in := []models.Element{textElement("hi"), textElement("hello world")}
	out := Apply(in, opts)

	assert.Len(t, out, 1)
	assert.Equal(t, "hello world", out[0].Text)
}

func TestApplyDropsWhenCleaningShrinksBelowMinimum(t *testing.T) {
	// Cleaning runs before the length check, so an element can be dropped
	// because cleaning shrank it.
	opts := Options{StripNonASCII: true, MinTextLength: 4}

	out := Apply([]models.Element{textElement("日本語x")}, opts)
	assert.Empty(t, out)
}

func TestApplySkipsNonTextElements(t *testing.T) {
	in := []models.Element{
		{ID: "img", Type: models.TypeImage, Text: "   raw   alt   "},
		textElement("  body   text "),
	}

	out := Apply(in, Options{StripExtraWhitespace: true})

	assert.Len(t, out, 2)
	assert.Equal(t, "   raw   alt   ", out[0].Text)
	assert.Equal(t, "body text", out[1].Text)
}

func TestApplyIsIdempotent(t *testing.T) {
	opts := Options{
		StripExtraWhitespace: true,
		StripNonASCII:        true,
		StripBullets:         true,
		MinTextLength:        3,
	}

	in := []models.Element{
		textElement("•  première   ligne "),
		textElement("  second \n\n line  "),
		textElement("- - stacked item"),
		textElement("third"),
	}

	once := Apply(in, opts)
	twice := Apply(once, opts)

	assert.Equal(t, once, twice)
	assert.Equal(t, "stacked item", once[2].Text)
}

func TestApplyPreservesOrder(t *testing.T) {
	in := []models.Element{
		{ID: "a", Type: models.TypeTitle, Text: "Heading"},
		{ID: "b", Type: models.TypeNarrativeText, Text: "Body"},
		{ID: "c", Type: models.TypeListItem, Text: "Item"},
	}

	out := Apply(in, Options{StripExtraWhitespace: true})

	ids := []string{out[0].ID, out[1].ID, out[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
