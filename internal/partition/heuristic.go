package partition

import (
	"strings"
	"unicode"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// maxTitleLength bounds how long a paragraph can be and still classify as a
// title in degraded extraction modes.
const maxTitleLength = 100

// ClassifyParagraph assigns an element type to a bare text paragraph when no
// layout information is available: bullet-led paragraphs become list items,
// short uppercase paragraphs become titles, everything else is narrative.
func ClassifyParagraph(text string) models.ElementType {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.TypeText
	}
	if startsWithBullet(trimmed) {
		return models.TypeListItem
	}
	if len(trimmed) < maxTitleLength && isUpper(trimmed) {
		return models.TypeTitle
	}
	return models.TypeNarrativeText
}

// SplitParagraphs splits page text on blank lines, trimming each paragraph
// and dropping empty ones.
func SplitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

func startsWithBullet(s string) bool {
	r := []rune(s)[0]
	switch r {
	case '•', '●', '◦', '∙', '‣', '-', '*':
		return true
	default:
		return false
	}
}

// isUpper reports whether the string contains at least one letter and no
// lowercase letters.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
