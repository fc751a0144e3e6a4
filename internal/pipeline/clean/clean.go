// Package clean normalizes element text according to the per-request
// cleaning flags. Transforms are pure, idempotent and applied in a fixed
// order: non-ASCII, bullets, whitespace. Whitespace runs last so that the
// gaps left by the other transforms are collapsed in the same pass.
package clean

import (
	"strings"
	"unicode"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// Leading bullet markers stripped by the bullets transform.
var bulletRunes = map[rune]struct{}{
	'•': {},
	'‣': {},
	'⁃': {},
	'⁌': {},
	'⁍': {},
	'∙': {},
	'▪': {},
	'●': {},
	'◦': {},
	'*': {},
	'-': {},
}

// Options are the cleaning stage inputs.
type Options struct {
	StripExtraWhitespace bool
	StripNonASCII        bool
	StripBullets         bool
	MinTextLength        int
}

// OptionsFrom extracts the cleaning subset of the processing options.
func OptionsFrom(opts models.ProcessingOptions) Options {
	return Options{
		StripExtraWhitespace: opts.CleanWhitespace,
		StripNonASCII:        opts.CleanNonASCII,
		StripBullets:         opts.CleanBullets,
		MinTextLength:        opts.MinTextLength,
	}
}

// Apply runs the enabled transforms over every element, rewriting text in
// place and dropping elements whose trimmed text falls below the minimum
// length. Elements without a text attribute always pass through untouched.
// Relative order is preserved and the call never fails.
func Apply(elements []models.Element, opts Options) []models.Element {
	out := make([]models.Element, 0, len(elements))
	for _, el := range elements {
		if !el.HasText() {
			out = append(out, el)
			continue
		}

		text := el.Text
		if text != "" {
			if opts.StripNonASCII {
				text = NonASCII(text)
			}
			if opts.StripBullets {
				text = Bullets(text)
			}
			if opts.StripExtraWhitespace {
				text = ExtraWhitespace(text)
			}
		}

		if len(strings.TrimSpace(text)) < opts.MinTextLength {
			continue
		}

		el.Text = text
		out = append(out, el)
	}
	return out
}

// ExtraWhitespace collapses runs of whitespace (including newlines and
// non-breaking spaces) into single spaces and trims the ends.
func ExtraWhitespace(text string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(text, "\u00a0", " ")), " ")
}

// NonASCII removes every rune outside the 7-bit ASCII range.
func NonASCII(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Bullets strips leading bullet markers and the whitespace that follows
// them. Stacked markers are consumed in one pass so the transform is a fixed
// point. Text that is only bullets collapses to empty.
func Bullets(text string) string {
	for {
		stripped, ok := stripBullet(text)
		if !ok {
			return text
		}
		text = stripped
	}
}

func stripBullet(text string) (string, bool) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return text, false
	}
	if _, ok := bulletRunes[runes[0]]; !ok {
		return text, false
	}
	// A bullet only counts when followed by whitespace or nothing, so that
	// hyphenated words and emphasis markers survive.
	if len(runes) > 1 && !unicode.IsSpace(runes[1]) {
		return text, false
	}
	return strings.TrimLeftFunc(string(runes[1:]), unicode.IsSpace), true
}
