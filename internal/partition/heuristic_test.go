package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

func TestClassifyParagraph(t *testing.T) {
	tests := []struct {
		text string
		want models.ElementType
	}{
		{"EXECUTIVE SUMMARY", models.TypeTitle},
		{"SECTION 2: RESULTS", models.TypeTitle},
		{"• a bullet point", models.TypeListItem},
		{"- dashed item", models.TypeListItem},
		{"A normal sentence about nothing in particular.", models.TypeNarrativeText},
		{"MOSTLY UPPER but not quite", models.TypeNarrativeText},
		{"1234 5678", models.TypeNarrativeText}, // no letters, not a title
		{"   ", models.TypeText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyParagraph(tt.text), "text %q", tt.text)
	}
}

func TestClassifyParagraphLongUppercaseIsNotTitle(t *testing.T) {
	long := ""
	for len(long) < 120 {
		long += "VERY LONG HEADING "
	}
	assert.Equal(t, models.TypeNarrativeText, ClassifyParagraph(long))
}

func TestSplitParagraphs(t *testing.T) {
	in := "first para\n\n  second para  \n\n\n\nthird"
	assert.Equal(t, []string{"first para", "second para", "third"}, SplitParagraphs(in))

	assert.Empty(t, SplitParagraphs(""))
	assert.Empty(t, SplitParagraphs("\n\n\n\n"))
}
