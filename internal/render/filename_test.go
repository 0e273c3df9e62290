package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Resume":                   "my-resume.pdf",
		"My Résumé — Final!! Draft":   "my-r-sum-final-draft.pdf",
		"  senior  engineer  2026  ":  "senior-engineer-2026.pdf",
		"///":                         "resume.pdf",
		"":                            "resume.pdf",
		"UPPER_case.and.dots":         "upper-case-and-dots.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestSanitizeFilename_CapsLength(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	got := SanitizeFilename(long)

	assert.True(t, strings.HasSuffix(got, ".pdf"))
	base := strings.TrimSuffix(got, ".pdf")
	assert.LessOrEqual(t, len(base), 50)
	assert.False(t, strings.HasSuffix(base, "-"), "no dangling hyphen after truncation")
}
