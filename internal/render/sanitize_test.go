package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML_KnownOklchValues(t *testing.T) {
	cases := map[string]string{
		`color: oklch(1 0 0)`:                   `color: #ffffff`,
		`color: oklch(0 0 0)`:                   `color: #000000`,
		`color: oklch(0.205 0 0)`:               `color: #171717`,
		`color: oklch(0.546 0.245 262.881)`:     `color: #2563eb`,
		`border: 1px solid oklch(0.922 0 0)`:    `border: 1px solid #e5e5e5`,
		`color: oklch( 0.708  0  0 )`:           `color: #a3a3a3`, // whitespace-insensitive
		`color: oklch(0.577 0.245 27.325 / .5)`: `color: #dc2626`, // alpha dropped
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeHTML(in), "input %q", in)
	}
}

func TestSanitizeHTML_AnalyticFallback(t *testing.T) {
	// Mid gray is not in the lookup table; the linear-RGB coefficients sum
	// to 1 for achromatic input, so the result is exact.
	assert.Equal(t, `color: #636363`, SanitizeHTML(`color: oklch(0.5 0 0)`))
}

func TestSanitizeHTML_UnparseableOklchIsBlack(t *testing.T) {
	assert.Equal(t, `color: #000000`, SanitizeHTML(`color: oklch(foo bar baz)`))
	assert.Equal(t, `color: #000000`, SanitizeHTML(`color: oklch(0.5)`))
}

func TestSanitizeHTML_CSSVariables(t *testing.T) {
	out := SanitizeHTML(`color: var(--primary); background: var(--bg, white)`)
	assert.Equal(t, `color: #000000; background: #000000`, out)
}

func TestSanitizeHTML_StripsLiveBindingArtifacts(t *testing.T) {
	in := `<div data-v-1a2b3c class="card">{{ unresolved }}<span ng-if="x">ok</span></div>`
	out := SanitizeHTML(in)
	assert.NotContains(t, out, "data-v-")
	assert.NotContains(t, out, "ng-if")
	assert.NotContains(t, out, "{{")
	assert.Contains(t, out, "ok")
}

func TestSanitizeHTML_CollapsesWhitespace(t *testing.T) {
	out := SanitizeHTML("  <p>a</p>\n\n\t<p>b</p>  ")
	assert.Equal(t, "<p>a</p> <p>b</p>", out)
	assert.False(t, strings.Contains(out, "\n"))
}
