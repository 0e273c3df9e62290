package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Print engines do not understand oklch() and cannot resolve CSS variables,
// so both are rewritten to plain hex before the HTML reaches the renderer.

var (
	oklchRe     = regexp.MustCompile(`oklch\(\s*([^)]*?)\s*\)`)
	cssVarRe    = regexp.MustCompile(`var\(\s*--[^)]*\)`)
	mustacheRe  = regexp.MustCompile(`\{\{[^}]*\}\}`)
	dataAttrRe  = regexp.MustCompile(`\s(?:data-v-[a-z0-9]+|data-reactroot|data-reactid|data-server-rendered|ng-[a-z-]+)(?:="[^"]*")?`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Exact hex equivalents for palette values that show up in the stored
// templates. The analytic fallback below handles everything else.
var oklchLookup = map[string]string{
	"1 0 0":                 "#ffffff",
	"0 0 0":                 "#000000",
	"0.985 0 0":             "#fafafa",
	"0.97 0 0":              "#f5f5f5",
	"0.922 0 0":             "#e5e5e5",
	"0.708 0 0":             "#a3a3a3",
	"0.556 0 0":             "#737373",
	"0.439 0 0":             "#525252",
	"0.269 0 0":             "#404040",
	"0.205 0 0":             "#171717",
	"0.145 0 0":             "#0a0a0a",
	"0.546 0.245 262.881":   "#2563eb",
	"0.623 0.214 259.815":   "#3b82f6",
	"0.577 0.245 27.325":    "#dc2626",
	"0.627 0.194 149.214":   "#16a34a",
	"0.488 0.243 264.376":   "#1d4ed8",
}

// SanitizeHTML prepares rendered resume HTML for the print engine: colors
// are flattened to hex, live-binding artifacts are removed and whitespace is
// collapsed for transport.
func SanitizeHTML(html string) string {
	out := oklchRe.ReplaceAllStringFunc(html, func(match string) string {
		inner := oklchRe.FindStringSubmatch(match)[1]
		return convertOklch(inner)
	})
	out = cssVarRe.ReplaceAllString(out, "#000000")
	out = mustacheRe.ReplaceAllString(out, "")
	out = dataAttrRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// convertOklch maps an oklch() argument list to hex. Known values hit the
// lookup table; anything else goes through the analytic conversion, and
// unparseable input degrades to black.
func convertOklch(args string) string {
	// Strip an alpha component ("... / 0.5") before matching.
	if idx := strings.Index(args, "/"); idx >= 0 {
		args = args[:idx]
	}
	key := strings.Join(strings.Fields(args), " ")
	if hex, ok := oklchLookup[key]; ok {
		return hex
	}

	fields := strings.Fields(key)
	if len(fields) < 3 {
		// Achromatic shorthand like "oklch(0.5 0)" is not produced by our
		// templates; treat short inputs as unparseable.
		if len(fields) == 2 {
			fields = append(fields, "0")
		} else {
			return "#000000"
		}
	}

	l, err1 := parseOklchNumber(fields[0], 1)
	c, err2 := parseOklchNumber(fields[1], 0.4)
	h, err3 := parseOklchNumber(fields[2], 1)
	if err1 != nil || err2 != nil || err3 != nil {
		return "#000000"
	}

	r, g, b := oklchToSRGB(l, c, h)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func parseOklchNumber(s string, percentScale float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return v / 100 * percentScale, nil
	}
	return strconv.ParseFloat(strings.TrimSuffix(s, "deg"), 64)
}

// oklchToSRGB applies the OKLab reference transform: polar to Lab, Lab to
// LMS, LMS cubed to linear sRGB, then gamma encoding with channels clamped
// to [0,1] and scaled to 8 bits.
func oklchToSRGB(l, c, h float64) (uint8, uint8, uint8) {
	if l > 1 {
		l = l / 100 // percentage lightness
	}
	hRad := h * math.Pi / 180
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	lc := l_ * l_ * l_
	mc := m_ * m_ * m_
	sc := s_ * s_ * s_

	rLin := 4.0767416621*lc - 3.3077115913*mc + 0.2309699292*sc
	gLin := -1.2684380046*lc + 2.6097574011*mc - 0.3413193965*sc
	bLin := -0.0041960863*lc - 0.7034186147*mc + 1.7076147010*sc

	return encodeChannel(rLin), encodeChannel(gLin), encodeChannel(bLin)
}

func encodeChannel(lin float64) uint8 {
	if lin < 0 {
		lin = 0
	}
	if lin > 1 {
		lin = 1
	}
	var srgb float64
	if lin <= 0.0031308 {
		srgb = 12.92 * lin
	} else {
		srgb = 1.055*math.Pow(lin, 1/2.4) - 0.055
	}
	return uint8(math.Floor(srgb*255 + 0.5))
}
