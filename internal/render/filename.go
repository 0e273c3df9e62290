package render

import (
	"regexp"
	"strings"
)

const maxBaseNameLen = 50

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeFilename turns an arbitrary title into a safe download name:
// lowercase, non-alphanumeric runs collapsed to single hyphens, trimmed,
// capped at 50 characters, ".pdf" appended.
func SanitizeFilename(title string) string {
	base := strings.ToLower(title)
	base = nonAlnumRun.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
		base = strings.Trim(base, "-")
	}
	if base == "" {
		base = "resume"
	}
	return base + ".pdf"
}
