package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"resumecraft_backend/internal/models"
)

// Templates are stored HTML with {{field}} markers. Substitution is plain
// string replacement; anything structural (repeated entries, free sections)
// is pre-rendered into an HTML fragment first. Unmatched markers are removed
// so a template aimed at richer data still renders clean.

var stylesheetLinkRe = regexp.MustCompile(`(?i)<link\b[^>]*rel=["']?stylesheet["']?[^>]*>`)

// RenderTemplate substitutes resume content into template HTML and returns
// a self-contained document.
func RenderTemplate(templateHTML string, data *models.ResumeData) string {
	replacements := map[string]string{
		"name":       html.EscapeString(data.Name),
		"headline":   html.EscapeString(data.Headline),
		"email":      html.EscapeString(data.Email),
		"phone":      html.EscapeString(data.Phone),
		"location":   html.EscapeString(data.Location),
		"website":    html.EscapeString(data.Website),
		"summary":    html.EscapeString(data.Summary),
		"experience": renderEntries(data.Experience),
		"education":  renderEntries(data.Education),
		"skills":     renderSkills(data.Skills),
		"sections":   renderSections(data.Sections),
	}

	out := templateHTML
	for marker, value := range replacements {
		out = strings.ReplaceAll(out, "{{"+marker+"}}", value)
	}

	// External stylesheets would make the document depend on the network
	// inside the print engine.
	out = stylesheetLinkRe.ReplaceAllString(out, "")

	// Markers this data set has no value for render as nothing.
	out = mustacheRe.ReplaceAllString(out, "")

	return out
}

func renderEntries(entries []models.ResumeEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(`<div class="entry">`)
		fmt.Fprintf(&b, `<div class="entry-header"><span class="entry-title">%s</span><span class="entry-period">%s</span></div>`,
			html.EscapeString(e.Title), html.EscapeString(e.Period))
		if e.Organization != "" {
			fmt.Fprintf(&b, `<div class="entry-org">%s</div>`, html.EscapeString(e.Organization))
		}
		if len(e.Bullets) > 0 {
			b.WriteString("<ul>")
			for _, bullet := range e.Bullets {
				fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(bullet))
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</div>")
	}
	return b.String()
}

func renderSkills(skills []string) string {
	if len(skills) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="skills">`)
	for _, s := range skills {
		fmt.Fprintf(&b, `<li>%s</li>`, html.EscapeString(s))
	}
	b.WriteString("</ul>")
	return b.String()
}

func renderSections(sections []models.FreeSection) string {
	if len(sections) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(`<div class="section">`)
		fmt.Fprintf(&b, `<h2>%s</h2>`, html.EscapeString(s.Title))
		fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(s.Body))
		b.WriteString("</div>")
	}
	return b.String()
}
