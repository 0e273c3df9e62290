package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"resumecraft_backend/internal/models"
)

const testTemplate = `<html><head><link rel="stylesheet" href="https://cdn.example.com/style.css"><title>{{name}}</title></head>
<body><h1>{{name}}</h1><p>{{headline}}</p><div>{{experience}}</div><div>{{skills}}</div>{{sections}}<footer>{{certifications}}</footer></body></html>`

func sampleData() *models.ResumeData {
	return &models.ResumeData{
		Name:     "Ada Lovelace",
		Headline: "Analytical Engine Programmer",
		Experience: []models.ResumeEntry{
			{
				Title:        "Mathematician",
				Organization: "Royal Society",
				Period:       "1833 - 1852",
				Bullets:      []string{"Wrote the first published algorithm"},
			},
		},
		Skills: []string{"Mathematics", "Notation"},
		Sections: []models.FreeSection{
			{Title: "Publications", Body: "Notes on the Analytical Engine"},
		},
	}
}

func TestRenderTemplate_SubstitutesFields(t *testing.T) {
	out := RenderTemplate(testTemplate, sampleData())

	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Analytical Engine Programmer")
	assert.Contains(t, out, "Royal Society")
	assert.Contains(t, out, "Wrote the first published algorithm")
	assert.Contains(t, out, "<li>Mathematics</li>")
	assert.Contains(t, out, "<h2>Publications</h2>")
}

func TestRenderTemplate_RemovesUnmatchedMarkers(t *testing.T) {
	out := RenderTemplate(testTemplate, sampleData())

	// {{certifications}} has no counterpart in the data model.
	assert.NotContains(t, out, "{{")
	assert.NotContains(t, out, "}}")
	assert.Contains(t, out, "<footer></footer>")
}

func TestRenderTemplate_StripsExternalStylesheets(t *testing.T) {
	out := RenderTemplate(testTemplate, sampleData())

	assert.NotContains(t, out, "cdn.example.com")
	assert.NotContains(t, out, "stylesheet")
}

func TestRenderTemplate_EscapesUserContent(t *testing.T) {
	data := sampleData()
	data.Name = `<script>alert("x")</script>`
	out := RenderTemplate(testTemplate, data)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderTemplate_EmptyRepeatedSections(t *testing.T) {
	data := &models.ResumeData{Name: "Solo"}
	out := RenderTemplate(testTemplate, data)

	assert.Contains(t, out, "Solo")
	assert.False(t, strings.Contains(out, "<ul>"), "no list markup for empty sections")
}
