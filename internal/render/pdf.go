package render

import (
	"context"
	"encoding/base64"
	"strings"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/logger"
)

// pageSetupCSS pins the print geometry so the engine and the stamped output
// agree on page boundaries, and keeps structural blocks from being split
// across pages.
const pageSetupCSS = `<style>
@page { size: A4; margin: 14mm 12mm; }
html, body { margin: 0; padding: 0; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
.entry, .section, li { break-inside: avoid; page-break-inside: avoid; }
h1, h2 { break-after: avoid; page-break-after: avoid; }
</style>`

// ExportResult is the download payload: base64 PDF plus a safe filename.
type ExportResult struct {
	PDF      string `json:"pdf"`
	Filename string `json:"name"`
	Size     int    `json:"size"`
}

// Exporter runs the full export pipeline: sanitize, render, optionally
// watermark, encode.
type Exporter struct {
	engine Engine
}

func NewExporter(engine Engine) *Exporter {
	return &Exporter{engine: engine}
}

// Export renders the document and packages it for download. A watermark
// failure is not fatal: the unstamped PDF is served and the failure logged.
func (e *Exporter) Export(ctx context.Context, html, title string, watermark bool) (*ExportResult, error) {
	doc := SanitizeHTML(html)
	doc = injectPageSetup(doc)

	pdf, err := e.engine.RenderHTMLToPDF(ctx, doc)
	if err != nil {
		return nil, apperrors.ErrRenderEngineFailure.WithError(err)
	}
	if len(pdf) == 0 {
		return nil, apperrors.ErrRenderEngineFailure
	}

	if watermark {
		stamped, err := ApplyTrialWatermark(pdf)
		if err != nil {
			logger.CtxWarn(ctx, "watermark failed, serving unstamped pdf",
				"error", apperrors.ErrWatermarkFailure.WithError(err))
		} else {
			pdf = stamped
		}
	}

	result := &ExportResult{
		PDF:      base64.StdEncoding.EncodeToString(pdf),
		Filename: SanitizeFilename(title),
		Size:     len(pdf),
	}
	logger.CtxInfo(ctx, "pdf exported",
		"filename", result.Filename,
		"bytes", result.Size,
		"watermarked", watermark,
	)
	return result, nil
}

// injectPageSetup places the print CSS at the head of the document, creating
// a minimal head when the fragment has none.
func injectPageSetup(doc string) string {
	lower := strings.ToLower(doc)
	if idx := strings.Index(lower, "<head>"); idx >= 0 {
		insert := idx + len("<head>")
		return doc[:insert] + pageSetupCSS + doc[insert:]
	}
	if strings.Contains(lower, "<html") {
		return strings.Replace(doc, ">", ">"+pageSetupCSS, 1)
	}
	return "<!DOCTYPE html><html><head>" + pageSetupCSS + "</head><body>" + doc + "</body></html>"
}
