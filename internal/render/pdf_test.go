package render

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumecraft_backend/internal/apperrors"
)

type stubEngine struct {
	pdf []byte
	err error
}

func (s *stubEngine) RenderHTMLToPDF(_ context.Context, _ string) ([]byte, error) {
	return s.pdf, s.err
}

func TestExport_EngineFailure(t *testing.T) {
	exporter := NewExporter(&stubEngine{err: errors.New("browser crashed")})

	_, err := exporter.Export(context.Background(), "<p>hi</p>", "My Resume", false)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrRenderEngineFailure.Code, appErr.Code)
}

func TestExport_EmptyOutputIsFailure(t *testing.T) {
	exporter := NewExporter(&stubEngine{pdf: []byte{}})

	_, err := exporter.Export(context.Background(), "<p>hi</p>", "My Resume", false)
	assert.Error(t, err)
}

func TestExport_PackagesResult(t *testing.T) {
	raw := []byte("%PDF-1.7 fake body")
	exporter := NewExporter(&stubEngine{pdf: raw})

	result, err := exporter.Export(context.Background(), "<p>hi</p>", "My Great Resume", false)
	require.NoError(t, err)

	assert.Equal(t, "my-great-resume.pdf", result.Filename)
	assert.Equal(t, len(raw), result.Size)

	decoded, err := base64.StdEncoding.DecodeString(result.PDF)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestExport_WatermarkFailureServesOriginal(t *testing.T) {
	// The stub returns bytes that are not a valid PDF, so stamping fails and
	// the pipeline falls back to the unstamped document.
	raw := []byte("%PDF-1.7 not really parseable")
	exporter := NewExporter(&stubEngine{pdf: raw})

	result, err := exporter.Export(context.Background(), "Trial Resume", "Trial Resume", true)
	require.NoError(t, err)

	decoded, decErr := base64.StdEncoding.DecodeString(result.PDF)
	require.NoError(t, decErr)
	assert.Equal(t, raw, decoded)
}

func TestInjectPageSetup(t *testing.T) {
	withHead := injectPageSetup("<html><head><title>x</title></head><body></body></html>")
	assert.Contains(t, withHead, "@page")
	assert.Less(t, strings.Index(withHead, "@page"), strings.Index(withHead, "<title>"))

	fragment := injectPageSetup("<p>hello</p>")
	assert.Contains(t, fragment, "<!DOCTYPE html>")
	assert.Contains(t, fragment, "@page")
	assert.Contains(t, fragment, "<p>hello</p>")
}

func TestInjectPageSetup_PrintGeometry(t *testing.T) {
	out := injectPageSetup("<html><head></head><body></body></html>")

	// Defined page margins plus keep-together rules for structural blocks.
	assert.Contains(t, out, "margin: 14mm 12mm")
	assert.Contains(t, out, "break-inside: avoid")
	assert.Contains(t, out, "page-break-inside: avoid")
}
