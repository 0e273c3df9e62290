package render

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	diagonalStampDesc = "font:Helvetica, points:48, rot:45, scale:0.8 rel, op:0.15, fillc:#808080"
	footerStampDesc   = "font:Helvetica, points:9, pos:bc, off:0 16, rot:0, op:0.4, fillc:#808080"
)

// ApplyTrialWatermark stamps every page with a diagonal banner and a footer
// line. Callers are expected to fall back to the unstamped bytes on error.
func ApplyTrialWatermark(pdf []byte) ([]byte, error) {
	stamped, err := stampAllPages(pdf, "TRIAL VERSION", diagonalStampDesc)
	if err != nil {
		return nil, fmt.Errorf("diagonal stamp: %w", err)
	}
	stamped, err = stampAllPages(stamped, "Generated with ResumeCraft trial", footerStampDesc)
	if err != nil {
		return nil, fmt.Errorf("footer stamp: %w", err)
	}
	return stamped, nil
}

func stampAllPages(pdf []byte, text, desc string) ([]byte, error) {
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, nil, wm, nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
