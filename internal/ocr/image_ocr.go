package ocr

import (
	"context"
	"fmt"
	"regexp"
)

// Tesseract sprays box-drawing noise into table-heavy scans.
var reBoxNoise = regexp.MustCompile(`[\x{2500}-\x{257F}]`)

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}
