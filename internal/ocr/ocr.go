package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hurricanefence/packslips/constants"
	"github.com/hurricanefence/packslips/internal/common"
)

// Extraction methods, stored with each result.
const (
	MethodPDFText        = "pdf-text"         // text layer was good enough
	MethodPDFTextPartial = "pdf-text-partial" // text layer weak, OCR did no better
	MethodPDFOCR         = "pdf-ocr"          // rasterized pages, OCR won
	MethodOCRImage       = "ocr-image"        // image upload, OCR directly
	MethodNone           = "none"             // nothing usable came out
	MethodFailed         = "failed"
)

// Placeholder carried on a MethodNone result so downstream can tell
// "nothing extracted" apart from a genuinely empty document.
const NoTextPlaceholder = "(No text could be extracted)"

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.Format
	Method     string
	Language   string
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on the declared MIME type and filename.
// It never returns an error for a supported type: weak extractions come
// back as MethodPDFTextPartial or MethodNone instead. Only a hard failure
// of the text-layer extractor itself surfaces as ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, raw []byte, mimeType, fileName string) (ExtractionResult, error) {
	start := time.Now()

	switch {
	case constants.IsImage(mimeType):
		res := e.extractImage(ctx, raw)
		res.Duration = time.Since(start)
		return res, nil
	case constants.IsPDF(mimeType, fileName):
		res, err := e.extractPDF(ctx, raw)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Warn("unsupported upload type", "mime_type", mimeType, "file_name", fileName)
		return ExtractionResult{Method: MethodFailed}, fmt.Errorf("%w: %s (%s)",
			common.ErrUnsupportedFileType, fileName, mimeType)
	}
}

func (e *Extractor) extractImage(ctx context.Context, raw []byte) ExtractionResult {
	res := ExtractionResult{
		SourceType: constants.IMAGE,
		Pages:      1,
		Language:   e.cfg.TesseractLang,
	}

	path, cleanup, err := e.spool(raw, "img-*.png")
	if err != nil {
		res.Method = MethodNone
		res.Text = NoTextPlaceholder
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	defer cleanup()

	txt, warns, err := e.tesseractOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil || strings.TrimSpace(txt) == "" {
		if err != nil {
			e.logger.Warn("image ocr failed", "error", err)
			res.Warnings = append(res.Warnings, err.Error())
		}
		res.Method = MethodNone
		res.Text = NoTextPlaceholder
		return res
	}

	res.Method = MethodOCRImage
	res.Text = txt
	return res
}

func (e *Extractor) extractPDF(ctx context.Context, raw []byte) (ExtractionResult, error) {
	res := ExtractionResult{
		SourceType: constants.PDF,
		Language:   e.cfg.TesseractLang,
	}

	path, cleanup, err := e.spool(raw, "doc-*.pdf")
	if err != nil {
		res.Method = MethodFailed
		return res, fmt.Errorf("%w: spool pdf: %v", common.ErrExtractionFailed, err)
	}
	defer cleanup()

	pdfText, pages, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		res.Method = MethodFailed
		return res, fmt.Errorf("%w: pdftotext: %v", common.ErrExtractionFailed, err)
	}
	res.Pages = pages

	if !LooksScanned(pdfText) {
		res.Method = MethodPDFText
		res.Text = pdfText
		return res, nil
	}

	e.logger.Info("pdf looks scanned, trying ocr fallback", "text_layer_bytes", len(pdfText), "pages", pages)
	ocrText, ocrPages, warns2 := e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns2...)
	if len(ocrText) > len(pdfText) {
		res.Method = MethodPDFOCR
		res.Text = ocrText
		res.Pages = ocrPages
		return res, nil
	}

	// Best-effort: keep whatever the text layer gave us, explicitly
	// labeled as degraded rather than pretending it is clean.
	if strings.TrimSpace(pdfText) != "" {
		res.Method = MethodPDFTextPartial
		res.Text = pdfText
		return res, nil
	}
	res.Method = MethodNone
	res.Text = NoTextPlaceholder
	return res, nil
}

// spool writes upload bytes to a temp file for the exec backends.
func (e *Extractor) spool(raw []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", "ps-"+pattern)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() {
		if rmErr := os.Remove(path); rmErr != nil {
			e.logger.Warn("failed to remove temp file", "path", path, "error", rmErr)
		}
	}
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
