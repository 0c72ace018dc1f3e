package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// A form-feed \f is used as page separator; the final page carries a
	// trailing one which must not count as an extra page.
	pages = 1 + strings.Count(strings.TrimSuffix(text, "\f"), "\f")
	return text, pages, nil, nil
}

// pdfToOCR renders each page to a PNG and OCRs them sequentially, one page
// image in flight at a time. Any single page failure is logged and
// skipped; a missing rasterizer skips the whole fallback. Errors never
// propagate: the caller compares the returned text with the text layer.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string) {
	if _, err := e.runner.LookPath(e.cfg.Pdftoppm); err != nil {
		e.logger.Warn("rasterizer unavailable, skipping ocr fallback", "bin", e.cfg.Pdftoppm, "error", err)
		return "", 0, []string{fmt.Sprintf("rasterizer unavailable: %v", err)}
	}

	tmpDir, err := os.MkdirTemp("", "ps-pp-*")
	if err != nil {
		return "", 0, []string{err.Error()}
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, []string{string(errb)}
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		if ctx.Err() != nil {
			// Cancellation between pages: the next page simply is not
			// processed, accumulated text stays usable.
			warns = append(warns, "ocr aborted: "+ctx.Err().Error())
			break
		}
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			e.logger.Warn("page ocr failed, skipping", "page", img, "error", err)
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String(), len(matches), warns
}
