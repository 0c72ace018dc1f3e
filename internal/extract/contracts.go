package extract

import (
	"context"
	"time"

	"github.com/hurricanefence/packslips/constants"
)

// TextExtractor is Stage 1: file bytes -> text.
type TextExtractor interface {
	Extract(ctx context.Context, raw []byte, mimeType, fileName string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.Format
	Method     string // "pdf-text" | "pdf-text-partial" | "pdf-ocr" | "ocr-image" | "none" | "failed"
	Language   string
	Duration   time.Duration
	Warnings   []string
}
