// slipctl runs extraction and parsing on a local file without the
// server, for testing OCR setups and new pack-slip formats.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/joho/godotenv"

	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/ocr"
	"github.com/hurricanefence/packslips/internal/parser"
	"github.com/hurricanefence/packslips/internal/vendor"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "slipctl <file.pdf|file.png|file.jpg>")
		os.Exit(2)
	}
	path := os.Args[1]

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res, err := extractor.Extract(ctx, raw, mimetype.Detect(raw).String(), filepath.Base(path))
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	registry, err := vendor.Load()
	if err != nil {
		logger.Error("load vendor registry", "error", err)
		os.Exit(1)
	}

	strategyID := ""
	if profile := registry.Detect(res.Text); profile != nil {
		logger.Info("vendor detected", "vendor", profile.ID, "strategy", profile.Parser)
		strategyID = profile.Parser
	}

	items := parser.New(logger).Parse(res.Text, strategyID)
	logger.Info("parse OK", "line_items", len(items))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}
