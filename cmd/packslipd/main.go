package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/export"
	"github.com/hurricanefence/packslips/internal/extract"
	"github.com/hurricanefence/packslips/internal/ocr"
	"github.com/hurricanefence/packslips/internal/parser"
	"github.com/hurricanefence/packslips/internal/pipeline"
	"github.com/hurricanefence/packslips/internal/repository"
	"github.com/hurricanefence/packslips/internal/server"
	"github.com/hurricanefence/packslips/internal/slack"
	"github.com/hurricanefence/packslips/internal/vendor"
	"github.com/hurricanefence/packslips/internal/webhook"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Path:        cfg.Store.Path,
		DialTimeout: cfg.Store.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	files, err := repository.NewDiskFileStore(
		filepath.Join(filepath.Dir(cfg.Store.Path), "files"), logger)
	if err != nil {
		logger.Error("open file store", "error", err)
		os.Exit(1)
	}

	registry, err := vendor.Load()
	if err != nil {
		logger.Error("load vendor registry", "error", err)
		os.Exit(1)
	}
	logger.Info("vendor registry loaded", "vendors", registry.Len())

	extractor := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger))

	repo := repository.NewPackSlipRepository(db, logger)
	forwarder := webhook.NewForwarder(webhook.Config{
		URL:     cfg.Webhook.URL,
		Timeout: cfg.Webhook.Timeout,
		Retries: cfg.Webhook.Retries,
	}, logger)

	processor := pipeline.NewProcessor(
		extractor, registry, parser.New(logger), repo, files, forwarder, logger)

	slackClient := slack.NewClient(cfg.Slack.BotToken, logger)
	slackHandler := slack.NewHandler(slackClient, processor, logger)
	dedupe := slack.NewDedupeCache(cfg.Slack.DedupeTTL)

	exporter := export.NewService(repo, logger)

	srv := server.New(cfg.Server, processor, repo, registry, exporter,
		cfg.Slack, slackHandler, dedupe, db, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr, "env", cfg.Server.Environment)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
