// Package webhook delivers submitted pack slips to the downstream
// automation endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/entity"
)

// Config for the downstream forwarder. An empty URL disables delivery;
// submissions then complete locally with a logged skip.
type Config struct {
	URL     string
	Timeout time.Duration
	Retries int
}

// Forwarder posts submission payloads over HTTP with retry.
type Forwarder struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewForwarder(cfg Config, logger *slog.Logger) *Forwarder {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// fileInfo mirrors the file block downstream consumers key on.
type fileInfo struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

type submission struct {
	ID            string             `json:"id"`
	Status        string             `json:"status"`
	Metadata      entity.Metadata    `json:"metadata"`
	LineItems     []entity.LineItem  `json:"lineItems"`
	ExtractedText string             `json:"extractedText"`
	ExtractMeta   entity.ExtractMeta `json:"extractMeta"`
	File          fileInfo           `json:"file"`
}

// Forward delivers ps downstream. Retries cover timeouts, connection
// resets, and 5xx responses; a 4xx is the consumer rejecting the
// payload and is returned immediately.
func (f *Forwarder) Forward(ctx context.Context, ps *entity.PackSlip) error {
	if f.cfg.URL == "" {
		f.logger.Warn("webhook URL not configured; skipping dispatch", "id", ps.ID)
		return nil
	}

	body, err := json.Marshal(submission{
		ID:            ps.ID.String(),
		Status:        string(ps.Status),
		Metadata:      ps.Metadata,
		LineItems:     ps.LineItems,
		ExtractedText: ps.ExtractedText,
		ExtractMeta:   ps.ExtractMeta,
		File: fileInfo{
			Name:     ps.FileName,
			MimeType: ps.MimeType,
			Size:     ps.FileSize,
		},
	})
	if err != nil {
		return common.WrapError(err, "marshal submission")
	}

	err = common.WithRetry(ctx, common.RetryOptions{
		Retries:     f.cfg.Retries,
		ShouldRetry: retryable,
	}, func() error {
		return f.post(ctx, body)
	})
	if err != nil {
		return common.WrapError(err, "webhook dispatch")
	}

	f.logger.Info("submission forwarded", "id", ps.ID, "url", f.cfg.URL)
	return nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.code)
}

func (f *Forwarder) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	// transport-level failures (connection reset, refused) arrive as
	// url.Error wrapping syscall errors
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
