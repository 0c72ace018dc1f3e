package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hurricanefence/packslips/internal/entity"
)

// DocumentProcessor is the slice of the pipeline the Slack intake
// needs.
type DocumentProcessor interface {
	Process(ctx context.Context, doc entity.Document, vendorID string) (*entity.PackSlip, error)
}

// EventPayload is the outer Events API envelope.
type EventPayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	Event     *Event `json:"event,omitempty"`
}

// Event is the inner message event; only file-bearing messages matter.
type Event struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Files   []File `json:"files,omitempty"`
}

// File is a Slack file share attached to a message.
type File struct {
	Name               string `json:"name"`
	Mimetype           string `json:"mimetype"`
	URLPrivate         string `json:"url_private"`
	URLPrivateDownload string `json:"url_private_download"`
}

// Handler turns Slack file shares into pipeline documents and replies
// in-thread with the outcome.
type Handler struct {
	client    *Client
	processor DocumentProcessor
	logger    *slog.Logger
}

func NewHandler(client *Client, processor DocumentProcessor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client:    client,
		processor: processor,
		logger:    logger,
	}
}

// HandleEvent processes one deduplicated event payload. Called after
// the HTTP layer has already acknowledged the request, so every failure
// is reported to the thread or logged, never returned to Slack.
func (h *Handler) HandleEvent(ctx context.Context, payload *EventPayload) {
	ev := payload.Event
	if ev == nil || ev.Type != "message" || len(ev.Files) == 0 {
		return
	}

	for _, f := range ev.Files {
		h.handleFile(ctx, ev, f)
	}
}

func (h *Handler) handleFile(ctx context.Context, ev *Event, f File) {
	name := f.Name
	if name == "" {
		name = "uploaded file"
	}

	h.reply(ctx, ev, fmt.Sprintf("Got your file: *%s* (%s). Converting to text…", name, orUnknown(f.Mimetype)))

	url := f.URLPrivateDownload
	if url == "" {
		url = f.URLPrivate
	}
	if url == "" {
		h.reply(ctx, ev, fmt.Sprintf("Could not get a download link from Slack for *%s*.", name))
		return
	}

	raw, err := h.client.DownloadFile(ctx, url)
	if err != nil {
		h.logger.Error("failed to download slack file", "file", name, "error", err)
		h.reply(ctx, ev, fmt.Sprintf("Download failed for *%s*: %v", name, err))
		return
	}

	doc := entity.Document{
		ID:       uuid.New(),
		Bytes:    raw,
		MimeType: f.Mimetype,
		FileName: name,
		FileSize: len(raw),
	}

	ps, err := h.processor.Process(ctx, doc, "")
	if err != nil {
		h.logger.Error("failed to process slack upload", "file", name, "error", err)
		h.reply(ctx, ev, fmt.Sprintf("Could not process *%s*: %v", name, err))
		return
	}

	vendorNote := "vendor not detected"
	if ps.Vendor.VendorID != "" {
		vendorNote = "vendor: " + ps.Vendor.VendorID
	}
	h.reply(ctx, ev, fmt.Sprintf(
		"*%s* processed (%s, %d page(s), %s). Found %d line item(s). Review at /review.html?id=%s",
		name, ps.ExtractMeta.Method, ps.ExtractMeta.Pages, vendorNote, len(ps.LineItems), ps.ID))
}

func (h *Handler) reply(ctx context.Context, ev *Event, text string) {
	err := h.client.PostMessage(ctx, Message{
		Channel:  ev.Channel,
		ThreadTS: ev.TS,
		Text:     text,
	})
	if err != nil {
		h.logger.Error("failed to reply in thread", "channel", ev.Channel, "error", err)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
