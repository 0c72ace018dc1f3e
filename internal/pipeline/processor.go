// Package pipeline orchestrates a document's path from upload to
// review: store bytes, extract text, detect the vendor, reconstruct
// line items, and persist each status transition.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hurricanefence/packslips/constants"
	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/entity"
	"github.com/hurricanefence/packslips/internal/extract"
	"github.com/hurricanefence/packslips/internal/parser"
	"github.com/hurricanefence/packslips/internal/repository"
	"github.com/hurricanefence/packslips/internal/vendor"
)

// Forwarder pushes a submitted pack slip downstream.
type Forwarder interface {
	Forward(ctx context.Context, ps *entity.PackSlip) error
}

// Processor is the document pipeline service.
type Processor struct {
	extractor extract.TextExtractor
	vendors   *vendor.Registry
	parser    *parser.Parser
	repo      repository.PackSlipRepository
	files     repository.FileStore
	forwarder Forwarder
	logger    *slog.Logger
	now       func() time.Time
}

func NewProcessor(
	extractor extract.TextExtractor,
	vendors *vendor.Registry,
	p *parser.Parser,
	repo repository.PackSlipRepository,
	files repository.FileStore,
	forwarder Forwarder,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor: extractor,
		vendors:   vendors,
		parser:    p,
		repo:      repo,
		files:     files,
		forwarder: forwarder,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Process runs a fresh upload through extraction, vendor detection, and
// line-item reconstruction. vendorID, when non-empty, is a caller
// override and wins over detection. Extraction failure is the only
// terminal failure; an empty parse still lands in REVIEW.
func (p *Processor) Process(ctx context.Context, doc entity.Document, vendorID string) (*entity.PackSlip, error) {
	if !constants.IsPDF(doc.MimeType, doc.FileName) && !constants.IsImage(doc.MimeType) {
		p.logger.Warn("rejecting unsupported upload",
			"file_name", doc.FileName, "mime_type", doc.MimeType)
		return nil, common.NewAppError("UNSUPPORTED_TYPE",
			"only PDF or image files are supported", common.ErrUnsupportedFileType)
	}

	ps := entity.NewPackSlip(doc, p.now())

	path, err := p.files.Save(doc.ID, doc.FileName, doc.Bytes)
	if err != nil {
		return nil, common.WrapError(err, "store upload")
	}
	ps.FilePath = path

	if err := p.repo.Create(ctx, ps); err != nil {
		return nil, common.WrapError(err, "create pack slip")
	}

	p.logger.Info("processing document",
		"id", ps.ID, "file_name", doc.FileName, "mime_type", doc.MimeType, "bytes", doc.FileSize)

	res, err := p.extractor.Extract(ctx, doc.Bytes, doc.MimeType, doc.FileName)
	if err != nil {
		p.logger.Error("extraction failed", "id", ps.ID, "error", err)
		p.fail(ctx, ps, err.Error())
		return ps, common.NewAppError("EXTRACTION_FAILED", "text extraction failed", err)
	}

	ps.Status = constants.DocStatusExtracted
	ps.ExtractedText = res.Text
	ps.ExtractMeta = entity.ExtractMeta{Method: res.Method, Pages: res.Pages}
	ps.Errors = res.Warnings
	ps.UpdatedAt = p.now()
	if err := p.repo.Update(ctx, ps); err != nil {
		return nil, common.WrapError(err, "persist extraction")
	}

	profile := p.resolveVendor(ps, vendorID, res.Text)

	strategyID := ""
	if profile != nil {
		strategyID = profile.Parser
	}
	ps.LineItems = p.parser.Parse(res.Text, strategyID)

	ps.Status = constants.DocStatusReview
	ps.UpdatedAt = p.now()
	if err := p.repo.Update(ctx, ps); err != nil {
		return nil, common.WrapError(err, "persist review state")
	}

	p.logger.Info("document ready for review",
		"id", ps.ID, "method", res.Method, "pages", res.Pages,
		"vendor", ps.Vendor.VendorID, "vendor_source", ps.Vendor.Source,
		"line_items", len(ps.LineItems))
	return ps, nil
}

// resolveVendor fills ps.Vendor and returns the matched profile, nil
// when nothing matched.
func (p *Processor) resolveVendor(ps *entity.PackSlip, vendorID, text string) *vendor.Profile {
	if vendorID != "" {
		if profile := p.vendors.Get(vendorID); profile != nil {
			ps.Vendor = entity.VendorDetection{
				VendorID:   profile.ID,
				Source:     constants.VendorSourceUser,
				Confidence: constants.UserConfidence,
			}
			return profile
		}
		p.logger.Warn("unknown vendor override, falling back to detection",
			"id", ps.ID, "vendor_id", vendorID)
	}

	if profile := p.vendors.Detect(text); profile != nil {
		ps.Vendor = entity.VendorDetection{
			VendorID:   profile.ID,
			Source:     constants.VendorSourceAuto,
			Confidence: constants.AutoConfidence,
		}
		return profile
	}

	ps.Vendor = entity.VendorDetection{Source: constants.VendorSourceNone}
	return nil
}

// SetVendor records a reviewer's vendor choice and re-parses the stored
// text with that vendor's strategy. Only documents still in review can
// be retargeted.
func (p *Processor) SetVendor(ctx context.Context, id uuid.UUID, vendorID string) (*entity.PackSlip, error) {
	profile := p.vendors.Get(vendorID)
	if profile == nil {
		return nil, common.NewAppError("UNKNOWN_VENDOR", "vendor not in registry", common.ErrInvalidInput)
	}

	ps, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ps.Status != constants.DocStatusReview && ps.Status != constants.DocStatusExtracted {
		return nil, common.NewAppError("INVALID_STATE",
			"vendor can only be changed before submission", common.ErrInvalidInput)
	}

	ps.Vendor = entity.VendorDetection{
		VendorID:   profile.ID,
		Source:     constants.VendorSourceUser,
		Confidence: constants.UserConfidence,
	}
	ps.LineItems = p.parser.Parse(ps.ExtractedText, profile.Parser)
	ps.Status = constants.DocStatusReview
	ps.UpdatedAt = p.now()

	if err := p.repo.Update(ctx, ps); err != nil {
		return nil, common.WrapError(err, "persist vendor change")
	}
	p.logger.Info("vendor set by reviewer",
		"id", ps.ID, "vendor", profile.ID, "line_items", len(ps.LineItems))
	return ps, nil
}

// Submit finalizes a reviewed pack slip with the reviewer's edits and
// forwards it downstream. A forwarding failure marks the record FAILED
// so it resurfaces instead of silently vanishing.
func (p *Processor) Submit(ctx context.Context, id uuid.UUID, meta entity.Metadata, items []entity.LineItem) (*entity.PackSlip, error) {
	ps, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ps.Metadata = meta
	ps.LineItems = normalizeItems(items)
	ps.Status = constants.DocStatusSubmitted
	now := p.now()
	ps.SubmittedAt = &now
	ps.UpdatedAt = now
	ps.Errors = nil

	if err := p.repo.Update(ctx, ps); err != nil {
		return nil, common.WrapError(err, "persist submission")
	}

	if p.forwarder != nil {
		if err := p.forwarder.Forward(ctx, ps); err != nil {
			p.logger.Error("downstream forward failed", "id", ps.ID, "error", err)
			p.fail(ctx, ps, err.Error())
			return ps, common.NewAppError("FORWARD_FAILED", "downstream delivery failed", err)
		}
	}

	p.logger.Info("pack slip submitted", "id", ps.ID, "line_items", len(ps.LineItems))
	return ps, nil
}

// fail flips a record to FAILED, best effort.
func (p *Processor) fail(ctx context.Context, ps *entity.PackSlip, msg string) {
	ps.Status = constants.DocStatusFailed
	ps.Errors = append(ps.Errors, msg)
	ps.UpdatedAt = p.now()
	if err := p.repo.Update(ctx, ps); err != nil {
		p.logger.Error("failed to persist FAILED status", "id", ps.ID, "error", err)
	}
}

// normalizeItems scrubs reviewer-edited line items. Items without a
// positive quantity or any description are dropped rather than stored.
func normalizeItems(items []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(items))
	for _, it := range items {
		it.Description = strings.TrimSpace(it.Description)
		it.SKU = strings.TrimSpace(it.SKU)
		it.Unit = parser.NormalizeUnit(it.Unit)
		if it.Description == "" || it.Quantity <= 0 {
			continue
		}
		out = append(out, it)
	}
	return out
}
