package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/hurricanefence/packslips/constants"
)

// Document is the immutable upload payload handed to the pipeline.
type Document struct {
	ID       uuid.UUID `json:"id"`
	Bytes    []byte    `json:"-"`
	MimeType string    `json:"mime_type"`
	FileName string    `json:"file_name"`
	FileSize int       `json:"file_size"`
}

// ExtractMeta records how a document's text was obtained.
type ExtractMeta struct {
	Method string `json:"method"`
	Pages  int    `json:"pages"`
}

// VendorDetection is the per-document vendor resolution.
type VendorDetection struct {
	VendorID   string                 `json:"vendor_id,omitempty"`
	Source     constants.VendorSource `json:"source"`
	Confidence float32                `json:"confidence"`
}

// Metadata holds the reviewer-editable header fields of a pack slip.
type Metadata struct {
	Vendor       string `json:"vendor"`
	POOrJob      string `json:"po_or_job"`
	ReceivedDate string `json:"received_date"`
}

// PackSlip is the persisted aggregate for one processed document.
type PackSlip struct {
	ID            uuid.UUID           `json:"id"`
	Status        constants.DocStatus `json:"status"`
	FileName      string              `json:"file_name"`
	MimeType      string              `json:"mime_type"`
	FileSize      int                 `json:"file_size"`
	FilePath      string              `json:"-"`
	ExtractedText string              `json:"extracted_text"`
	ExtractMeta   ExtractMeta         `json:"extract_meta"`
	Vendor        VendorDetection     `json:"vendor"`
	LineItems     []LineItem          `json:"line_items"`
	Metadata      Metadata            `json:"metadata"`
	Errors        []string            `json:"errors,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
}

// NewPackSlip creates a fresh UPLOADED record for a document.
func NewPackSlip(doc Document, now time.Time) *PackSlip {
	return &PackSlip{
		ID:        doc.ID,
		Status:    constants.DocStatusUploaded,
		FileName:  doc.FileName,
		MimeType:  doc.MimeType,
		FileSize:  doc.FileSize,
		Vendor:    VendorDetection{Source: constants.VendorSourcePending},
		LineItems: []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
