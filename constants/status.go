package constants

// DocStatus is the canonical status for rows in documents.
type DocStatus string

// Stable values (store these exact strings in DB).
const (
	DocStatusUploaded  DocStatus = "UPLOADED"  // file received, not yet extracted
	DocStatusExtracted DocStatus = "EXTRACTED" // text extraction finished
	DocStatusReview    DocStatus = "REVIEW"    // line items parsed, awaiting human review
	DocStatusSubmitted DocStatus = "SUBMITTED" // reviewed and forwarded downstream
	DocStatusFailed    DocStatus = "FAILED"    // terminal extraction failure
)

// VendorSource records how a document's vendor was determined.
type VendorSource string

const (
	VendorSourceUser    VendorSource = "user"    // picked by the reviewer, confidence 1.0
	VendorSourceAuto    VendorSource = "auto"    // keyword detection, confidence 0.8
	VendorSourceNone    VendorSource = "none"    // detection ran, nothing matched
	VendorSourcePending VendorSource = "pending" // detection not run yet
)

// Confidence constants for vendor detection sources.
const (
	UserConfidence float32 = 1.0
	AutoConfidence float32 = 0.8
)

// ConfidenceFor returns the fixed confidence for a vendor source.
func ConfidenceFor(src VendorSource) float32 {
	switch src {
	case VendorSourceUser:
		return UserConfidence
	case VendorSourceAuto:
		return AutoConfidence
	default:
		return 0
	}
}
