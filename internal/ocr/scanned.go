package ocr

import "strings"

// Keywords that mark text as coming from a real order document. Any hit
// plus a modest amount of text rules out the scanned classification.
var documentKeywords = []string{
	"order", "ship", "deliver", "item", "qty", "quantity",
	"description", "total", "invoice", "pack slip", "customer",
	"date", "po", "unit", "price", "amount",
}

// LooksScanned reports whether extracted PDF text indicates an image-only
// (scanned) document. The thresholds are a deliberate approximation:
//
//	stripped length > 100            -> not scanned
//	keyword hit and stripped > 30    -> not scanned
//	otherwise scanned iff stripped < 50
func LooksScanned(text string) bool {
	stripped := strings.Join(strings.Fields(text), "")
	if len(stripped) > 100 {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range documentKeywords {
		if strings.Contains(lower, kw) && len(stripped) > 30 {
			return false
		}
	}

	return len(stripped) < 50
}
