package parser

import "regexp"

// spsStrategy reconstructs the Stephens Pipe & Steel pack-slip layout.
// Columns: Ordered | Shipped | BackOrder | Unit | Description, which OCR
// typically flattens to "144 144 0 ft BLKVNL 4 x18 x SP40x8pc". Master
// Halco ships the same layout and shares this strategy.
var spsStrategy = &Strategy{
	Name:   "sps",
	Header: regexp.MustCompile(`(?i)ordered.*shipped`),
	Stop: regexp.MustCompile(
		`(?i)(materials received|signature acknowledges|review all items|print name|date:|received by|ask me about)`),
	Skip: regexp.MustCompile(
		`(?i)^\*+|your signature|items accurately|at the time|verify selvage|colanna`),
	Gate:       ContainsProduct,
	MinLineLen: 10,
	Patterns: []linePattern{
		// ordered shipped backorder unit description
		{
			re:         regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(\d+)\s*([a-zA-Z]{1,4})\s+(.+)$`),
			orderedIdx: 1, shippedIdx: 2, unitIdx: 4, descIdx: 5,
			minDescLen: 4,
		},
		// ordered shipped unit description (backorder column lost)
		{
			re:         regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*([a-zA-Z]{1,4})\s+(.+)$`),
			orderedIdx: 1, shippedIdx: 2, unitIdx: 3, descIdx: 4,
			minDescLen: 4,
		},
		// qty unit description
		{
			re:         regexp.MustCompile(`^\s*(\d+)\s*([a-zA-Z]{1,4})\s+([A-Z].+)$`),
			shippedIdx: 1, unitIdx: 2, descIdx: 3,
			minDescLen: 4,
		},
		// qty then a coating/product token anywhere, unit dug out of the
		// description
		{
			re: regexp.MustCompile(
				`(?i)(\d+)\s*(?:pc|ft|ea)?\s*((?:BLK|GRN|WHT|GALV|VNL|BLACK|GREEN|WHITE|CHAIN|MESH|FABRIC|TENSION|BRACE|POST|RAIL|CAP|TOP|BOTTOM|GATE|SLAT|TIE).+)`),
			shippedIdx: 1, descIdx: 2,
			unitFromDesc: true, defaultUnit: "pc", minDescLen: 6,
		},
		// wire/mesh rolls: "6ga 2x9 Galv Fabric 50ft rolls"
		{
			re: regexp.MustCompile(
				`(?i)(\d+)\s*(rolls?|pcs?|ea|ft)?\s*((?:\d+ga|galv|vinyl|fabric|mesh|wire).+)`),
			shippedIdx: 1, unitIdx: 2, descIdx: 3,
			defaultUnit: "ea", minDescLen: 6,
		},
	},
}

// genericSkip covers column headers, account metadata, addresses, and
// boilerplate common across suppliers without a dedicated layout.
var genericSkip = regexp.MustCompile(`(?i)` +
	`^(ordered|shipped|description|item|product|qty|quantity|unit|price|amount|total|page|date|order|customer|ship|sold|bill|invoice|pack|delivery|your signature|verify|po\s*#|invoice\s*#)` +
	`|customer acct|payment terms|customer po|visit our website` +
	`|sales person|sales fax|sales phone|contact name|fax number` +
	`|shipped via|quote valid|sold to|ship to|po box` +
	`|\d+\s*(st|nd|rd|th)\s+street` +
	`|\d+\s+\w+\s+(street|st|avenue|ave|road|rd|drive|dr|boulevard|blvd|lane|ln|way|court|ct)\b` +
	`|^\d{5}(-\d{4})?$` +
	`|email only|not responsible|verify all materials|remit payment|billing date`)

// genericStrategy handles any supplier without a dedicated layout. No
// header anchor and no product gate; the skip list does the filtering.
var genericStrategy = &Strategy{
	Name: "generic",
	Stop: regexp.MustCompile(
		`(?i)(signature acknowledges|received by:|convenience fee|restock fee|lbs:\s*\d+\s*p/d)`),
	Skip:       genericSkip,
	MinLineLen: 8,
	Patterns: []linePattern{
		// leading quantity column(s), unit, description
		{
			re:         regexp.MustCompile(`^\s*(\d+)\s+(?:\d+\s+)*(\d+)?\s*([a-zA-Z]{1,5})\s+([A-Za-z].{4,})$`),
			orderedIdx: 1, shippedIdx: 2, unitIdx: 3, descIdx: 4,
			checkSkip: true,
		},
		// qty unit description
		{
			re:         regexp.MustCompile(`^\s*(\d+)\s+([a-zA-Z]{1,5})\s+(.{5,})$`),
			shippedIdx: 1, unitIdx: 2, descIdx: 3,
			checkSkip: true,
		},
		// description first, trailing qty and optional unit
		{
			re:         regexp.MustCompile(`(?i)^([A-Za-z].{4,}?)\s+(\d+)\s*(EA|PC|FT|LF|LB|KG|GAL|BOX|BAG|PKG|RLL|EACH|PCS)?\s*$`),
			descIdx:    1, shippedIdx: 2, unitIdx: 3,
			defaultUnit: "ea", checkSkip: true,
		},
		// product token anywhere after a quantity
		{
			re: regexp.MustCompile(
				`(?i)(\d+)\s*(?:pc|ft|ea)?\s*((?:GALV|VNL|VINYL|BLACK|TENSION|BRACE|POST|RAIL|CAP|TOP|BOTTOM|GATE|HINGE|LATCH|TIE|WIRE|FABRIC|MESH|SLAT|BOLT|NUT|WASHER|SCREW|BRACKET|CLAMP|CONCRETE|CEMENT|LUMBER|BOARD|PIPE|TUBE|STEEL|ALUMINUM|WOOD).+)`),
			shippedIdx: 1, descIdx: 2,
			unitFromDesc: true, defaultUnit: "ea", minDescLen: 6,
		},
		// catalog-code line: "ABC123 Widget Description 12 EA"
		{
			re:     regexp.MustCompile(`(?i)^([A-Z0-9\-]{3,15})\s+(.{5,}?)\s+(\d+)\s*([A-Z]{1,5})?\s*$`),
			skuIdx: 1, descIdx: 2, shippedIdx: 3, unitIdx: 4,
			defaultUnit: "ea",
		},
	},
}

// strategies maps a vendor profile's parser id to its strategy. Unknown
// ids fall back to generic.
var strategies = map[string]*Strategy{
	"sps":         spsStrategy,
	"masterhalco": spsStrategy, // same column layout as SPS
	"oldcastle":   genericStrategy,
	"generic":     genericStrategy,
}

// strategyFor resolves a parser id, defaulting to generic.
func strategyFor(name string) *Strategy {
	if s, ok := strategies[name]; ok {
		return s
	}
	return genericStrategy
}

var formatSignatures = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)stephens pipe|sps\s*fence|spsfence\.com|pipe.?steel`), "sps"},
	{regexp.MustCompile(`(?i)master\s*halco`), "masterhalco"},
	{regexp.MustCompile(`(?i)oldcastle|apg.*company`), "oldcastle"},
	// SPS-style column header even when the vendor name was lost
	{regexp.MustCompile(`(?i)ordered.*shipped`), "sps"},
}

// DetectFormat picks a strategy id from document text when no vendor
// profile names one.
func DetectFormat(text string) string {
	for _, sig := range formatSignatures {
		if sig.re.MatchString(text) {
			return sig.name
		}
	}
	return "generic"
}
