package parser

import (
	"regexp"
	"strings"
)

// Product vocabulary for the fence-supply domain. Strategies with a
// keyword gate only attempt line-shape matches on lines containing at
// least one of these, which suppresses false positives on narrative text.
// Substring matching, no word boundaries: abbreviations like "vnl" embed
// inside catalog codes such as "BLKVNL".
var productKeywords = []string{
	// Fabric/Mesh
	"fabric", "mesh", "chain link", "cl fabric",
	// Posts
	"post", "line post", "corner post", "end post", "terminal", "gate post",
	// Rails
	"rail", "top rail", "bottom rail", "brace rail",
	// Caps
	"cap", "dome cap", "loop cap", "eye top", "ball cap",
	// Fittings
	"band", "brace band", "tension band", "rail end",
	"bracket", "rail bracket", "barb arm", "extension",
	"tension bar", "tension wire", "tie wire",
	"sleeve", "clamp", "t-clamp", "line clamp",
	"bolt", "carriage bolt", "nut",
	"clip", "hog ring", "fence tie",
	// Gates
	"gate", "gate frame", "gate hardware", "hinge", "latch",
	"drop rod", "fork latch", "bulldog",
	// Barbed wire
	"barb", "barbed", "barb wire",
	// Slats
	"slat", "privacy slat", "winged slat",
	// Colors/Coatings
	"vnl", "vinyl", "blk", "black", "grn", "green", "wht", "white", "galv", "galvanized",
	// Schedule pipe
	"sp20", "sp40", "sch20", "sch40",
	// Sizes
	"9ga", "11ga", "12ga", "12.5ga", "6ga",
	"2x9", "2x8", "2x11", "2x12",
}

// abbreviations expands industry shorthand for display.
var abbreviations = map[string]string{
	// Colors
	"BLK":  "Black",
	"GRN":  "Green",
	"WHT":  "White",
	"GALV": "Galvanized",
	"VNL":  "Vinyl",
	// Materials
	"SS":  "Stainless Steel",
	"AL":  "Aluminum",
	"STL": "Steel",
	// Product types
	"CL":   "Chain Link",
	"DOM":  "Dome",
	"RES":  "Residential",
	"COM":  "Commercial",
	"HVY":  "Heavy Duty",
	"EXT":  "Extension",
	"BRKT": "Bracket",
	"CLMP": "Clamp",
	// Wire selvage
	"KK": "Knuckle/Knuckle",
	"KT": "Knuckle/Twist",
	"TK": "Twist/Knuckle",
	"BB": "Barb/Barb",
	// Measurements
	"GA": "Gauge",
	"HT": "Height",
	"LF": "Linear Feet",
	"SP": "Schedule Pipe",
}

// productPatterns pair line shapes with the unit the product is usually
// sold in, for lines where the unit column was lost to OCR.
var productPatterns = []struct {
	re          *regexp.Regexp
	defaultUnit string
	category    string
}{
	// Chain link fabric - sold by ft (per roll)
	{regexp.MustCompile(`(?i)\d+x\d+.*(?:core|ga).*(?:ft/|rll|roll)`), "ft", "fabric"},
	{regexp.MustCompile(`(?i)fabric.*\d+ft`), "ft", "fabric"},
	{regexp.MustCompile(`(?i)cl\s+\d+.*\d+ga`), "ft", "fabric"},
	// Posts - sold by pc
	{regexp.MustCompile(`(?i)post.*(?:sp\d+|sch\d+)`), "pc", "post"},
	{regexp.MustCompile(`(?i)(?:line|corner|end|terminal|gate)\s*post`), "pc", "post"},
	// Rails - sold by ft
	{regexp.MustCompile(`(?i)(?:top|bottom|brace)\s*rail`), "ft", "rail"},
	{regexp.MustCompile(`(?i)rail.*(?:sp\d+|sch\d+)`), "ft", "rail"},
	// Caps - sold by pc
	{regexp.MustCompile(`(?i)(?:dome|loop|eye|ball)\s*(?:cap|top)`), "pc", "cap"},
	// Fittings - sold by ea
	{regexp.MustCompile(`(?i)(?:brace|tension)\s*band`), "ea", "fitting"},
	{regexp.MustCompile(`(?i)rail\s*end`), "ea", "fitting"},
	{regexp.MustCompile(`(?i)tension\s*bar`), "ea", "fitting"},
	{regexp.MustCompile(`(?i)barb\s*arm`), "ea", "fitting"},
	{regexp.MustCompile(`(?i)t-?clamp`), "ea", "fitting"},
	{regexp.MustCompile(`(?i)bracket`), "ea", "fitting"},
	{regexp.MustCompile(`(?i)sleeve`), "ea", "fitting"},
	// Hardware - sold by ea
	{regexp.MustCompile(`(?i)carriage\s*bolt`), "ea", "hardware"},
	{regexp.MustCompile(`(?i)(?:bolt|nut|clip|ring)`), "ea", "hardware"},
	// Gates - sold by ea
	{regexp.MustCompile(`(?i)gate.*(?:frame|single|double)`), "ea", "gate"},
	{regexp.MustCompile(`(?i)(?:hinge|latch|drop\s*rod)`), "ea", "gate"},
	// Barb wire - sold by ft
	{regexp.MustCompile(`(?i)barb(?:ed)?\s*wire`), "ft", "barb"},
	// Slats - sold by pc, bagged
	{regexp.MustCompile(`(?i)slat.*(?:bag|box)`), "bag", "slat"},
	{regexp.MustCompile(`(?i)(?:privacy\s*)?slat`), "pc", "slat"},
	// Tension/Tie wire - sold by ft
	{regexp.MustCompile(`(?i)(?:tension|tie)\s*wire`), "ft", "wire"},
}

// ContainsProduct reports whether a line mentions any known product term.
func ContainsProduct(line string) bool {
	if line == "" {
		return false
	}
	lower := strings.ToLower(line)
	for _, kw := range productKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// InferUnit guesses the sale unit from a description, "" when unknown.
func InferUnit(description string) string {
	for _, p := range productPatterns {
		if p.re.MatchString(description) {
			return p.defaultUnit
		}
	}
	return ""
}

// ProductCategory classifies a description, "" when unknown.
func ProductCategory(description string) string {
	for _, p := range productPatterns {
		if p.re.MatchString(description) {
			return p.category
		}
	}
	return ""
}

var abbrevToken = regexp.MustCompile(`[A-Za-z]+`)

// ExpandAbbreviations rewrites industry shorthand to full words.
func ExpandAbbreviations(description string) string {
	return abbrevToken.ReplaceAllStringFunc(description, func(tok string) string {
		if full, ok := abbreviations[strings.ToUpper(tok)]; ok {
			return full
		}
		return tok
	})
}
