package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// rewriteRule is one ordered (pattern, replacement) normalization step.
// Order matters: broad punctuation stripping runs before the targeted
// unit-token repairs, whitespace collapse always last.
type rewriteRule struct {
	re   *regexp.Regexp
	repl string
}

// textRules repair OCR artifacts at whole-text granularity, applied
// before format detection.
var textRules = []rewriteRule{
	{regexp.MustCompile(`[|\[\]{}]`), " "},
	{regexp.MustCompile(`(?i)\bolpc\b`), "0 pc"},
	{regexp.MustCompile(`(?i)\bole\b`), "0 ea"},
	{regexp.MustCompile(`(?i)\boft\b`), "0 ft"},
	{regexp.MustCompile(`\bl\b`), "1"}, // lone 'l' often is '1'
	{regexp.MustCompile(`\s+`), " "},
}

// lineRules repair OCR artifacts at line granularity, applied before
// line-shape matching.
var lineRules = []rewriteRule{
	// brackets OCR adds after numbers: "200]" -> "200"
	{regexp.MustCompile(`(\d+)\]`), "${1}"},
	{regexp.MustCompile(`[|\[\]{}—~]`), " "},
	// "0Olpc", "00lpc", "Olpc" etc -> " pc "
	{regexp.MustCompile(`(?i)\b[oO0]+l?(pc|ft|ea|rl)\b`), " ${1} "},
	// "Ofea", "0fea" -> " ea "
	{regexp.MustCompile(`(?i)\b[oO0]f?(ea|pc|ft)\b`), " ${1} "},
	{regexp.MustCompile(`(?i)\bo\s*ft\b`), " ft "},
	{regexp.MustCompile(`(?i)\bo\s*pc\b`), " pc "},
	{regexp.MustCompile(`(?i)\bo\s*ea\b`), " ea "},
	// "IE", "IEE", "BE", "BEE" are OCR noise tokens
	{regexp.MustCompile(`(?i)\b[IB]E{1,2}\b`), " "},
	{regexp.MustCompile(`\s+`), " "},
}

// descTailRules strip trailing OCR junk from captured descriptions.
// Applied iteratively (bounded) by CleanDescription.
var descTailRules = []*regexp.Regexp{
	regexp.MustCompile(`\s+[IiEe]{1,3}\s*$`),
	regexp.MustCompile(`(?i)\s+[Ee]s\s*$`),
	regexp.MustCompile(`(?i)\s+EE+\s*$`),
	regexp.MustCompile(`(?i)\s+I\s*$`),
	regexp.MustCompile(`\s+[—\-~]+\s*$`),
	regexp.MustCompile(`\s+\d{1,2}\s*$`), // trailing 1-2 digit extraction artifacts
}

// CleanText repairs OCR artifacts across a whole document's text.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	for _, r := range textRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}

// CleanLine repairs OCR artifacts in a single line.
func CleanLine(line string) string {
	if line == "" {
		return ""
	}
	for _, r := range lineRules {
		line = r.re.ReplaceAllString(line, r.repl)
	}
	return strings.TrimSpace(line)
}

// CleanDescription strips trailing OCR noise from a captured description.
// Bounded to 3 passes to catch nested artifacts without looping forever.
func CleanDescription(desc string) string {
	cleaned := strings.TrimSpace(desc)
	for i := 0; i < 3; i++ {
		for _, re := range descTailRules {
			cleaned = re.ReplaceAllString(cleaned, "")
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

// unitClasses maps unit-token shapes (including OCR confusions) to
// canonical short codes. First match wins.
var unitClasses = []struct {
	re   *regexp.Regexp
	code string
}{
	{regexp.MustCompile(`^(?i:pc|pcs|piece|pieces|lpc)$`), "pc"},
	{regexp.MustCompile(`^(?i:ft|feet|foot|lf|lft)$`), "ft"},
	{regexp.MustCompile(`^(?i:ea|each|iee|bee)$`), "ea"}, // IEE/BEE are OCR errors
	{regexp.MustCompile(`^(?i:rl|rll|roll|rolls|r11)$`), "rl"}, // r11 is OCR for rll
	{regexp.MustCompile(`^(?i:lb|lbs|pound)$`), "lb"},
	{regexp.MustCompile(`^(?i:gal|gallon)$`), "gal"},
	{regexp.MustCompile(`^(?i:box|bx)$`), "box"},
	{regexp.MustCompile(`^(?i:bag|bags)$`), "bag"},
	{regexp.MustCompile(`^(?i:set|sets)$`), "set"},
	{regexp.MustCompile(`^(?i:pkg|package)$`), "pkg"},
	{regexp.MustCompile(`^(?i:o|0)$`), "ea"},
}

var leadingUnitNoise = regexp.MustCompile(`^[\doO]+`)

// NormalizeUnit maps a captured unit token to its canonical short code.
// Idempotent: every output feeds back to itself.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return "ea"
	}

	// leading zeros/O's that OCR adds: "001pc" -> "pc", "olpc" -> "pc"
	if stripped := leadingUnitNoise.ReplaceAllString(u, ""); stripped != "" {
		u = stripped
	}

	for _, c := range unitClasses {
		if c.re.MatchString(u) {
			return c.code
		}
	}
	if len(u) > 4 {
		u = u[:4]
	}
	return u
}

// toNum parses a quantity token, repairing comma grouping and o/O digit
// confusion. Returns 0 when nothing numeric remains.
func toNum(val string) float64 {
	cleaned := strings.NewReplacer(",", "", "o", "0", "O", "0").Replace(strings.TrimSpace(val))
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}
