package parser

import (
	"log/slog"
	"regexp"

	"github.com/hurricanefence/packslips/internal/entity"
)

// maxItems caps reconstruction per document. A pack slip with more line
// items than this is runaway matching on noise, not a real shipment.
const maxItems = 200

// linePattern is one line-shape rule in a strategy's cascade. Capture
// group roles are declared by 1-based index; 0 means the group is absent
// or optional in the shape.
type linePattern struct {
	re         *regexp.Regexp
	orderedIdx int // ordered-quantity column, fallback when shipped is 0
	shippedIdx int // shipped-quantity column, preferred quantity source
	unitIdx    int
	descIdx    int
	skuIdx     int

	unitFromDesc bool   // scavenge a unit token out of the description
	defaultUnit  string // when no unit group captured anything
	minDescLen   int    // cleaned description shorter than this rejects the match
	checkSkip    bool   // re-test the captured description against Skip
}

// Strategy is one table-driven line-reconstruction format. All fields
// are static data; the cascade loop in run never changes per format.
type Strategy struct {
	Name       string
	Header     *regexp.Regexp // items begin after the first matching line
	Stop       *regexp.Regexp // footer reached, abandon the rest
	Skip       *regexp.Regexp // metadata/address noise, skip the line
	Gate       func(string) bool
	MinLineLen int
	Patterns   []linePattern
}

// descUnitToken scavenges a unit out of a description when the unit
// column itself was lost to OCR.
var descUnitToken = regexp.MustCompile(`(?i)\b(pc|ft|ea|lf|each)\b`)

// run walks cleaned lines through the strategy's cascade. Patterns are
// tried in order; the first one that both matches and survives the
// quantity/description checks claims the line.
func (s *Strategy) run(lines []string) []entity.LineItem {
	items := make([]entity.LineItem, 0, 16)

	start := 0
	if s.Header != nil {
		for i, l := range lines {
			if s.Header.MatchString(l) {
				start = i + 1
				break
			}
		}
	}

	for i := start; i < len(lines) && len(items) < maxItems; i++ {
		line := lines[i]
		if s.Stop != nil && s.Stop.MatchString(line) {
			break
		}
		if s.Skip != nil && s.Skip.MatchString(line) {
			continue
		}
		if len(line) < s.MinLineLen {
			continue
		}
		if s.Gate != nil && !s.Gate(line) {
			continue
		}

		for _, p := range s.Patterns {
			if item, ok := s.applyPattern(&p, line); ok {
				items = append(items, item)
				break
			}
		}
	}
	return items
}

// applyPattern matches one pattern against one line and validates the
// captures into a line item.
func (s *Strategy) applyPattern(p *linePattern, line string) (entity.LineItem, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return entity.LineItem{}, false
	}

	// Shipped quantity wins; the ordered column only fills in when the
	// shipped capture is zero or missing.
	var qty float64
	if p.shippedIdx > 0 {
		qty = toNum(m[p.shippedIdx])
	}
	if qty == 0 && p.orderedIdx > 0 {
		qty = toNum(m[p.orderedIdx])
	}
	if qty <= 0 {
		return entity.LineItem{}, false
	}

	desc := CleanDescription(m[p.descIdx])
	minLen := p.minDescLen
	if minLen == 0 {
		minLen = 1
	}
	if len(desc) < minLen {
		return entity.LineItem{}, false
	}
	if p.checkSkip && s.Skip != nil && s.Skip.MatchString(desc) {
		return entity.LineItem{}, false
	}

	unit := ""
	if p.unitIdx > 0 {
		unit = m[p.unitIdx]
	}
	if unit == "" && p.unitFromDesc {
		if um := descUnitToken.FindStringSubmatch(desc); um != nil {
			unit = um[1]
		}
	}
	if unit == "" {
		unit = p.defaultUnit
	}

	sku := ""
	if p.skuIdx > 0 {
		sku = m[p.skuIdx]
	}

	return entity.LineItem{
		SKU:         sku,
		Description: desc,
		Quantity:    qty,
		Unit:        NormalizeUnit(unit),
	}, true
}

// Run executes the strategy, absorbing any panic from pathological
// input. Noisy scans routinely hit regex edge cases; a blown strategy
// contributes nothing rather than failing the document.
func (s *Strategy) Run(logger *slog.Logger, lines []string) (items []entity.LineItem) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("line strategy panicked", "strategy", s.Name, "panic", r)
			}
			items = nil
		}
	}()
	items = s.run(lines)
	if logger != nil {
		logger.Info("line strategy finished", "strategy", s.Name, "items", len(items))
	}
	return items
}
