// Package parser reconstructs line items from extracted pack-slip text.
//
// Extraction quality varies wildly between a clean PDF text layer and a
// phone photo of a crumpled slip, so everything here is built around
// cascades: ordered normalization rules, then ordered line-shape
// patterns per strategy, then an ordered strategy fallback chain. An
// empty result is a valid outcome, not an error.
package parser

import (
	"log/slog"
	"strings"

	"github.com/hurricanefence/packslips/internal/entity"
)

// Parser is the line-item reconstruction engine. Safe for concurrent
// use; all strategy state is static.
type Parser struct {
	logger *slog.Logger
}

// New returns a Parser. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reconstructs line items from extracted text. strategyID names
// the strategy a vendor profile prescribes; empty means auto-detect
// from the text itself. If the chosen strategy finds nothing, the
// remaining strategies each get a shot, and the first non-empty result
// wins. No items found is a valid result.
func (p *Parser) Parse(text, strategyID string) []entity.LineItem {
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("parse called with empty text")
		return []entity.LineItem{}
	}

	lines := splitClean(text)

	if strategyID == "" {
		strategyID = DetectFormat(CleanText(text))
		p.logger.Info("auto-detected document format",
			"strategy", strategyID, "lines", len(lines))
	} else {
		p.logger.Info("using vendor-prescribed strategy",
			"strategy", strategyID, "lines", len(lines))
	}

	for _, s := range fallbackChain(strategyFor(strategyID)) {
		if items := s.Run(p.logger, lines); len(items) > 0 {
			return items
		}
	}
	return []entity.LineItem{}
}

// fallbackChain orders the chosen strategy first, then the remaining
// distinct strategies as a recovery net for misdetected formats.
func fallbackChain(chosen *Strategy) []*Strategy {
	chain := []*Strategy{chosen}
	for _, s := range []*Strategy{genericStrategy, spsStrategy} {
		if s != chosen {
			chain = append(chain, s)
		}
	}
	return chain
}

// splitClean splits text into lines, repairs each one, and drops the
// empties.
func splitClean(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\f'
	})
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if cleaned := CleanLine(l); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}
