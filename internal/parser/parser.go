// Package parser turns the free-text reply of an LLM into a fully populated
// types.AnalysisResult.
//
// The reply is read line by line. A line whose folded form starts with a
// keyword from the KeywordTable opens that field's section; the text after
// its first colon becomes the field value. Lines that open nothing continue
// the active section and are joined with single spaces. Parsing never fails:
// missing or unreadable sections keep fail-safe defaults (WAIT, no position,
// HIGH risk, "No detectado").
package parser

import (
	"strings"

	"chart-advisor/internal/types"
)

// defaultDecisionText is the raw decision used when no DECISION section is
// present; it canonicalizes to WAIT.
const defaultDecisionText = "ESPERAR"

// Parser is stateless apart from its immutable table and is safe for
// concurrent use.
type Parser struct {
	table KeywordTable
}

// New returns a parser using table, or the default table when table is empty.
func New(table KeywordTable) *Parser {
	if len(table) == 0 {
		table = DefaultTable()
	}
	return &Parser{table: table}
}

var defaultParser = New(nil)

// Parse parses raw with the default keyword table.
func Parse(raw string) types.AnalysisResult {
	return defaultParser.Parse(raw)
}

// Table returns the parser's keyword table.
func (p *Parser) Table() KeywordTable {
	return p.table
}

func (p *Parser) Parse(raw string) types.AnalysisResult {
	values := map[Field]string{
		FieldTechnical: types.NotDetected,
		FieldDecision:  defaultDecisionText,
		FieldPosition:  "",
		FieldRisk:      "",
		FieldRationale: types.NotDetected,
	}
	seen := make(map[Field]bool, len(values))

	var current Field
	active := false

	for _, line := range strings.Split(clean(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if f, ok := p.table.Match(fold(line)); ok {
			values[f] = headerValue(line)
			seen[f] = true
			current, active = f, true
			continue
		}

		if !active {
			continue
		}
		if v := values[current]; v == "" || v == types.NotDetected {
			values[current] = line
		} else {
			values[current] = v + " " + line
		}
	}

	res := types.DefaultAnalysisResult()
	res.TechnicalSummary = textOrSentinel(values[FieldTechnical])
	res.Rationale = textOrSentinel(values[FieldRationale])

	res.Decision = CanonicalDecision(values[FieldDecision])
	if seen[FieldDecision] {
		res.DecisionText = values[FieldDecision]
	}
	res.PositionText = values[FieldPosition]
	res.PositionType = CanonicalPosition(values[FieldPosition])
	res.RiskText = values[FieldRisk]
	res.Risk = CanonicalRisk(values[FieldRisk])

	return res
}

func textOrSentinel(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.NotDetected
	}
	return s
}
