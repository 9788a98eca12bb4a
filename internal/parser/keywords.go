package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Field identifies one labeled section of an LLM reply.
type Field int

const (
	FieldTechnical Field = iota
	FieldDecision
	FieldPosition
	FieldRisk
	FieldRationale
)

var fieldNames = map[Field]string{
	FieldTechnical: "technical_summary",
	FieldDecision:  "decision",
	FieldPosition:  "position_type",
	FieldRisk:      "risk",
	FieldRationale: "rationale",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField maps a configuration name (e.g. "risk") to its Field.
func ParseField(name string) (Field, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for f, fn := range fieldNames {
		if fn == n {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown section field %q", name)
}

// Section binds a field to the header keywords that open it.
type Section struct {
	Field    Field
	Keywords []string
}

// KeywordTable is the ordered header table. A line opens the section of the
// first entry, and within it the first keyword, whose keyword is a prefix of
// the folded line. Reordering entries changes how ambiguous lines resolve.
type KeywordTable []Section

// DefaultTable returns the built-in table matching the prompt templates.
func DefaultTable() KeywordTable {
	return KeywordTable{
		{Field: FieldTechnical, Keywords: []string{"ANALISIS", "ANALYSIS", "ESTRUCTURA", "DESCRIP"}},
		{Field: FieldDecision, Keywords: []string{"DECISION", "RECOMEND"}},
		{Field: FieldPosition, Keywords: []string{"TIPO", "OPERACIO", "ACCIO", "POSICIO", "POSITION"}},
		{Field: FieldRisk, Keywords: []string{"RIESGO", "RISK"}},
		{Field: FieldRationale, Keywords: []string{"MOTIVO", "MOTIVA", "JUSTIFICA", "RAZON", "REASON", "RATIONALE", "POR QUE"}},
	}
}

// NewTable validates sections and folds their keywords so they compare
// against folded lines.
func NewTable(sections []Section) (KeywordTable, error) {
	if len(sections) == 0 {
		return nil, errors.New("keyword table is empty")
	}
	seen := make(map[Field]bool, len(sections))
	table := make(KeywordTable, 0, len(sections))
	for _, s := range sections {
		if _, ok := fieldNames[s.Field]; !ok {
			return nil, fmt.Errorf("unknown section field %d", int(s.Field))
		}
		if seen[s.Field] {
			return nil, fmt.Errorf("section %s listed twice", s.Field)
		}
		seen[s.Field] = true

		kws := make([]string, 0, len(s.Keywords))
		for _, kw := range s.Keywords {
			if k := fold(strings.TrimSpace(kw)); k != "" {
				kws = append(kws, k)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("section %s has no keywords", s.Field)
		}
		table = append(table, Section{Field: s.Field, Keywords: kws})
	}
	return table, nil
}

// Match reports which section a folded line opens, if any.
func (t KeywordTable) Match(folded string) (Field, bool) {
	for _, s := range t {
		for _, kw := range s.Keywords {
			if strings.HasPrefix(folded, kw) {
				return s.Field, true
			}
		}
	}
	return 0, false
}
