package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"chart-advisor/internal/types"
)

// fold uppercases s and strips combining accents ("Decisión" -> "DECISION").
// Only used for matching; extracted values keep their original spelling.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// clean strips markdown decoration (headings, list bullets, * and _
// emphasis) so headers can be matched at the start of each line.
func clean(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "*", "")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = cleanLine(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var bullets = []string{"- ", "+ ", "• "}

// cleanLine drops heading markers, a leading bullet and underscore emphasis
// wrapped around a header. Underscores inside values are kept.
func cleanLine(l string) string {
	l = strings.TrimLeft(l, " \t")
	l = strings.TrimLeft(strings.TrimLeft(l, "#"), " \t")
	for _, b := range bullets {
		if strings.HasPrefix(l, b) {
			l = strings.TrimLeft(l[len(b):], " \t")
			break
		}
	}
	if !strings.HasPrefix(l, "_") {
		return l
	}
	l = strings.TrimRight(strings.TrimLeft(l, "_"), "_")
	if head, rest, ok := strings.Cut(l, ":"); ok {
		l = strings.TrimRight(head, "_") + ":" + strings.TrimLeft(rest, "_")
	}
	return l
}

// headerValue returns what follows the first colon of a header line, or ""
// when the header carries no value on the same line.
func headerValue(line string) string {
	_, after, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}

func words(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func hasWord(ws []string, set map[string]bool) bool {
	for _, w := range ws {
		if set[w] {
			return true
		}
	}
	return false
}

var (
	operateTokens  = []string{"OPERAR", "OPERATE"}
	negationTokens = []string{"NO", "NOT"}
	waitTokens     = []string{"ESPERAR", "WAIT"}

	highRiskWords   = wordSet("ALTO", "ALTA", "HIGH", "ELEVADO", "ELEVADA")
	mediumRiskWords = wordSet("MEDIO", "MEDIA", "MEDIUM", "MODERADO", "MODERADA", "MODERATE")
	lowRiskWords    = wordSet("BAJO", "BAJA", "LOW")

	buyWords  = wordSet("COMPRA", "COMPRAR", "BUY", "LONG", "LARGO", "ALCISTA")
	sellWords = wordSet("VENTA", "VENDER", "SELL", "SHORT", "CORTO", "BAJISTA")
)

func wordSet(ws ...string) map[string]bool {
	m := make(map[string]bool, len(ws))
	for _, w := range ws {
		m[w] = true
	}
	return m
}

// CanonicalDecision maps free text to one of the three decisions. Operating
// requires an explicit operate token with no negation anywhere in the text;
// anything that is neither that nor a wait falls to DO_NOT_OPERATE.
func CanonicalDecision(text string) types.Decision {
	d := fold(text)
	if containsAny(d, operateTokens) && !containsAny(d, negationTokens) {
		return types.DecisionOperate
	}
	if containsAny(d, waitTokens) {
		return types.DecisionWait
	}
	return types.DecisionDoNotOperate
}

// CanonicalRisk picks the highest level mentioned; nothing recognizable is HIGH.
func CanonicalRisk(text string) types.RiskLevel {
	ws := words(fold(text))
	switch {
	case hasWord(ws, highRiskWords):
		return types.RiskHigh
	case hasWord(ws, mediumRiskWords):
		return types.RiskMedium
	case hasWord(ws, lowRiskWords):
		return types.RiskLow
	default:
		return types.RiskHigh
	}
}

// CanonicalPosition returns BUY or SELL only when exactly one side is named.
func CanonicalPosition(text string) types.PositionType {
	ws := words(fold(text))
	buy, sell := hasWord(ws, buyWords), hasWord(ws, sellWords)
	switch {
	case buy && !sell:
		return types.PositionBuy
	case sell && !buy:
		return types.PositionSell
	default:
		return types.PositionNone
	}
}
