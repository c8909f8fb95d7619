package scorer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/quantsignal/consensus/types"
)

var (
	directionRe = regexp.MustCompile(`(?im)^\s*DIRECTION:\s*([A-Za-z]+)\s*$`)
	confidenceRe = regexp.MustCompile(`(?im)^\s*CONFIDENCE:\s*(-?[0-9]+(?:\.[0-9]+)?)\s*%?\s*$`)
	rationaleRe  = regexp.MustCompile(`(?im)^\s*RATIONALE:\s*(.+)$`)
	keyFactorsRe = regexp.MustCompile(`(?im)^\s*KEY_FACTORS:\s*(.+)$`)
)

// Token sets spec.md §4.3 maps onto the closed Direction enum. A
// provider that answers "BUY" or "BULLISH" means the same thing as
// one that answers "LONG"; the parser, not the provider, owns
// normalization.
var directionTokens = map[string]types.Direction{
	"LONG": types.Long, "BUY": types.Long, "BULLISH": types.Long,
	"SHORT": types.Short, "SELL": types.Short, "BEARISH": types.Short,
	"NEUTRAL": types.Neutral, "HOLD": types.Neutral, "WAIT": types.Neutral,
}

// DefaultMaxRationaleChars is used when a caller passes maxRationaleLen <= 0.
const DefaultMaxRationaleChars = 500

// Parse turns reply's raw text into a ScoredReply. It never returns
// an error: a reply that cannot be meaningfully parsed comes back
// with ParseStatus Malformed and a Neutral/zero-confidence body, so
// every code path downstream has a value to work with.
func Parse(providerID string, reply *types.ProviderReply, maxRationaleLen int) *types.ScoredReply {
	if maxRationaleLen <= 0 {
		maxRationaleLen = DefaultMaxRationaleChars
	}

	out := &types.ScoredReply{
		ProviderID: providerID,
		Direction:  types.Neutral,
	}

	if reply == nil || reply.Status != types.StatusOK {
		out.ParseStatus = types.ParseMalformed
		return out
	}

	partial := false

	direction, ok := parseDirection(reply.RawText)
	if !ok {
		out.ParseStatus = types.ParseMalformed
		return out
	}
	out.Direction = direction

	confidence, ok := parseConfidence(reply.RawText)
	if !ok {
		out.ParseStatus = types.ParseMalformed
		return out
	}
	if confidence.clamped {
		partial = true
	}
	out.Confidence = confidence.value

	rationale, truncated := parseRationale(reply.RawText, maxRationaleLen)
	out.Rationale = rationale
	if truncated {
		partial = true
	}

	out.KeyFactors = parseKeyFactors(reply.RawText)

	if partial {
		out.ParseStatus = types.ParsePartialOK
	} else {
		out.ParseStatus = types.ParseOK
	}
	return out
}

func parseDirection(raw string) (types.Direction, bool) {
	m := directionRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	d, ok := directionTokens[strings.ToUpper(m[1])]
	return d, ok
}

type confidenceResult struct {
	value   float64
	clamped bool
}

// parseConfidence accepts either of the two scales spec.md §4.3 permits
// a provider to answer in: a 0-100 percentage ("CONFIDENCE: 80") or an
// already-normalized 0-1 fraction ("CONFIDENCE: 0.8"). A captured value
// with a decimal point that is already <= 1 is assumed to be the
// fractional scale and is used as-is; everything else is assumed to be
// a percentage and divided by 100. See DESIGN.md's Open Question
// decision on confidence scale ambiguity.
func parseConfidence(raw string) (confidenceResult, bool) {
	m := confidenceRe.FindStringSubmatch(raw)
	if m == nil {
		return confidenceResult{}, false
	}
	numStr := m[1]
	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return confidenceResult{}, false
	}

	clamped := false
	var value float64
	if strings.Contains(numStr, ".") && num <= 1 {
		value = num
		if value < 0 {
			value = 0
			clamped = true
		}
	} else {
		if num < 0 {
			num = 0
			clamped = true
		}
		if num > 100 {
			num = 100
			clamped = true
		}
		value = num / 100.0
	}
	if value > 1 {
		value = 1
		clamped = true
	}

	return confidenceResult{value: value, clamped: clamped}, true
}

// parseKeyFactors extracts the optional comma-separated KEY_FACTORS
// line (spec.md §3's key_factors field). Its absence, or the literal
// "none", is not an error: it simply leaves the field empty.
func parseKeyFactors(raw string) []string {
	m := keyFactorsRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	text := strings.TrimSpace(m[1])
	if text == "" || strings.EqualFold(text, "none") {
		return nil
	}

	parts := strings.Split(text, ",")
	factors := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			factors = append(factors, p)
		}
	}
	if len(factors) == 0 {
		return nil
	}
	return factors
}

func parseRationale(raw string, maxLen int) (string, bool) {
	m := rationaleRe.FindStringSubmatch(raw)
	text := ""
	if m != nil {
		text = strings.TrimSpace(m[1])
	}
	if len(text) <= maxLen {
		return text, false
	}
	if maxLen <= 1 {
		return text[:maxLen], true
	}
	return strings.TrimSpace(text[:maxLen-1]) + "…", true
}
