package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/quantsignal/consensus/types"
)

// Assembler renders SignalRequests into provider prompts. It carries
// no mutable state; Render is a pure function of its arguments.
type Assembler struct {
	// LookbackCandles bounds how many of the most recent bars are
	// rendered into the prompt body (spec.md §4.2).
	LookbackCandles int
}

// NewAssembler builds an Assembler with the given lookback bound.
func NewAssembler(lookbackCandles int) *Assembler {
	if lookbackCandles <= 0 {
		lookbackCandles = 50
	}
	return &Assembler{LookbackCandles: lookbackCandles}
}

// Render produces the deterministic prompt text for req under role.
// Two calls with equal req and role produce byte-identical output.
func (a *Assembler) Render(req *types.SignalRequest, role Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("prompt: unknown role %q", role)
	}

	bars := req.Bars
	if n := a.LookbackCandles; n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}

	var b strings.Builder
	b.WriteString(roleFraming(role))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Pair: %s\n", req.NormalizedPair())
	fmt.Fprintf(&b, "Timeframe: %s\n", req.Timeframe)
	fmt.Fprintf(&b, "As of: %s\n\n", req.AsOf.UTC().Format("2006-01-02T15:04:05Z"))

	if len(req.Indicators) > 0 {
		b.WriteString("Indicators:\n")
		for _, name := range sortedKeys(req.Indicators) {
			fmt.Fprintf(&b, "  %s: %s\n", name, formatPercent(req.Indicators[name]))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Recent bars (oldest to newest, %d of %d):\n", len(bars), len(req.Bars))
	b.WriteString("timestamp,open,high,low,close,volume\n")
	for _, bar := range bars {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s\n",
			bar.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			formatPrice(bar.Open),
			formatPrice(bar.High),
			formatPrice(bar.Low),
			formatPrice(bar.Close),
			formatPrice(bar.Volume),
		)
	}
	b.WriteString("\n")
	b.WriteString(responseSchema)

	return b.String(), nil
}

// formatPrice renders a price to 6 significant figures, the fixed
// precision spec.md §4.2 requires so identical inputs always produce
// an identical prompt regardless of the float's native precision.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// formatPercent renders an indicator value to 2 significant figures.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'g', 2, 64)
}

// sortedKeys returns m's keys in ascending order so map iteration
// (which Go deliberately randomizes) never leaks into the rendered
// prompt.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
