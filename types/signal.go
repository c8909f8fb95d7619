package types

import "time"

// ConsensusSignal is the core's output. Construct it only via
// NewConsensusSignal; once built it must not be mutated by callers.
type ConsensusSignal struct {
	pair              string
	timeframe         Timeframe
	asOf              time.Time
	direction         Direction
	confidence        float64
	combinedReasoning string
	activeProviders   []string
	effectiveWeights  map[string]float64
	shouldTrade       bool
	reason            string
	generatedAt       time.Time
}

// ConsensusSignalParams is the input to NewConsensusSignal.
type ConsensusSignalParams struct {
	Pair              string
	Timeframe         Timeframe
	AsOf              time.Time
	Direction         Direction
	Confidence        float64
	CombinedReasoning string
	ActiveProviders   []string
	EffectiveWeights  map[string]float64
	ShouldTrade       bool
	Reason            string
	GeneratedAt       time.Time
}

// NewConsensusSignal builds an immutable ConsensusSignal from params,
// defensively copying the mutable fields so the caller can't reach back
// in and mutate state after construction (spec.md §3 invariant).
func NewConsensusSignal(p ConsensusSignalParams) ConsensusSignal {
	providers := make([]string, len(p.ActiveProviders))
	copy(providers, p.ActiveProviders)

	weights := make(map[string]float64, len(p.EffectiveWeights))
	for k, v := range p.EffectiveWeights {
		weights[k] = v
	}

	return ConsensusSignal{
		pair:              p.Pair,
		timeframe:         p.Timeframe,
		asOf:              p.AsOf,
		direction:         p.Direction,
		confidence:        p.Confidence,
		combinedReasoning: p.CombinedReasoning,
		activeProviders:   providers,
		effectiveWeights:  weights,
		shouldTrade:       p.ShouldTrade,
		reason:            p.Reason,
		generatedAt:       p.GeneratedAt,
	}
}

func (s ConsensusSignal) Pair() string      { return s.pair }
func (s ConsensusSignal) Timeframe() Timeframe { return s.timeframe }
func (s ConsensusSignal) AsOf() time.Time   { return s.asOf }
func (s ConsensusSignal) Direction() Direction { return s.direction }
func (s ConsensusSignal) Confidence() float64 { return s.confidence }
func (s ConsensusSignal) CombinedReasoning() string { return s.combinedReasoning }
func (s ConsensusSignal) ShouldTrade() bool  { return s.shouldTrade }
func (s ConsensusSignal) Reason() string     { return s.reason }
func (s ConsensusSignal) GeneratedAt() time.Time { return s.generatedAt }

// ActiveProviders returns a defensive copy of the contributing provider
// ids.
func (s ConsensusSignal) ActiveProviders() []string {
	out := make([]string, len(s.activeProviders))
	copy(out, s.activeProviders)
	return out
}

// EffectiveWeights returns a defensive copy of the renormalized weights
// actually used for this signal.
func (s ConsensusSignal) EffectiveWeights() map[string]float64 {
	out := make(map[string]float64, len(s.effectiveWeights))
	for k, v := range s.effectiveWeights {
		out[k] = v
	}
	return out
}
