package types

// ScoredReply is C3's output: a provider's raw text turned into a
// numeric, validated record.
type ScoredReply struct {
	ProviderID  string
	Direction   Direction
	Confidence  float64 // normalized to [0,1]
	Rationale   string
	KeyFactors  []string
	ParseStatus ParseStatus
}
