package types

import "time"

// ProviderConfig is the per-provider record loaded from configuration.
type ProviderConfig struct {
	ID         string
	Model      string
	Weight     float64
	Enabled    bool
	Timeout    time.Duration
	MaxRetries int
}

// TokenUsage reports token counts when a provider surfaces them.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderReply is C1's output: one per provider call.
type ProviderReply struct {
	ProviderID string
	RawText    string
	Latency    time.Duration
	Usage      TokenUsage
	Status     ProviderStatus
}
