package config

import "time"

// Config is the consensus core's full configuration document.
type Config struct {
	AI    AIConfig    `yaml:"ai"`
	Redis RedisConfig `yaml:"redis"`
	Log   LogConfig   `yaml:"log"`
}

// AIConfig is the `ai` section spec.md §6 describes.
type AIConfig struct {
	Providers           []ProviderConfig  `yaml:"providers"`
	MinConsensusScore   float64           `yaml:"min_consensus_score"`
	MinConfidence       float64           `yaml:"min_confidence"`
	RequireAllProviders bool              `yaml:"require_all_providers"`
	SignalCacheMinutes  int               `yaml:"signal_cache_minutes"`
	LookbackCandles     int               `yaml:"lookback_candles"`
	LookbackMin         int               `yaml:"lookback_min"`
	LookbackMax         int               `yaml:"lookback_max"`
	MaxRationaleChars   int               `yaml:"max_rationale_chars"`
	MinParticipants     int               `yaml:"min_participants"`
	GraceSeconds        float64           `yaml:"grace_seconds"`
	MaxConcurrentCalls  int               `yaml:"max_concurrent_provider_calls"`
	ModelOverrides      map[string]string `yaml:"model_overrides"`

	// CredentialGatedProviders lists provider ids disabled at load time
	// because their credential environment variable was absent
	// (spec.md §6). Populated by Loader.Load; not part of the YAML
	// schema.
	CredentialGatedProviders []string `yaml:"-"`
}

// ProviderConfig is one entry of `ai.providers[]`.
type ProviderConfig struct {
	ID         string        `yaml:"id"`
	Model      string        `yaml:"model"`
	Weight     float64       `yaml:"weight"`
	Enabled    bool          `yaml:"enabled"`
	TimeoutMs  int           `yaml:"timeout_ms"`
	MaxRetries int           `yaml:"max_retries"`
	BaseURL    string        `yaml:"base_url"`
}

// Timeout returns the provider's per-call deadline as a time.Duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// RedisConfig configures the optional L2 signal cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig configures the zap logger built at wiring time.
type LogConfig struct {
	Level string `yaml:"level"`
}
