package config

import (
	"fmt"

	"github.com/quantsignal/consensus/types"
)

// ConfigError is raised only at configuration load time (spec.md §7);
// it is a *types.Error so callers can use the same ErrorCode machinery
// as request-time faults.
type ConfigError = types.Error

// NewConfigError builds a ConfigError with code ErrConfigUnreadable.
func NewConfigError(msg string) *ConfigError {
	return types.NewError(types.ErrConfigUnreadable, msg)
}

// Validate checks load-time invariants: provider ids are present and
// unique, enabled-provider weights lie in [0,1], and enabled-provider
// weights sum to 1.0 within the tolerance spec.md §6 specifies. Returns
// a *types.Error with ErrConfigWeightSum for a bad sum and
// ErrConfigUnreadable for the other faults.
func Validate(cfg *Config) error {
	const tolerance = 1e-6

	seen := make(map[string]bool, len(cfg.AI.Providers))
	var sum float64
	for _, p := range cfg.AI.Providers {
		if p.ID == "" {
			return types.NewError(types.ErrConfigUnreadable, "provider entry missing id")
		}
		if seen[p.ID] {
			return types.NewError(types.ErrConfigUnreadable, fmt.Sprintf("duplicate provider id: %s", p.ID))
		}
		seen[p.ID] = true
		if !p.Enabled {
			continue
		}
		if p.Weight < 0 || p.Weight > 1 {
			return types.NewError(types.ErrConfigUnreadable, fmt.Sprintf("provider %s weight out of [0,1]: %v", p.ID, p.Weight))
		}
		sum += p.Weight
	}

	if len(cfg.AI.Providers) > 0 && hasEnabled(cfg) {
		diff := sum - 1.0
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			return types.NewError(types.ErrConfigWeightSum,
				fmt.Sprintf("AI provider weights must sum to 1.0, got %.4g", sum))
		}
	}

	return nil
}

func hasEnabled(cfg *Config) bool {
	for _, p := range cfg.AI.Providers {
		if p.Enabled {
			return true
		}
	}
	return false
}
