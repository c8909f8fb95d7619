package consensus

// ProviderStatusView is the read-only introspection record
// get_provider_status exposes (spec.md §6).
type ProviderStatusView struct {
	ConfiguredWeight       float64 `json:"configured_weight"`
	EffectiveWeightIfAlone float64 `json:"effective_weight_if_alone"`
	Availability           string  `json:"availability"`
	LastErrorKind          string  `json:"last_error_kind,omitempty"`
}

// GetProviderStatus reports each configured provider's current
// availability and weighting, without making any provider calls.
func (o *Orchestrator) GetProviderStatus() map[string]ProviderStatusView {
	out := make(map[string]ProviderStatusView, len(o.order))
	for _, id := range o.order {
		b := o.bindings[id]

		availability := "ENABLED"
		var lastError string
		if reason, disabled := o.availability.DisabledReason(id); disabled {
			availability = "DISABLED_SESSION"
			lastError = string(reason)
		} else if !b.Enabled {
			availability = "DISABLED_CONFIG"
		}

		effectiveWeightIfAlone := 0.0
		if b.Enabled && o.availability.Enabled(id) {
			effectiveWeightIfAlone = 1.0
		}

		out[id] = ProviderStatusView{
			ConfiguredWeight:       b.Weight,
			EffectiveWeightIfAlone: effectiveWeightIfAlone,
			Availability:           availability,
			LastErrorKind:          lastError,
		}
	}
	return out
}
