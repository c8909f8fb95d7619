package consensus

import (
	"sync"

	"github.com/quantsignal/consensus/types"
)

// Availability tracks which providers are ENABLED versus
// DISABLED_SESSION for the lifetime of one orchestrator (spec.md §4.1,
// §4.4 step 5). It is a plain mutex-guarded map, constructed once and
// handed to the orchestrator, not a package-level singleton: two
// orchestrators in the same process (e.g. in tests) never share
// state.
type Availability struct {
	mu        sync.RWMutex
	disabled  map[string]types.ProviderStatus
}

// NewAvailability builds an Availability with every provider enabled.
func NewAvailability() *Availability {
	return &Availability{disabled: make(map[string]types.ProviderStatus)}
}

// Enabled reports whether providerID may still be called this
// session.
func (a *Availability) Enabled(providerID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, disabled := a.disabled[providerID]
	return !disabled
}

// Disable moves providerID to DISABLED_SESSION, recording reason for
// status introspection. Idempotent.
func (a *Availability) Disable(providerID string, reason types.ProviderStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disabled[providerID] = reason
}

// NoteOutcome applies spec.md §4.4 step 5's state machine: a status
// that is session-disabling (AuthErr, QuotaErr) transitions the
// provider to DISABLED_SESSION; every other status leaves it ENABLED,
// including TimeoutErr and RateLimitErr, which are transient by
// definition.
func (a *Availability) NoteOutcome(providerID string, status types.ProviderStatus) {
	if status.SessionDisabling() {
		a.Disable(providerID, status)
	}
}

// DisabledReason returns the status that caused providerID to be
// disabled, if any.
func (a *Availability) DisabledReason(providerID string) (types.ProviderStatus, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	reason, ok := a.disabled[providerID]
	return reason, ok
}
