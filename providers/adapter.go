package providers

import (
	"context"
	"time"

	"github.com/quantsignal/consensus/types"
)

// Adapter is the contract a single provider integration fulfills. Call
// must never panic and must never block past deadline; on deadline
// overrun it returns a *types.ProviderReply with StatusTimeoutErr
// rather than propagating context.DeadlineExceeded to the caller, so
// the orchestrator never has to special-case context errors per
// vendor.
type Adapter interface {
	// ID is the provider identifier used in configuration, caching, and
	// the output schema (e.g. "chatgpt", "claude", "gemini").
	ID() string

	// Call sends prompt to the provider and returns its reply. deadline
	// is the absolute wall-clock time this call must return by; the
	// adapter derives its own context from it rather than trusting ctx's
	// deadline alone, since ctx may carry the global fan-out deadline
	// and the adapter must still honor a tighter per-provider timeout.
	Call(ctx context.Context, prompt string, deadline time.Time) (*types.ProviderReply, error)
}
