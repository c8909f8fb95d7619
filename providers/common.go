package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quantsignal/consensus/types"
)

// ClassifyError maps an HTTP status code and error message onto the
// closed ProviderStatus taxonomy every adapter reports through
// (spec.md §4.1 "error classification"). It is the generalized
// successor of MapHTTPError: the teacher maps straight to a
// retryable *llm.Error, this maps to the status enum the consensus
// orchestrator's availability map actually switches on.
func ClassifyError(status int, msg string) types.ProviderStatus {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.StatusAuthErr
	case http.StatusTooManyRequests:
		if isQuotaMessage(msg) {
			return types.StatusQuotaErr
		}
		return types.StatusRateLimitErr
	case http.StatusBadRequest:
		if isQuotaMessage(msg) {
			return types.StatusQuotaErr
		}
		return types.StatusServerErr
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return types.StatusServerErr
	case 529:
		return types.StatusServerErr
	case 0:
		return types.StatusTransportErr
	default:
		if status >= 500 {
			return types.StatusServerErr
		}
		return types.StatusServerErr
	}
}

// isQuotaMessage reports whether msg's wording indicates an
// account/billing exhaustion rather than a transient condition — the
// same keyword set spec.md §4.1 uses to split both 429 and 400 into
// QuotaErr versus their respective defaults.
func isQuotaMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "credit") || strings.Contains(lower, "insufficient")
}

// ClassifyContextErr maps a context cancellation/deadline error onto
// the provider status an adapter should report, distinguishing a
// caller-driven cancellation (treated as a transport fault, never
// retried) from the adapter's own deadline overrun.
func ClassifyContextErr(err error) types.ProviderStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.StatusTimeoutErr
	}
	return types.StatusTransportErr
}

// RetryOnce runs call once, and if it fails with a retryable
// RateLimitErr and maxRetries > 0, waits backoff and runs it exactly
// one more time (spec.md §4.1: "at most one retry, only for
// RateLimitErr, only if the provider's configured max_retries > 0").
// This deliberately drops the teacher's exponential-backoff ladder in
// favor of the spec's single-retry rule; see DESIGN.md.
func RetryOnce(ctx context.Context, maxRetries int, backoff time.Duration, call func() (*types.ProviderReply, error)) (*types.ProviderReply, error) {
	reply, err := call()
	if maxRetries <= 0 {
		return reply, err
	}
	if reply == nil || reply.Status != types.StatusRateLimitErr {
		return reply, err
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return reply, err
	case <-timer.C:
	}
	return call()
}
