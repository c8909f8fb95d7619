package anthropic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantsignal/consensus/types"
)

func TestNew_ID(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key", Model: "claude-opus-4-5"})
	require.Equal(t, "claude", p.ID())
}

func TestNew_DefaultsMaxTokens(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key"})
	require.Equal(t, int64(1024), p.maxTokens)
}

func TestNew_CustomBaseURL(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key", BaseURL: "https://proxy.example.com"})
	require.NotNil(t, p)
}

// fakeStatusErr implements the statusCoder interface classifyFailure
// asserts for defensively, without depending on the SDK's own
// concrete error type.
type fakeStatusErr struct {
	code int
	msg  string
}

func (e *fakeStatusErr) Error() string   { return e.msg }
func (e *fakeStatusErr) StatusCode() int { return e.code }

func TestClassifyFailure_DeadlineExceeded(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key"})
	reply := p.classifyFailure(context.DeadlineExceeded, time.Millisecond)
	require.Equal(t, types.StatusTimeoutErr, reply.Status)
}

func TestClassifyFailure_Canceled(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key"})
	reply := p.classifyFailure(context.Canceled, time.Millisecond)
	require.Equal(t, types.StatusTransportErr, reply.Status)
}

func TestClassifyFailure_StatusCoded429Quota(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key"})
	err := &fakeStatusErr{code: 429, msg: "quota exceeded, please upgrade"}
	reply := p.classifyFailure(err, time.Millisecond)
	require.Equal(t, types.StatusQuotaErr, reply.Status)
}

func TestClassifyFailure_StatusCoded429RateLimit(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key"})
	err := &fakeStatusErr{code: 429, msg: "rate limited"}
	reply := p.classifyFailure(err, time.Millisecond)
	require.Equal(t, types.StatusRateLimitErr, reply.Status)
}

func TestClassifyFailure_UnrecognizedErrorIsTransport(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key"})
	reply := p.classifyFailure(errors.New("boom"), time.Millisecond)
	require.Equal(t, types.StatusTransportErr, reply.Status)
}

// TestCall_AlreadyExpiredDeadline exercises spec.md §8's timeout=0
// boundary: a deadline in the past must fail fast with
// StatusTimeoutErr rather than attempting any network I/O.
func TestCall_AlreadyExpiredDeadline(t *testing.T) {
	p := New(Config{ID: "claude", APIKey: "test-key"})
	reply, err := p.Call(context.Background(), "prompt", time.Now().Add(-time.Second))
	require.NoError(t, err)
	require.Equal(t, types.StatusTimeoutErr, reply.Status)
}
