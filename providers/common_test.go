package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantsignal/consensus/types"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		status int
		msg    string
		want   types.ProviderStatus
	}{
		{401, "invalid api key", types.StatusAuthErr},
		{403, "forbidden", types.StatusAuthErr},
		{429, "rate limited", types.StatusRateLimitErr},
		{429, "quota exceeded, please upgrade your plan", types.StatusQuotaErr},
		{400, "quota exceeded for this month", types.StatusQuotaErr},
		{400, "malformed request body", types.StatusServerErr},
		{503, "upstream unavailable", types.StatusServerErr},
		{0, "dial tcp: no route", types.StatusTransportErr},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ClassifyError(c.status, c.msg), "status=%d msg=%q", c.status, c.msg)
	}
}

func TestRetryOnce_NoRetryWhenMaxRetriesZero(t *testing.T) {
	calls := 0
	call := func() (*types.ProviderReply, error) {
		calls++
		return &types.ProviderReply{Status: types.StatusRateLimitErr}, nil
	}
	_, _ = RetryOnce(context.Background(), 0, time.Millisecond, call)
	require.Equal(t, 1, calls)
}

func TestRetryOnce_RetriesOnceForRateLimit(t *testing.T) {
	calls := 0
	call := func() (*types.ProviderReply, error) {
		calls++
		if calls == 1 {
			return &types.ProviderReply{Status: types.StatusRateLimitErr}, nil
		}
		return &types.ProviderReply{Status: types.StatusOK, RawText: "ok"}, nil
	}
	reply, err := RetryOnce(context.Background(), 1, time.Millisecond, call)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, types.StatusOK, reply.Status)
}

func TestRetryOnce_NoRetryForNonRateLimitFailure(t *testing.T) {
	calls := 0
	call := func() (*types.ProviderReply, error) {
		calls++
		return &types.ProviderReply{Status: types.StatusAuthErr}, nil
	}
	_, _ = RetryOnce(context.Background(), 3, time.Millisecond, call)
	require.Equal(t, 1, calls)
}

func TestRetryOnce_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	call := func() (*types.ProviderReply, error) {
		calls++
		return &types.ProviderReply{Status: types.StatusRateLimitErr}, nil
	}
	_, _ = RetryOnce(ctx, 1, time.Second, call)
	require.Equal(t, 1, calls)
}

func TestClassifyContextErr(t *testing.T) {
	require.Equal(t, types.StatusTimeoutErr, ClassifyContextErr(context.DeadlineExceeded))
	require.Equal(t, types.StatusTransportErr, ClassifyContextErr(errors.New("boom")))
}
