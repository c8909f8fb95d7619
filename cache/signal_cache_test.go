package cache

import (
	"context"
	"testing"
	"time"

	"github.com/quantsignal/consensus/types"
	"github.com/stretchr/testify/require"
)

func sampleSignal(pair string) types.ConsensusSignal {
	return types.NewConsensusSignal(types.ConsensusSignalParams{
		Pair:            pair,
		Timeframe:       types.Timeframe1h,
		Direction:       types.Long,
		Confidence:      0.7,
		ActiveProviders: []string{"chatgpt"},
		EffectiveWeights: map[string]float64{"chatgpt": 1.0},
		GeneratedAt:     time.Now(),
	})
}

func TestInProcessCache_PutThenGet(t *testing.T) {
	c := NewInProcessCache(10)
	ctx := context.Background()

	c.Put(ctx, "k1", sampleSignal("BTC-USD"), time.Minute)
	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, "BTC-USD", got.Pair())
	require.Equal(t, types.Long, got.Direction())
}

func TestInProcessCache_MissForUnknownKey(t *testing.T) {
	c := NewInProcessCache(10)
	_, ok := c.Get(context.Background(), "nope")
	require.False(t, ok)
}

func TestInProcessCache_ExpiresAfterTTL(t *testing.T) {
	c := NewInProcessCache(10)
	ctx := context.Background()

	c.Put(ctx, "k1", sampleSignal("ETH-USD"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "k1")
	require.False(t, ok)
}

func TestInProcessCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewInProcessCache(2)
	ctx := context.Background()

	c.Put(ctx, "a", sampleSignal("A"), time.Minute)
	c.Put(ctx, "b", sampleSignal("B"), time.Minute)
	// Touch "a" so "b" becomes the least recently used.
	_, _ = c.Get(ctx, "a")
	c.Put(ctx, "c", sampleSignal("C"), time.Minute)

	_, ok := c.Get(ctx, "b")
	require.False(t, ok, "b should have been evicted")

	_, ok = c.Get(ctx, "a")
	require.True(t, ok)
	_, ok = c.Get(ctx, "c")
	require.True(t, ok)
}

func TestTieredCache_PopulatesL1OnL2Hit(t *testing.T) {
	l1 := NewInProcessCache(10)
	l2 := NewInProcessCache(10)
	tiered := NewTieredCache(l1, l2)
	ctx := context.Background()

	l2.Put(ctx, "k1", sampleSignal("SOL-USD"), time.Minute)

	got, ok := tiered.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, "SOL-USD", got.Pair())

	_, ok = l1.Get(ctx, "k1")
	require.True(t, ok, "l2 hit should populate l1")
}

func TestTieredCache_NilL2IsFine(t *testing.T) {
	l1 := NewInProcessCache(10)
	tiered := NewTieredCache(l1, nil)
	ctx := context.Background()

	_, ok := tiered.Get(ctx, "absent")
	require.False(t, ok)

	tiered.Put(ctx, "k1", sampleSignal("XRP-USD"), time.Minute)
	got, ok := tiered.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, "XRP-USD", got.Pair())
}

func TestKey_BucketsWithinSameBarToSameKey(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	k1 := Key("btc-usd", types.Timeframe1h, base)
	k2 := Key("BTC-USD", types.Timeframe1h, base.Add(30*time.Minute))
	require.Equal(t, k1, k2)

	k3 := Key("btc-usd", types.Timeframe1h, base.Add(90*time.Minute))
	require.NotEqual(t, k1, k3)
}
