package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantsignal/consensus/types"
)

func scored(id string, dir types.Direction, confidence float64) *types.ScoredReply {
	return &types.ScoredReply{ProviderID: id, Direction: dir, Confidence: confidence, ParseStatus: types.ParseOK}
}

func TestReweight_NormalizesAcrossContributorsOnly(t *testing.T) {
	configured := map[string]float64{"a": 0.40, "b": 0.35, "c": 0.25}
	got := Reweight([]string{"b", "c"}, configured)

	require.InDelta(t, 0.5833, got["b"], 1e-3)
	require.InDelta(t, 0.4167, got["c"], 1e-3)
	require.NotContains(t, got, "a")
}

func TestReweight_EmptyContributorsYieldsEmptyWeights(t *testing.T) {
	got := Reweight(nil, map[string]float64{"a": 1.0})
	require.Empty(t, got)
}

func TestAggregate_NeutralWinsTieOverLong(t *testing.T) {
	contributors := []*types.ScoredReply{
		scored("a", types.Neutral, 0.5),
		scored("b", types.Long, 0.5),
	}
	weights := map[string]float64{"a": 0.5, "b": 0.5}

	dir, conf := Aggregate(contributors, weights)
	require.Equal(t, types.Neutral, dir)
	require.InDelta(t, 0.25, conf, 1e-9)
}

func TestAggregate_LongWinsTieOverShort(t *testing.T) {
	contributors := []*types.ScoredReply{
		scored("a", types.Long, 0.6),
		scored("b", types.Short, 0.6),
	}
	weights := map[string]float64{"a": 0.5, "b": 0.5}

	dir, _ := Aggregate(contributors, weights)
	require.Equal(t, types.Long, dir)
}

func TestAggregate_NoContributorsIsNeutralZero(t *testing.T) {
	dir, conf := Aggregate(nil, map[string]float64{})
	require.Equal(t, types.Neutral, dir)
	require.InDelta(t, 0.0, conf, 1e-9)
}

func TestAvailability_OnlyAuthAndQuotaDisableSession(t *testing.T) {
	a := NewAvailability()

	a.NoteOutcome("p1", types.StatusTimeoutErr)
	require.True(t, a.Enabled("p1"))

	a.NoteOutcome("p1", types.StatusRateLimitErr)
	require.True(t, a.Enabled("p1"))

	a.NoteOutcome("p1", types.StatusAuthErr)
	require.False(t, a.Enabled("p1"))

	reason, ok := a.DisabledReason("p1")
	require.True(t, ok)
	require.Equal(t, types.StatusAuthErr, reason)
}
