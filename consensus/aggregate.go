package consensus

import (
	"github.com/quantsignal/consensus/types"
)

// directionPriority gives the NEUTRAL > LONG > SHORT tie-break order
// spec.md §4.4 step 8 specifies: when two directions score equal, the
// one listed first here wins.
var directionPriority = []types.Direction{types.Neutral, types.Long, types.Short}

// Reweight computes each contributor's effective weight: its
// configured weight divided by the sum of configured weights across
// all contributors (spec.md §3, "effective_weight(p) = p.weight /
// sum(weights of contributors)"). contributors not present in
// configuredWeights are treated as weight 0 and get effective weight 0.
func Reweight(contributorIDs []string, configuredWeights map[string]float64) map[string]float64 {
	var sum float64
	for _, id := range contributorIDs {
		sum += configuredWeights[id]
	}

	effective := make(map[string]float64, len(contributorIDs))
	if sum <= 0 {
		return effective
	}
	for _, id := range contributorIDs {
		effective[id] = configuredWeights[id] / sum
	}
	return effective
}

// Aggregate computes the winning direction and its confidence-weighted
// score from a set of contributing ScoredReplies and their effective
// weights (spec.md §4.4 step 8). A ScoredReply not present in
// effectiveWeights does not contribute. With no contributors at all,
// it returns (NEUTRAL, 0).
func Aggregate(contributors []*types.ScoredReply, effectiveWeights map[string]float64) (types.Direction, float64) {
	scores := map[types.Direction]float64{types.Long: 0, types.Short: 0, types.Neutral: 0}

	for _, c := range contributors {
		w, ok := effectiveWeights[c.ProviderID]
		if !ok {
			continue
		}
		scores[c.Direction] += w * c.Confidence
	}

	bestDir := types.Neutral
	bestScore := -1.0
	for _, dir := range directionPriority {
		s := scores[dir]
		if s > bestScore {
			bestScore = s
			bestDir = dir
		}
	}

	if bestScore < 0 {
		return types.Neutral, 0
	}
	return bestDir, bestScore
}
