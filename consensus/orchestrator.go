package consensus

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/quantsignal/consensus/cache"
	"github.com/quantsignal/consensus/prompt"
	"github.com/quantsignal/consensus/providers"
	"github.com/quantsignal/consensus/scorer"
	"github.com/quantsignal/consensus/types"
)

// ProviderBinding ties a provider adapter to the configuration the
// orchestrator needs to drive it: weight, timeout, enabled flag and
// prompt role. Retries are configured on the adapter itself.
type ProviderBinding struct {
	Adapter providers.Adapter
	Weight  float64
	Timeout time.Duration
	Enabled bool
	// Role selects which of prompt's role-keyed templates (spec.md
	// §4.2) this provider is asked. Zero value falls back to
	// prompt.RoleTechnicalAnalysis.
	Role prompt.Role
}

// Config wires an Orchestrator.
type Config struct {
	Providers           map[string]ProviderBinding
	Cache               cache.SignalCache
	CacheTTL            time.Duration
	MinConsensusScore   float64
	MinConfidence       float64
	MinParticipants     int
	RequireAllProviders bool
	GraceSeconds        float64
	MaxConcurrentCalls  int
	MaxRationaleChars   int
	LookbackCandles     int
	LookbackMin         int
	LookbackMax         int
	Logger              *zap.Logger
}

// Orchestrator implements spec.md §4.4's fan-out, scoring, and
// consensus-aggregation algorithm.
type Orchestrator struct {
	bindings            map[string]ProviderBinding
	order               []string
	availability        *Availability
	cache               cache.SignalCache
	cacheTTL            time.Duration
	minConsensusScore   float64
	minConfidence       float64
	minParticipants     int
	requireAllProviders bool
	graceSeconds        float64
	sem                 *semaphore.Weighted
	assembler           *prompt.Assembler
	maxRationaleChars   int
	lookbackMin         int
	lookbackMax         int
	logger              *zap.Logger
}

// New builds an Orchestrator. Availability starts with every
// configured provider ENABLED.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxConcurrent := cfg.MaxConcurrentCalls
	if maxConcurrent <= 0 {
		maxConcurrent = 32
	}

	order := make([]string, 0, len(cfg.Providers))
	for id := range cfg.Providers {
		order = append(order, id)
	}
	sort.Strings(order)

	return &Orchestrator{
		bindings:            cfg.Providers,
		order:               order,
		availability:        NewAvailability(),
		cache:               cfg.Cache,
		cacheTTL:            cfg.CacheTTL,
		minConsensusScore:   cfg.MinConsensusScore,
		minConfidence:       cfg.MinConfidence,
		minParticipants:     cfg.MinParticipants,
		requireAllProviders: cfg.RequireAllProviders,
		graceSeconds:        cfg.GraceSeconds,
		sem:                 semaphore.NewWeighted(int64(maxConcurrent)),
		assembler:           prompt.NewAssembler(cfg.LookbackCandles),
		maxRationaleChars:   cfg.MaxRationaleChars,
		lookbackMin:         cfg.LookbackMin,
		lookbackMax:         cfg.LookbackMax,
		logger:              logger.With(zap.String("component", "consensus")),
	}
}

// Availability exposes the orchestrator's availability map for status
// reporting.
func (o *Orchestrator) Availability() *Availability { return o.availability }

// GenerateSignal runs the full algorithm of spec.md §4.4 and never
// returns an error: a request that fails validation, or a fan-out in
// which every provider fails, both come back as a NEUTRAL
// ConsensusSignal with ShouldTrade false (spec.md §7).
func (o *Orchestrator) GenerateSignal(ctx context.Context, req *types.SignalRequest) types.ConsensusSignal {
	now := time.Now().UTC()

	if verr := req.Validate(o.lookbackMin, o.lookbackMax); verr != nil {
		return o.neutralSignal(req, now, verr.Message)
	}

	key := cache.Key(req.NormalizedPair(), req.Timeframe, req.AsOf)
	if o.cache != nil {
		if cached, ok := o.cache.Get(ctx, key); ok {
			return cached
		}
	}

	enabledAtStart := o.enabledProviders(req)
	if len(enabledAtStart) == 0 {
		return o.neutralSignal(req, now, "no providers available")
	}

	replies := o.fanOut(ctx, req, enabledAtStart)

	contributors := make([]*types.ScoredReply, 0, len(replies))
	for _, id := range enabledAtStart {
		reply := replies[id]
		o.availability.NoteOutcome(id, reply.Status)

		scored := scorer.Parse(id, reply, o.maxRationaleChars)
		if scored.ParseStatus.Contributes() {
			contributors = append(contributors, scored)
		}
	}
	sort.Slice(contributors, func(i, j int) bool { return contributors[i].ProviderID < contributors[j].ProviderID })

	configuredWeights := make(map[string]float64, len(enabledAtStart))
	for _, id := range enabledAtStart {
		configuredWeights[id] = o.bindings[id].Weight
	}

	contributorIDs := make([]string, 0, len(contributors))
	for _, c := range contributors {
		contributorIDs = append(contributorIDs, c.ProviderID)
	}
	effectiveWeights := Reweight(contributorIDs, configuredWeights)

	direction, confidence := Aggregate(contributors, effectiveWeights)

	requireAll := o.requireAllProviders || req.RequireAllProviders
	shouldTrade := direction != types.Neutral &&
		confidence >= o.minConsensusScore &&
		confidence >= o.minConfidence &&
		len(contributors) >= o.minParticipants
	if requireAll && len(contributors) < len(enabledAtStart) {
		shouldTrade = false
	}

	reason := tradeReason(direction, confidence, len(contributors), len(enabledAtStart), o.minConsensusScore, requireAll, shouldTrade)

	signal := types.NewConsensusSignal(types.ConsensusSignalParams{
		Pair:              req.NormalizedPair(),
		Timeframe:         req.Timeframe,
		AsOf:              req.AsOf,
		Direction:         direction,
		Confidence:        confidence,
		CombinedReasoning: combineReasoning(contributors),
		ActiveProviders:   contributorIDs,
		EffectiveWeights:  effectiveWeights,
		ShouldTrade:       shouldTrade,
		Reason:            reason,
		GeneratedAt:       now,
	})

	if o.cache != nil {
		o.cache.Put(ctx, key, signal, o.cacheTTL)
	}

	return signal
}

// enabledProviders returns the deterministically ordered ids of
// providers that are both configured-enabled and not
// DISABLED_SESSION at the moment this request starts.
func (o *Orchestrator) enabledProviders(_ *types.SignalRequest) []string {
	out := make([]string, 0, len(o.order))
	for _, id := range o.order {
		b := o.bindings[id]
		if !b.Enabled {
			continue
		}
		if !o.availability.Enabled(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// fanOut calls every enabled provider concurrently, bounded by the
// global semaphore and a deadline of max(per-provider timeout) plus
// grace (spec.md §5). A provider that errors or overruns its own
// timeout comes back with a classified ProviderReply rather than a Go
// error; fanOut itself never fails.
func (o *Orchestrator) fanOut(ctx context.Context, req *types.SignalRequest, ids []string) map[string]*types.ProviderReply {
	var maxTimeout time.Duration
	for _, id := range ids {
		if t := o.bindings[id].Timeout; t > maxTimeout {
			maxTimeout = t
		}
	}
	globalDeadline := time.Now().Add(maxTimeout + time.Duration(o.graceSeconds*float64(time.Second)))

	fanCtx, cancel := context.WithDeadline(ctx, globalDeadline)
	defer cancel()

	results := make(map[string]*types.ProviderReply, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(fanCtx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := o.sem.Acquire(gctx, 1); err != nil {
				mu.Lock()
				results[id] = &types.ProviderReply{ProviderID: id, Status: types.StatusTimeoutErr}
				mu.Unlock()
				return nil
			}
			defer o.sem.Release(1)

			reply := o.callOne(fanCtx, req, id)

			mu.Lock()
			results[id] = reply
			mu.Unlock()
			return nil // errors are carried on the reply itself, never propagated
		})
	}

	_ = g.Wait()
	return results
}

func (o *Orchestrator) callOne(ctx context.Context, req *types.SignalRequest, id string) *types.ProviderReply {
	binding := o.bindings[id]

	role := binding.Role
	if !role.Valid() {
		role = prompt.RoleTechnicalAnalysis
	}

	text, err := o.assembler.Render(req, role)
	if err != nil {
		return &types.ProviderReply{ProviderID: id, Status: types.StatusParseUnavailable}
	}

	deadline := time.Now().Add(binding.Timeout)
	reply, callErr := binding.Adapter.Call(ctx, text, deadline)
	if callErr != nil || reply == nil {
		status := providers.ClassifyContextErr(ctx.Err())
		return &types.ProviderReply{ProviderID: id, Status: status}
	}
	return reply
}

func (o *Orchestrator) neutralSignal(req *types.SignalRequest, now time.Time, reason string) types.ConsensusSignal {
	return types.NewConsensusSignal(types.ConsensusSignalParams{
		Pair:        req.NormalizedPair(),
		Timeframe:   req.Timeframe,
		AsOf:        req.AsOf,
		Direction:   types.Neutral,
		Confidence:  0,
		ShouldTrade: false,
		Reason:      reason,
		GeneratedAt: now,
	})
}

func combineReasoning(contributors []*types.ScoredReply) string {
	lines := make([]string, 0, len(contributors))
	for _, c := range contributors {
		lines = append(lines, fmt.Sprintf("%s (%s, %.2f): %s", c.ProviderID, c.Direction, c.Confidence, c.Rationale))
	}
	return strings.Join(lines, "\n")
}

func tradeReason(direction types.Direction, confidence float64, participants, enabledAtStart int, minConsensusScore float64, requireAll, shouldTrade bool) string {
	if shouldTrade {
		return ""
	}
	if participants == 0 {
		return "no providers returned a usable reply"
	}
	if direction == types.Neutral {
		return "consensus direction is neutral"
	}
	if requireAll && participants < enabledAtStart {
		return "require_all_providers set and not every enabled provider contributed"
	}
	if confidence < minConsensusScore {
		return fmt.Sprintf("confidence %.4f below min_consensus_score %.4f", confidence, minConsensusScore)
	}
	return "consensus did not meet the trade gate"
}
