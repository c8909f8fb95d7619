package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quantsignal/consensus/types"
)

// SignalCache is the contract the orchestrator's cache-lookup and
// cache-store steps use (spec.md §4.4 steps 1 and 9).
type SignalCache interface {
	Get(ctx context.Context, key string) (types.ConsensusSignal, bool)
	Put(ctx context.Context, key string, signal types.ConsensusSignal, ttl time.Duration)
}

// entry is one L1 slot.
type entry struct {
	key      string
	snapshot snapshot
	expires  time.Time
}

// snapshot is the wire/storage representation of a ConsensusSignal:
// the type's fields are private by design (spec.md §3 immutability
// invariant), so the cache round-trips through its exported
// constructor and getters rather than reaching into it directly.
type snapshot struct {
	Pair              string             `json:"pair"`
	Timeframe         types.Timeframe    `json:"timeframe"`
	AsOf              time.Time          `json:"as_of"`
	Direction         types.Direction    `json:"direction"`
	Confidence        float64            `json:"confidence"`
	CombinedReasoning string             `json:"combined_reasoning"`
	ActiveProviders   []string           `json:"active_providers"`
	EffectiveWeights  map[string]float64 `json:"effective_weights"`
	ShouldTrade       bool               `json:"should_trade"`
	Reason            string             `json:"reason"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

func toSnapshot(s types.ConsensusSignal) snapshot {
	return snapshot{
		Pair:              s.Pair(),
		Timeframe:         s.Timeframe(),
		AsOf:              s.AsOf(),
		Direction:         s.Direction(),
		Confidence:        s.Confidence(),
		CombinedReasoning: s.CombinedReasoning(),
		ActiveProviders:   s.ActiveProviders(),
		EffectiveWeights:  s.EffectiveWeights(),
		ShouldTrade:       s.ShouldTrade(),
		Reason:            s.Reason(),
		GeneratedAt:       s.GeneratedAt(),
	}
}

func (sn snapshot) toSignal() types.ConsensusSignal {
	return types.NewConsensusSignal(types.ConsensusSignalParams{
		Pair:              sn.Pair,
		Timeframe:         sn.Timeframe,
		AsOf:              sn.AsOf,
		Direction:         sn.Direction,
		Confidence:        sn.Confidence,
		CombinedReasoning: sn.CombinedReasoning,
		ActiveProviders:   sn.ActiveProviders,
		EffectiveWeights:  sn.EffectiveWeights,
		ShouldTrade:       sn.ShouldTrade,
		Reason:            sn.Reason,
		GeneratedAt:       sn.GeneratedAt,
	})
}

// InProcessCache is a bounded LRU with per-entry TTL, guarded by a
// single mutex (spec.md §4.5: "the simplest compliant implementation
// is a lock-guarded map; no single-flight is required").
type InProcessCache struct {
	mu       sync.Mutex
	maxItems int
	order    *list.List
	items    map[string]*list.Element
}

// NewInProcessCache builds an L1 cache holding at most maxItems
// entries, evicting least-recently-used when full.
func NewInProcessCache(maxItems int) *InProcessCache {
	if maxItems <= 0 {
		maxItems = 1024
	}
	return &InProcessCache{
		maxItems: maxItems,
		order:    list.New(),
		items:    make(map[string]*list.Element, maxItems),
	}
}

// Get implements SignalCache.
func (c *InProcessCache) Get(_ context.Context, key string) (types.ConsensusSignal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return types.ConsensusSignal{}, false
	}
	e := el.Value.(*entry)
	if time.Now().After(e.expires) {
		c.order.Remove(el)
		delete(c.items, key)
		return types.ConsensusSignal{}, false
	}
	c.order.MoveToFront(el)
	return e.snapshot.toSignal(), true
}

// Put implements SignalCache.
func (c *InProcessCache) Put(_ context.Context, key string, signal types.ConsensusSignal, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry{key: key, snapshot: toSnapshot(signal), expires: time.Now().Add(ttl)}

	if el, ok := c.items[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(e)
	c.items[key] = el

	for c.order.Len() > c.maxItems {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// RedisCache is the optional L2 cache (spec.md §9 "cache backend is
// an implementation detail"). It is grounded on the teacher's
// internal/cache.Manager, simplified to the single Get/Set the
// signal cache actually needs and specialized to ConsensusSignal's
// JSON snapshot rather than opaque strings.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache wraps an already-constructed redis.Client.
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, logger: logger.With(zap.String("component", "signal_cache.redis"))}
}

// Get implements SignalCache. Redis errors are treated as a cache
// miss: the cache is an optimization, never a dependency the
// orchestrator can fail on.
func (c *RedisCache) Get(ctx context.Context, key string) (types.ConsensusSignal, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("signal cache get failed", zap.String("key", key), zap.Error(err))
		}
		return types.ConsensusSignal{}, false
	}

	var sn snapshot
	if err := json.Unmarshal(raw, &sn); err != nil {
		c.logger.Warn("signal cache entry corrupt", zap.String("key", key), zap.Error(err))
		return types.ConsensusSignal{}, false
	}
	return sn.toSignal(), true
}

// Put implements SignalCache.
func (c *RedisCache) Put(ctx context.Context, key string, signal types.ConsensusSignal, ttl time.Duration) {
	raw, err := json.Marshal(toSnapshot(signal))
	if err != nil {
		c.logger.Warn("signal cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("signal cache put failed", zap.String("key", key), zap.Error(err))
	}
}

// TieredCache checks L1 before L2 and populates L1 on an L2 hit, the
// read-through pattern the teacher's multi-level cache uses.
type TieredCache struct {
	l1 SignalCache
	l2 SignalCache
}

// NewTieredCache builds a TieredCache. l2 may be nil, in which case
// it behaves exactly like l1 alone.
func NewTieredCache(l1 SignalCache, l2 SignalCache) *TieredCache {
	return &TieredCache{l1: l1, l2: l2}
}

func (c *TieredCache) Get(ctx context.Context, key string) (types.ConsensusSignal, bool) {
	if sig, ok := c.l1.Get(ctx, key); ok {
		return sig, true
	}
	if c.l2 == nil {
		return types.ConsensusSignal{}, false
	}
	sig, ok := c.l2.Get(ctx, key)
	if ok {
		c.l1.Put(ctx, key, sig, time.Minute)
	}
	return sig, ok
}

func (c *TieredCache) Put(ctx context.Context, key string, signal types.ConsensusSignal, ttl time.Duration) {
	c.l1.Put(ctx, key, signal, ttl)
	if c.l2 != nil {
		c.l2.Put(ctx, key, signal, ttl)
	}
}
