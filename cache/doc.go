// Package cache implements the signal cache spec.md §4.5 describes: a
// bounded, TTL-expiring store keyed on (pair, timeframe, as_of
// bucket) that lets the orchestrator skip a provider fan-out for a
// request it has already answered recently. It is a plain
// lock-guarded cache, not a single-flight coalescer: concurrent
// misses for the same key both call through.
package cache
