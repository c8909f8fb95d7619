// Package consensus implements the orchestrator that fans a
// SignalRequest out to every enabled provider, scores and reweights
// their replies, and aggregates the result into a single
// ConsensusSignal (spec.md §4.4).
package consensus
