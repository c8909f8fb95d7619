// Package scorer turns a provider's raw reply text into a validated,
// numeric ScoredReply (spec.md §4.3). Parsing never errors: every
// input produces a ScoredReply, with ParseStatus recording how much
// of it could be trusted.
package scorer
