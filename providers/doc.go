// Package providers defines the adapter contract each LLM vendor
// implements (spec.md §4.1) and the shared error classification every
// adapter funnels vendor-specific failures through before they reach
// the orchestrator.
package providers
