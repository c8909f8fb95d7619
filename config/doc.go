// Package config loads and validates the consensus core's configuration
// document. Configuration is read once at startup into a fully typed
// Config; provider-entry and weight-sum validation happen here, not per
// request (spec.md §7). The document has no timeframe setting, so no
// timeframe is checked at load; timeframes are checked per request by
// types.SignalRequest.Validate.
package config
