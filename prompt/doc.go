// Package prompt renders a SignalRequest into the fixed-precision,
// deterministic prompt text sent to every provider (spec.md §4.2).
// Rendering is a pure function of its inputs: explicit string
// building is used instead of text/template so the output is
// byte-identical for byte-identical inputs and reviewable without a
// template engine in the loop.
package prompt
