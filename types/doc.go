// Package types holds the data model shared by every component of the
// consensus core: requests, provider replies, scored replies, the
// consensus signal, and the closed error taxonomy. Nothing in this
// package performs I/O.
package types
