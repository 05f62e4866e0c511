// Package model defines the core data structures shared by the probe engine
// and the response handlers.
//
// This package contains the following main types:
//   - Outcome: the terminal result of one probe (a captured response or failure)
//   - ProbeResult: the (URL, Outcome) pair delivered to a handler
//   - RunInfo: the read-only view of a run handed to handlers
//   - Classification: the bucket an outcome falls into, plus the data needed to render it
//
// It also holds the two pure helpers every other package builds on: Expand,
// which turns a domain into its four candidate URLs, and Classify, the single
// source of truth for the status-code buckets.
package model
