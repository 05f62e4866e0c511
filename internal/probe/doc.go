// Package probe implements the concurrent probing engine.
//
// An Engine owns a list of domains and the candidate URLs derived from them.
// Run issues one GET per candidate URL, all at once, and hands every
// (url, outcome) pair to a Handler in the order the requests finish. The
// Handler is always called from the goroutine that called Run, one result at
// a time, so handlers need no locking.
//
// Every candidate URL produces exactly one outcome per run. Network, TLS and
// timeout errors become failure outcomes; they never abort the run.
package probe
