// Package report provides the presenters that render probe results.
//
// Every presenter implements probe.Handler and classifies results with
// model.Classify, so all of them agree on what counts as ok, redirect,
// forbidden, not-found, unclassified or exception:
//   - URLFirstHandler: one colored line per result, URL column first
//   - StatusFirstHandler: one colored line per result, status column first
//   - JSONHandler: one JSON object per line, for tool integration
//   - MarkdownHandler: a buffered Markdown report written on Flush
//   - Tally: bucket counts, used for the summary line
//   - MultiHandler: fans results out to several presenters
//
// Presenters that buffer output or record write errors implement Flusher.
// Handlers are called from a single goroutine at a time and are not safe
// for concurrent use.
package report
