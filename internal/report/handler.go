package report

import (
	"fmt"
	"strings"

	"github.com/nao1215/certcheck/internal/model"
	"github.com/nao1215/certcheck/internal/probe"
	"go.uber.org/multierr"
)

// Flusher is implemented by presenters that buffer output or defer write
// errors. Flush is called once after the last run.
type Flusher interface {
	Flush() error
}

// Flush flushes h if it implements Flusher.
func Flush(h probe.Handler) error {
	if f, ok := h.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// MultiHandler passes every result to several handlers in order.
// This is useful for printing to the terminal while writing a report file.
type MultiHandler struct {
	handlers []probe.Handler
}

// NewMultiHandler creates a handler that fans out to handlers.
// Nil handlers are skipped.
func NewMultiHandler(handlers ...probe.Handler) *MultiHandler {
	m := &MultiHandler{handlers: make([]probe.Handler, 0, len(handlers))}
	for _, h := range handlers {
		if h != nil {
			m.handlers = append(m.handlers, h)
		}
	}
	return m
}

// Handle implements probe.Handler.
func (m *MultiHandler) Handle(info model.RunInfo, result model.ProbeResult) {
	for _, h := range m.handlers {
		h.Handle(info, result)
	}
}

// Flush flushes every handler, even after an error, and returns all
// errors combined.
func (m *MultiHandler) Flush() error {
	var err error
	for _, h := range m.handlers {
		err = multierr.Append(err, Flush(h))
	}
	return err
}

// Tally counts results per bucket.
type Tally struct {
	counts map[model.Bucket]int
	total  int
}

// NewTally creates an empty Tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[model.Bucket]int, len(model.Buckets))}
}

// Handle implements probe.Handler.
func (t *Tally) Handle(_ model.RunInfo, result model.ProbeResult) {
	t.counts[model.Classify(result.Outcome).Bucket]++
	t.total++
}

// Count returns the number of results in bucket b.
func (t *Tally) Count(b model.Bucket) int {
	return t.counts[b]
}

// Total returns the number of results seen.
func (t *Tally) Total() int {
	return t.total
}

// Summary returns a one-line summary such as
// "8 URLs: 3 ok, 2 redirect, 3 exception". Empty buckets are omitted.
func (t *Tally) Summary() string {
	parts := make([]string, 0, len(model.Buckets))
	for _, b := range model.Buckets {
		if n := t.counts[b]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, b))
		}
	}
	noun := "URLs"
	if t.total == 1 {
		noun = "URL"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d %s", t.total, noun)
	}
	return fmt.Sprintf("%d %s: %s", t.total, noun, strings.Join(parts, ", "))
}
