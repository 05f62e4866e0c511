package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoDomains is returned by Process when the domain list is empty.
var ErrNoDomains = errors.New("no domains to process")

// Runner is a single engine run. *probe.Engine implements it.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFactory builds the Runner for one group of domains.
// It is called once per group, right before the group runs.
type RunnerFactory func(domains []string) (Runner, error)

// Processor runs a RunnerFactory over partitions of a domain list.
type Processor struct {
	// factory creates a fresh runner for each group.
	factory RunnerFactory

	// logger is used for batch-level logging.
	logger *slog.Logger

	// onGroupStart is called before each group when grouping by domain.
	onGroupStart func(domain string)
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets a custom logger for batch processing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithGroupStart sets a callback invoked with the domain before each
// per-domain run. It is not called when grouping is off.
func WithGroupStart(fn func(domain string)) Option {
	return func(p *Processor) {
		p.onGroupStart = fn
	}
}

// NewProcessor creates a Processor that builds runners with factory.
func NewProcessor(factory RunnerFactory, opts ...Option) *Processor {
	p := &Processor{factory: factory}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Partition splits domains into the groups Process runs: one group holding
// every domain, or one group per domain when groupByDomain is set.
func Partition(domains []string, groupByDomain bool) [][]string {
	if len(domains) == 0 {
		return nil
	}
	if !groupByDomain {
		return [][]string{append([]string(nil), domains...)}
	}
	groups := make([][]string, len(domains))
	for i, d := range domains {
		groups[i] = []string{d}
	}
	return groups
}

// Process runs every group of Partition(domains, groupByDomain) in order,
// waiting for each run to finish before starting the next.
//
// A factory error aborts the batch. If ctx is cancelled the current run is
// allowed to deliver its outcomes, then Process returns ctx.Err() without
// starting further groups.
func (p *Processor) Process(ctx context.Context, domains []string, groupByDomain bool) error {
	groups := Partition(domains, groupByDomain)
	if len(groups) == 0 {
		return ErrNoDomains
	}

	p.logger.Info("starting batch processing",
		"domains", len(domains),
		"groups", len(groups),
		"group_by_domain", groupByDomain,
	)
	startTime := time.Now()

	for i, group := range groups {
		// Check for cancellation before starting each group
		if err := ctx.Err(); err != nil {
			p.logger.Warn("batch cancelled",
				"completed_groups", i,
				"total_groups", len(groups),
			)
			return err
		}

		if groupByDomain && p.onGroupStart != nil {
			p.onGroupStart(group[0])
		}

		runner, err := p.factory(group)
		if err != nil {
			return fmt.Errorf("failed to prepare run for %v: %w", group, err)
		}

		p.logger.Debug("running group",
			"index", i+1,
			"total", len(groups),
			"domains", group,
		)
		if err := runner.Run(ctx); err != nil {
			return err
		}
	}

	p.logger.Info("batch processing complete",
		"groups", len(groups),
		"elapsed", time.Since(startTime),
	)
	return nil
}
