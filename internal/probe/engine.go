package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/certcheck/internal/model"
	"github.com/nao1215/certcheck/internal/transport"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout is the per-request timeout used when WithTimeout is not given.
	DefaultTimeout = 5 * time.Second

	// maxDrainBytes caps how much of a response body is read before closing
	// it. Only the status line and headers matter; draining a little lets the
	// connection be reused.
	maxDrainBytes = 64 << 10
)

// Engine probes the candidate URLs of a fixed set of domains.
// Its configuration is fixed at construction; Run may be called any number
// of times and keeps no state between runs.
type Engine struct {
	domains []string
	urls    []string
	handler Handler

	followRedirects bool
	timeout         time.Duration
	proxy           *url.URL
	base            http.RoundTripper

	logger  *slog.Logger
	elapsed func(time.Duration)
}

// Option configures an Engine.
type Option func(*Engine)

// WithFollowRedirects makes requests follow 3xx responses. The default is
// false, which reports 301/302 and their Location header as-is.
func WithFollowRedirects(follow bool) Option {
	return func(e *Engine) {
		e.followRedirects = follow
	}
}

// WithTimeout sets the timeout shared by every request of a run.
// It must be positive. Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTransport replaces the network transport used for requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(e *Engine) {
		e.base = rt
	}
}

// WithProxy routes requests through an HTTP(S) or SOCKS5 proxy.
// It has no effect when WithTransport is also given.
func WithProxy(proxyURL *url.URL) Option {
	return func(e *Engine) {
		e.proxy = proxyURL
	}
}

// WithElapsedReporter sets a callback that receives the wall-clock duration
// of each run after its last result has been handled.
func WithElapsedReporter(fn func(time.Duration)) Option {
	return func(e *Engine) {
		e.elapsed = fn
	}
}

// New creates an Engine for domains. The candidate URLs are expanded once,
// here, in domain order.
//
// It returns an error wrapping ErrInvalidArgument when domains is empty,
// any domain is the empty string, handler is nil, the timeout is not
// positive or the proxy URL is not usable.
func New(domains []string, handler Handler, opts ...Option) (*Engine, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("%w: no domains", ErrInvalidArgument)
	}
	for i, d := range domains {
		if d == "" {
			return nil, fmt.Errorf("%w: domain %d is empty", ErrInvalidArgument, i)
		}
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: handler is nil", ErrInvalidArgument)
	}

	e := &Engine{
		domains: append([]string(nil), domains...),
		handler: handler,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidArgument, e.timeout)
	}
	if e.proxy != nil && e.base == nil {
		if err := transport.ValidateProxy(e.proxy); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.urls = model.ExpandAll(e.domains)
	return e, nil
}

// Domains returns a copy of the engine's domains in input order.
func (e *Engine) Domains() []string {
	return append([]string(nil), e.domains...)
}

// URLs returns a copy of the candidate URLs in expansion order.
func (e *Engine) URLs() []string {
	return append([]string(nil), e.urls...)
}

// Info returns the read-only view of the engine passed to handlers.
func (e *Engine) Info() model.RunInfo {
	return model.NewRunInfo(e.domains, e.urls)
}

// Run probes every candidate URL concurrently and calls the handler once per
// URL as the requests complete.
//
// All requests are started before the first result is awaited. Run returns
// after the last result has been handled and the elapsed time reported. If
// ctx is cancelled, pending requests fail, every URL still gets exactly one
// handler call, and ctx.Err() is returned.
func (e *Engine) Run(ctx context.Context) error {
	start := time.Now()

	client, err := transport.NewClient(transport.Config{
		Timeout:         e.timeout,
		FollowRedirects: e.followRedirects,
		Proxy:           e.proxy,
		Base:            e.base,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}
	defer client.CloseIdleConnections()

	info := e.Info()
	results := make(chan model.ProbeResult, len(e.urls))

	// Workers never return an error; errgroup only tracks them.
	var g errgroup.Group
	for _, u := range e.urls {
		g.Go(func() error {
			results <- e.probe(ctx, client, u)
			return nil
		})
	}

	for range len(e.urls) {
		e.handler.Handle(info, <-results)
	}
	_ = g.Wait() //nolint:errcheck // workers always return nil

	elapsed := time.Since(start)
	e.logger.Info("run finished",
		"domains", len(e.domains),
		"urls", len(e.urls),
		"elapsed", elapsed,
	)
	if e.elapsed != nil {
		e.elapsed(elapsed)
	}

	return ctx.Err()
}

// probe issues a single GET and converts the result into an outcome.
// It never returns an error: every failure is an outcome.
func (e *Engine) probe(ctx context.Context, client *http.Client, rawURL string) model.ProbeResult {
	start := time.Now()
	e.logger.Debug("probe dispatched", "url", rawURL)

	outcome := e.do(ctx, client, rawURL)

	attrs := []any{
		"url", rawURL,
		"elapsed", time.Since(start),
	}
	if outcome.IsFailure() {
		attrs = append(attrs, "outcome", outcome.FailureKind().String(), "error", outcome.Message())
	} else {
		attrs = append(attrs, "outcome", "response", "status", outcome.StatusCode())
	}
	e.logger.Debug("probe completed", attrs...)

	return model.ProbeResult{URL: rawURL, Outcome: outcome}
}

func (e *Engine) do(ctx context.Context, client *http.Client, rawURL string) model.Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.NewFailure(model.ConnectionError, err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		return outcomeFromError(err)
	}
	defer resp.Body.Close()

	// Drain errors are ignored: the status and headers are already known.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)) //nolint:errcheck

	return model.NewSuccess(resp.StatusCode, flattenHeader(resp.Header))
}

// flattenHeader keeps the first value of each header.
func flattenHeader(h http.Header) map[string]string {
	flat := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			flat[k] = v[0]
		}
	}
	return flat
}
