package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/certcheck/internal/model"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// response builds a minimal response for a scripted transport.
func response(req *http.Request, status int, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}
}

// collector records every handled result.
type collector struct {
	mu      sync.Mutex
	results []model.ProbeResult
	infos   []model.RunInfo
}

func (c *collector) Handle(info model.RunInfo, result model.ProbeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
	c.infos = append(c.infos, info)
}

func (c *collector) byURL() map[string]model.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[string]model.Outcome, len(c.results))
	for _, r := range c.results {
		m[r.URL] = r.Outcome
	}
	return m
}

// routeTo returns a transport that connects every request to addr,
// whatever host the URL names.
func routeTo(addr string) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	h := &collector{}

	tests := []struct {
		name    string
		domains []string
		handler Handler
		opts    []Option
	}{
		{name: "empty domain list", domains: nil, handler: h},
		{name: "empty domain string", domains: []string{"a.com", ""}, handler: h},
		{name: "nil handler", domains: []string{"a.com"}, handler: nil},
		{name: "zero timeout", domains: []string{"a.com"}, handler: h, opts: []Option{WithTimeout(0)}},
		{name: "negative timeout", domains: []string{"a.com"}, handler: h, opts: []Option{WithTimeout(-time.Second)}},
		{
			name:    "unsupported proxy",
			domains: []string{"a.com"},
			handler: h,
			opts:    []Option{WithProxy(&url.URL{Scheme: "ftp", Host: "proxy:21"})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.domains, tt.handler, tt.opts...)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	t.Run("expands urls in domain order", func(t *testing.T) {
		t.Parallel()

		e, err := New([]string{"a.com", "b.com"}, h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := append(model.Expand("a.com"), model.Expand("b.com")...)
		if !slices.Equal(e.URLs(), want) {
			t.Errorf("URLs() = %v, expected %v", e.URLs(), want)
		}
		if !slices.Equal(e.Domains(), []string{"a.com", "b.com"}) {
			t.Errorf("Domains() = %v", e.Domains())
		}
		if e.timeout != DefaultTimeout {
			t.Errorf("timeout = %s, expected %s", e.timeout, DefaultTimeout)
		}
		if e.followRedirects {
			t.Error("expected redirects not to be followed by default")
		}
	})

	t.Run("accessors return copies", func(t *testing.T) {
		t.Parallel()

		domains := []string{"a.com"}
		e, err := New(domains, h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		domains[0] = "mutated"
		e.URLs()[0] = "mutated"
		e.Info().URLs[1] = "mutated"

		if e.Domains()[0] != "a.com" || e.URLs()[0] != "http://a.com" || e.URLs()[1] != "https://a.com" {
			t.Error("engine state was mutated through an accessor")
		}
	})
}

func TestEngineRun(t *testing.T) {
	t.Parallel()

	t.Run("calls handler once per url", func(t *testing.T) {
		t.Parallel()

		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return response(req, http.StatusOK, nil), nil
		})
		domains := []string{"a.com", "b.com", "c.com"}
		h := &collector{}
		e, err := New(domains, h, WithTransport(rt))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(h.results) != 4*len(domains) {
			t.Fatalf("expected %d handler calls, got %d", 4*len(domains), len(h.results))
		}
		got := make([]string, 0, len(h.results))
		for _, r := range h.results {
			got = append(got, r.URL)
		}
		slices.Sort(got)
		want := e.URLs()
		slices.Sort(want)
		if !slices.Equal(got, want) {
			t.Errorf("handled urls = %v, expected %v", got, want)
		}
		for _, info := range h.infos {
			if info.LongestURL != len("https://www.a.com") {
				t.Errorf("LongestURL = %d", info.LongestURL)
			}
		}
	})

	t.Run("delivers results in completion order", func(t *testing.T) {
		t.Parallel()

		urls := model.Expand("a.com")
		gates := make(map[string]chan struct{}, len(urls))
		for _, u := range urls {
			gates[u] = make(chan struct{})
		}
		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			select {
			case <-gates[req.URL.String()]:
				return response(req, http.StatusOK, nil), nil
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		})

		handled := make(chan string)
		h := HandlerFunc(func(_ model.RunInfo, r model.ProbeResult) {
			handled <- r.URL
		})
		e, err := New([]string{"a.com"}, h, WithTransport(rt))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		done := make(chan error, 1)
		go func() { done <- e.Run(context.Background()) }()

		// Release the requests last-to-first. This only finishes if every
		// request was in flight before the first result was awaited.
		order := slices.Clone(urls)
		slices.Reverse(order)
		for _, u := range order {
			close(gates[u])
			select {
			case got := <-handled:
				if got != u {
					t.Fatalf("expected %s to be handled next, got %s", u, got)
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("timed out waiting for %s", u)
			}
		}
		if err := <-done; err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("slow request times out", func(t *testing.T) {
		t.Parallel()

		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.String() == "https://a.com" {
				<-req.Context().Done()
				return nil, req.Context().Err()
			}
			return response(req, http.StatusOK, nil), nil
		})
		h := &collector{}
		e, err := New([]string{"a.com"}, h, WithTransport(rt), WithTimeout(50*time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := h.byURL()
		o := got["https://a.com"]
		if !o.IsFailure() || o.FailureKind() != model.Timeout {
			t.Fatalf("expected timeout, got %+v", o)
		}
		if o.Message() != "Request timeout" {
			t.Errorf("message = %q, expected %q", o.Message(), "Request timeout")
		}
		if got["http://a.com"].IsFailure() {
			t.Error("expected the other requests to succeed")
		}
	})

	t.Run("connection error message is unwrapped", func(t *testing.T) {
		t.Parallel()

		rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: lookup a.com: no such host")
		})
		h := &collector{}
		e, err := New([]string{"a.com"}, h, WithTransport(rt))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for u, o := range h.byURL() {
			if !o.IsFailure() || o.FailureKind() != model.ConnectionError {
				t.Errorf("%s: expected connection error, got %+v", u, o)
			}
			if o.Message() != "dial tcp: lookup a.com: no such host" {
				t.Errorf("%s: message = %q", u, o.Message())
			}
		}
	})

	t.Run("untrusted certificate is a certificate error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		h := &collector{}
		e, err := New([]string{"a.test"}, h, WithTransport(routeTo(srv.Listener.Addr().String())))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := h.byURL()
		for _, u := range []string{"https://a.test", "https://www.a.test"} {
			o := got[u]
			if !o.IsFailure() || o.FailureKind() != model.CertificateError {
				t.Errorf("%s: expected certificate error, got %+v", u, o)
				continue
			}
			if !strings.Contains(o.Message(), "certificate") {
				t.Errorf("%s: message = %q", u, o.Message())
			}
		}
		// Plain HTTP to a TLS listener still gets a response.
		for _, u := range []string{"http://a.test", "http://www.a.test"} {
			if o := got[u]; o.IsFailure() || o.StatusCode() != http.StatusBadRequest {
				t.Errorf("%s: expected 400 response, got %+v", u, o)
			}
		}
	})

	t.Run("redirect location is reported", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Host, "www.") {
				// A redirect without a target.
				w.WriteHeader(http.StatusFound)
				return
			}
			http.Redirect(w, r, "https://www."+r.Host+"/", http.StatusMovedPermanently)
		}))
		defer srv.Close()

		h := &collector{}
		e, err := New([]string{"a.test"}, h, WithTransport(routeTo(srv.Listener.Addr().String())))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := h.byURL()
		o := got["http://a.test"]
		if o.StatusCode() != http.StatusMovedPermanently {
			t.Fatalf("expected 301, got %+v", o)
		}
		if loc, ok := o.Location(); !ok || loc != "https://www.a.test/" {
			t.Errorf("Location = %q (present=%v)", loc, ok)
		}

		o = got["http://www.a.test"]
		if o.StatusCode() != http.StatusFound {
			t.Fatalf("expected 302, got %+v", o)
		}
		if _, ok := o.Location(); ok {
			t.Error("expected no Location header")
		}
	})

	t.Run("following redirects reports the final status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/home" {
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, "/home", http.StatusMovedPermanently)
		}))
		defer srv.Close()

		h := &collector{}
		e, err := New([]string{"a.test"}, h,
			WithTransport(routeTo(srv.Listener.Addr().String())),
			WithFollowRedirects(true),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, u := range []string{"http://a.test", "http://www.a.test"} {
			if o := h.byURL()[u]; o.StatusCode() != http.StatusOK {
				t.Errorf("%s: expected 200, got %+v", u, o)
			}
		}
	})

	t.Run("reports elapsed time once", func(t *testing.T) {
		t.Parallel()

		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return response(req, http.StatusNoContent, nil), nil
		})
		var calls []time.Duration
		e, err := New([]string{"a.com"}, &collector{},
			WithTransport(rt),
			WithElapsedReporter(func(d time.Duration) { calls = append(calls, d) }),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(calls) != 1 {
			t.Fatalf("expected 1 elapsed report, got %d", len(calls))
		}
		if calls[0] <= 0 {
			t.Errorf("elapsed = %s, expected positive", calls[0])
		}
	})

	t.Run("cancelled context still yields every outcome", func(t *testing.T) {
		t.Parallel()

		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		h := &collector{}
		e, err := New([]string{"a.com", "b.com"}, h, WithTransport(rt))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(h.results) != 8 {
			t.Fatalf("expected 8 outcomes, got %d", len(h.results))
		}
		for _, r := range h.results {
			if !r.Outcome.IsFailure() {
				t.Errorf("%s: expected failure", r.URL)
			}
		}
	})

	t.Run("runs are independent", func(t *testing.T) {
		t.Parallel()

		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Scheme == "https" {
				return response(req, http.StatusOK, nil), nil
			}
			return response(req, http.StatusMovedPermanently, http.Header{
				"Location": []string{"https://" + req.URL.Host},
			}), nil
		})
		h := &collector{}
		e, err := New([]string{"a.com", "b.com"}, h, WithTransport(rt))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snapshot := func() []string {
			lines := make([]string, 0, len(h.results))
			for _, r := range h.results {
				loc, _ := r.Outcome.Location()
				lines = append(lines, r.URL+" "+model.Classify(r.Outcome).Bucket.String()+" "+loc)
			}
			slices.Sort(lines)
			return lines
		}

		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := snapshot()
		h.results = nil

		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second := snapshot(); !slices.Equal(first, second) {
			t.Errorf("second run differs:\n%v\n%v", first, second)
		}
	})
}

func TestEngineRunMixedOutcomes(t *testing.T) {
	t.Parallel()

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.String() {
		case "http://a.com":
			return response(req, http.StatusMovedPermanently, http.Header{"Location": []string{"https://a.com"}}), nil
		case "https://a.com":
			return response(req, http.StatusOK, nil), nil
		case "http://www.a.com":
			return nil, errors.New("connection refused")
		default:
			return response(req, http.StatusNotFound, nil), nil
		}
	})

	h := &collector{}
	e, err := New([]string{"a.com"}, h, WithTransport(rt))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]model.Bucket{
		"http://a.com":      model.BucketRedirect,
		"https://a.com":     model.BucketOK,
		"http://www.a.com":  model.BucketException,
		"https://www.a.com": model.BucketNotFound,
	}
	got := h.byURL()
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for u, bucket := range want {
		c := model.Classify(got[u])
		if c.Bucket != bucket {
			t.Errorf("%s: bucket = %s, expected %s", u, c.Bucket, bucket)
		}
	}
	if c := model.Classify(got["http://a.com"]); c.Location != "https://a.com" {
		t.Errorf("redirect target = %q", c.Location)
	}
	if msg := got["http://www.a.com"].Message(); msg != "connection refused" {
		t.Errorf("message = %q", msg)
	}
}
