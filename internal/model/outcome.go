package model

import (
	"maps"
	"net/textproto"
)

// FailureKind identifies why a probe produced no HTTP response.
type FailureKind int

const (
	// ConnectionError covers DNS, dial, reset and other transport failures.
	ConnectionError FailureKind = iota

	// CertificateError means the TLS peer certificate failed verification.
	CertificateError

	// Timeout means no response arrived within the request timeout.
	Timeout
)

// TimeoutMessage is the fixed message carried by every Timeout failure.
const TimeoutMessage = "Request timeout"

// String returns the snake_case name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case ConnectionError:
		return "connection_error"
	case CertificateError:
		return "certificate_error"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a single probe. It is either a success,
// carrying the status code and response headers, or a failure, carrying a
// FailureKind and a message. The zero value is not meaningful; use
// NewSuccess, NewFailure or NewTimeout.
//
// Outcomes are immutable: the constructors copy their inputs and the
// accessors return copies.
type Outcome struct {
	failed     bool
	statusCode int
	headers    map[string]string
	kind       FailureKind
	message    string
}

// NewSuccess returns a successful outcome. Header keys are canonicalized so
// that lookups through Header are case-insensitive.
func NewSuccess(statusCode int, headers map[string]string) Outcome {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	return Outcome{statusCode: statusCode, headers: h}
}

// NewFailure returns a failed outcome of the given kind.
func NewFailure(kind FailureKind, message string) Outcome {
	return Outcome{failed: true, kind: kind, message: message}
}

// NewTimeout returns the Timeout failure with the fixed TimeoutMessage.
func NewTimeout() Outcome {
	return NewFailure(Timeout, TimeoutMessage)
}

// IsFailure reports whether the probe failed before receiving a response.
func (o Outcome) IsFailure() bool {
	return o.failed
}

// StatusCode returns the HTTP status code, or 0 for failures.
func (o Outcome) StatusCode() int {
	return o.statusCode
}

// Header returns the value of the named response header and whether it was present.
func (o Outcome) Header(name string) (string, bool) {
	v, ok := o.headers[textproto.CanonicalMIMEHeaderKey(name)]
	return v, ok
}

// Headers returns a copy of the response headers. It is empty for failures.
func (o Outcome) Headers() map[string]string {
	return maps.Clone(o.headers)
}

// Location returns the redirect target and whether the Location header was present.
func (o Outcome) Location() (string, bool) {
	return o.Header("Location")
}

// FailureKind returns the failure kind. It is only meaningful when IsFailure is true.
func (o Outcome) FailureKind() FailureKind {
	return o.kind
}

// Message returns the failure message, or "" for successes.
func (o Outcome) Message() string {
	return o.message
}

// ProbeResult pairs a candidate URL with its outcome. It is the unit
// delivered to a response handler.
type ProbeResult struct {
	URL     string
	Outcome Outcome
}

// RunInfo is the read-only view of an engine run handed to handlers.
// The slices are private copies; mutating them does not affect the engine.
type RunInfo struct {
	// Domains are the domains of this run, in input order.
	Domains []string

	// URLs are the candidate URLs of this run, in expansion order.
	URLs []string

	// LongestURL is the length of the longest entry in URLs.
	// Text layouts use it to align columns.
	LongestURL int
}

// NewRunInfo builds a RunInfo from private copies of domains and urls.
func NewRunInfo(domains, urls []string) RunInfo {
	d := make([]string, len(domains))
	copy(d, domains)
	u := make([]string, len(urls))
	copy(u, urls)
	return RunInfo{Domains: d, URLs: u, LongestURL: LongestURL(u)}
}
