package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/certcheck/internal/model"
	"github.com/nao1215/certcheck/internal/probe"
)

// Layout selects one of the two line formats of the text presenters.
type Layout string

const (
	// LayoutURLFirst puts the padded URL first: "<url> --- 200 OK".
	LayoutURLFirst Layout = "url-first"

	// LayoutStatusFirst puts the status first: "200 OK <url>".
	LayoutStatusFirst Layout = "status-first"
)

const (
	// urlFirstPadding is added to the longest URL to size the URL column.
	urlFirstPadding = 10

	// statusFirstPadding is added to the longest URL to size the
	// "<message> <url>" column in front of a redirect target.
	statusFirstPadding = 20

	// missingTarget is printed, already parenthesized, in place of the
	// Location of a redirect that did not send one.
	missingTarget = "(no Location header)"
)

// Layouts lists the valid layout names.
var Layouts = []Layout{LayoutURLFirst, LayoutStatusFirst}

// ParseLayout returns the Layout named s.
func ParseLayout(s string) (Layout, error) {
	for _, l := range Layouts {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected url-first or status-first)", ErrUnknownLayout, s)
}

// NewTextHandler returns the text presenter for layout, writing to w.
func NewTextHandler(w io.Writer, layout Layout, opts ...Option) (probe.Handler, error) {
	switch layout {
	case LayoutURLFirst:
		return NewURLFirstHandler(w, opts...), nil
	case LayoutStatusFirst:
		return NewStatusFirstHandler(w, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
}

// lineWriter writes whole lines and keeps the first write error for Flush.
type lineWriter struct {
	out io.Writer
	p   palette
	err error
}

func newLineWriter(w io.Writer, opts []Option) lineWriter {
	o := applyOptions(opts)
	return lineWriter{out: w, p: newPalette(o.color)}
}

func (w *lineWriter) println(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, line+"\n")
}

// Flush returns the first write error, if any.
func (w *lineWriter) Flush() error {
	return w.err
}

// forbiddenOrNotFound renders the 403/404 line shared by both layouts:
// "403 FORBIDDEN <url>" with the status part colored.
func (w *lineWriter) forbiddenOrNotFound(c model.Classification, url string) string {
	col := w.p.warning
	if c.Bucket == model.BucketNotFound {
		col = w.p.failed
	}
	return col.Sprintf("%d %s", c.StatusCode, c.StatusMessage) + " " + url
}

// unclassified renders "<url>, status: <code>".
func unclassified(c model.Classification, url string) string {
	return fmt.Sprintf("%s, status: %d", url, c.StatusCode)
}

// redirectTarget returns the Location to print for a redirect.
func redirectTarget(c model.Classification) string {
	if c.MissingTarget() {
		return missingTarget
	}
	return c.Location
}

// parenthesizedTarget returns the redirect target wrapped in one pair of
// parentheses: "(https://a.com)" or "(no Location header)".
func parenthesizedTarget(c model.Classification) string {
	if c.MissingTarget() {
		return missingTarget
	}
	return "(" + c.Location + ")"
}

// StatusFirstHandler prints one line per result with the status code first:
//
//	200 OK http://a.com
//	301 MOVED PERMANENTLY http://a.com         -> https://a.com
//	000 EXCEPTION http://www.a.com, Exception: connection refused
type StatusFirstHandler struct {
	lineWriter
}

// NewStatusFirstHandler creates a StatusFirstHandler writing to w.
func NewStatusFirstHandler(w io.Writer, opts ...Option) *StatusFirstHandler {
	return &StatusFirstHandler{lineWriter: newLineWriter(w, opts)}
}

// Handle implements probe.Handler.
func (h *StatusFirstHandler) Handle(info model.RunInfo, result model.ProbeResult) {
	c := model.Classify(result.Outcome)
	p := h.p

	switch c.Bucket {
	case model.BucketException:
		h.println(p.exception.Sprint("000 EXCEPTION ") +
			p.exceptionBold.Sprint(result.URL) +
			p.exception.Sprint(", Exception: "+c.Message))
	case model.BucketOK:
		h.println(p.ok.Sprintf("%d ", c.StatusCode) + c.StatusMessage + " " + result.URL)
	case model.BucketRedirect:
		width := info.LongestURL + statusFirstPadding
		h.println(p.moved.Sprintf("%d ", c.StatusCode) +
			fmt.Sprintf("%-*s -> %s", width, c.StatusMessage+" "+result.URL, redirectTarget(c)))
	case model.BucketForbidden, model.BucketNotFound:
		h.println(h.forbiddenOrNotFound(c, result.URL))
	default:
		h.println(unclassified(c, result.URL))
	}
}

// URLFirstHandler prints one line per result with the padded URL first:
//
//	http://a.com           --- 301 MOVED PERMANENTLY (https://a.com)
//	https://a.com          --- 200 OK
//	http://www.a.com --- EXCEPTION --- connection refused
type URLFirstHandler struct {
	lineWriter
}

// NewURLFirstHandler creates a URLFirstHandler writing to w.
func NewURLFirstHandler(w io.Writer, opts ...Option) *URLFirstHandler {
	return &URLFirstHandler{lineWriter: newLineWriter(w, opts)}
}

// Handle implements probe.Handler.
func (h *URLFirstHandler) Handle(info model.RunInfo, result model.ProbeResult) {
	c := model.Classify(result.Outcome)
	p := h.p
	width := info.LongestURL + urlFirstPadding

	switch c.Bucket {
	case model.BucketException:
		h.println(p.exceptionBold.Sprint(result.URL) +
			p.exception.Sprint(" --- EXCEPTION --- "+c.Message))
	case model.BucketOK:
		h.println(p.ok.Sprintf("%-*s --- %d ", width, result.URL, c.StatusCode) + c.StatusMessage)
	case model.BucketRedirect:
		h.println(p.moved.Sprintf("%-*s --- %d", width, result.URL, c.StatusCode) +
			" " + c.StatusMessage + " " + p.dim.Sprint(parenthesizedTarget(c)))
	case model.BucketForbidden, model.BucketNotFound:
		h.println(h.forbiddenOrNotFound(c, result.URL))
	default:
		h.println(unclassified(c, result.URL))
	}
}
