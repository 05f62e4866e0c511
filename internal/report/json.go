package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/certcheck/internal/model"
)

// JSONRecord is the object written for each result.
type JSONRecord struct {
	// URL is the probed candidate URL.
	URL string `json:"url"`

	// Bucket is the classification, e.g. "ok" or "exception".
	Bucket model.Bucket `json:"bucket"`

	// Status is the HTTP status code. It is omitted for failures.
	Status int `json:"status,omitempty"`

	// StatusMessage is the upper-cased reason phrase.
	StatusMessage string `json:"status_message,omitempty"`

	// Location is the redirect target of a 301/302.
	Location string `json:"location,omitempty"`

	// ErrorKind is connection_error, certificate_error or timeout.
	ErrorKind string `json:"error_kind,omitempty"`

	// Error is the failure message.
	Error string `json:"error,omitempty"`
}

// NewJSONRecord builds the record for result.
func NewJSONRecord(result model.ProbeResult) JSONRecord {
	c := model.Classify(result.Outcome)
	rec := JSONRecord{
		URL:           result.URL,
		Bucket:        c.Bucket,
		Status:        c.StatusCode,
		StatusMessage: c.StatusMessage,
		Location:      c.Location,
	}
	if result.Outcome.IsFailure() {
		rec.ErrorKind = result.Outcome.FailureKind().String()
		rec.Error = c.Message
	}
	return rec
}

// JSONHandler writes one compact JSON object per line (JSON Lines), in
// completion order. This format is designed for tool integration.
type JSONHandler struct {
	enc *json.Encoder
	err error
}

// NewJSONHandler creates a JSONHandler writing to w.
func NewJSONHandler(w io.Writer) *JSONHandler {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONHandler{enc: enc}
}

// Handle implements probe.Handler.
func (h *JSONHandler) Handle(_ model.RunInfo, result model.ProbeResult) {
	if h.err != nil {
		return
	}
	h.err = h.enc.Encode(NewJSONRecord(result))
}

// Flush returns the first write error, if any.
func (h *JSONHandler) Flush() error {
	return h.err
}
