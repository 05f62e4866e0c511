package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the encoding of log records.
type Format string

const (
	// FormatText writes key=value records (slog.TextHandler).
	FormatText Format = "text"

	// FormatJSON writes one JSON object per record (slog.JSONHandler).
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for names other than
// "text" and "json".
var ErrUnknownFormat = errors.New("unknown log format")

// ParseFormat returns the Format named s. The match ignores case.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatText, FormatJSON} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected text or json)", ErrUnknownFormat, s)
}

// NewLogger returns the secure logger for format, writing to w.
func NewLogger(w io.Writer, format Format, verbose bool) (*slog.Logger, error) {
	switch format {
	case FormatText:
		return NewSecureLogger(w, verbose), nil
	case FormatJSON:
		return NewSecureJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
