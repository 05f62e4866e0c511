package model

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownStatusCode is returned by StatusMessage for codes without a
// registered reason phrase.
var ErrUnknownStatusCode = errors.New("unknown status code")

// StatusMessage returns the upper-cased reason phrase for code,
// e.g. "MOVED PERMANENTLY" for 301.
func StatusMessage(code int) (string, error) {
	text := http.StatusText(code)
	if text == "" {
		return "", fmt.Errorf("%w: %d", ErrUnknownStatusCode, code)
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Upper(language.English).String(text), nil
}
