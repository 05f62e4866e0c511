package report

import "errors"

// ErrUnknownLayout is returned by ParseLayout for names other than
// "url-first" and "status-first".
var ErrUnknownLayout = errors.New("unknown layout")
