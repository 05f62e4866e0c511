package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the loaders, so callers
// can use errors.Is() to tell them apart.
var (
	// ErrNoTarget is returned when no domain is given on the command line,
	// in a --list file or in the configuration file.
	ErrNoTarget = errors.New("no target specified: provide a domain or use --list")

	// ErrInvalidTimeout is returned when the timeout is not positive or does
	// not fit in a time.Duration.
	ErrInvalidTimeout = errors.New("invalid timeout: must be a positive number of seconds")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLayout is returned for a layout other than url-first or status-first.
	ErrInvalidLayout = errors.New("invalid layout: must be url-first or status-first")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrInvalidProxy is returned when the proxy URL is malformed or uses an
	// unsupported scheme.
	ErrInvalidProxy = errors.New("invalid proxy")

	// ErrConflictingProxy is returned when both --tor and --proxy are given.
	ErrConflictingProxy = errors.New("conflicting proxies: --tor and --proxy cannot be used together")

	// ErrInvalidDomain is returned when a domain cannot be normalized.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
