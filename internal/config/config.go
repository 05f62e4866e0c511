package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	certlog "github.com/nao1215/certcheck/internal/log"
	"github.com/nao1215/certcheck/internal/model"
	"github.com/nao1215/certcheck/internal/report"
	"github.com/nao1215/certcheck/internal/transport"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout shared by every probe of a run.
	DefaultTimeout = 5 * time.Second

	// DefaultTorStartupTimeout is how long --tor waits for Tor to bootstrap.
	DefaultTorStartupTimeout = transport.DefaultTorStartupTimeout

	// DefaultLayout is the text layout used when --layout is not given.
	DefaultLayout = string(report.LayoutURLFirst)

	// DefaultLogFormat is the log encoding used when --log-format is not given.
	DefaultLogFormat = string(certlog.FormatText)

	// AppName is the application name used for XDG directory paths.
	AppName = "certcheck"
)

// Config holds all configuration options for certcheck.
// It is populated from the configuration file and CLI flags, in that order,
// and passed through the application rather than kept in global state.
type Config struct {
	// Domains is the list of domains to probe, in the order given.
	// Each domain is expanded into four candidate URLs.
	Domains []string

	// Timeout is the per-request timeout. A request that has not produced a
	// response within this time is reported as "Request timeout".
	Timeout time.Duration

	// FollowRedirects makes probes follow 3xx responses and report the final
	// status instead of the redirect.
	FollowRedirects bool

	// GroupByDomain runs one probe round per domain, sequentially, instead of
	// one round for all domains.
	GroupByDomain bool

	// Layout is the text layout: "url-first" (default) or "status-first".
	Layout string

	// JSONReport prints one JSON object per result instead of text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a Markdown report after all runs.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the JSON or Markdown report.
	// When empty, the report is written to stdout.
	ReportFile string

	// ListFile is a file with one domain per line. Its domains are added
	// after the ones given as arguments.
	ListFile string

	// Proxy is an optional proxy URL (http, https, socks5 or socks5h).
	Proxy string

	// Tor starts an embedded Tor daemon and sends every request through it.
	// Mutually exclusive with Proxy.
	Tor bool

	// TorStartupTimeout bounds the bootstrap of the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// NoColor disables ANSI colors in text output.
	NoColor bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogFile sends logs to a size-rotated file instead of stderr.
	LogFile string

	// LogFormat is the log encoding: "text" (default) or "json".
	LogFormat string

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		Layout:            DefaultLayout,
		LogFormat:         DefaultLogFormat,
		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGConfigDir returns the XDG config directory for certcheck.
// On Linux: ~/.config/certcheck
// On macOS: ~/Library/Application Support/certcheck
// On Windows: %APPDATA%\certcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGStateDir returns the XDG state directory for certcheck, where relative
// log file paths are placed.
// On Linux: ~/.local/state/certcheck
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// NormalizeDomains normalizes every domain in place with model.NormalizeDomain.
func (c *Config) NormalizeDomains() error {
	for i, raw := range c.Domains {
		d, err := model.NormalizeDomain(raw)
		if err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidDomain, raw, err)
		}
		c.Domains[i] = d
	}
	return nil
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
// Layout and LogFormat are matched ignoring case and rewritten to their
// canonical names.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	layout, err := report.ParseLayout(c.Layout)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLayout, c.Layout)
	}
	c.Layout = string(layout)

	format, err := certlog.ParseFormat(c.LogFormat)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	c.LogFormat = string(format)

	if c.Tor && c.Proxy != "" {
		return ErrConflictingProxy
	}

	if _, err := transport.ParseProxy(c.Proxy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProxy, err)
	}

	return nil
}
