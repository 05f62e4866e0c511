package config

import (
	"fmt"
	"math"
	"time"
)

// File represents the structure of the .certcheck configuration file.
// Every field is optional; unset fields leave the Config untouched.
type File struct {
	// Timeout is the per-request timeout in seconds.
	Timeout *float64 `yaml:"timeout,omitempty"`

	// FollowRedirects makes probes follow 3xx responses.
	FollowRedirects *bool `yaml:"follow_redirects,omitempty"`

	// GroupByDomain runs one probe round per domain.
	GroupByDomain *bool `yaml:"group_by_domain,omitempty"`

	// Layout is "url-first" or "status-first".
	Layout string `yaml:"layout,omitempty"`

	// NoColor disables ANSI colors.
	NoColor *bool `yaml:"no_color,omitempty"`

	// Proxy is a proxy URL such as "socks5://127.0.0.1:9050".
	Proxy string `yaml:"proxy,omitempty"`

	// Tor routes every request through an embedded Tor daemon.
	Tor *bool `yaml:"tor,omitempty"`

	// LogFile is the path of the rotated log file.
	LogFile string `yaml:"log_file,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format,omitempty"`

	// Domains are probed in addition to the ones given on the command line.
	Domains []string `yaml:"domains,omitempty"`
}

// Apply copies the values set in the file into cfg.
// Domains from the file are appended after the ones already in cfg.
// An out of range timeout returns ErrInvalidTimeout.
// CLI flags are applied afterwards so that they win.
func (f *File) Apply(cfg *Config) error {
	if f.Timeout != nil {
		timeout, err := SecondsToDuration(*f.Timeout)
		if err != nil {
			return err
		}
		cfg.Timeout = timeout
	}
	if f.FollowRedirects != nil {
		cfg.FollowRedirects = *f.FollowRedirects
	}
	if f.GroupByDomain != nil {
		cfg.GroupByDomain = *f.GroupByDomain
	}
	if f.Layout != "" {
		cfg.Layout = f.Layout
	}
	if f.NoColor != nil {
		cfg.NoColor = *f.NoColor
	}
	if f.Proxy != "" {
		cfg.Proxy = f.Proxy
	}
	if f.Tor != nil {
		cfg.Tor = *f.Tor
	}
	if f.LogFile != "" {
		cfg.LogFile = f.LogFile
	}
	if f.LogFormat != "" {
		cfg.LogFormat = f.LogFormat
	}
	cfg.Domains = append(cfg.Domains, f.Domains...)
	return nil
}

// maxSeconds is the first number of seconds that no longer fits in a
// time.Duration.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// SecondsToDuration converts a timeout given in (possibly fractional)
// seconds into a time.Duration. NaN, infinities and values whose
// nanoseconds overflow int64 return ErrInvalidTimeout. Zero and negative
// values are converted and left to Config.Validate.
func SecondsToDuration(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.Abs(seconds) >= maxSeconds {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, seconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
