package transport

import "errors"

var (
	// ErrInvalidProxy is returned when a proxy URL cannot be parsed or has no
	// usable host:port.
	ErrInvalidProxy = errors.New("invalid proxy URL")

	// ErrUnsupportedProxyScheme is returned for proxy schemes other than
	// http, https, socks5 and socks5h.
	ErrUnsupportedProxyScheme = errors.New("unsupported proxy scheme")

	// ErrInvalidTimeout is returned when the client timeout is not positive.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

// ErrTorNotRunning is returned when the proxy of an embedded Tor daemon is
// requested before Start succeeded or after Stop.
var ErrTorNotRunning = errors.New("embedded Tor daemon is not running")
