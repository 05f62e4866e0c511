package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultTorStartupTimeout bounds the bootstrap of the embedded Tor daemon.
const DefaultTorStartupTimeout = 3 * time.Minute

// TorDaemon runs an embedded Tor daemon whose SOCKS port is used as the
// proxy of every probe, so that .onion domains can be checked and clearnet
// domains are reached through Tor exits.
//
// Bootstrapping takes from several seconds to a few minutes.
type TorDaemon struct {
	process        *tornago.TorProcess
	proxy          *url.URL
	startupTimeout time.Duration
}

// TorOption configures a TorDaemon.
type TorOption func(*TorDaemon)

// WithTorStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithTorStartupTimeout(timeout time.Duration) TorOption {
	return func(d *TorDaemon) {
		if timeout > 0 {
			d.startupTimeout = timeout
		}
	}
}

// NewTorDaemon creates a TorDaemon. Call Start to launch it.
func NewTorDaemon(opts ...TorOption) *TorDaemon {
	d := &TorDaemon{startupTimeout: DefaultTorStartupTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the Tor daemon on OS-assigned ports and waits for it to
// bootstrap. ProxyURL returns the address to use afterwards. Starting a
// running daemon does nothing.
func (d *TorDaemon) Start(ctx context.Context) error {
	if d.Running() {
		return nil
	}

	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(d.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	// Blocks until Tor is bootstrapped or the startup timeout expires.
	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	proxyURL, err := TorProxyURL(process.SocksAddr())
	if err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	d.process = process
	d.proxy = proxyURL
	return nil
}

// Stop shuts the daemon down. It is safe to call on a daemon that was never
// started and to call more than once.
func (d *TorDaemon) Stop() error {
	if d.process == nil {
		return nil
	}
	err := d.process.Stop()
	d.process = nil
	d.proxy = nil
	return err
}

// Running reports whether the daemon is up.
func (d *TorDaemon) Running() bool {
	return d.process != nil
}

// ProxyURL returns the socks5h URL of the running daemon.
func (d *TorDaemon) ProxyURL() (*url.URL, error) {
	if !d.Running() {
		return nil, ErrTorNotRunning
	}
	u := *d.proxy
	return &u, nil
}

// TorProxyURL turns the SOCKS listener address of a Tor daemon into a
// socks5h proxy URL. socks5h lets Tor resolve host names, which .onion
// addresses require. A listener without host is reached on 127.0.0.1.
func TorProxyURL(socksAddr string) (*url.URL, error) {
	host, port, err := net.SplitHostPort(socksAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: Tor SOCKS address %q: %w", ErrInvalidProxy, socksAddr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	u := &url.URL{Scheme: "socks5h", Host: net.JoinHostPort(host, port)}
	if err := ValidateProxy(u); err != nil {
		return nil, err
	}
	return u, nil
}
