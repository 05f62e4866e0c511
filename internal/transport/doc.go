// Package transport builds the outbound HTTP client used by a probe run.
//
// A Client is configured once per run: the shared request timeout, whether
// redirects are followed, and an optional HTTP or SOCKS5 proxy. Certificate
// verification is always on.
//
// TorDaemon starts an embedded Tor process whose SOCKS port can be passed
// as the proxy, which is how .onion domains are reached.
package transport
