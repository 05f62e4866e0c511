// Package main provides the entry point for the certcheck CLI.
//
// certcheck probes the http, https, http-www and https-www variants of
// each domain concurrently and reports status codes, redirects and
// certificate problems.
//
// Usage:
//
//	certcheck check example.com
//	certcheck check --list domains.txt
//
// See --help for all available options.
package main

func main() {
	Execute()
}
