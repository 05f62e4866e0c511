package model

import (
	"errors"
	"strings"

	"golang.org/x/net/idna"
)

// CandidatesPerDomain is the number of candidate URLs Expand produces for a domain.
const CandidatesPerDomain = 4

// ErrEmptyDomain is returned by NormalizeDomain when nothing is left after trimming.
var ErrEmptyDomain = errors.New("empty domain")

// Expand returns the candidate URLs for domain in probe order:
// http, https, http-www, https-www.
//
// No validation is performed. A malformed domain surfaces later as a
// connection failure, never as an expansion error.
func Expand(domain string) []string {
	return []string{
		"http://" + domain,
		"https://" + domain,
		"http://www." + domain,
		"https://www." + domain,
	}
}

// ExpandAll expands every domain and concatenates the groups in input order.
func ExpandAll(domains []string) []string {
	urls := make([]string, 0, len(domains)*CandidatesPerDomain)
	for _, d := range domains {
		urls = append(urls, Expand(d)...)
	}
	return urls
}

// LongestURL returns the length of the longest string in urls, or 0.
func LongestURL(urls []string) int {
	longest := 0
	for _, u := range urls {
		if len(u) > longest {
			longest = len(u)
		}
	}
	return longest
}

// NormalizeDomain turns user input into a bare hostname suitable for Expand.
//
// Surrounding whitespace, an http:// or https:// prefix and anything after the
// first slash are removed, the result is lowercased and internationalized
// names are converted to their ASCII (punycode) form. If the IDNA conversion
// fails the lowercased input is returned unchanged; bad names are reported by
// the probe, not here.
func NormalizeDomain(raw string) (string, error) {
	d := strings.TrimSpace(raw)
	for _, prefix := range []string{"http://", "https://"} {
		if len(d) >= len(prefix) && strings.EqualFold(d[:len(prefix)], prefix) {
			d = d[len(prefix):]
			break
		}
	}
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	d = strings.ToLower(d)
	if d == "" {
		return "", ErrEmptyDomain
	}

	ascii, err := idna.Punycode.ToASCII(d)
	if err != nil || ascii == "" {
		return d, nil
	}
	return ascii, nil
}
