package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteBanner writes the introduction printed before the results:
//
//	Certcheck 1.0.0
//	Running for domains: a.com, b.com
//	=================================
func WriteBanner(w io.Writer, version string, domains []string, opts ...Option) error {
	p := newPalette(applyOptions(opts).color)

	noun := "domain"
	if len(domains) > 1 {
		noun = "domains"
	}
	line := fmt.Sprintf("Running for %s: %s", noun, strings.Join(domains, ", "))

	var sb strings.Builder
	sb.WriteString("Certcheck " + version + "\n")
	sb.WriteString(line + "\n")
	sb.WriteString(strings.Repeat("=", len(line)))

	_, err := fmt.Fprintln(w, p.intro.Sprint(sb.String()))
	return err
}

// FormatElapsed renders d as "Done in 250 ms." below one second and as
// "Done in 1.234 s." otherwise.
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("Done in %.0f ms.", d.Seconds()*1000)
	}
	return fmt.Sprintf("Done in %.3f s.", d.Seconds())
}

// WriteElapsed writes the FormatElapsed line.
func WriteElapsed(w io.Writer, d time.Duration, opts ...Option) error {
	p := newPalette(applyOptions(opts).color)
	_, err := fmt.Fprintln(w, p.success.Sprint(FormatElapsed(d)))
	return err
}
