package report

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/certcheck/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownHandler buffers results and writes a Markdown report on Flush.
// Rows are ordered by domain and candidate URL, not by completion, so the
// report is stable across runs.
type MarkdownHandler struct {
	out     io.Writer
	domains []string
	seen    map[string]bool
	order   map[string]int
	rows    []model.ProbeResult
	tally   *Tally
}

// NewMarkdownHandler creates a MarkdownHandler writing to w.
func NewMarkdownHandler(w io.Writer) *MarkdownHandler {
	return &MarkdownHandler{
		out:   w,
		seen:  make(map[string]bool),
		order: make(map[string]int),
		tally: NewTally(),
	}
}

// Handle implements probe.Handler.
func (h *MarkdownHandler) Handle(info model.RunInfo, result model.ProbeResult) {
	if len(info.URLs) > 0 {
		if _, ok := h.order[info.URLs[0]]; !ok {
			h.register(info)
		}
	}
	h.rows = append(h.rows, result)
	h.tally.Handle(info, result)
}

// register records the domain and URL order of a run the first time one of
// its results arrives.
func (h *MarkdownHandler) register(info model.RunInfo) {
	for _, d := range info.Domains {
		if !h.seen[d] {
			h.seen[d] = true
			h.domains = append(h.domains, d)
		}
	}
	for _, u := range info.URLs {
		if _, ok := h.order[u]; !ok {
			h.order[u] = len(h.order)
		}
	}
}

// Flush writes the report.
func (h *MarkdownHandler) Flush() error {
	md := markdown.NewMarkdown(h.out)

	h.writeHeader(md)
	h.writeResults(md)
	h.writeSummary(md)
	h.writeFooter(md)

	return md.Build()
}

// writeHeader writes the title and run properties.
func (h *MarkdownHandler) writeHeader(md *markdown.Markdown) {
	md.H1("Certcheck Report")
	md.PlainText("")

	domains := make([]string, len(h.domains))
	for i, d := range h.domains {
		domains[i] = "`" + d + "`"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Domains", joinOrDash(domains)},
			{"URLs Probed", strconv.Itoa(h.tally.Total())},
		},
	})
	md.PlainText("")
}

// writeResults writes one table row per probed URL.
func (h *MarkdownHandler) writeResults(md *markdown.Markdown) {
	md.H2("Results")
	md.PlainText("")

	if len(h.rows) == 0 {
		md.PlainText("No URLs were probed.")
		md.PlainText("")
		return
	}

	rows := slices.Clone(h.rows)
	slices.SortStableFunc(rows, func(a, b model.ProbeResult) int {
		return h.order[a.URL] - h.order[b.URL]
	})

	table := make([][]string, len(rows))
	for i, r := range rows {
		c := model.Classify(r.Outcome)
		table[i] = []string{"`" + r.URL + "`", c.Bucket.String(), statusCell(c), detailCell(r.Outcome, c)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Result", "Status", "Detail"},
		Rows:   table,
	})
	md.PlainText("")
}

// writeSummary writes the bucket counts and a pie chart of them.
func (h *MarkdownHandler) writeSummary(md *markdown.Markdown) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Buckets)+1)
	for _, b := range model.Buckets {
		rows = append(rows, []string{b.String(), strconv.Itoa(h.tally.Count(b))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(h.tally.Total()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if h.tally.Total() > 0 {
		h.writePieChart(md)
	}
}

// writePieChart writes a mermaid pie chart of the non-empty buckets.
func (h *MarkdownHandler) writePieChart(md *markdown.Markdown) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Result Distribution"),
		piechart.WithShowData(true),
	)
	for _, b := range model.Buckets {
		if n := h.tally.Count(b); n > 0 {
			chart.LabelAndIntValue(b.String(), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (h *MarkdownHandler) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by certcheck*")
}

// statusCell renders "301 MOVED PERMANENTLY", or "-" for failures.
func statusCell(c model.Classification) string {
	if c.Bucket == model.BucketException {
		return "-"
	}
	if c.StatusMessage == "" {
		return strconv.Itoa(c.StatusCode)
	}
	return strconv.Itoa(c.StatusCode) + " " + c.StatusMessage
}

// detailCell renders the redirect target or the failure.
func detailCell(o model.Outcome, c model.Classification) string {
	switch {
	case c.Bucket == model.BucketException:
		return o.FailureKind().String() + ": " + escapeCell(c.Message)
	case c.Bucket == model.BucketRedirect:
		return "→ " + escapeCell(redirectTarget(c))
	default:
		return "-"
	}
}

// escapeCell keeps pipes from breaking the table.
func escapeCell(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '|':
			out = append(out, '\\', '|')
		case '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
