// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonathan/resume-sifter/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxCellWidth caps free-text table columns
	maxCellWidth = 40
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out      io.Writer
	markdown bool
}

// Option configures a Printer.
type Option func(*Printer)

// WithMarkdown renders tables as GitHub-flavoured Markdown instead of box drawing.
func WithMarkdown() Option {
	return func(p *Printer) { p.markdown = true }
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer, opts ...Option) *Printer {
	p := &Printer{out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		runes := []rune(line)
		if len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func (p *Printer) newTable() table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	return w
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) render(w table.Writer) {
	if p.markdown {
		fmt.Fprintln(p.out, w.RenderMarkdown())
		return
	}
	fmt.Fprintln(p.out, w.Render())
}

// PrintSummary outputs the headline counters of a run.
func (p *Printer) PrintSummary(res *types.RunResult) {
	if res == nil {
		return
	}
	r := res.Report

	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:        %s\n", res.RunID)
	if res.DocumentID != "" {
		fmt.Fprintf(&sb, "Document:   %s\n", res.DocumentID)
	}
	fmt.Fprintf(&sb, "Candidates: %d\n", r.Candidates)
	fmt.Fprintf(&sb, "Accepted:   %d\n", r.Accepted)
	fmt.Fprintf(&sb, "Rebinds:    %d\n", r.Rebinds)
	fmt.Fprintf(&sb, "Duplicates: %d\n", r.Duplicates)
	for _, c := range types.AllContentTypes {
		fmt.Fprintf(&sb, "  %-14s %d\n", c.String()+":", len(res.Section(c)))
	}
	if r.FallbackUsed {
		sb.WriteString("Validator:  fallback\n")
	}
	if !r.ConfigFromFile {
		sb.WriteString("Config:     defaults\n")
	}

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintSections outputs one table row per record, grouped by section.
func (p *Printer) PrintSections(res *types.RunResult) {
	if res == nil {
		return
	}

	w := p.newTable()
	w.SetTitle("Sections")
	w.AppendHeader(table.Row{"Section", "Line", "Title", "Organization", "Dates", "Conf", "Provenance"})
	for _, c := range types.AllContentTypes {
		for _, rec := range res.Section(c) {
			w.AppendRow(table.Row{
				c.String(),
				rec.LineIndex,
				rec.Title,
				organizationCell(rec),
				dateRange(rec),
				fmt.Sprintf("%.2f", rec.Confidence),
				string(rec.Provenance),
			})
		}
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: maxCellWidth},
		{Number: 4, WidthMax: maxCellWidth},
		{Number: 6, Align: text.AlignRight},
	})
	p.render(w)
}

// PrintReport outputs the diagnostics of a run: gate rejections, budgets,
// section balance, decisions and alerts.
func (p *Printer) PrintReport(r types.Report) {
	if len(r.GateRejections) > 0 {
		w := p.newTable()
		w.SetTitle("Gate Rejections")
		w.AppendHeader(table.Row{"Reason", "Count"})
		total := 0
		for _, reason := range slices.Sorted(maps.Keys(r.GateRejections)) {
			n := r.GateRejections[reason]
			total += n
			w.AppendRow(table.Row{reason, n})
		}
		w.AppendFooter(table.Row{"Total", total})
		p.render(w)
	}

	if len(r.Budgets) > 0 {
		w := p.newTable()
		w.SetTitle("Budgets")
		w.AppendHeader(table.Row{"Route", "Cap", "Used", "Eligible", "Exhausted"})
		for _, b := range r.Budgets {
			w.AppendRow(table.Row{b.Route, b.Cap, b.Used, b.Eligible, b.Exhausted})
		}
		p.render(w)
	}

	if len(r.Balance) > 0 {
		w := p.newTable()
		w.SetTitle("Section Balance")
		w.AppendHeader(table.Row{"Section", "Items", "Skew"})
		for _, b := range r.Balance {
			w.AppendRow(table.Row{b.Section.String(), b.ItemCount, fmt.Sprintf("%.2f", b.SkewRatio)})
		}
		p.render(w)
	}

	p.PrintDecisions(r.Decisions)
	p.PrintAlerts(r.Alerts)
}

// PrintDecisions outputs the reclassification audit trail.
func (p *Printer) PrintDecisions(decisions []types.Decision) {
	if len(decisions) == 0 {
		return
	}
	w := p.newTable()
	w.SetTitle("Decisions")
	w.AppendHeader(table.Row{"Line", "Title", "From", "To", "Reason", "Conf", "Evidence"})
	for _, d := range decisions {
		evidence := ""
		if d.Evidence != nil {
			evidence = fmt.Sprintf("%d/4", d.Evidence.Count())
		}
		w.AppendRow(table.Row{
			d.LineIndex,
			d.Title,
			d.From.String(),
			d.To.String(),
			d.Reason,
			fmt.Sprintf("%.2f", d.Confidence),
			evidence,
		})
	}
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: maxCellWidth}})
	p.render(w)
}

// PrintAlerts outputs run alerts in a box, most severe first.
func (p *Printer) PrintAlerts(alerts []string) {
	if len(alerts) == 0 {
		return
	}
	sorted := slices.Clone(alerts)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return severityRank(a) - severityRank(b)
	})

	var sb strings.Builder
	for i, a := range sorted {
		if i == maxItemsToShow {
			fmt.Fprintf(&sb, "... and %d more\n", len(sorted)-maxItemsToShow)
			break
		}
		fmt.Fprintf(&sb, "• %s\n", a)
	}
	p.printBox("ALERTS", sb.String())
}

// PrintProgress outputs a one-line step completion message.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(step, message string, durationMs int64) {
	fmt.Fprintf(p.out, "  ✓ %-12s %s (%dms)\n", step, message, durationMs)
}

func severityRank(alert string) int {
	switch {
	case strings.HasPrefix(alert, types.SeverityCritical):
		return 0
	case strings.HasPrefix(alert, types.SeverityWarning):
		return 1
	default:
		return 2
	}
}

func organizationCell(rec types.Record) string {
	if rec.OriginalOrganization != "" && rec.OriginalOrganization != rec.Organization {
		return fmt.Sprintf("%s (was %s)", rec.Organization, rec.OriginalOrganization)
	}
	return rec.Organization
}

func dateRange(rec types.Record) string {
	var start, end string
	if rec.StartDate != nil {
		start = rec.StartDate.String()
	}
	switch {
	case rec.IsCurrent:
		end = "present"
	case rec.EndDate != nil:
		end = rec.EndDate.String()
	}
	switch {
	case start == "" && end == "":
		return ""
	case start == end || end == "":
		return start
	case start == "":
		return end
	}
	return start + " – " + end
}

// RouteRow is one routed candidate for PrintRoutes.
type RouteRow struct {
	LineIndex  int
	Title      string
	From       types.ContentType
	To         types.ContentType
	Confidence float64
	Reason     string
}

// PrintRoutes outputs the router's verdict for each candidate.
func (p *Printer) PrintRoutes(rows []RouteRow) {
	w := p.newTable()
	w.SetTitle("Routing")
	w.AppendHeader(table.Row{"Line", "Title", "Section", "Route", "Conf", "Reason"})
	for _, r := range rows {
		route := r.To.String()
		if r.To != r.From {
			route = "→ " + route
		}
		w.AppendRow(table.Row{r.LineIndex, r.Title, r.From.String(), route, fmt.Sprintf("%.2f", r.Confidence), r.Reason})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: maxCellWidth},
	})
	p.render(w)
}

// PrintDates outputs the dates parsed from one input, best first.
func (p *Printer) PrintDates(input string, parsed []types.ParsedDate) {
	w := p.newTable()
	w.SetTitle(input)
	w.AppendHeader(table.Row{"Text", "Type", "Start", "End", "Conf"})
	for _, d := range parsed {
		end := yearMonthCell(d.EndYear, d.EndMonth)
		if d.IsCurrent {
			end = "present"
		}
		w.AppendRow(table.Row{
			d.OriginalText,
			string(d.DateType),
			yearMonthCell(d.StartYear, d.StartMonth),
			end,
			fmt.Sprintf("%.2f", d.Confidence),
		})
	}
	if len(parsed) == 0 {
		w.AppendRow(table.Row{"(no date)", "", "", "", ""})
	}
	p.render(w)
}

func yearMonthCell(year, month *int) string {
	switch {
	case year == nil:
		return ""
	case month == nil:
		return fmt.Sprintf("%d", *year)
	}
	return fmt.Sprintf("%d-%02d", *year, *month)
}
