// Package ui renders scan reports and pattern listings for the terminal.
package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/syzygy/internal/engine"
	"github.com/papapumpkin/syzygy/internal/pattern"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorAccent  = lipgloss.Color("#FFD700")
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

const timeFormat = "2006-01-02 15:04"

// Printer writes styled output to w. Color is chosen from w's terminal
// capabilities, so plain writers get plain text.
type Printer struct {
	w io.Writer

	title   lipgloss.Style
	heading lipgloss.Style
	forming lipgloss.Style
	exact   lipgloss.Style
	dissolv lipgloss.Style
	warn    lipgloss.Style
	errS    lipgloss.Style
	dim     lipgloss.Style
}

// New creates a Printer on w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		title:   r.NewStyle().Foreground(colorPrimary).Bold(true),
		heading: r.NewStyle().Bold(true).Underline(true),
		forming: r.NewStyle().Foreground(colorSuccess),
		exact:   r.NewStyle().Foreground(colorAccent).Bold(true),
		dissolv: r.NewStyle().Foreground(colorPrimary),
		warn:    r.NewStyle().Foreground(colorAccent),
		errS:    r.NewStyle().Foreground(colorDanger).Bold(true),
		dim:     r.NewStyle().Foreground(colorMuted),
	}
}

func (p *Printer) phase(ph sky.Phase) string {
	s := fmt.Sprintf("%-10s", ph)
	switch ph {
	case sky.Forming:
		return p.forming.Render(s)
	case sky.Exact:
		return p.exact.Render(s)
	case sky.Dissolving:
		return p.dissolv.Render(s)
	}
	return s
}

// Report prints a scan report: instants, durations, then warnings.
func (p *Printer) Report(r *engine.Report) {
	fmt.Fprintf(p.w, "%s %s → %s\n",
		p.title.Render("syzygy scan"),
		r.Window.From.Format(timeFormat), r.Window.To.Format(timeFormat))

	minutes := 0
	for _, b := range r.Batches {
		minutes += b.Minutes
	}
	fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf("%s minute(s) in %d batch(es)",
		humanize.Comma(int64(minutes)), len(r.Batches))))
	if c := r.Coverage; c != nil {
		fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf("edges cover %s → %s",
			c.From.Format(timeFormat), c.To.Format(timeFormat))))
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.heading.Render(fmt.Sprintf("Instants (%d)", len(r.Instants))))
	if len(r.Instants) == 0 {
		fmt.Fprintln(p.w, p.dim.Render("  (none)"))
	}
	for _, in := range r.Instants {
		line := fmt.Sprintf("  %s  %s %-14s %s",
			in.At.Format(timeFormat), p.phase(in.Phase), in.Name(), sky.JoinBodies(in.Candidate.Bodies))
		if roles := roleText(in.Candidate); roles != "" {
			line += p.dim.Render("  " + roles)
		}
		if in.Pattern == sky.Stellium {
			line += p.dim.Render(fmt.Sprintf("  span %.2f°", in.Tightness))
		}
		fmt.Fprintln(p.w, line)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.heading.Render(fmt.Sprintf("Durations (%d)", len(r.Durations))))
	if len(r.Durations) == 0 {
		fmt.Fprintln(p.w, p.dim.Render("  (none)"))
	}
	for _, d := range r.Durations {
		fmt.Fprintf(p.w, "  %s → %s  %-14s %s %s\n",
			d.Start.Format(timeFormat), d.End.Format(timeFormat), d.Name(),
			sky.JoinBodies(d.Candidate.Bodies), p.dim.Render("("+d.Span()+")"))
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.warn.Render(fmt.Sprintf("⚠ %d record(s) skipped", len(r.Skipped))))
		for _, s := range r.Skipped {
			fmt.Fprintf(p.w, "  %s: %v\n", s.Record.ID, s.Err)
		}
	}
	if len(r.Failures) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.errS.Render(fmt.Sprintf("✗ %d detector failure(s)", len(r.Failures))))
		for _, line := range failureSummary(r.Failures) {
			fmt.Fprintln(p.w, "  "+line)
		}
	}
}

// failureSummary groups failures by pattern so a missing ephemeris does not
// print one line per minute.
func failureSummary(fs []engine.Failure) []string {
	type agg struct {
		count int
		first engine.Failure
	}
	by := make(map[sky.PatternKind]*agg)
	for _, f := range fs {
		a, ok := by[f.Pattern]
		if !ok {
			a = &agg{first: f}
			by[f.Pattern] = a
		}
		a.count++
	}
	kinds := make([]sky.PatternKind, 0, len(by))
	for k := range by {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		a := by[k]
		out = append(out, fmt.Sprintf("%s: %s minute(s), first at %s: %v",
			k, humanize.Comma(int64(a.count)), a.first.At.Format(timeFormat), a.first.Err))
	}
	return out
}

func roleText(c pattern.Candidate) string {
	var parts []string
	for _, b := range c.Bodies {
		if r, ok := c.Roles[b]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", r, b))
		}
	}
	return strings.Join(parts, " ")
}

// Patterns lists pattern definitions.
func (p *Printer) Patterns(defs []pattern.Definition) {
	fmt.Fprintln(p.w, p.title.Render("patterns"))
	for _, d := range defs {
		size := fmt.Sprintf("%d bodies", d.Slots)
		if d.Proximity {
			size = fmt.Sprintf("%d-%d bodies", d.Slots, d.MaxSlots)
		}
		fmt.Fprintf(p.w, "  %-12s %-12s %s\n", d.Kind.Slug(), p.dim.Render(size), d.Summary)
	}
}

// Imported reports an import into the input database.
func (p *Printer) Imported(path string, aspects, longitudes int) {
	fmt.Fprintf(p.w, "%s %s: %s aspect record(s), %s longitude sample(s)\n",
		p.forming.Render("✓ imported"), path,
		humanize.Comma(int64(aspects)), humanize.Comma(int64(longitudes)))
}

// Info prints a dimmed informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.dim.Render(msg))
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.errS.Render("error:"), msg)
}
