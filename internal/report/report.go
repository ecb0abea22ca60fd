// Package report formats fit results for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/gompdf/pagefit/internal/adjust"
	"github.com/gompdf/pagefit/internal/batch"
	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/fit"
	"github.com/gompdf/pagefit/internal/overflow"
	"github.com/gompdf/pagefit/internal/session"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

var (
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Muted       = lipgloss.Color("#6b7280")
)

// Styles used by the printer.
type Styles struct {
	Banner lipgloss.Style
	Fits   lipgloss.Style
	Label  lipgloss.Style
	ID     lipgloss.Style
	Muted  lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Banner: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Warning).
			Padding(0, 1),
		Fits: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),
		Label: lipgloss.NewStyle().
			Bold(true),
		ID: lipgloss.NewStyle().
			Foreground(Success),
		Muted: lipgloss.NewStyle().
			Foreground(Muted),
	}
}

// TerminalWidth returns the width of f when it is a terminal, else $COLUMNS,
// else fallback.
func TerminalWidth(f *os.File, fallback int) int {
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

// Printer writes formatted output wrapped to a width.
type Printer struct {
	w      io.Writer
	width  int
	styles Styles
}

// NewPrinter writes to w. A non-positive width uses DefaultWidth.
func NewPrinter(w io.Writer, width int) *Printer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Printer{w: w, width: width, styles: DefaultStyles()}
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

// wrap word-wraps s to the printer width minus margin, then indents it.
func (p *Printer) wrap(s string, margin uint) string {
	limit := p.width - int(margin)
	if limit < 20 {
		limit = 20
	}
	return indent.String(wordwrap.String(s, limit), margin)
}

// Fit prints the fit state: the overflow banner, or a one-line confirmation.
func (p *Printer) Fit(r fit.Report, w *overflow.Warning, c constraints.Constraints) {
	if r.HasOverflow && w != nil {
		p.println(p.styles.Banner.Render(wordwrap.String(w.Message, p.width-4)))
	} else {
		p.println(p.styles.Fits.Render("✓ Fits on one page"))
	}
	p.println(p.styles.Muted.Render(fmt.Sprintf(
		"height %gpx / %gpx  spacing %.2f  font %.2f%s%s",
		r.Height, c.MaxHeight, c.SpacingScale, c.FontSizeScale,
		flag(c.LayoutFrozen, "  frozen"), flag(c.ShowBaselineGrid, "  grid"))))
}

func flag(on bool, s string) string {
	if on {
		return s
	}
	return ""
}

// AutoFit prints the outcome of a fit loop.
func (p *Printer) AutoFit(res session.FitResult, c constraints.Constraints) {
	switch {
	case res.Fits:
		p.println(p.wrap(fmt.Sprintf("Fitted after %d %s.", res.Steps, plural(res.Steps, "step", "steps")), 0))
	case res.Exhausted:
		p.println(p.wrap("Auto-fit is at its limits and the résumé still overflows. Cut content:", 0))
		for _, s := range overflow.Suggestions() {
			p.println(p.wrap("- "+s, 2))
		}
	default:
		p.println(p.wrap(fmt.Sprintf("Stopped after %d %s without fitting.", res.Steps, plural(res.Steps, "step", "steps")), 0))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Commands lists catalogue commands: ID and label on one line, the wrapped
// description below.
func (p *Printer) Commands(cmds []adjust.Command) {
	idWidth := 0
	for _, c := range cmds {
		if w := ansi.PrintableRuneWidth(c.ID); w > idWidth {
			idWidth = w
		}
	}
	for _, c := range cmds {
		pad := strings.Repeat(" ", idWidth-ansi.PrintableRuneWidth(c.ID))
		line := p.styles.ID.Render(c.ID) + pad + "  " + p.styles.Label.Render(c.Label)
		p.println(truncate.StringWithTail(line, uint(p.width), "…"))
		p.println(p.styles.Muted.Render(p.wrap(c.Description, 4)))
	}
}

// Message prints free text such as an informational command's answer.
func (p *Printer) Message(s string) {
	p.println(p.wrap(s, 0))
}

// Batch prints one line per job and a summary.
func (p *Printer) Batch(results []batch.Result) {
	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			p.println(p.wrap(fmt.Sprintf("✗ %s: %v", r.Input, r.Err), 0))
		default:
			p.println(p.wrap(fmt.Sprintf("✓ %s -> %s (%d %s)", r.Input, r.Output, r.Steps, plural(r.Steps, "step", "steps")), 0))
		}
	}
	p.println(p.styles.Muted.Render(fmt.Sprintf("%d done, %d failed", len(results)-failed, failed)))
}
