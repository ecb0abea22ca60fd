// Package tui is the interactive command bar: ctrl+k opens it, typing
// filters the catalogue and highlights matching sections, enter runs the
// selected command.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gompdf/pagefit/internal/adjust"
	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/fit"
	"github.com/gompdf/pagefit/internal/overflow"
	"github.com/gompdf/pagefit/internal/report"
	"github.com/gompdf/pagefit/internal/session"
)

// Session is what the command bar drives; *session.Session implements it.
type Session interface {
	Dispatch(ctx context.Context, id string) (session.Result, error)
	Catalogue() *adjust.Catalogue
	SetHighlight(term string)
	Report() (fit.Report, bool)
	Warning() *overflow.Warning
	Constraints() constraints.Constraints
}

// ReportMsg carries a fit change into the program; send it from the
// session's OnChange.
type ReportMsg fit.Report

type resultMsg struct {
	res session.Result
	err error
}

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	s        Session
	input    textinput.Model
	open     bool
	selected int
	filtered []adjust.Command
	status   string
	width    int
	styles   report.Styles
}

// New builds the model. ctx bounds every dispatched command.
func New(ctx context.Context, s Session) Model {
	ti := textinput.New()
	ti.Placeholder = "Search commands or grep resume content..."
	ti.CharLimit = 60
	ti.Width = 50

	m := Model{ctx: ctx, s: s, input: ti, width: report.DefaultWidth, styles: report.DefaultStyles()}
	m.filtered = s.Catalogue().Commands()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open reports whether the command bar is showing.
func (m Model) Open() bool { return m.open }

// Filtered returns the commands matching the current search term.
func (m Model) Filtered() []adjust.Command { return m.filtered }

// Selected returns the highlighted row.
func (m Model) Selected() int { return m.selected }

// Status returns the last command's outcome.
func (m Model) Status() string { return m.status }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case ReportMsg:
		return m, nil

	case resultMsg:
		m.status = describe(msg.res, msg.err)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+k":
			if m.open {
				m.open = false
				m.input.Blur()
				return m, nil
			}
			m.open = true
			cmd := m.input.Focus()
			return m, cmd
		}
		if !m.open {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "esc":
			m.close()
			return m, nil
		case "down":
			if n := len(m.filtered); n > 0 {
				m.selected = (m.selected + 1) % n
			}
			return m, nil
		case "up":
			if n := len(m.filtered); n > 0 {
				m.selected = (m.selected - 1 + n) % n
			}
			return m, nil
		case "enter":
			if m.selected >= len(m.filtered) {
				return m, nil
			}
			id := m.filtered[m.selected].ID
			m.close()
			return m, m.dispatch(id)
		}

		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.search(m.input.Value())
		}
		return m, cmd
	}
	return m, nil
}

// close hides the bar and clears the search, like the original Escape.
func (m *Model) close() {
	m.open = false
	m.input.Blur()
	m.input.Reset()
	m.search("")
}

func (m *Model) search(term string) {
	m.filtered = adjust.Filter(m.s.Catalogue().Commands(), term)
	m.selected = 0
	m.s.SetHighlight(term)
}

func (m Model) dispatch(id string) tea.Cmd {
	ctx, s := m.ctx, m.s
	return func() tea.Msg {
		res, err := s.Dispatch(ctx, id)
		return resultMsg{res: res, err: err}
	}
}

func describe(res session.Result, err error) string {
	switch {
	case err != nil:
		return "Error: " + err.Error()
	case res.Message != "":
		return res.Message
	case !res.Measured:
		return res.Command.Label + ": nothing to measure"
	}
	return fmt.Sprintf("%s: spacing %.2f, font %.2f", res.Command.Label, res.After.SpacingScale, res.After.FontSizeScale)
}

// View renders the model.
func (m Model) View() string {
	var sb strings.Builder

	var status strings.Builder
	p := report.NewPrinter(&status, m.width)
	r, _ := m.s.Report()
	p.Fit(r, m.s.Warning(), m.s.Constraints())
	sb.WriteString(status.String())

	if m.open {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(report.Success).
			Padding(0, 1)
		var list strings.Builder
		list.WriteString(m.input.View())
		list.WriteString("\n")
		if len(m.filtered) == 0 {
			list.WriteString(m.styles.Muted.Render("No commands found"))
		}
		for i, c := range m.filtered {
			cursor := "  "
			label := c.Label
			if i == m.selected {
				cursor = "> "
				label = m.styles.Label.Render(label)
			}
			list.WriteString("\n" + cursor + label + "  " + m.styles.Muted.Render(c.Description))
		}
		sb.WriteString("\n" + box.Render(list.String()) + "\n")
	}

	if m.status != "" {
		sb.WriteString("\n" + m.status + "\n")
	}
	sb.WriteString("\n" + m.styles.Muted.Render("ctrl+k commands · esc close · q quit") + "\n")
	return sb.String()
}

// Run builds the program and returns it with a function that runs it until
// the user quits or ctx ends. Forward fit changes with p.Send(ReportMsg(r)).
func Run(ctx context.Context, s Session, opts ...tea.ProgramOption) (*tea.Program, func() error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(New(ctx, s), opts...)
	return p, func() error {
		_, err := p.Run()
		return err
	}
}
