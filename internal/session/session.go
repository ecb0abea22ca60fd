// Package session owns the layout state of one résumé: its constraints, page
// size, measurer and re-measure loop. Every constraint change goes through
// the command catalogue except CurrentHeight, which only the fit callback
// writes.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/adjust"
	"github.com/gompdf/pagefit/internal/browser"
	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/fit"
	"github.com/gompdf/pagefit/internal/layout"
	"github.com/gompdf/pagefit/internal/markup"
	"github.com/gompdf/pagefit/internal/measure"
	"github.com/gompdf/pagefit/internal/overflow"
	"github.com/gompdf/pagefit/internal/render"
	"github.com/gompdf/pagefit/internal/render/htmlout"
	"github.com/gompdf/pagefit/internal/render/pdf"
	"github.com/gompdf/pagefit/internal/tokens"
)

// ErrUnavailable is returned when an operation needs a measurement and the
// port has none.
var ErrUnavailable = errors.New("measurement unavailable")

// Backend selects the measurement port.
type Backend string

const (
	BackendLayout  Backend = "layout"
	BackendBrowser Backend = "browser"
)

// Options configures a Session.
type Options struct {
	PageSize tokens.PageSize
	Backend  Backend
	Browser  browser.Config
	// Port replaces the backend measurer, mostly for tests.
	Port        measure.Port
	Observer    measure.Observer
	SettleDelay time.Duration
	Debounce    time.Duration
	// OnChange is told every fit change after the session has recorded it.
	OnChange func(fit.Report)
	Logger   *zap.Logger
}

// widthSetter is implemented by measurers that lay out at the page width.
type widthSetter interface {
	SetPageWidth(w float64)
}

// Session is safe for concurrent use. The fit callback arrives on the
// controller's goroutine.
type Session struct {
	id       uuid.UUID
	logger   *zap.Logger
	port     measure.Port
	ctrl     *fit.Controller
	onChange func(fit.Report)

	mu        sync.Mutex
	doc       *document.Resume
	geometry  tokens.Geometry
	c         constraints.Constraints
	catalogue *adjust.Catalogue
	highlight string
	last      fit.Report
	reported  bool
}

// New opens a session on doc. It fails only on an unknown page size.
func New(doc *document.Resume, opts Options) (*Session, error) {
	if opts.PageSize == "" {
		opts.PageSize = tokens.PageLetter
	}
	g, err := tokens.GeometryFor(opts.PageSize)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		id:       uuid.New(),
		doc:      doc,
		geometry: g,
		c:        constraints.Defaults(g),
		onChange: opts.OnChange,
	}
	s.logger = logger.Named("session").With(zap.String("session", s.id.String()))
	s.catalogue = adjust.NewCatalogue(s.c)

	switch {
	case opts.Port != nil:
		s.port = opts.Port
	case opts.Backend == BackendBrowser:
		s.port = browser.NewMeasurer(opts.Browser, g.Width, markup.ClassContent, s.htmlSource, s.logger)
	default:
		s.port = layout.NewMeasurer(g.Width, s.treeSource, s.logger)
	}

	settle, debounce := opts.SettleDelay, opts.Debounce
	if settle == 0 {
		settle = fit.DefaultSettleDelay
	}
	if debounce == 0 {
		debounce = fit.DefaultDebounce
	}
	s.ctrl = fit.NewController(fit.Options{
		Port:        s.port,
		Observer:    opts.Observer,
		MaxHeight:   s.c.MaxHeight,
		OnChange:    s.onOverflowChange,
		SettleDelay: settle,
		Debounce:    debounce,
		Logger:      s.logger,
	})
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// snapshot returns what a render needs under one lock.
func (s *Session) snapshot() (*document.Resume, constraints.Constraints, tokens.Geometry, markup.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.c, s.geometry, markup.Options{Highlight: s.highlight}
}

func (s *Session) treeSource(ctx context.Context) (*xhtml.Node, bool) {
	doc, c, g, opts := s.snapshot()
	if doc == nil {
		return nil, false
	}
	return markup.Render(doc, c, g, opts), true
}

func (s *Session) htmlSource(ctx context.Context) (string, bool) {
	doc, c, g, opts := s.snapshot()
	if doc == nil {
		return "", false
	}
	html, err := markup.RenderString(doc, c, g, opts)
	if err != nil {
		s.logger.Warn("render html", zap.Error(err))
		return "", false
	}
	return html, true
}

// onOverflowChange is the only writer of CurrentHeight.
func (s *Session) onOverflowChange(r fit.Report) {
	s.mu.Lock()
	s.c.CurrentHeight = r.Height
	s.last = r
	s.reported = true
	s.mu.Unlock()

	s.logger.Info("fit changed",
		zap.Bool("overflow", r.HasOverflow),
		zap.Float64("overflowPx", r.OverflowPx),
		zap.Float64("height", r.Height))
	if s.onChange != nil {
		s.onChange(r)
	}
}

// Start runs the re-measure loop until ctx ends or Close.
func (s *Session) Start(ctx context.Context) error {
	return s.ctrl.Start(ctx)
}

// Close stops the loop and releases the measurer.
func (s *Session) Close() error {
	s.ctrl.Close()
	if c, ok := s.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Constraints returns a copy of the current constraints.
func (s *Session) Constraints() constraints.Constraints {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

// Geometry returns the current page geometry.
func (s *Session) Geometry() tokens.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry
}

// Document returns the current document.
func (s *Session) Document() *document.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Report returns the last fit report; ok is false before any measurement.
func (s *Session) Report() (fit.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.reported
}

// Warning returns the current overflow warning, nil when the content fits.
func (s *Session) Warning() *overflow.Warning {
	return s.ctrl.Warning()
}

// Catalogue returns the command catalogue for the current page size.
func (s *Session) Catalogue() *adjust.Catalogue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogue
}

// Check measures now.
func (s *Session) Check(ctx context.Context) (fit.Report, error) {
	r, _, ok := s.ctrl.Check(ctx)
	if !ok {
		return fit.Report{}, ErrUnavailable
	}
	return r, nil
}

// Result is the outcome of a command.
type Result struct {
	Command adjust.Command
	Before  constraints.Constraints
	After   constraints.Constraints
	Report  fit.Report
	// Measured is false when the port had nothing to measure.
	Measured bool
	// Message is the answer of an informational command.
	Message string
}

// Dispatch runs the catalogue command id. Layout commands update the
// constraints and re-measure, then ask a running loop to measure again once
// the layout settles; informational commands answer from the current state.
func (s *Session) Dispatch(ctx context.Context, id string) (Result, error) {
	s.mu.Lock()
	cmd, err := s.catalogue.Lookup(id)
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	res := Result{Command: cmd, Before: s.c}
	if cmd.Informational() {
		res.After = s.c
		res.Message = s.describe(cmd.ID)
		res.Report, res.Measured = s.last, s.reported
		s.mu.Unlock()
		return res, nil
	}
	s.c = cmd.Op(s.c)
	res.After = s.c
	s.mu.Unlock()

	s.logger.Debug("command",
		zap.String("id", cmd.ID),
		zap.Float64("spacingScale", res.After.SpacingScale),
		zap.Float64("fontSizeScale", res.After.FontSizeScale))
	res.Report, _, res.Measured = s.ctrl.Check(ctx)
	s.ctrl.Post(fit.TriggerConstraints)
	return res, nil
}

// describe answers an informational command. Callers hold mu.
func (s *Session) describe(id string) string {
	switch id {
	case adjust.CmdShowOverflowDetails:
		return overflow.Details(s.last.HasOverflow, s.c.CurrentHeight, s.c.MaxHeight)
	case adjust.CmdSuggestReductions:
		var b strings.Builder
		b.WriteString("Suggestions:")
		for _, line := range overflow.Suggestions() {
			b.WriteString("\n- ")
			b.WriteString(line)
		}
		return b.String()
	}
	return ""
}

// Apply parses and runs an adjustment script, then re-measures. A script
// that fails validation leaves the constraints unchanged.
func (s *Session) Apply(ctx context.Context, src string) (Result, error) {
	script, err := adjust.ParseScript(src)
	if err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	before := s.c
	after, err := script.Apply(s.catalogue, s.c)
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	s.c = after
	s.mu.Unlock()

	res := Result{Before: before, After: after}
	res.Report, _, res.Measured = s.ctrl.Check(ctx)
	s.ctrl.Post(fit.TriggerConstraints)
	return res, nil
}

// FitResult summarises AutoFitUntilFits.
type FitResult struct {
	Steps     int
	Report    fit.Report
	Fits      bool
	Exhausted bool
}

// AutoFitUntilFits alternates measuring and one auto-fit step until the
// content fits, the policy has nothing left or maxSteps steps were taken.
func (s *Session) AutoFitUntilFits(ctx context.Context, maxSteps int) (FitResult, error) {
	var out FitResult
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r, _, ok := s.ctrl.Check(ctx)
		if !ok {
			return out, ErrUnavailable
		}
		out.Report = r
		if !r.HasOverflow {
			out.Fits = true
			return out, nil
		}

		s.mu.Lock()
		if adjust.Exhausted(s.c) {
			s.mu.Unlock()
			out.Exhausted = true
			s.logger.Info("auto-fit exhausted", zap.Float64("overflowPx", r.OverflowPx))
			return out, nil
		}
		if out.Steps >= maxSteps {
			s.mu.Unlock()
			return out, nil
		}
		s.c = adjust.AutoFit(s.c)
		spacing, font := s.c.SpacingScale, s.c.FontSizeScale
		s.mu.Unlock()

		out.Steps++
		s.logger.Debug("auto-fit step",
			zap.Int("step", out.Steps),
			zap.Float64("spacingScale", spacing),
			zap.Float64("fontSizeScale", font))
	}
}

// SetPageSize switches the page, keeping the scales. The budget follows the
// new geometry and reset-layout restores the new defaults.
func (s *Session) SetPageSize(ctx context.Context, size tokens.PageSize) (fit.Report, error) {
	g, err := tokens.GeometryFor(size)
	if err != nil {
		return fit.Report{}, err
	}
	s.mu.Lock()
	s.geometry = g
	s.c = constraints.WithPageSize(s.c, g)
	s.catalogue = adjust.NewCatalogue(constraints.Defaults(g))
	s.mu.Unlock()

	if ws, ok := s.port.(widthSetter); ok {
		ws.SetPageWidth(g.Width)
	}
	s.ctrl.SetMaxHeight(g.ContentHeight())
	return s.Check(ctx)
}

// SetDocument replaces the document, as after an edit on disk, and
// re-measures.
func (s *Session) SetDocument(ctx context.Context, doc *document.Resume) (fit.Report, error) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	r, err := s.Check(ctx)
	s.ctrl.Post(fit.TriggerContent)
	return r, err
}

// SetHighlight marks section titles containing term; empty clears it.
func (s *Session) SetHighlight(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = term
}

// ExportOptions tune Export.
type ExportOptions struct {
	// Force exports even while the content overflows.
	Force  bool
	Author string
}

// Export writes the document in format. It measures first when nothing has
// been measured yet and refuses with render.ErrOverflow while the content
// overflows, unless forced.
func (s *Session) Export(ctx context.Context, w io.Writer, format render.Format, opts ExportOptions) error {
	r, ok := s.Report()
	if !ok {
		var err error
		if r, err = s.Check(ctx); err != nil {
			return err
		}
	}
	if !opts.Force {
		if err := render.Gate(r.HasOverflow, r.OverflowPx); err != nil {
			return err
		}
	}

	doc, c, g, mopts := s.snapshot()
	if doc == nil {
		return ErrUnavailable
	}
	root := markup.Render(doc, c, g, mopts)

	switch format {
	case render.FormatHTML:
		return htmlout.Write(w, root)
	case render.FormatPDF, "":
		box := layout.NewEngine(layout.Options{Width: g.Width}, s.logger).LayoutDocument(root)
		return pdf.NewRenderer(s.logger).Render(w, box, g, pdf.RenderOptions{
			Title:        doc.Name,
			Author:       firstNonEmpty(opts.Author, doc.Name),
			Subject:      "Résumé",
			Creator:      "pagefit",
			Producer:     "pagefit",
			BaselineGrid: c.ShowBaselineGrid,
		})
	}
	return fmt.Errorf("%w: %q", render.ErrUnknownFormat, format)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
