// Package api is the library entry point: open a résumé, measure it, fit it
// to one page and export it.
package api

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/adjust"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/render"
	"github.com/gompdf/pagefit/internal/res"
	"github.com/gompdf/pagefit/internal/session"
)

// Fitter fits résumés to one page. It holds no per-document state, so one
// Fitter may serve many goroutines.
type Fitter struct {
	options Options
	loader  *res.Loader
	logger  *zap.Logger
}

// Outcome is the state of a document after a Fitter operation.
type Outcome struct {
	Report      Report
	Constraints Constraints
	// Measured is false when the backend had nothing to measure.
	Measured bool
	// Steps and Exhausted are set by AutoFit.
	Steps     int
	Exhausted bool
}

// Fits reports whether the measured content fits its page.
func (o Outcome) Fits() bool { return o.Measured && !o.Report.HasOverflow }

// New creates a Fitter from the default options and opts.
func New(opts ...Option) *Fitter {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a Fitter with the specified options
func NewWithOptions(options Options) *Fitter {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := res.NewLoader("")
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return &Fitter{options: options, loader: loader, logger: logger}
}

// WithOption returns a new Fitter with the specified option set
func (f *Fitter) WithOption(option Option) *Fitter {
	newOptions := f.options
	newOptions.ResourcePaths = append([]string(nil), f.options.ResourcePaths...)
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// Options returns a copy of the Fitter's options.
func (f *Fitter) Options() Options {
	return f.options
}

// Load reads a résumé from a path, an http(s) URL or a data: URL.
func (f *Fitter) Load(ctx context.Context, location string) (*Resume, error) {
	if !res.Remote(location) && !strings.HasPrefix(location, "data:") {
		f.loader.Forget(location)
	}
	return document.Open(ctx, f.loader, location)
}

// SessionOptions maps the Fitter's options onto session options, for
// callers that run the re-measure loop themselves.
func (f *Fitter) SessionOptions() session.Options {
	return session.Options{
		PageSize:    f.options.PageSize,
		Backend:     f.options.Backend,
		Browser:     f.options.Browser,
		Port:        f.options.Measurer,
		SettleDelay: f.options.SettleDelay,
		Debounce:    f.options.Debounce,
		Logger:      f.logger,
	}
}

// Session opens a session on doc with the Fitter's options. The caller
// closes it.
func (f *Fitter) Session(doc *Resume, onChange func(Report)) (*session.Session, error) {
	opts := f.SessionOptions()
	opts.OnChange = onChange
	return session.New(doc, opts)
}

func (f *Fitter) open(doc *Resume) (*session.Session, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", document.ErrInvalidDocument)
	}
	return f.Session(doc, nil)
}

// Check measures doc at the default constraints.
func (f *Fitter) Check(ctx context.Context, doc *Resume) (Outcome, error) {
	s, err := f.open(doc)
	if err != nil {
		return Outcome{}, err
	}
	defer s.Close()

	r, err := s.Check(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Report: r, Constraints: s.Constraints(), Measured: true}, nil
}

// AutoFit shrinks spacing, then font size, until doc fits or the policy
// has nothing left.
func (f *Fitter) AutoFit(ctx context.Context, doc *Resume) (Outcome, error) {
	s, err := f.open(doc)
	if err != nil {
		return Outcome{}, err
	}
	defer s.Close()
	return f.autoFit(ctx, s)
}

func (f *Fitter) autoFit(ctx context.Context, s *session.Session) (Outcome, error) {
	res, err := s.AutoFitUntilFits(ctx, f.options.MaxSteps)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Report:      res.Report,
		Constraints: s.Constraints(),
		Measured:    true,
		Steps:       res.Steps,
		Exhausted:   res.Exhausted,
	}, nil
}

// Apply runs an adjustment script such as "tighten-spacing*2; auto-fit"
// against doc's default constraints and measures the result.
func (f *Fitter) Apply(ctx context.Context, doc *Resume, script string) (Outcome, error) {
	s, err := f.open(doc)
	if err != nil {
		return Outcome{}, err
	}
	defer s.Close()

	res, err := s.Apply(ctx, script)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Report: res.Report, Constraints: res.After, Measured: res.Measured}, nil
}

// Export auto-fits doc and writes it to w. It returns render.ErrOverflow,
// with nothing written, when doc still overflows and Force is off.
func (f *Fitter) Export(ctx context.Context, doc *Resume, w io.Writer) (Outcome, error) {
	s, err := f.open(doc)
	if err != nil {
		return Outcome{}, err
	}
	defer s.Close()

	out, err := f.autoFit(ctx, s)
	if err != nil {
		return out, err
	}
	if f.options.BaselineGrid && !out.Constraints.ShowBaselineGrid {
		if _, err := s.Dispatch(ctx, adjust.CmdToggleBaselineGrid); err != nil {
			return out, err
		}
	}
	err = s.Export(ctx, w, f.options.Format, session.ExportOptions{Force: f.options.Force, Author: f.options.Author})
	return out, err
}

// ExportFile loads input, fits it and writes output. The format follows the
// output extension when it names one. An existing output survives a refused
// export.
func (f *Fitter) ExportFile(ctx context.Context, input, output string) (out Outcome, err error) {
	doc, err := f.Load(ctx, input)
	if err != nil {
		return Outcome{}, err
	}
	fitter := f
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		format, perr := render.ParseFormat(ext)
		if perr != nil {
			return Outcome{}, perr
		}
		fitter = f.WithOption(WithFormat(format))
	}

	err = render.WriteFile(output, func(w io.Writer) error {
		var eerr error
		out, eerr = fitter.Export(ctx, doc, w)
		return eerr
	})
	return out, err
}

// Commands lists the catalogue commands matching term, all for a blank term.
func (f *Fitter) Commands(term string) []adjust.Command {
	s, err := f.Session(document.Sample(), nil)
	if err != nil {
		f.logger.Warn("commands", zap.Error(err))
		return nil
	}
	defer s.Close()
	return adjust.Filter(s.Catalogue().Commands(), term)
}
