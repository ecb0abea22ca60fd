package api

import (
	"time"

	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/browser"
	"github.com/gompdf/pagefit/internal/config"
	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/fit"
	"github.com/gompdf/pagefit/internal/measure"
	"github.com/gompdf/pagefit/internal/render"
	"github.com/gompdf/pagefit/internal/session"
	"github.com/gompdf/pagefit/internal/tokens"
)

// Options represents configuration options for the Fitter
type Options struct {
	// Page size: letter or a4
	PageSize PageSize

	// Measurement backend. Measurer, when set, replaces it.
	Backend  Backend
	Browser  browser.Config
	Measurer Port

	// Re-measure loop timing
	SettleDelay time.Duration
	Debounce    time.Duration

	// MaxSteps bounds auto-fit
	MaxSteps int

	// Export options
	Format Format
	// When true, export even while the content overflows
	Force bool
	// When true, the PDF carries the baseline grid overlay
	BaselineGrid bool

	// Resource paths searched for relative document locations
	ResourcePaths []string

	// Document metadata
	Author string

	Logger *zap.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// Backend selects how content height is measured.
type Backend = session.Backend

const (
	// BackendLayout measures with the built-in layout engine
	BackendLayout = session.BackendLayout
	// BackendBrowser measures in headless Chrome
	BackendBrowser = session.BackendBrowser
)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		PageSize:    tokens.PageLetter,
		Backend:     BackendLayout,
		Browser:     browser.Config{Timeout: browser.DefaultTimeout},
		SettleDelay: 50 * time.Millisecond,
		Debounce:    16 * time.Millisecond,
		MaxSteps:    11,
		Format:      render.FormatPDF,
	}
}

// OptionsFromConfig maps a loaded configuration file onto Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	size, err := tokens.ParsePageSize(cfg.PageSize)
	if err != nil {
		return Options{}, err
	}
	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return Options{}, err
	}
	o := DefaultOptions()
	o.PageSize = size
	o.Backend = Backend(cfg.Measurer)
	o.Browser = cfg.Browser
	o.SettleDelay = cfg.SettleDelay
	o.Debounce = cfg.Debounce
	o.MaxSteps = cfg.MaxAutoFitSteps
	o.Format = format
	o.Force = cfg.Output.Force
	o.BaselineGrid = cfg.Output.BaselineGrid
	o.Author = cfg.Output.Author
	return o, nil
}

// WithPageSize sets the page size
func WithPageSize(size PageSize) Option {
	return func(o *Options) {
		o.PageSize = size
	}
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(tokens.PageLetter)
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(tokens.PageA4)
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMeasurer replaces the measurement backend
func WithMeasurer(port Port) Option {
	return func(o *Options) {
		o.Measurer = port
	}
}

// WithBrowser measures in Chrome with cfg
func WithBrowser(cfg browser.Config) Option {
	return func(o *Options) {
		o.Backend = BackendBrowser
		o.Browser = cfg
	}
}

// WithSettleDelay sets the post-mutation settle delay
func WithSettleDelay(d time.Duration) Option {
	return func(o *Options) {
		o.SettleDelay = d
	}
}

// WithDebounce sets the trigger debounce window
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		o.Debounce = d
	}
}

// WithMaxSteps bounds auto-fit
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithFormat sets the export format
func WithFormat(format Format) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithForce exports even while the content overflows
func WithForce(force bool) Option {
	return func(o *Options) {
		o.Force = force
	}
}

// WithBaselineGrid overlays the baseline grid on exported PDFs
func WithBaselineGrid(on bool) Option {
	return func(o *Options) {
		o.BaselineGrid = on
	}
}

// WithResourcePath adds a path to search for documents
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// Types shared with the internal packages.
type (
	PageSize    = tokens.PageSize
	Format      = render.Format
	Port        = measure.Port
	Metrics     = measure.Metrics
	Constraints = constraints.Constraints
	Report      = fit.Report
	Resume      = document.Resume
)

const (
	PageLetter = tokens.PageLetter
	PageA4     = tokens.PageA4

	FormatPDF  = render.FormatPDF
	FormatHTML = render.FormatHTML
)
