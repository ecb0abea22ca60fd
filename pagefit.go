// Package pagefit fits a résumé onto a single page by tuning spacing and
// font scale against a measured content height.
package pagefit

import (
	"github.com/gompdf/pagefit/pkg/api"
)

type Fitter = api.Fitter
type Options = api.Options
type Option = api.Option
type Outcome = api.Outcome
type Report = api.Report
type Constraints = api.Constraints
type Resume = api.Resume
type PageSize = api.PageSize
type Format = api.Format

func New(opts ...Option) *Fitter             { return api.New(opts...) }
func NewWithOptions(options Options) *Fitter { return api.NewWithOptions(options) }
func DefaultOptions() Options                { return api.DefaultOptions() }

var (
	WithPageSize       = api.WithPageSize
	WithPageSizeLetter = api.WithPageSizeLetter
	WithPageSizeA4     = api.WithPageSizeA4
	WithLogger         = api.WithLogger
	WithMeasurer       = api.WithMeasurer
	WithBrowser        = api.WithBrowser
	WithSettleDelay    = api.WithSettleDelay
	WithDebounce       = api.WithDebounce
	WithMaxSteps       = api.WithMaxSteps
	WithFormat         = api.WithFormat
	WithForce          = api.WithForce
	WithBaselineGrid   = api.WithBaselineGrid
	WithResourcePath   = api.WithResourcePath
	WithAuthor         = api.WithAuthor
)

const (
	PageLetter = api.PageLetter
	PageA4     = api.PageA4

	FormatPDF  = api.FormatPDF
	FormatHTML = api.FormatHTML
)
