package layout

import (
	"context"
	"sync"

	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/measure"
)

// DefaultContentClass marks the measured content box.
const DefaultContentClass = "resume-page"

// Source supplies the tree to measure. ok is false when there is nothing
// rendered yet.
type Source func(ctx context.Context) (root *xhtml.Node, ok bool)

// Measurer is a measure.Port backed by this engine. Every call re-renders
// through Source, so it always reflects the current document and
// constraints.
type Measurer struct {
	mu     sync.Mutex
	width  float64
	source Source
	class  string
	logger *zap.Logger
}

var _ measure.Port = (*Measurer)(nil)

// NewMeasurer measures the box with class DefaultContentClass in a layout of
// the given page width.
func NewMeasurer(pageWidth float64, source Source, logger *zap.Logger) *Measurer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Measurer{width: pageWidth, source: source, class: DefaultContentClass, logger: logger.Named("measurer")}
}

// SetPageWidth changes the layout width, for page-size switches.
func (m *Measurer) SetPageWidth(w float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width = w
}

// PageWidth returns the layout width.
func (m *Measurer) PageWidth() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width
}

// Measure lays the tree out and reports the content box.
func (m *Measurer) Measure(ctx context.Context) (measure.Metrics, bool) {
	if ctx.Err() != nil {
		return measure.Metrics{}, false
	}
	root, ok := m.source(ctx)
	if !ok || root == nil {
		return measure.Metrics{}, false
	}

	box := NewEngine(Options{Width: m.PageWidth()}, m.logger).LayoutDocument(root)
	content := box.FindByClass(m.class)
	if content == nil {
		m.logger.Debug("content box not found", zap.String("class", m.class))
		return measure.Metrics{}, false
	}
	return Metrics(content), true
}

// Metrics reports a laid-out box the way a browser reports an element:
// offset size from the box itself, scroll size from its furthest
// descendant.
func Metrics(b *BlockBox) measure.Metrics {
	right, bottom := b.Extent()
	return measure.Metrics{
		Height:       b.Height,
		Width:        b.Width,
		ScrollHeight: bottom - b.Y,
		ScrollWidth:  right - b.X,
	}
}
