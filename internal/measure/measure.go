// Package measure is the boundary between the fitting engine and whatever
// renders the document. The engine only ever asks "how tall is it now?".
package measure

import "context"

// Metrics is the rendered size of the content box, in pixels.
type Metrics struct {
	Height       float64 `json:"height"`
	Width        float64 `json:"width"`
	ScrollHeight float64 `json:"scrollHeight"`
	ScrollWidth  float64 `json:"scrollWidth"`
}

// ActualHeight prefers the laid-out height, which already reflects clipping
// by the page box, and falls back to the scroll height.
func (m Metrics) ActualHeight() float64 {
	if m.Height > 0 {
		return m.Height
	}
	return m.ScrollHeight
}

// Port measures the content box. ok is false when there is nothing to
// measure yet (for example the content is not mounted); callers skip the
// cycle rather than treat it as an error.
type Port interface {
	Measure(ctx context.Context) (m Metrics, ok bool)
}

// PortFunc adapts a function to Port.
type PortFunc func(ctx context.Context) (Metrics, bool)

// Measure calls f.
func (f PortFunc) Measure(ctx context.Context) (Metrics, bool) { return f(ctx) }

// Observer is a host primitive that reports structural changes to the
// measured content. notify may be called from any goroutine. stop releases
// the subscription and must be safe to call once.
type Observer interface {
	Observe(notify func()) (stop func())
}

// Static is a Port that always reports the same metrics.
type Static Metrics

// Measure returns the fixed metrics.
func (s Static) Measure(context.Context) (Metrics, bool) { return Metrics(s), true }
