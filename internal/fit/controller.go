// Package fit runs the re-measure loop: it asks a measurement port for the
// rendered height, compares it with the page budget and tells the owner when
// the fit state changes. It owns no policy; deciding what to adjust is the
// caller's job.
package fit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/measure"
	"github.com/gompdf/pagefit/internal/overflow"
)

// ErrStarted is returned by Start when the loop is already running or closed.
var ErrStarted = errors.New("fit: controller already started")

// Trigger names why a re-measure was requested.
type Trigger int

const (
	TriggerPageSize Trigger = iota
	TriggerResize
	TriggerContent
	TriggerConstraints
	TriggerSettle
)

func (t Trigger) String() string {
	switch t {
	case TriggerPageSize:
		return "page-size"
	case TriggerResize:
		return "resize"
	case TriggerContent:
		return "content"
	case TriggerConstraints:
		return "constraints"
	case TriggerSettle:
		return "settle"
	default:
		return "unknown"
	}
}

// Report is what the owner is told. Two reports are the same fit state iff
// they compare equal.
type Report struct {
	HasOverflow bool    `json:"hasOverflow"`
	OverflowPx  float64 `json:"overflowPx"`
	Height      float64 `json:"height"`
}

// Default timings.
const (
	DefaultSettleDelay = 50 * time.Millisecond
	DefaultDebounce    = 16 * time.Millisecond
)

// queueSize bounds pending triggers. Posting into a full queue is dropped:
// a queued trigger already guarantees the re-measure it would have caused.
const queueSize = 16

// Options configures a Controller.
type Options struct {
	Port      measure.Port
	Observer  measure.Observer
	MaxHeight float64
	// OnChange runs on the loop goroutine (or the Check caller). It must not
	// call Check.
	OnChange    func(Report)
	SettleDelay time.Duration
	// Debounce coalesces triggers posted within the window into a single
	// re-measure. Zero measures on every trigger.
	Debounce time.Duration
	Logger   *zap.Logger
}

// Controller is the fit-change notifier for one document.
type Controller struct {
	port        measure.Port
	observer    measure.Observer
	onChange    func(Report)
	settleDelay time.Duration
	debounce    time.Duration
	logger      *zap.Logger

	checkMu sync.Mutex // serialises whole Check cycles

	mu        sync.Mutex
	maxHeight float64
	last      Report
	reported  bool
	warning   *overflow.Warning
	started   bool
	closed    bool

	triggers  chan Trigger
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewController builds an idle controller. Call Start to run the loop, or
// Check for one-shot measurement.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		port:        opts.Port,
		observer:    opts.Observer,
		onChange:    opts.OnChange,
		settleDelay: opts.SettleDelay,
		debounce:    opts.Debounce,
		logger:      logger.Named("fit"),
		maxHeight:   opts.MaxHeight,
		triggers:    make(chan Trigger, queueSize),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// MaxHeight returns the current page budget.
func (c *Controller) MaxHeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxHeight
}

// SetMaxHeight stores a new page budget and requests a re-measure.
func (c *Controller) SetMaxHeight(h float64) {
	c.mu.Lock()
	c.maxHeight = h
	c.mu.Unlock()
	c.Post(TriggerPageSize)
}

// Warning returns the current overflow warning, nil when the content fits or
// nothing has been measured.
func (c *Controller) Warning() *overflow.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warning == nil {
		return nil
	}
	w := *c.warning
	return &w
}

// Last returns the most recently reported state. ok is false before the
// first successful measurement.
func (c *Controller) Last() (r Report, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.reported
}

// Check measures once. It returns the report and whether it differed from the
// previous one; OnChange has run exactly when changed is true. When the port
// has nothing to measure, ok is false and no state changes.
func (c *Controller) Check(ctx context.Context) (r Report, changed, ok bool) {
	c.checkMu.Lock()
	defer c.checkMu.Unlock()

	if c.port == nil {
		return Report{}, false, false
	}
	m, ok := c.port.Measure(ctx)
	if !ok {
		c.logger.Debug("measurement unavailable")
		return Report{}, false, false
	}

	height := m.ActualHeight()
	c.mu.Lock()
	w := overflow.Detect(height, c.maxHeight)
	r = Report{Height: height}
	if w != nil {
		r.HasOverflow = true
		r.OverflowPx = w.OverflowPx
	}
	if !sameWarning(c.warning, w) {
		c.warning = w
	}
	changed = !c.reported || c.last != r
	if changed {
		c.last = r
		c.reported = true
	}
	c.mu.Unlock()

	if changed {
		c.logger.Debug("fit changed",
			zap.Bool("overflow", r.HasOverflow),
			zap.Float64("overflowPx", r.OverflowPx),
			zap.Float64("height", r.Height))
		if c.onChange != nil {
			c.onChange(r)
		}
	}
	return r, changed, true
}

func sameWarning(a, b *overflow.Warning) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.OverflowPx == b.OverflowPx && a.EstimatedLines == b.EstimatedLines
}

// Post requests a re-measure. It never blocks and is a no-op after Close.
func (c *Controller) Post(t Trigger) {
	select {
	case <-c.stopCh:
		return
	default:
	}
	select {
	case c.triggers <- t:
	default:
		c.logger.Debug("trigger coalesced", zap.Stringer("trigger", t))
	}
}

// Start runs the loop on its own goroutine until ctx ends or Close is
// called. It measures immediately, subscribes to the observer and schedules
// one settle re-measure after SettleDelay.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return ErrStarted
	}
	c.started = true
	c.mu.Unlock()

	go c.run(ctx)
	return nil
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.doneCh)

	if c.observer != nil {
		stop := c.observer.Observe(func() { c.Post(TriggerResize) })
		defer stop()
	}

	c.measure(ctx, TriggerPageSize)

	settle := time.NewTimer(c.settleDelay)
	defer settle.Stop()

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
		pending   Trigger
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-settle.C:
			c.measure(ctx, TriggerSettle)
		case t := <-c.triggers:
			if c.debounce <= 0 {
				c.measure(ctx, t)
				continue
			}
			pending = t
			if debounceC == nil {
				if debounce == nil {
					debounce = time.NewTimer(c.debounce)
				} else {
					debounce.Reset(c.debounce)
				}
				debounceC = debounce.C
			}
		case <-debounceC:
			debounceC = nil
			c.measure(ctx, pending)
		}
	}
}

func (c *Controller) measure(ctx context.Context, t Trigger) {
	c.logger.Debug("re-measure", zap.Stringer("trigger", t))
	c.Check(ctx)
}

// Close stops the loop, releases the observer subscription and cancels the
// pending settle. It waits for the loop goroutine and is safe to call more
// than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		started := c.started
		c.mu.Unlock()

		close(c.stopCh)
		if started {
			<-c.doneCh
		}
	})
}
