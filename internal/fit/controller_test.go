package fit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/measure"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePort returns whatever height was last stored; zero means unmounted.
type fakePort struct {
	height atomic.Int64
	calls  atomic.Int64
}

func (p *fakePort) Measure(context.Context) (measure.Metrics, bool) {
	p.calls.Add(1)
	h := p.height.Load()
	if h == 0 {
		return measure.Metrics{}, false
	}
	return measure.Metrics{Height: float64(h), ScrollHeight: float64(h)}, true
}

type recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *recorder) record(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *recorder) snapshot() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.reports...)
}

type fakeObserver struct {
	mu      sync.Mutex
	notify  func()
	stopped bool
}

func (o *fakeObserver) Observe(notify func()) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notify = notify
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.stopped = true
		o.notify = nil
	}
}

func (o *fakeObserver) fire() {
	o.mu.Lock()
	n := o.notify
	o.mu.Unlock()
	if n != nil {
		n()
	}
}

func (o *fakeObserver) isStopped() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopped
}

func newController(port measure.Port, rec *recorder, opts Options) *Controller {
	opts.Port = port
	opts.OnChange = rec.record
	opts.Logger = zap.NewNop()
	if opts.MaxHeight == 0 {
		opts.MaxHeight = 1004
	}
	return NewController(opts)
}

func TestCheckReportsOnlyChanges(t *testing.T) {
	port := &fakePort{}
	port.height.Store(900)
	rec := &recorder{}
	c := newController(port, rec, Options{})

	r, changed, ok := c.Check(context.Background())
	require.True(t, ok)
	assert.True(t, changed)
	assert.Equal(t, Report{Height: 900}, r)

	_, changed, ok = c.Check(context.Background())
	require.True(t, ok)
	assert.False(t, changed)
	assert.Len(t, rec.snapshot(), 1)

	port.height.Store(1050)
	r, changed, _ = c.Check(context.Background())
	assert.True(t, changed)
	assert.Equal(t, Report{HasOverflow: true, OverflowPx: 46, Height: 1050}, r)
	require.NotNil(t, c.Warning())
	assert.Equal(t, 3, c.Warning().EstimatedLines)

	port.height.Store(1020)
	r, changed, _ = c.Check(context.Background())
	assert.True(t, changed, "height change inside tolerance is still a change")
	assert.False(t, r.HasOverflow)
	assert.Nil(t, c.Warning())

	assert.Len(t, rec.snapshot(), 3)
}

func TestCheckSkipsWhenUnavailable(t *testing.T) {
	port := &fakePort{}
	rec := &recorder{}
	c := newController(port, rec, Options{})

	_, changed, ok := c.Check(context.Background())
	assert.False(t, ok)
	assert.False(t, changed)
	assert.Empty(t, rec.snapshot())
	_, reported := c.Last()
	assert.False(t, reported)
}

func TestCheckWithoutPort(t *testing.T) {
	c := NewController(Options{MaxHeight: 1004})
	_, _, ok := c.Check(context.Background())
	assert.False(t, ok)
}

func TestLoopSettlesAndStops(t *testing.T) {
	port := &fakePort{}
	rec := &recorder{}
	c := newController(port, rec, Options{SettleDelay: 150 * time.Millisecond})

	// Not mounted on start: the first pass is skipped, the settle pass sees content.
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return port.calls.Load() >= 1 }, time.Second, time.Millisecond)
	port.height.Store(1000)

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Report{Height: 1000}, rec.snapshot()[0])

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.Start(context.Background()), ErrStarted)
	goleak.VerifyNone(t)
}

func TestObserverTriggersRemeasure(t *testing.T) {
	port := &fakePort{}
	port.height.Store(800)
	obs := &fakeObserver{}
	rec := &recorder{}
	c := newController(port, rec, Options{Observer: obs, SettleDelay: time.Hour})

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, time.Millisecond)

	port.height.Store(1100)
	obs.fire()
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, Report{HasOverflow: true, OverflowPx: 96, Height: 1100}, rec.snapshot()[1])

	c.Close()
	assert.True(t, obs.isStopped())
	goleak.VerifyNone(t)
}

func TestSetMaxHeightRetriggers(t *testing.T) {
	port := &fakePort{}
	port.height.Store(1050)
	rec := &recorder{}
	c := newController(port, rec, Options{SettleDelay: time.Hour})
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, time.Millisecond)
	assert.True(t, rec.snapshot()[0].HasOverflow)

	// Letter -> A4 content height.
	c.SetMaxHeight(1071)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.False(t, rec.snapshot()[1].HasOverflow)
	assert.Equal(t, 1071.0, c.MaxHeight())
}

func TestDebounceCoalescesTriggers(t *testing.T) {
	port := &fakePort{}
	port.height.Store(900)
	rec := &recorder{}
	c := newController(port, rec, Options{SettleDelay: time.Hour, Debounce: 30 * time.Millisecond})
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return port.calls.Load() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 10; i++ {
		c.Post(TriggerConstraints)
	}
	require.Eventually(t, func() bool { return port.calls.Load() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return port.calls.Load() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Len(t, rec.snapshot(), 1, "identical measurements are reported once")
}

func TestContextCancelEndsLoop(t *testing.T) {
	port := &fakePort{}
	ctx, cancel := context.WithCancel(context.Background())
	c := newController(port, &recorder{}, Options{SettleDelay: time.Hour})

	require.NoError(t, c.Start(ctx))
	cancel()
	c.Close()
	c.Post(TriggerContent)
	goleak.VerifyNone(t)
}

func TestTriggerString(t *testing.T) {
	assert.Equal(t, "settle", TriggerSettle.String())
	assert.Equal(t, "unknown", Trigger(99).String())
}
