// Package browser measures the rendered résumé in headless Chrome through
// go-rod. It reports exactly what a browser lays out, at the cost of a
// Chrome process.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/measure"
)

// ErrClosed is returned when measuring after Close.
var ErrClosed = errors.New("browser measurer closed")

// Config selects the browser.
type Config struct {
	// ControlURL connects to a running Chrome's DevTools endpoint. When
	// empty a browser is launched.
	ControlURL string `yaml:"control_url"`
	// Bin is the Chrome binary to launch; empty lets rod find or fetch one.
	Bin string `yaml:"bin"`
	// Headed shows the browser window.
	Headed bool `yaml:"headed"`
	// Timeout bounds one measurement.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultTimeout bounds one measurement when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Source supplies the HTML document to measure.
type Source func(ctx context.Context) (html string, ok bool)

// Measurer is a measure.Port that loads the document into a Chrome page and
// reads offset and scroll sizes of the content box.
type Measurer struct {
	cfg    Config
	source Source
	class  string
	logger *zap.Logger

	mu       sync.Mutex
	width    float64
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
}

var _ measure.Port = (*Measurer)(nil)

// NewMeasurer returns a measurer for the box with the given class in a
// viewport pageWidth px wide. The browser starts on first use.
func NewMeasurer(cfg Config, pageWidth float64, class string, source Source, logger *zap.Logger) *Measurer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Measurer{cfg: cfg, source: source, class: class, width: pageWidth, logger: logger.Named("browser")}
}

// SetPageWidth changes the viewport width.
func (m *Measurer) SetPageWidth(w float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width = w
}

const measureJS = `(cls) => {
	const el = document.getElementsByClassName(cls)[0];
	if (!el) return null;
	return {
		height: el.offsetHeight,
		width: el.offsetWidth,
		scrollHeight: el.scrollHeight,
		scrollWidth: el.scrollWidth,
	};
}`

// Measure renders the current document in a fresh tab. Any browser error
// is logged and reported as unavailable.
func (m *Measurer) Measure(ctx context.Context) (measure.Metrics, bool) {
	html, ok := m.source(ctx)
	if !ok {
		return measure.Metrics{}, false
	}
	metrics, found, err := m.measure(ctx, html)
	if err != nil {
		m.logger.Warn("browser measurement failed", zap.Error(err))
		return measure.Metrics{}, false
	}
	if !found {
		m.logger.Debug("content box not found", zap.String("class", m.class))
	}
	return metrics, found
}

func (m *Measurer) measure(ctx context.Context, html string) (measure.Metrics, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	b, width, err := m.connect(ctx)
	if err != nil {
		return measure.Metrics{}, false, err
	}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return measure.Metrics{}, false, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			m.logger.Debug("close page", zap.Error(err))
		}
	}()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(width),
		Height:            800,
		DeviceScaleFactor: 1,
	}); err != nil {
		return measure.Metrics{}, false, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return measure.Metrics{}, false, fmt.Errorf("load document: %w", err)
	}

	res, err := page.Evaluate(&rod.EvalOptions{
		JS:      measureJS,
		JSArgs:  []interface{}{m.class},
		ByValue: true,
	})
	if err != nil {
		return measure.Metrics{}, false, fmt.Errorf("evaluate: %w", err)
	}
	if res == nil || res.Value.Nil() {
		return measure.Metrics{}, false, nil
	}

	var out measure.Metrics
	if err := res.Value.Unmarshal(&out); err != nil {
		return measure.Metrics{}, false, fmt.Errorf("decode metrics: %w", err)
	}
	return out, true, nil
}

// connect returns a live browser, connecting or launching on first use.
func (m *Measurer) connect(ctx context.Context) (*rod.Browser, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, 0, ErrClosed
	}
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return m.browser, m.width, nil
		}
		m.logger.Info("stale browser connection, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
	}

	controlURL := m.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(!m.cfg.Headed)
		if m.cfg.Bin != "" {
			l = l.Bin(m.cfg.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, 0, fmt.Errorf("launch chrome: %w", err)
		}
		m.launcher = l
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, 0, fmt.Errorf("connect to chrome: %w", err)
	}
	m.browser = b
	m.logger.Debug("browser connected", zap.String("control_url", controlURL))
	return b, m.width, nil
}

// Close shuts the browser down, killing it if this measurer launched it.
func (m *Measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Kill()
		m.launcher.Cleanup()
		m.launcher = nil
	}
	return err
}
