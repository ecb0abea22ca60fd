package browser

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/markup"
	"github.com/gompdf/pagefit/internal/tokens"
)

func TestUnavailableWithoutDocument(t *testing.T) {
	m := NewMeasurer(Config{}, 816, markup.ClassContent,
		func(context.Context) (string, bool) { return "", false }, nil)
	defer m.Close()

	_, ok := m.Measure(context.Background())
	assert.False(t, ok)
	assert.Nil(t, m.browser, "no browser is started for nothing to measure")
}

func TestClosedMeasurerIsUnavailable(t *testing.T) {
	m := NewMeasurer(Config{}, 816, markup.ClassContent,
		func(context.Context) (string, bool) { return "<html></html>", true }, nil)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, ok := m.Measure(context.Background())
	assert.False(t, ok)
	_, _, err := m.measure(context.Background(), "<html></html>")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDefaults(t *testing.T) {
	m := NewMeasurer(Config{}, 816, markup.ClassContent, nil, nil)
	assert.Equal(t, DefaultTimeout, m.cfg.Timeout)
	m.SetPageWidth(794)
	assert.Equal(t, 794.0, m.width)
}

// TestMeasureInChrome needs a browser; set PAGEFIT_CHROME=1 to run it.
func TestMeasureInChrome(t *testing.T) {
	if os.Getenv("PAGEFIT_CHROME") == "" {
		t.Skip("PAGEFIT_CHROME not set")
	}
	g := tokens.MustGeometry(tokens.PageLetter)
	html, err := markup.RenderString(document.Sample(), constraints.Defaults(g), g, markup.Options{})
	require.NoError(t, err)

	m := NewMeasurer(Config{}, g.Width, markup.ClassContent,
		func(context.Context) (string, bool) { return html, true }, nil)
	defer m.Close()

	metrics, ok := m.Measure(context.Background())
	require.True(t, ok)
	assert.Equal(t, g.ContentWidth(), metrics.Width)
	assert.Greater(t, metrics.Height, 0.0)

	missing := NewMeasurer(Config{}, g.Width, "no-such-box",
		func(context.Context) (string, bool) { return html, true }, nil)
	defer missing.Close()
	_, ok = missing.Measure(context.Background())
	assert.False(t, ok)
}
