package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagefit/internal/res"
	"github.com/gompdf/pagefit/internal/tokens"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
page_size: a4
settle_delay: 200ms
browser:
  headed: true
output:
  format: html
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a4", cfg.PageSize)
	assert.Equal(t, 200*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 16*time.Millisecond, cfg.Debounce, "unset fields keep defaults")
	assert.True(t, cfg.Browser.Headed)
	assert.Equal(t, "html", cfg.Output.Format)

	g, err := cfg.Geometry()
	require.NoError(t, err)
	assert.Equal(t, tokens.PageA4, g.Size)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("page_size: legal\nmeasurer: ruler\nmax_autofit_steps: 0\n"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "legal")
	assert.Contains(t, err.Error(), "ruler")
	assert.Contains(t, err.Error(), "max_autofit_steps")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("page_size: [a4"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAGEFIT_MEASURER", "browser")
	t.Setenv("PAGEFIT_CHROME_URL", "ws://127.0.0.1:9222/devtools/browser/x")

	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, MeasurerBrowser, cfg.Measurer)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/x", cfg.Browser.ControlURL)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", FileName)
	want := Default()
	want.PageSize = "a4"
	want.Output.BaselineGrid = true
	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenThroughLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("measurer: browser\n"), 0o644))

	loader := res.NewLoader(filepath.Join(dir, FileName))
	cfg, err := Open(context.Background(), loader, FileName)
	require.NoError(t, err)
	assert.Equal(t, MeasurerBrowser, cfg.Measurer)

	_, err = Open(context.Background(), loader, "data:text/html,<p>hi</p>")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
