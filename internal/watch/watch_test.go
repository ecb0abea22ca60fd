package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gompdf/pagefit/internal/document"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()
	w, err := New(path, 30*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func TestBurstOfWritesNotifiesOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.yaml")
	require.NoError(t, os.WriteFile(path, document.SampleYAML(), 0o644))

	w := startWatcher(t, path)
	var n atomic.Int32
	stop := w.Observe(func() { n.Add(1) })
	defer stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, document.SampleYAML(), 0o644))
	}
	assert.Eventually(t, func() bool { return n.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return n.Load() > 1 }, 150*time.Millisecond, 10*time.Millisecond)
}

func TestOtherFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.yaml")
	require.NoError(t, os.WriteFile(path, document.SampleYAML(), 0o644))

	w := startWatcher(t, path)
	var n atomic.Int32
	w.Observe(func() { n.Add(1) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	assert.Never(t, func() bool { return n.Load() > 0 }, 150*time.Millisecond, 10*time.Millisecond)
}

func TestStopUnsubscribes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.yaml")
	require.NoError(t, os.WriteFile(path, document.SampleYAML(), 0o644))

	w := startWatcher(t, path)
	var n atomic.Int32
	stop := w.Observe(func() { n.Add(1) })
	stop()
	stop()

	require.NoError(t, os.WriteFile(path, document.SampleYAML(), 0o644))
	assert.Never(t, func() bool { return n.Load() > 0 }, 150*time.Millisecond, 10*time.Millisecond)
}

func TestReloadKeepsLastGoodDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.yaml")
	require.NoError(t, os.WriteFile(path, document.SampleYAML(), 0o644))

	w := startWatcher(t, path)
	got := make(chan *document.Resume, 4)
	defer Reload(w, func(d *document.Resume) { got <- d }, nil)()

	require.NoError(t, os.WriteFile(path, []byte("name: Ada Lovelace\n"), 0o644))
	select {
	case d := <-got:
		assert.Equal(t, "Ada Lovelace", d.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload")
	}

	require.NoError(t, os.WriteFile(path, []byte("nmae: typo\n"), 0o644))
	select {
	case d := <-got:
		t.Fatalf("invalid document applied: %+v", d)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStartTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.yaml")
	w := startWatcher(t, path)
	assert.ErrorIs(t, w.Start(context.Background()), ErrRunning)
	w.Stop()
	w.Stop()
	assert.ErrorIs(t, w.Start(context.Background()), ErrRunning)
}

func TestStopWithoutStart(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "resume.yaml"), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)
	w.Stop()
}
