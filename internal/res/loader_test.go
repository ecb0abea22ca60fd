package res

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalAndCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: A"), 0o644))

	l := NewLoader("")
	r, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, KindDocument, r.Kind)
	assert.Equal(t, "name: A", string(r.Data))

	require.NoError(t, os.WriteFile(path, []byte("name: B"), 0o644))
	r, err = l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "name: A", string(r.Data), "served from cache")

	l.Forget(path)
	r, err = l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "name: B", string(r.Data))
}

func TestLoadRelativeToBase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("<p>x</p>"), 0o644))

	l := NewLoader(filepath.Join(dir, "pagefit.yaml"))
	r, err := l.Load(context.Background(), "page.html")
	require.NoError(t, err)
	assert.Equal(t, KindHTML, r.Kind)
}

func TestLoadSearchPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cv.yml"), []byte("name: C"), 0o644))

	l := NewLoader("")
	_, err := l.Load(context.Background(), "missing/cv.yml")
	assert.ErrorIs(t, err, ErrNotFound)

	l.AddSearchPath(dir)
	r, err := l.Load(context.Background(), "elsewhere/cv.yml")
	require.NoError(t, err)
	assert.Equal(t, "name: C", string(r.Data))
}

func TestLoadDataURL(t *testing.T) {
	l := NewLoader("")
	enc := base64.StdEncoding.EncodeToString([]byte("name: D"))
	r, err := l.Load(context.Background(), "data:application/yaml;base64,"+enc)
	require.NoError(t, err)
	assert.Equal(t, KindDocument, r.Kind)
	assert.Equal(t, "name: D", string(r.Data))

	r, err = l.Load(context.Background(), "data:text/html,%3Cp%3Ehi%3C%2Fp%3E")
	require.NoError(t, err)
	assert.Equal(t, KindHTML, r.Kind)
	assert.Equal(t, "<p>hi</p>", string(r.Data))

	_, err = l.Load(context.Background(), "data:nocomma")
	assert.Error(t, err)
}

func TestLoadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cv.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte("name: E"))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL + "/docs/")
	r, err := l.Load(context.Background(), srv.URL+"/cv.yaml")
	require.NoError(t, err)
	assert.Equal(t, KindDocument, r.Kind)

	_, err = l.Load(context.Background(), "nope.yaml")
	assert.Error(t, err)
}
