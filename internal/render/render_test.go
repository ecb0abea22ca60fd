package render

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPDF, "PDF": FormatPDF, " html ": FormatHTML, "htm": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, ".html", FormatHTML.Ext())
}

func TestGate(t *testing.T) {
	assert.NoError(t, Gate(false, 0))
	err := Gate(true, 46)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Contains(t, err.Error(), "46px")
}

func TestWriteFileReplacesOnSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "resume.html")
	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	}))
	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "second")
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteFileKeepsExistingOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("previous good export"), 0o644))

	err := WriteFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return Gate(true, 12)
	})
	assert.ErrorIs(t, err, ErrOverflow)

	data, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, "previous good export", string(data))

	entries, rerr := os.ReadDir(dir)
	require.NoError(t, rerr)
	assert.Len(t, entries, 1)

	missing := filepath.Join(dir, "new.pdf")
	assert.Error(t, WriteFile(missing, func(io.Writer) error { return errors.New("boom") }))
	assert.NoFileExists(t, missing)
}
