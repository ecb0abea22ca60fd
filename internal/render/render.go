// Package render holds what the exporters share: the output formats, the
// overflow gate and file output.
package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOverflow is returned when exporting a document that does not fit its page.
var ErrOverflow = errors.New("content overflows the page")

// ErrUnknownFormat reports an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects an exporter.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ParseFormat parses a format name case-insensitively; "" means PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF, "":
		return FormatPDF, nil
	case FormatHTML, "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension for f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Gate refuses export while content overflows by overflowPx.
func Gate(hasOverflow bool, overflowPx float64) error {
	if hasOverflow {
		return fmt.Errorf("%w by %gpx", ErrOverflow, overflowPx)
	}
	return nil
}

// WriteFile streams write into path. The output goes to a temporary file in
// the same directory and replaces path only when write succeeds, so a
// refused or failed export leaves an existing file untouched.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
