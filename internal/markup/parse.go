package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/tokens"
)

// Parse reads an HTML document, for measuring pages that were exported
// earlier or written by hand.
func Parse(r io.Reader) (*xhtml.Node, error) {
	root, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return root, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*xhtml.Node, error) {
	return Parse(strings.NewReader(s))
}

// Write serialises root.
func Write(w io.Writer, root *xhtml.Node) error {
	return xhtml.Render(w, root)
}

// RenderString renders doc and serialises the result.
func RenderString(doc *document.Resume, c constraints.Constraints, g tokens.Geometry, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, Render(doc, c, g, opts)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
