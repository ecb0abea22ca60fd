// Package htmlout writes the rendered résumé as a standalone HTML document.
package htmlout

import (
	"bufio"
	"fmt"
	"io"

	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/markup"
)

// Write serialises root.
func Write(w io.Writer, root *xhtml.Node) error {
	bw := bufio.NewWriter(w)
	if err := markup.Write(bw, root); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}
