package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/tokens"
)

func letter() (constraints.Constraints, tokens.Geometry) {
	g := tokens.MustGeometry(tokens.PageLetter)
	return constraints.Defaults(g), g
}

func styleOf(n *xhtml.Node) string {
	for _, a := range n.Attr {
		if a.Key == "style" {
			return a.Val
		}
	}
	return ""
}

func firstTag(n *xhtml.Node, tag string) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := firstTag(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func TestRenderStructure(t *testing.T) {
	c, g := letter()
	root := Render(document.Sample(), c, g, Options{})

	page := FindByClass(root, ClassPage)
	require.NotNil(t, page)
	assert.Contains(t, styleOf(page), "width: 816px")
	assert.Contains(t, styleOf(page), "padding: 24px 27px 28px 28px")

	content := FindByClass(root, ClassContent)
	require.NotNil(t, content)
	assert.Equal(t, "width: 761px", styleOf(content))

	for _, class := range []string{"two-column-layout", "main-content", "sidebar-layout", "bullet", "role-row", "school"} {
		assert.Contains(t, Classes(root), class)
	}
	assert.NotContains(t, Classes(root), ClassBaselineGrid)
	assert.Contains(t, styleOf(FindByClass(root, "sidebar-layout")), "width: 190px")
}

func TestRenderUsesResolvedSizes(t *testing.T) {
	c, g := letter()

	h1 := firstTag(Render(document.Sample(), c, g, Options{}), "h1")
	assert.Contains(t, styleOf(h1), "font-size: 25px", "24 * 1.05")

	c.FontSizeScale = 0.7
	h1 = firstTag(Render(document.Sample(), c, g, Options{}), "h1")
	assert.Contains(t, styleOf(h1), "font-size: 17px")

	c.LayoutFrozen = true
	h1 = firstTag(Render(document.Sample(), c, g, Options{}), "h1")
	assert.Contains(t, styleOf(h1), "font-size: 24px")
}

func TestRenderLineHeightsStayFixed(t *testing.T) {
	c, g := letter()
	c.FontSizeScale = 0.8

	root := Render(document.Sample(), c, g, Options{})
	assert.Contains(t, styleOf(firstTag(root, "h1")), "line-height: 30px")
	assert.Contains(t, styleOf(firstTag(root, "h2")), "line-height: 26px")
	assert.Contains(t, styleOf(firstTag(root, "h3")), "line-height: 19px")
}

func TestRenderSpacingScales(t *testing.T) {
	c, g := letter()
	header := FindByClass(Render(document.Sample(), c, g, Options{}), "header")
	assert.Equal(t, "margin-bottom: 4px", styleOf(header))

	c.SpacingScale = 0.5
	header = FindByClass(Render(document.Sample(), c, g, Options{}), "header")
	assert.Equal(t, "margin-bottom: 2px", styleOf(header))
}

func TestRenderHighlightAndGrid(t *testing.T) {
	c, g := letter()
	c.ShowBaselineGrid = true
	root := Render(document.Sample(), c, g, Options{Highlight: "SKILL"})

	hl := FindByClass(root, ClassHighlight)
	require.NotNil(t, hl)
	assert.Equal(t, "Skills", TextContent(hl))
	assert.NotNil(t, FindByClass(root, ClassBaselineGrid))
}

func TestRenderOptionalSections(t *testing.T) {
	c, g := letter()
	doc := &document.Resume{Name: "Solo"}
	root := Render(doc, c, g, Options{})

	text := TextContent(FindByClass(root, "sidebar-layout"))
	assert.NotContains(t, text, "Certifications")
	assert.NotContains(t, text, "Skills")
	assert.Equal(t, "Solo", TextContent(firstTag(root, "h1")))
}

func TestRenderStringRoundTrip(t *testing.T) {
	c, g := letter()
	out, err := RenderString(document.Sample(), c, g, Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `href="tel:5550192048"`)
	assert.Contains(t, out, `href="mailto:jane.doe@example.com"`)

	root, err := ParseString(out)
	require.NoError(t, err)
	content := FindByClass(root, ClassContent)
	require.NotNil(t, content)
	assert.Contains(t, TextContent(content), "Acme Payments (Example)")
	assert.Contains(t, TextContent(content), "Activation: ")
}
