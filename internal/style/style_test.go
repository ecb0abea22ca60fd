package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"
)

func parse(t *testing.T, src string) *xhtml.Node {
	t.Helper()
	root, err := xhtml.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return root
}

func find(n *xhtml.Node, id string) *xhtml.Node {
	if n.Type == xhtml.ElementNode {
		if v, _ := attr(n, "id"); v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, id); f != nil {
			return f
		}
	}
	return nil
}

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations("Font-Size: 14px; color:#000 !important;; bogus; margin : 0 4px")
	require.Len(t, decls, 3)
	assert.Equal(t, Declaration{Property: "font-size", Value: "14px"}, decls[0])
	assert.Equal(t, Declaration{Property: "color", Value: "#000", Important: true}, decls[1])
	assert.Equal(t, "0 4px", decls[2].Value)
}

func TestParseStylesheet(t *testing.T) {
	sheet := ParseStylesheet(`
		/* page box */
		@page { size: letter; margin: 0; }
		.resume-page .bullet, li { display: flex; }
		h2 { text-transform: uppercase }
	`)
	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, []string{".resume-page .bullet", "li"}, sheet.Rules[0].Selectors)
	assert.Equal(t, "uppercase", sheet.Rules[1].Declarations[0].Value)
}

func TestCascadeAndInheritance(t *testing.T) {
	root := parse(t, `<html><head><style>
		.section h2 { font-size: 20px; color: #333 }
		h2 { font-size: 30px; }
		.tight { line-height: 19px !important; }
	</style></head><body>
		<div id="outer" class="section" style="font-size: 14px; font-style: italic">
			<h2 id="title" class="tight" style="line-height: 40px">T</h2>
			<p id="para" style="font-size: 1.5em">x<b id="bold">y</b></p>
		</div>
	</body></html>`)

	styles := NewEngine().Compute(root)

	title := styles[find(root, "title")]
	assert.Equal(t, 20.0, title.FontSize(), "class+element beats element")
	assert.Equal(t, 19.0, title.LineHeight(), "!important beats inline")
	assert.True(t, title.Bold(), "user-agent h2 weight")
	assert.True(t, title.Italic(), "inherited")
	r, g, b := title.Color("color")
	assert.Equal(t, [3]int{0x33, 0x33, 0x33}, [3]int{r, g, b})

	para := styles[find(root, "para")]
	assert.Equal(t, 21.0, para.FontSize(), "em resolves against the parent")

	bold := styles[find(root, "bold")]
	assert.Equal(t, 21.0, bold.FontSize())
	assert.Equal(t, "inline", bold.Display())
	assert.Equal(t, 700, bold.Weight())

	outer := styles[find(root, "outer")]
	assert.Equal(t, "block", outer.Display())
	assert.InDelta(t, 16.8, outer.LineHeight(), 1e-9)
}

func TestSelectorMatching(t *testing.T) {
	root := parse(t, `<div class="a b" id="x"><section><span id="s" class="c"></span></section></div>`)
	span := find(root, "s")

	assert.True(t, selectorMatches(span, "span"))
	assert.True(t, selectorMatches(span, ".a span.c"))
	assert.True(t, selectorMatches(span, "div#x.b section .c"))
	assert.False(t, selectorMatches(span, ".z span"))
	assert.False(t, selectorMatches(span, "span:hover"))
	assert.Equal(t, Specificity{ID: 1, Class: 2, Element: 2}, calculateSpecificity("div#x.b span.c"))
}

func TestParseLength(t *testing.T) {
	assert.Equal(t, 12.0, ParseLength("12px", 0, 0))
	assert.Equal(t, 50.0, ParseLength("50%", 100, 0))
	assert.Equal(t, 24.0, ParseLength("1.5em", 0, 0))
	assert.Equal(t, 16.0, ParseLength("12pt", 0, 0))
	assert.Equal(t, 7.0, ParseLength("auto", 0, 7))
	assert.Equal(t, 7.0, ParseLength("wide", 0, 7))
}

func TestEdges(t *testing.T) {
	cs := ComputedStyle{
		"padding":      {Value: "4px 8px"},
		"padding-left": {Value: "2px"},
	}
	top, right, bottom, left := cs.Edges("padding", 0)
	assert.Equal(t, [4]float64{4, 8, 4, 2}, [4]float64{top, right, bottom, left})

	top, right, bottom, left = ParseBox("1px 2px 3px", 0)
	assert.Equal(t, [4]float64{1, 2, 3, 2}, [4]float64{top, right, bottom, left})
}

func TestFlexAndWeight(t *testing.T) {
	assert.Equal(t, 1.0, ComputedStyle{"flex": {Value: "1 1 0%"}}.Flex())
	assert.Equal(t, 0.0, ComputedStyle{}.Flex())
	assert.Equal(t, 600, ComputedStyle{"font-weight": {Value: "600"}}.Weight())
	assert.True(t, ComputedStyle{"font-weight": {Value: "600"}}.Bold())
	assert.False(t, ComputedStyle{"font-weight": {Value: "normal"}}.Bold())
}

func TestParseColor(t *testing.T) {
	r, g, b := ParseColor("#fff")
	assert.Equal(t, [3]int{255, 255, 255}, [3]int{r, g, b})
	r, g, b = ParseColor("rgb(10, 20, 30)")
	assert.Equal(t, [3]int{10, 20, 30}, [3]int{r, g, b})
	r, g, b = ParseColor("papayawhip")
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{r, g, b})
}
