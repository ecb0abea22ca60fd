// Package layout is a small box layout engine for the résumé template:
// block flow, single-line flex rows and word wrapping with core-font
// metrics. It is also the default measurement port.
package layout

import (
	"strings"

	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/style"
)

// Options for the layout engine.
type Options struct {
	// Width is the initial containing block width in px, normally the page width.
	Width float64
}

// Engine lays out one styled tree at a time. It is not safe for concurrent
// use; create one per goroutine.
type Engine struct {
	options Options
	styles  map[*xhtml.Node]style.ComputedStyle
	logger  *zap.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(options Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{options: options, logger: logger.Named("layout")}
}

// Layout lays out the body of root (or root itself when it has no body)
// using precomputed styles, and returns the root box.
func (e *Engine) Layout(root *xhtml.Node, styles map[*xhtml.Node]style.ComputedStyle) *BlockBox {
	e.styles = styles
	defer func() { e.styles = nil }()

	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	box := &BlockBox{Node: body, Style: styles[body]}
	e.layoutBlock(box, 0, 0, e.options.Width, false)

	e.logger.Debug("layout done",
		zap.Float64("width", box.Width),
		zap.Float64("height", box.Height),
		zap.Int("children", len(box.Children)))
	return box
}

// LayoutDocument computes styles for root and lays it out.
func (e *Engine) LayoutDocument(root *xhtml.Node) *BlockBox {
	return e.Layout(root, style.NewEngine().Compute(root))
}

func (e *Engine) styleOf(n *xhtml.Node, inherited style.ComputedStyle) style.ComputedStyle {
	if st, ok := e.styles[n]; ok {
		return st
	}
	return inherited
}

// layoutBlock places b with its margin box's top-left at (x, y) inside a
// containing block of width avail. When forced, avail is b's outer width
// regardless of its width property, as flex rows decide it.
func (e *Engine) layoutBlock(b *BlockBox, x, y, avail float64, forced bool) {
	st := b.Style
	b.Margin = edges(st, "margin", avail)
	b.Padding = edges(st, "padding", avail)
	b.Border = borderEdges(st)
	b.X = x + b.Margin.Left
	b.Y = y + b.Margin.Top

	chrome := b.Padding.Horizontal() + b.Border.Horizontal()
	switch {
	case forced:
		b.Width = avail - b.Margin.Horizontal()
	case st.Get("width") != "":
		b.Width = st.Length("width", avail, 0)
		if !borderBox(st) {
			b.Width += chrome
		}
	default:
		b.Width = avail - b.Margin.Horizontal()
	}
	if b.Width < chrome {
		b.Width = chrome
	}

	contentHeight := e.layoutChildren(b)

	vchrome := b.Padding.Vertical() + b.Border.Vertical()
	if h := st.Get("height"); h != "" && !strings.HasSuffix(h, "%") {
		b.Height = st.Length("height", 0, 0)
		if !borderBox(st) {
			b.Height += vchrome
		}
		return
	}
	b.Height = contentHeight + vchrome
}

// layoutChildren lays out b's content and returns its height.
func (e *Engine) layoutChildren(b *BlockBox) float64 {
	n := b.Node
	st := b.Style
	if n == nil {
		return 0
	}
	if st.Display() == "flex" && st.Get("flex-direction") != "column" {
		return e.layoutFlexRow(b)
	}
	if e.inlineOnly(n, st) {
		var runs []inlineRun
		e.collectInlineRuns(n, st, &runs)
		return e.layoutInline(b, runs)
	}

	y := b.ContentY()
	var pending []*xhtml.Node
	flush := func() {
		if len(pending) == 0 {
			return
		}
		var runs []inlineRun
		for _, p := range pending {
			e.collectNodeRuns(p, st, &runs)
		}
		pending = pending[:0]
		if len(atomize(runs)) == 0 {
			return
		}
		anon := &BlockBox{Style: inheritedOnly(st), X: b.ContentX(), Y: y, Width: b.ContentWidth()}
		anon.Height = e.layoutInline(anon, runs)
		b.AddChild(anon)
		y += anon.Height
	}

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.Type {
		case xhtml.TextNode:
			pending = append(pending, ch)
		case xhtml.ElementNode:
			cs := e.styleOf(ch, st)
			switch cs.Display() {
			case "none":
				continue
			case "inline", "inline-block":
				pending = append(pending, ch)
				continue
			}
			flush()
			child := &BlockBox{Node: ch, Style: cs}
			e.layoutBlock(child, b.ContentX(), y, b.ContentWidth(), false)
			b.AddChild(child)
			y = child.Y + child.Height + child.Margin.Bottom
		}
	}
	flush()
	return y - b.ContentY()
}

type flexItem struct {
	node  *xhtml.Node
	style style.ComputedStyle
	outer float64
	grow  float64
}

// layoutFlexRow lays element children side by side on one line. Items with
// a width keep it, flex items share what is left after gaps, and the rest
// take their max-content width. The row is as tall as its tallest item.
func (e *Engine) layoutFlexRow(b *BlockBox) float64 {
	st := b.Style
	cw := b.ContentWidth()
	gap := st.Length("column-gap", cw, 0)

	var items []flexItem
	for ch := b.Node.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != xhtml.ElementNode {
			continue
		}
		cs := e.styleOf(ch, st)
		if cs.Display() == "none" {
			continue
		}
		it := flexItem{node: ch, style: cs, grow: cs.Flex()}
		switch {
		case cs.Get("width") != "":
			it.outer = cs.Length("width", cw, 0)
			if !borderBox(cs) {
				it.outer += horizontalChrome(cs)
			} else {
				m := edges(cs, "margin", cw)
				it.outer += m.Horizontal()
			}
		case it.grow > 0:
			it.outer = 0
		default:
			it.outer = e.maxContentWidth(ch, cs)
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return 0
	}

	used, grow := gap*float64(len(items)-1), 0.0
	for _, it := range items {
		used += it.outer
		grow += it.grow
	}
	if free := cw - used; free > 0 && grow > 0 {
		for i := range items {
			items[i].outer += free * items[i].grow / grow
		}
	}

	x := b.ContentX()
	height := 0.0
	for _, it := range items {
		child := &BlockBox{Node: it.node, Style: it.style}
		e.layoutBlock(child, x, b.ContentY(), it.outer, true)
		b.AddChild(child)
		if h := child.Margin.Top + child.Height + child.Margin.Bottom; h > height {
			height = h
		}
		x += it.outer + gap
	}
	return height
}

// inlineOnly reports whether every rendered child of n is inline content.
func (e *Engine) inlineOnly(n *xhtml.Node, st style.ComputedStyle) bool {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != xhtml.ElementNode {
			continue
		}
		switch e.styleOf(ch, st).Display() {
		case "inline", "inline-block", "none":
		default:
			return false
		}
	}
	return true
}

func inheritedOnly(st style.ComputedStyle) style.ComputedStyle {
	out := make(style.ComputedStyle, len(style.Inherited))
	for _, name := range style.Inherited {
		if p, ok := st[name]; ok {
			out[name] = p
		}
	}
	return out
}

func borderBox(st style.ComputedStyle) bool {
	return st.Get("box-sizing") == "border-box"
}

func edges(st style.ComputedStyle, prop string, container float64) Edges {
	t, r, b, l := st.Edges(prop, container)
	return Edges{Top: t, Right: r, Bottom: b, Left: l}
}

func borderEdges(st style.ComputedStyle) Edges {
	t, r, b, l := borderWidths(st)
	return Edges{Top: t, Right: r, Bottom: b, Left: l}
}

// borderWidths reads border-width and the per-side border-*-width values.
func borderWidths(st style.ComputedStyle) (top, right, bottom, left float64) {
	top, right, bottom, left = style.ParseBox(st.Get("border-width"), 0)
	sides := [4]*float64{&top, &right, &bottom, &left}
	for i, side := range [4]string{"top", "right", "bottom", "left"} {
		if v := st.Get("border-" + side + "-width"); v != "" {
			*sides[i] = style.ParseLength(v, 0, *sides[i])
		}
	}
	return top, right, bottom, left
}

func findElement(n *xhtml.Node, tag string) *xhtml.Node {
	if n == nil {
		return nil
	}
	if n.Type == xhtml.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findElement(c, tag); f != nil {
			return f
		}
	}
	return nil
}
