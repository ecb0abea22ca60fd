package layout

import (
	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/style"
)

// Box is a laid-out rectangle. X, Y, Width and Height describe the border
// box in px from the top-left of the page.
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	GetMarginTop() float64
	GetMarginBottom() float64
	GetNode() *xhtml.Node
}

// Edges holds the four sides of a margin, border or padding.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Horizontal is Left+Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical is Top+Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// BlockBox is a block-level box: an element, or an anonymous wrapper around
// a run of inline content.
type BlockBox struct {
	Node     *xhtml.Node
	Style    style.ComputedStyle
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Margin   Edges
	Padding  Edges
	Border   Edges
	Children []Box
}

// ContentX is the left edge of the content box.
func (b *BlockBox) ContentX() float64 { return b.X + b.Border.Left + b.Padding.Left }

// ContentY is the top edge of the content box.
func (b *BlockBox) ContentY() float64 { return b.Y + b.Border.Top + b.Padding.Top }

// ContentWidth is the width inside padding and border.
func (b *BlockBox) ContentWidth() float64 {
	return b.Width - b.Border.Horizontal() - b.Padding.Horizontal()
}

func (b *BlockBox) GetX() float64            { return b.X }
func (b *BlockBox) GetY() float64            { return b.Y }
func (b *BlockBox) GetWidth() float64        { return b.Width }
func (b *BlockBox) GetHeight() float64       { return b.Height }
func (b *BlockBox) GetMarginTop() float64    { return b.Margin.Top }
func (b *BlockBox) GetMarginBottom() float64 { return b.Margin.Bottom }
func (b *BlockBox) GetNode() *xhtml.Node     { return b.Node }

// AddChild appends a child box.
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

// FindByClass returns the first block box, depth first, whose element
// carries class.
func (b *BlockBox) FindByClass(class string) *BlockBox {
	if b.Node != nil && style.HasClass(b.Node, class) {
		return b
	}
	for _, c := range b.Children {
		if cb, ok := c.(*BlockBox); ok {
			if f := cb.FindByClass(class); f != nil {
				return f
			}
		}
	}
	return nil
}

// Extent returns the furthest right and bottom edges reached by b or any
// descendant, which is what a scroll size measures.
func (b *BlockBox) Extent() (right, bottom float64) {
	right, bottom = b.X+b.Width, b.Y+b.Height
	for _, c := range b.Children {
		var r, btm float64
		if cb, ok := c.(*BlockBox); ok {
			r, btm = cb.Extent()
		} else {
			r, btm = c.GetX()+c.GetWidth(), c.GetY()+c.GetHeight()
		}
		if r > right {
			right = r
		}
		if btm > bottom {
			bottom = btm
		}
	}
	return right, bottom
}

// Walk calls fn for b and every descendant in paint order. Returning false
// skips a block's children.
func (b *BlockBox) Walk(fn func(Box) bool) {
	if !fn(b) {
		return
	}
	for _, c := range b.Children {
		if cb, ok := c.(*BlockBox); ok {
			cb.Walk(fn)
			continue
		}
		fn(c)
	}
}

// InlineBox is one placed word, or a run of words that cannot break, on a
// line. Y and Height are the line box; Baseline is where glyphs sit.
type InlineBox struct {
	Style    style.ComputedStyle
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Baseline float64
	FontSize float64
	Text     string
}

func (b *InlineBox) GetX() float64            { return b.X }
func (b *InlineBox) GetY() float64            { return b.Y }
func (b *InlineBox) GetWidth() float64        { return b.Width }
func (b *InlineBox) GetHeight() float64       { return b.Height }
func (b *InlineBox) GetMarginTop() float64    { return 0 }
func (b *InlineBox) GetMarginBottom() float64 { return 0 }
func (b *InlineBox) GetNode() *xhtml.Node     { return nil }
