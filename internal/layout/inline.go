package layout

import (
	"strings"
	"unicode"

	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/style"
)

// inlineRun is a stretch of text sharing one computed style.
type inlineRun struct {
	text  string
	style style.ComputedStyle
}

// piece is part of an unbreakable word; a word spanning two styled runs
// ("<b>Acti</b>vation") has two pieces.
type piece struct {
	text  string
	style style.ComputedStyle
	width float64
}

// atom is a break-free word. spaceBefore is the width of the collapsed
// white space preceding it, zero when it is glued to the previous atom.
type atom struct {
	pieces      []piece
	width       float64
	spaceBefore float64
}

// collectInlineRuns walks the inline content under n.
func (e *Engine) collectInlineRuns(n *xhtml.Node, inherited style.ComputedStyle, out *[]inlineRun) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		e.collectNodeRuns(ch, inherited, out)
	}
}

// collectNodeRuns appends n itself. Elements with display: none are skipped.
func (e *Engine) collectNodeRuns(n *xhtml.Node, inherited style.ComputedStyle, out *[]inlineRun) {
	switch n.Type {
	case xhtml.TextNode:
		if n.Data != "" {
			*out = append(*out, inlineRun{text: n.Data, style: inherited})
		}
	case xhtml.ElementNode:
		st := e.styleOf(n, inherited)
		if st.Display() == "none" {
			return
		}
		e.collectInlineRuns(n, st, out)
	}
}

// atomize splits runs at white space. Consecutive white space collapses
// into one space measured in the style it started in.
func atomize(runs []inlineRun) []atom {
	var (
		atoms   []atom
		cur     *atom
		pending float64
		sawText bool
	)
	flushSpace := func(st style.ComputedStyle) {
		if pending == 0 && sawText {
			pending = TextWidth(" ", st)
		}
		cur = nil
	}
	for _, run := range runs {
		text := transform(run.text, run.style)
		start := 0
		for i, r := range text {
			if !unicode.IsSpace(r) {
				continue
			}
			if i > start {
				cur = appendPiece(&atoms, cur, text[start:i], run.style, &pending)
				sawText = true
			}
			flushSpace(run.style)
			start = i + len(string(r))
		}
		if start < len(text) {
			cur = appendPiece(&atoms, cur, text[start:], run.style, &pending)
			sawText = true
		}
	}
	return atoms
}

func appendPiece(atoms *[]atom, cur *atom, text string, st style.ComputedStyle, pending *float64) *atom {
	p := piece{text: text, style: st, width: TextWidth(text, st)}
	if cur == nil {
		*atoms = append(*atoms, atom{spaceBefore: *pending})
		*pending = 0
		cur = &(*atoms)[len(*atoms)-1]
	}
	cur.pieces = append(cur.pieces, p)
	cur.width += p.width
	return cur
}

// layoutInline breaks the inline content of container into lines inside its
// content box and returns the height used.
func (e *Engine) layoutInline(container *BlockBox, runs []inlineRun) float64 {
	atoms := atomize(runs)
	if len(atoms) == 0 {
		return 0
	}

	maxWidth := container.ContentWidth()
	startX := container.ContentX()
	y := container.ContentY()
	strut := container.Style.LineHeight()
	align := container.Style.Get("text-align")

	var line []atom
	lineWidth := 0.0
	emit := func() {
		if len(line) == 0 {
			return
		}
		height := strut
		ascent := 0.0
		for _, a := range line {
			for _, p := range a.pieces {
				if lh := p.style.LineHeight(); lh > height {
					height = lh
				}
			}
		}
		for _, a := range line {
			for _, p := range a.pieces {
				fs := p.style.FontSize()
				if asc := (height-fs)/2 + 0.8*fs; asc > ascent {
					ascent = asc
				}
			}
		}

		offset := 0.0
		switch align {
		case "right", "end":
			offset = maxWidth - lineWidth
		case "center":
			offset = (maxWidth - lineWidth) / 2
		}
		if offset < 0 {
			offset = 0
		}

		x := startX + offset
		for i, a := range line {
			if i > 0 {
				x += a.spaceBefore
			}
			for _, p := range a.pieces {
				container.AddChild(&InlineBox{
					Style:    p.style,
					X:        x,
					Y:        y,
					Width:    p.width,
					Height:   height,
					Baseline: y + ascent,
					FontSize: p.style.FontSize(),
					Text:     p.text,
				})
				x += p.width
			}
		}
		y += height
		line = line[:0]
		lineWidth = 0
	}

	for _, a := range atoms {
		if len(line) == 0 {
			line = append(line, a)
			lineWidth = a.width
			continue
		}
		if lineWidth+a.spaceBefore+a.width > maxWidth {
			emit()
			line = append(line, a)
			lineWidth = a.width
			continue
		}
		line = append(line, a)
		lineWidth += a.spaceBefore + a.width
	}
	emit()

	return y - container.ContentY()
}

// maxContentWidth is the width n needs to lay out without wrapping.
func (e *Engine) maxContentWidth(n *xhtml.Node, st style.ComputedStyle) float64 {
	if w := st.Get("width"); w != "" && !strings.HasSuffix(w, "%") {
		return st.Length("width", 0, 0) + horizontalChrome(st)
	}

	best := 0.0
	if e.inlineOnly(n, st) {
		var runs []inlineRun
		e.collectInlineRuns(n, st, &runs)
		line := 0.0
		for i, a := range atomize(runs) {
			if i > 0 {
				line += a.spaceBefore
			}
			line += a.width
		}
		best = line
	} else if st.Display() == "flex" {
		gap := st.Length("column-gap", 0, 0)
		items := 0
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != xhtml.ElementNode {
				continue
			}
			cs := e.styleOf(ch, st)
			if cs.Display() == "none" {
				continue
			}
			best += e.maxContentWidth(ch, cs)
			items++
		}
		if items > 1 {
			best += gap * float64(items-1)
		}
	} else {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != xhtml.ElementNode {
				continue
			}
			cs := e.styleOf(ch, st)
			if cs.Display() == "none" {
				continue
			}
			if w := e.maxContentWidth(ch, cs); w > best {
				best = w
			}
		}
	}
	return best + horizontalChrome(st)
}

func horizontalChrome(st style.ComputedStyle) float64 {
	_, mr, _, ml := st.Edges("margin", 0)
	_, pr, _, pl := st.Edges("padding", 0)
	_, br, _, bl := borderWidths(st)
	return ml + mr + pl + pr + bl + br
}
