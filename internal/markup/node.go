package markup

import (
	"sort"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// decls is an ordered inline style builder.
type decls []string

func (d decls) set(prop, value string) decls {
	return append(d, prop+": "+value)
}

func (d decls) px(prop string, v float64) decls {
	return d.set(prop, px(v))
}

func (d decls) String() string { return strings.Join(d, "; ") }

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// el builds an element. class and style may be empty.
func el(tag, class string, style decls, children ...*xhtml.Node) *xhtml.Node {
	n := &xhtml.Node{Type: xhtml.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if class != "" {
		n.Attr = append(n.Attr, xhtml.Attribute{Key: "class", Val: class})
	}
	if len(style) > 0 {
		n.Attr = append(n.Attr, xhtml.Attribute{Key: "style", Val: style.String()})
	}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

func text(s string) *xhtml.Node {
	return &xhtml.Node{Type: xhtml.TextNode, Data: s}
}

func withAttr(n *xhtml.Node, key, val string) *xhtml.Node {
	n.Attr = append(n.Attr, xhtml.Attribute{Key: key, Val: val})
	return n
}

func addClass(n *xhtml.Node, class string) *xhtml.Node {
	for i, a := range n.Attr {
		if a.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + class)
			return n
		}
	}
	return withAttr(n, "class", class)
}

// FindByClass returns the first element under n carrying class, depth first.
func FindByClass(n *xhtml.Node, class string) *xhtml.Node {
	if n == nil {
		return nil
	}
	if n.Type == xhtml.ElementNode {
		for _, a := range n.Attr {
			if a.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := FindByClass(c, class); f != nil {
			return f
		}
	}
	return nil
}

// TextContent concatenates every text node under n.
func TextContent(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return b.String()
}

// Classes lists every distinct class used under n, sorted.
func Classes(n *xhtml.Node) []string {
	seen := map[string]struct{}{}
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "class" {
					for _, c := range strings.Fields(a.Val) {
						seen[c] = struct{}{}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
