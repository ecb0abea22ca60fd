// Package style resolves the computed style of every element in a rendered
// résumé tree: a small user-agent sheet, author <style> sheets and inline
// style attributes, then inheritance from the parent.
package style

import (
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Specificity of a selector, compared field by field.
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// Source orders the origins of a declaration.
type Source int

const (
	SourceUserAgent Source = iota
	SourceInherited
	SourceAuthor
	SourceInline
)

// Property is one computed value and where it came from.
type Property struct {
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// ComputedStyle maps property names to values.
type ComputedStyle map[string]Property

// Inherited lists the properties children take from their parent when they
// do not set them.
var Inherited = []string{
	"color",
	"font-family",
	"font-size",
	"font-style",
	"font-weight",
	"letter-spacing",
	"line-height",
	"text-align",
	"text-transform",
	"white-space",
}

// DefaultFontSize is the root font size in px.
const DefaultFontSize = 16.0

// Engine computes styles.
type Engine struct {
	userAgent *Stylesheet
	author    []*Stylesheet
}

// NewEngine returns an engine with the built-in user-agent sheet.
func NewEngine() *Engine {
	return &Engine{userAgent: defaultUserAgentStyles()}
}

// AddStylesheet appends an author sheet. Later sheets win ties.
func (e *Engine) AddStylesheet(sheet *Stylesheet) {
	e.author = append(e.author, sheet)
}

// Compute returns the computed style of every element under root. <style>
// elements found in the tree are added as author sheets first.
func (e *Engine) Compute(root *xhtml.Node) map[*xhtml.Node]ComputedStyle {
	e.collectStyleElements(root)

	result := make(map[*xhtml.Node]ComputedStyle)
	e.computeRecursive(root, nil, result)
	return result
}

func (e *Engine) collectStyleElements(n *xhtml.Node) {
	if n == nil {
		return
	}
	if n.Type == xhtml.ElementNode && n.Data == "style" {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xhtml.TextNode {
				b.WriteString(c.Data)
			}
		}
		e.AddStylesheet(ParseStylesheet(b.String()))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.collectStyleElements(c)
	}
}

func (e *Engine) computeRecursive(n *xhtml.Node, parent ComputedStyle, out map[*xhtml.Node]ComputedStyle) {
	if n == nil {
		return
	}
	if n.Type == xhtml.ElementNode {
		cs := e.computeElement(n, parent)
		out[n] = cs
		parent = cs
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.computeRecursive(c, parent, out)
	}
}

func (e *Engine) computeElement(n *xhtml.Node, parent ComputedStyle) ComputedStyle {
	cs := make(ComputedStyle)

	e.applyStylesheet(cs, n, e.userAgent, SourceUserAgent)
	for _, sheet := range e.author {
		e.applyStylesheet(cs, n, sheet, SourceAuthor)
	}
	if v, ok := attr(n, "style"); ok {
		apply(cs, ParseDeclarations(v), Specificity{ID: 1}, SourceInline)
	}

	for _, name := range Inherited {
		if _, ok := cs[name]; ok {
			continue
		}
		if p, ok := parent[name]; ok {
			p.Source = SourceInherited
			p.Specificity = Specificity{}
			cs[name] = p
		}
	}

	resolveRelativeFontSize(cs, parent)
	return cs
}

// resolveRelativeFontSize turns em and % font sizes into px against the
// parent's computed size so children inherit an absolute value.
func resolveRelativeFontSize(cs, parent ComputedStyle) {
	p, ok := cs["font-size"]
	if !ok || p.Source == SourceInherited {
		return
	}
	base := parent.FontSize()
	v := strings.TrimSpace(p.Value)
	var px float64
	switch {
	case strings.HasSuffix(v, "rem"):
		px = ParseLength(v, 0, base)
	case strings.HasSuffix(v, "em"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "em"), 64)
		if err != nil {
			return
		}
		px = f * base
	case strings.HasSuffix(v, "%"):
		px = ParseLength(v, base, base)
	default:
		return
	}
	p.Value = formatPx(px)
	cs["font-size"] = p
}

func (e *Engine) applyStylesheet(cs ComputedStyle, n *xhtml.Node, sheet *Stylesheet, source Source) {
	if sheet == nil {
		return
	}
	for _, rule := range sheet.Rules {
		for _, sel := range rule.Selectors {
			if selectorMatches(n, sel) {
				apply(cs, rule.Declarations, calculateSpecificity(sel), source)
			}
		}
	}
}

// apply writes declarations into cs following cascade order: importance,
// then origin, then specificity, then source order.
func apply(cs ComputedStyle, decls []Declaration, spec Specificity, source Source) {
	for _, d := range decls {
		for _, name := range expandShorthand(d.Property) {
			existing, ok := cs[name]
			if ok && !wins(d.Important, source, spec, existing) {
				continue
			}
			cs[name] = Property{Value: d.Value, Important: d.Important, Source: source, Specificity: spec}
		}
	}
}

func wins(important bool, source Source, spec Specificity, existing Property) bool {
	if important != existing.Important {
		return important
	}
	if source != existing.Source {
		return source > existing.Source
	}
	return compareSpecificity(spec, existing.Specificity) >= 0
}

// expandShorthand maps gap to column-gap so layout has one name to read.
// margin and padding stay as written; layout splits them.
func expandShorthand(prop string) []string {
	if prop == "gap" {
		return []string{"column-gap", "row-gap"}
	}
	return []string{prop}
}

// selectorMatches supports descendant selectors made of compound parts.
func selectorMatches(n *xhtml.Node, selector string) bool {
	parts := strings.Fields(selector)
	if len(parts) == 0 || n == nil {
		return false
	}
	if !matchCompound(n, parts[len(parts)-1]) {
		return false
	}

	current := n.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if anc.Type == xhtml.ElementNode && matchCompound(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchCompound matches tag, #id and .class parts such as
// "div.section.highlight". Attributes and pseudo-classes never match.
func matchCompound(n *xhtml.Node, sel string) bool {
	if n == nil || n.Type != xhtml.ElementNode || sel == "" {
		return false
	}

	var (
		wantTag     string
		wantID      string
		wantClasses []string
	)
	i := 0
	if sel[0] != '.' && sel[0] != '#' {
		j := strings.IndexAny(sel, ".#")
		if j < 0 {
			j = len(sel)
		}
		wantTag, i = sel[:j], j
	}
	for i < len(sel) {
		kind := sel[i]
		if kind != '.' && kind != '#' {
			return false
		}
		j := strings.IndexAny(sel[i+1:], ".#")
		if j < 0 {
			j = len(sel)
		} else {
			j += i + 1
		}
		if kind == '#' {
			wantID = sel[i+1 : j]
		} else {
			wantClasses = append(wantClasses, sel[i+1:j])
		}
		i = j
	}

	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, n.Data) {
		return false
	}
	if wantID != "" {
		if id, _ := attr(n, "id"); id != wantID {
			return false
		}
	}
	for _, c := range wantClasses {
		if !HasClass(n, c) {
			return false
		}
	}
	return true
}

func calculateSpecificity(selector string) Specificity {
	var s Specificity
	for _, part := range strings.Fields(selector) {
		s.ID += strings.Count(part, "#")
		s.Class += strings.Count(part, ".")
		if part[0] != '.' && part[0] != '#' && part[0] != '*' {
			s.Element++
		}
	}
	return s
}

func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

func attr(n *xhtml.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether n's class attribute lists class.
func HasClass(n *xhtml.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func defaultUserAgentStyles() *Stylesheet {
	return ParseStylesheet(`
		head, style, script, title, meta { display: none; }
		span, a, b, strong, i, em { display: inline; }
		b, strong { font-weight: 700; }
		i, em { font-style: italic; }
		h1, h2, h3 { font-weight: 700; margin: 0; }
		body { margin: 0; }
	`)
}
