// Package markup paints a résumé into an HTML node tree. Every size it
// emits comes from the constraint resolvers, except the fixed layout
// dimensions of the page tokens.
package markup

import (
	"math"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/tokens"
)

// Class names the layout and exporters look for.
const (
	ClassPage         = "page"
	ClassContent      = "resume-page"
	ClassBaselineGrid = "baseline-grid"
	ClassHighlight    = "highlight"
	ClassSectionTitle = "section-title"
)

// metadataPaddingRight keeps dates and locations off the sidebar edge.
const metadataPaddingRight = 7

// Options tune rendering without touching the constraints.
type Options struct {
	// Highlight marks section titles containing this text, case-insensitively.
	Highlight string
}

type painter struct {
	doc  *document.Resume
	c    constraints.Constraints
	g    tokens.Geometry
	opts Options
}

func (p *painter) sp(k tokens.SpacingKey) float64 {
	return float64(constraints.ResolveSpacing(k, p.c))
}

func (p *painter) fs(k tokens.TypographyKey) float64 {
	return float64(constraints.ResolveFontSize(k, p.c))
}

// lh is the fixed line height paired with a font size key.
func lh(size tokens.TypographyKey) float64 {
	return float64(tokens.LineHeightFor(size).Value())
}

func weight(k tokens.TypographyKey) string {
	return strconv.Itoa(k.Value())
}

func (p *painter) highlighted(title string) bool {
	term := strings.TrimSpace(p.opts.Highlight)
	return term != "" && strings.Contains(strings.ToLower(title), strings.ToLower(term))
}

// Render builds the complete HTML document for doc under c on page g.
func Render(doc *document.Resume, c constraints.Constraints, g tokens.Geometry, opts Options) *xhtml.Node {
	p := &painter{doc: doc, c: c, g: g, opts: opts}

	root := &xhtml.Node{Type: xhtml.DocumentNode}
	root.AppendChild(&xhtml.Node{Type: xhtml.DoctypeNode, Data: "html"})

	head := el("head", "", nil,
		withAttr(el("meta", "", nil), "charset", "utf-8"),
		el("title", "", nil, text(doc.Name)),
		el("style", "", nil, text(p.stylesheet())),
	)
	body := el("body", "", nil, p.page())
	root.AppendChild(el("html", "", nil, head, body))
	return root
}

// stylesheet holds the rules that do not depend on the constraints.
func (p *painter) stylesheet() string {
	var b strings.Builder
	b.WriteString("@page { size: " + px(p.g.Width) + " " + px(p.g.Height) + "; margin: 0; }\n")
	b.WriteString("html, body { margin: 0; padding: 0; }\n")
	b.WriteString("body { font-family: Helvetica, Arial, sans-serif; color: #000000; }\n")
	b.WriteString(".page { box-sizing: border-box; overflow: hidden; background-color: #ffffff; }\n")
	b.WriteString("h1, h2, h3 { margin: 0; }\n")
	b.WriteString("a { color: #000000; text-decoration: none; }\n")
	b.WriteString(".section-title { text-transform: none; }\n")
	b.WriteString(".sidebar-title { text-transform: uppercase; letter-spacing: 0.3px; }\n")
	b.WriteString(".school { text-transform: uppercase; letter-spacing: 0.3px; }\n")
	b.WriteString(".highlight { background-color: #fff3bf; }\n")
	b.WriteString(".metadata { text-align: right; }\n")
	b.WriteString(".baseline-grid { background-image: repeating-linear-gradient(to bottom, transparent 0, transparent 3px, rgba(255,0,0,0.15) 3px, rgba(255,0,0,0.15) 4px); }\n")
	return b.String()
}

func (p *painter) page() *xhtml.Node {
	m := p.g.Margins
	page := el("div", ClassPage, decls{}.
		px("width", p.g.Width).
		px("height", p.g.Height).
		set("padding", px(m.Top)+" "+px(m.Right)+" "+px(m.Bottom)+" "+px(m.Left)),
	)

	class := ClassContent
	if p.c.ShowBaselineGrid {
		class += " " + ClassBaselineGrid
	}
	content := el("div", class, decls{}.px("width", p.g.ContentWidth()), p.columns())
	page.AppendChild(content)
	return page
}

func (p *painter) columns() *xhtml.Node {
	pad := p.sp(tokens.InlineSmall)
	main := el("div", "main-content", decls{}.
		set("flex", "1").
		px("margin-top", -2).
		px("padding-right", 4),
		p.header(),
		p.experience(),
		el("div", "", decls{}.px("margin-top", p.sp(tokens.InlineSmall)), p.education()),
	)
	sidebar := el("div", "sidebar-layout", decls{}.
		px("width", tokens.SidebarWidth).
		px("padding", pad),
	)
	for _, n := range p.sidebar() {
		sidebar.AppendChild(n)
	}
	return el("div", "two-column-layout", decls{}.
		set("display", "flex").
		px("column-gap", tokens.ColumnGap),
		main, sidebar,
	)
}

func (p *painter) header() *xhtml.Node {
	h1 := el("h1", "", decls{}.
		px("font-size", p.fs(tokens.SizeXXL)).
		set("font-weight", weight(tokens.WeightNormal)).
		px("line-height", lh(tokens.SizeXXL)),
		el("span", "", decls{}.set("font-weight", weight(tokens.WeightBold)), text(p.doc.FirstName())),
	)
	if last := p.doc.LastName(); last != "" {
		h1.AppendChild(text(" "))
		h1.AppendChild(el("span", "", decls{}.set("font-weight", weight(tokens.WeightNormal)), text(last)))
	}
	return el("div", "header", decls{}.px("margin-bottom", p.sp(tokens.Baseline)), h1)
}

// section is a main-column section: title plus body.
func (p *painter) section(title string, spacing float64, titleWeight tokens.TypographyKey, children ...*xhtml.Node) *xhtml.Node {
	class := ClassSectionTitle
	if p.highlighted(title) {
		class += " " + ClassHighlight
	}
	h2 := el("h2", class, decls{}.
		px("font-size", p.fs(tokens.SizeXL)-1).
		set("font-weight", weight(titleWeight)).
		px("line-height", lh(tokens.SizeXL)).
		px("margin-bottom", p.sp(tokens.Tiny)),
		text(title),
	)
	sec := el("div", "section", decls{}.px("margin-bottom", spacing), h2)
	for _, c := range children {
		sec.AppendChild(c)
	}
	return sec
}

// row is a two-cell line: content on the left, right-aligned metadata in a
// fixed column.
func (p *painter) row(left *xhtml.Node, right *xhtml.Node, rightWidth float64, gap float64) *xhtml.Node {
	wrapLeft := el("div", "", decls{}.set("flex", "1"), left)
	var wrapRight *xhtml.Node
	if rightWidth > 0 {
		wrapRight = el("div", "", decls{}.px("width", rightWidth), right)
	} else {
		wrapRight = el("div", "", nil, right)
	}
	return el("div", "row", decls{}.set("display", "flex").px("column-gap", gap), wrapLeft, wrapRight)
}

func (p *painter) metadata(value string, italic bool) *xhtml.Node {
	d := decls{}.
		px("font-size", p.fs(tokens.SizeSM)).
		px("padding-left", tokens.MetadataGutter+p.sp(tokens.InlineSmall)).
		px("padding-right", metadataPaddingRight)
	if italic {
		d = d.set("font-style", "italic")
	}
	return el("div", "metadata", d, text(value))
}

func (p *painter) experience() *xhtml.Node {
	body := p.fs(tokens.SizeMD)
	roleSize := math.Max(float64(tokens.MinBodySize.Value()), body-0.5)
	companySize := roleSize + 0.5
	gap := p.sp(tokens.InlineMedium)

	list := el("div", "", decls{}.px("margin-top", p.sp(tokens.InlineSmall)))
	for _, exp := range p.doc.Experiences {
		block := el("div", "experience", decls{}.px("margin-bottom", p.sp(tokens.Baseline)+p.sp(tokens.Tiny)))
		for i, role := range exp.Roles {
			if i == 0 {
				company := el("div", "company", decls{}.
					set("font-weight", weight(tokens.WeightBold)).
					px("font-size", companySize),
					text(exp.Company))
				block.AppendChild(p.row(company, p.metadata(exp.Location, false), tokens.DateColumnWidth, gap))
			}
			titleStyle := decls{}.
				set("font-style", "italic").
				set("font-weight", weight(tokens.WeightSemibold)).
				px("font-size", roleSize)
			if i == 0 {
				titleStyle = titleStyle.px("margin-top", p.sp(tokens.Tiny))
			}
			title := el("div", "role-title", titleStyle, text(role.Title))
			r := p.row(title, p.metadata(role.StartDate+" - "+role.EndDate, true), tokens.DateColumnWidth, gap)
			block.AppendChild(addClass(r, "role-row"))
			block.AppendChild(p.roleBlock(role))
		}
		list.AppendChild(block)
	}
	return p.section("Experience", p.sp(tokens.BlockTight), tokens.WeightBold, list)
}

func (p *painter) roleBlock(role document.Role) *xhtml.Node {
	body := p.fs(tokens.SizeMD)
	inner := el("div", "", decls{}.px("font-size", body).px("line-height", lh(tokens.SizeMD)))
	for _, b := range role.Bullets {
		inner.AppendChild(p.bullet(b))
	}
	return el("div", "role-block", decls{}.px("margin-bottom", p.sp(tokens.Micro)), inner)
}

func (p *painter) bullet(b document.Bullet) *xhtml.Node {
	size := math.Max(float64(tokens.MinBodySize.Value()), p.fs(tokens.SizeMD)-0.5)
	markWidth := math.Max(10, math.Round(size))

	content := el("span", "bullet-text", decls{}.set("flex", "1"))
	if b.SubSection != "" {
		content.AppendChild(el("span", "subsection", decls{}.
			px("font-size", size).
			set("font-weight", weight(tokens.WeightNormal)),
			text(b.SubSection+": ")))
	}
	content.AppendChild(text(b.Text))

	line := el("div", "", decls{}.
		set("display", "flex").
		px("padding-left", p.sp(tokens.BulletIndent)).
		px("font-size", size).
		px("line-height", lh(tokens.SizeMD)),
		el("span", "bullet-mark", decls{}.px("width", markWidth), text("•")),
		content,
	)
	return el("div", "bullet", decls{}.px("margin-bottom", p.sp(tokens.BulletGap)+p.sp(tokens.Tiny)), line)
}

func (p *painter) education() *xhtml.Node {
	body := p.fs(tokens.SizeMD)
	items := make([]*xhtml.Node, 0, len(p.doc.Education))
	for i, edu := range p.doc.Education {
		mb := 0.0
		if i < len(p.doc.Education)-1 {
			mb = p.sp(tokens.BlockMinimal) + p.sp(tokens.InlineSmall) + p.sp(tokens.Tiny)
		}
		degree := el("div", "degree", decls{}.
			set("font-weight", weight(tokens.WeightSemibold)).
			px("font-size", body),
			text(edu.Degree))
		year := el("div", "metadata", decls{}.
			px("font-size", p.fs(tokens.SizeSM)).
			set("font-style", "italic").
			px("padding-right", metadataPaddingRight),
			text(edu.Year))
		school := el("div", "school", decls{}.
			px("font-size", body).
			set("font-weight", weight(tokens.WeightNormal)).
			px("margin-top", p.sp(tokens.Micro)),
			text(edu.School))
		items = append(items, el("div", "education", decls{}.px("margin-bottom", mb),
			p.row(degree, year, 0, p.sp(tokens.InlineSmall)),
			school,
		))
	}
	return p.section("Education", p.sp(tokens.Baseline), tokens.WeightSemibold, items...)
}

func (p *painter) sidebarSection(title string, hideTitle bool, extra float64, children ...*xhtml.Node) *xhtml.Node {
	sec := el("div", "sidebar-section", decls{}.px("margin-bottom", p.sp(tokens.InlineSmall)+extra))
	if !hideTitle {
		class := "sidebar-title"
		if p.highlighted(title) {
			class += " " + ClassHighlight
		}
		sec.AppendChild(el("h3", class, decls{}.
			px("font-size", p.fs(tokens.SizeMD)).
			set("font-weight", weight(tokens.WeightSemibold)).
			px("line-height", lh(tokens.SizeMD)).
			px("margin-bottom", p.sp(tokens.Micro)),
			text(title)))
	}
	body := el("div", "", decls{}.
		px("font-size", p.fs(tokens.SizeSM)).
		px("line-height", lh(tokens.SizeMD)))
	for _, c := range children {
		body.AppendChild(c)
	}
	sec.AppendChild(body)
	return sec
}

func (p *painter) contactLine(label, href string) *xhtml.Node {
	var content *xhtml.Node
	if href != "" {
		content = withAttr(el("a", "", nil, text(label)), "href", href)
	} else {
		content = el("span", "", nil, text(label))
	}
	return el("div", "contact", decls{}.
		px("margin-bottom", p.sp(tokens.Micro)).
		px("line-height", lh(tokens.SizeMD)),
		content)
}

func (p *painter) sidebar() []*xhtml.Node {
	c := p.doc.Contact
	var contact []*xhtml.Node
	site, others := c.WebsiteLink()
	if site != nil {
		contact = append(contact, p.contactLine(site.Label, site.URL))
	}
	for _, l := range others {
		contact = append(contact, p.contactLine(l.Label, l.URL))
	}
	if c.Email != "" {
		contact = append(contact, p.contactLine(c.Email, "mailto:"+c.Email))
	}
	if c.Phone != "" {
		contact = append(contact, p.contactLine(c.Phone, telHref(c.Phone)))
	}
	if c.Location != "" {
		contact = append(contact, p.contactLine(c.Location, ""))
	}

	out := []*xhtml.Node{p.sidebarSection("Website", true, p.sp(tokens.InlineLarge), contact...)}

	if len(p.doc.Skills) > 0 {
		var groups []*xhtml.Node
		for i, g := range p.doc.Skills {
			mb := 0.0
			if i < len(p.doc.Skills)-1 {
				mb = p.sp(tokens.Micro)
			}
			groups = append(groups, el("div", "skill-group", decls{}.px("margin-bottom", mb),
				el("div", "", decls{}.set("font-weight", weight(tokens.WeightSemibold)), text(g.Category+":")),
				el("div", "", nil, text(strings.Join(g.Items, ", "))),
			))
		}
		out = append(out, p.sidebarSection("Skills", false, p.sp(tokens.InlineLarge), groups...))
	}

	if len(p.doc.Projects) > 0 {
		var projects []*xhtml.Node
		for i, pr := range p.doc.Projects {
			mb := 0.0
			if i < len(p.doc.Projects)-1 {
				mb = p.sp(tokens.Tiny)
			}
			projects = append(projects, el("div", "project", decls{}.px("margin-bottom", mb),
				el("div", "", decls{}.set("font-weight", weight(tokens.WeightSemibold)), text(pr.Title)),
				el("div", "", decls{}.px("font-size", p.fs(tokens.SizeSM)), text(pr.Description)),
			))
		}
		out = append(out, p.sidebarSection("Projects", false, 0, projects...))
	}

	if len(p.doc.Certifications) > 0 {
		var certs []*xhtml.Node
		for _, cert := range p.doc.Certifications {
			certs = append(certs, el("div", "certification", nil, text(cert)))
		}
		out = append(out, p.sidebarSection("Certifications", false, 0, certs...))
	}
	return out
}

func telHref(phone string) string {
	var b strings.Builder
	b.WriteString("tel:")
	for _, r := range phone {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
