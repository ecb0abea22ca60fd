// Package pdf draws a laid-out résumé page with fpdf.
package pdf

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/layout"
	"github.com/gompdf/pagefit/internal/markup"
	"github.com/gompdf/pagefit/internal/style"
	"github.com/gompdf/pagefit/internal/tokens"
)

// PxToPt converts CSS pixels (96 DPI) to PDF points.
const PxToPt = 72.0 / 96.0

// Renderer handles rendering to PDF
type Renderer struct {
	// RenderBackgrounds controls whether box backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether box borders are painted
	RenderBorders bool
	// DebugDrawBoxes outlines every block and word
	DebugDrawBoxes bool
	// Compress deflates page content streams
	Compress bool

	logger *zap.Logger
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// BaselineGrid overlays the baseline grid on the content box.
	BaselineGrid bool
}

// NewRenderer creates a new PDF renderer. A nil logger discards output.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		RenderBackgrounds: true,
		RenderBorders:     true,
		Compress:          true,
		logger:            logger.Named("pdf"),
	}
}

// Render writes root as a single page of geometry g.
func (r *Renderer) Render(w io.Writer, root *layout.BlockBox, g tokens.Geometry, options RenderOptions) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.Width * PxToPt, Ht: g.Height * PxToPt},
	})
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()

	p := &painter{Renderer: r, pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	words := 0
	root.Walk(func(b layout.Box) bool {
		switch box := b.(type) {
		case *layout.BlockBox:
			p.block(box)
		case *layout.InlineBox:
			p.text(box)
			words++
		}
		return true
	})
	if options.BaselineGrid {
		if content := root.FindByClass(markup.ClassContent); content != nil {
			p.baselineGrid(content)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	r.logger.Debug("rendered page",
		zap.String("size", string(g.Size)),
		zap.Int("words", words))
	return pdf.Output(w)
}

type painter struct {
	*Renderer
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func pt(v float64) float64 { return v * PxToPt }

func (p *painter) block(box *layout.BlockBox) {
	if p.RenderBackgrounds {
		if r, g, b, ok := colorOf(box.Style.Get("background-color")); ok {
			p.pdf.SetFillColor(r, g, b)
			p.pdf.Rect(pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), "F")
		}
	}
	if p.RenderBorders {
		p.borders(box)
	}
	if p.DebugDrawBoxes {
		p.pdf.SetDrawColor(200, 0, 0)
		p.pdf.SetLineWidth(0.25)
		p.pdf.Rect(pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), "D")
	}
}

// borders strokes each side with a non-zero width along the border box edge.
func (p *painter) borders(box *layout.BlockBox) {
	if box.Border == (layout.Edges{}) {
		return
	}
	x0, y0 := pt(box.X), pt(box.Y)
	x1, y1 := pt(box.X+box.Width), pt(box.Y+box.Height)
	sides := []struct {
		name           string
		width          float64
		ax, ay, bx, by float64
	}{
		{"top", box.Border.Top, x0, y0 + pt(box.Border.Top)/2, x1, y0 + pt(box.Border.Top)/2},
		{"right", box.Border.Right, x1 - pt(box.Border.Right)/2, y0, x1 - pt(box.Border.Right)/2, y1},
		{"bottom", box.Border.Bottom, x0, y1 - pt(box.Border.Bottom)/2, x1, y1 - pt(box.Border.Bottom)/2},
		{"left", box.Border.Left, x0 + pt(box.Border.Left)/2, y0, x0 + pt(box.Border.Left)/2, y1},
	}
	for _, s := range sides {
		if s.width <= 0 {
			continue
		}
		r, g, b, ok := colorOf(box.Style.Get("border-" + s.name + "-color"))
		if !ok {
			r, g, b, ok = colorOf(box.Style.Get("border-color"))
		}
		if !ok {
			r, g, b = box.Style.Color("color")
		}
		p.pdf.SetDrawColor(r, g, b)
		p.pdf.SetLineWidth(pt(s.width))
		p.pdf.Line(s.ax, s.ay, s.bx, s.by)
	}
}

func (p *painter) text(box *layout.InlineBox) {
	if box.Text == "" || box.FontSize <= 0 {
		return
	}
	family, fontStyle := layout.FontFor(box.Style)
	p.pdf.SetFont(family, fontStyle, pt(box.FontSize))
	r, g, b := box.Style.Color("color")
	p.pdf.SetTextColor(r, g, b)

	x, y := pt(box.X), pt(box.Baseline)
	ls := box.Style.Length("letter-spacing", 0, 0)
	if ls == 0 || utf8.RuneCountInString(box.Text) < 2 {
		p.pdf.Text(x, y, p.tr(box.Text))
	} else {
		for _, ch := range box.Text {
			s := p.tr(string(ch))
			p.pdf.Text(x, y, s)
			x += p.pdf.GetStringWidth(s) + pt(ls)
		}
	}

	if p.DebugDrawBoxes {
		p.pdf.SetDrawColor(0, 0, 200)
		p.pdf.SetLineWidth(0.1)
		p.pdf.Rect(pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), "D")
	}
}

// baselineGrid rules a faint line at every baseline unit of the content box.
func (p *painter) baselineGrid(content *layout.BlockBox) {
	p.pdf.SetDrawColor(255, 0, 0)
	p.pdf.SetAlpha(0.15, "Normal")
	p.pdf.SetLineWidth(pt(1))
	unit := constraints.VerticalRhythm(1)
	for y := content.Y + unit - 0.5; y < content.Y+content.Height; y += unit {
		p.pdf.Line(pt(content.X), pt(y), pt(content.X+content.Width), pt(y))
	}
	p.pdf.SetAlpha(1, "Normal")
}

// colorOf parses a paintable color. Empty, transparent and unsupported
// values are not painted.
func colorOf(value string) (r, g, b int, ok bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "", v == "transparent", v == "none":
		return 0, 0, 0, false
	case strings.HasPrefix(v, "#"), strings.HasPrefix(v, "rgb("), v == "white":
		r, g, b = style.ParseColor(v)
		return r, g, b, true
	}
	return 0, 0, 0, false
}
