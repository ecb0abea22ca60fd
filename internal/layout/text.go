package layout

import (
	"strings"
	"sync"
	"unicode/utf8"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/pagefit/internal/style"
)

// Text is measured with fpdf's core-font metrics. Sizes are passed through
// unchanged, so a px font size yields a width in px.
var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	measureTr   func(string) string
	measureMu   sync.Mutex
)

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "", "")
	measurePDF.SetFont("Helvetica", "", 12)
	measureTr = measurePDF.UnicodeTranslatorFromDescriptor("")
}

// TextWidth returns the advance width of s in px under st.
func TextWidth(s string, st style.ComputedStyle) float64 {
	if s == "" {
		return 0
	}
	size := st.FontSize()
	if size <= 0 {
		return 0
	}
	measureOnce.Do(initMeasurePDF)

	family, fontStyle := FontFor(st)
	measureMu.Lock()
	measurePDF.SetFont(family, fontStyle, size)
	w := measurePDF.GetStringWidth(measureTr(s))
	measureMu.Unlock()

	if ls := st.Length("letter-spacing", 0, 0); ls != 0 {
		w += ls * float64(utf8.RuneCountInString(s))
	}
	return w
}

// FontFor maps a computed style onto an fpdf core font family and style.
func FontFor(st style.ComputedStyle) (family, fontStyle string) {
	family = "Helvetica"
	if ff := st.Get("font-family"); ff != "" {
		first := strings.ToLower(strings.Trim(strings.TrimSpace(strings.Split(ff, ",")[0]), `'"`))
		switch first {
		case "times", "times new roman", "serif":
			family = "Times"
		case "courier", "courier new", "monospace":
			family = "Courier"
		}
	}
	if st.Bold() {
		fontStyle += "B"
	}
	if st.Italic() {
		fontStyle += "I"
	}
	return family, fontStyle
}

// transform applies text-transform.
func transform(s string, st style.ComputedStyle) string {
	switch st.Get("text-transform") {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	}
	return s
}
