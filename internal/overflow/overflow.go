// Package overflow decides whether measured content fits its page budget and,
// when it does not, says by how much and what to shrink.
package overflow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tolerance absorbs sub-pixel and print-engine rounding: content that exceeds
// the budget by no more than this many pixels still counts as a one-page fit.
const Tolerance = 30

// AverageLineHeight is the body line height used to turn pixels into an
// estimated line count. The count is a heuristic, not a reflow.
const AverageLineHeight = 20

// Warning describes content that overflows its page.
type Warning struct {
	OverflowPx       float64 `json:"overflowPx"`
	EstimatedLines   int     `json:"estimatedLines"`
	SpacingReduction int     `json:"spacingReduction"`
	FontReduction    int     `json:"fontReduction"`
	Message          string  `json:"message"`
}

// Detect compares a measured height against the page budget. It returns nil
// when the content fits within Tolerance.
func Detect(actualHeight, maxHeight float64) *Warning {
	overflowPx := actualHeight - maxHeight
	if overflowPx <= Tolerance {
		return nil
	}

	w := &Warning{
		OverflowPx:     overflowPx,
		EstimatedLines: int(math.Ceil(overflowPx / AverageLineHeight)),
		// Spacing compresses more per visual cost than font size does.
		SpacingReduction: int(math.Ceil(overflowPx / 2)),
		FontReduction:    int(math.Ceil(overflowPx / 3)),
	}
	w.Message = w.message()
	return w
}

func (w *Warning) message() string {
	lines := "lines"
	if w.EstimatedLines == 1 {
		lines = "line"
	}
	return fmt.Sprintf("⚠ Resume exceeds one page by %spx (~%d %s). Try: reduce spacing by %dpx or font by %dpx",
		formatPx(w.OverflowPx), w.EstimatedLines, lines, w.SpacingReduction, w.FontReduction)
}

func (w *Warning) String() string {
	if w == nil {
		return "fits"
	}
	return w.Message
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Details renders the overflow summary shown by the overflow details command.
func Details(hasOverflow bool, currentHeight, maxHeight float64) string {
	state := "No"
	if hasOverflow {
		state = "Yes"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Overflow: %s\n", state)
	fmt.Fprintf(&b, "Current height: %spx\n", formatPx(currentHeight))
	fmt.Fprintf(&b, "Max height: %spx", formatPx(maxHeight))
	return b.String()
}

// Suggestions lists manual reductions worth trying when auto-fit is exhausted.
func Suggestions() []string {
	return []string{
		"Reduce spacing between sections",
		"Reduce body font size",
		"Tighten bullet spacing",
		"Reduce role block gaps",
	}
}
