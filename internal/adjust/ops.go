// Package adjust holds the fixed catalogue of constraint adjustments and the
// auto-fit policy that picks one of them per call.
package adjust

import "github.com/gompdf/pagefit/internal/constraints"

// Op is a pure constraint transform. Every Op returns legal constraints.
type Op func(constraints.Constraints) constraints.Constraints

// Step sizes.
const (
	SpacingStep  = 0.1
	FontSizeStep = 0.05
)

// Auto-fit stops shrinking at these scales, short of the hard bounds.
const (
	AutoFitSpacingFloor  = 0.6
	AutoFitFontSizeFloor = 0.8
)

// TightenSpacing shrinks the spacing scale by one step.
func TightenSpacing(c constraints.Constraints) constraints.Constraints {
	c.SpacingScale -= SpacingStep
	return c.Normalize()
}

// LoosenSpacing grows the spacing scale by one step.
func LoosenSpacing(c constraints.Constraints) constraints.Constraints {
	c.SpacingScale += SpacingStep
	return c.Normalize()
}

// ReduceFont shrinks the font size scale by one step.
func ReduceFont(c constraints.Constraints) constraints.Constraints {
	c.FontSizeScale -= FontSizeStep
	return c.Normalize()
}

// IncreaseFont grows the font size scale by one step.
func IncreaseFont(c constraints.Constraints) constraints.Constraints {
	c.FontSizeScale += FontSizeStep
	return c.Normalize()
}

// Reset returns an Op restoring defaults. The measured height is kept: only
// the re-measure loop writes it.
func Reset(defaults constraints.Constraints) Op {
	defaults = defaults.Normalize()
	return func(c constraints.Constraints) constraints.Constraints {
		d := defaults
		d.CurrentHeight = c.CurrentHeight
		return d
	}
}

// ToggleBaselineGrid flips the baseline grid overlay.
func ToggleBaselineGrid(c constraints.Constraints) constraints.Constraints {
	c.ShowBaselineGrid = !c.ShowBaselineGrid
	return c
}

// ToggleFreeze flips layout freeze.
func ToggleFreeze(c constraints.Constraints) constraints.Constraints {
	c.LayoutFrozen = !c.LayoutFrozen
	return c
}

// AutoFit applies exactly one reduction: spacing while it is above its
// auto-fit floor, then font size. Once both are at their floors it returns c
// unchanged, so repeated calls converge.
func AutoFit(c constraints.Constraints) constraints.Constraints {
	switch {
	case c.SpacingScale > AutoFitSpacingFloor:
		return TightenSpacing(c)
	case c.FontSizeScale > AutoFitFontSizeFloor:
		return ReduceFont(c)
	default:
		return c
	}
}

// Exhausted reports whether AutoFit has no reduction left to make.
func Exhausted(c constraints.Constraints) bool {
	return c.SpacingScale <= AutoFitSpacingFloor && c.FontSizeScale <= AutoFitFontSizeFloor
}
