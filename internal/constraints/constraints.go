// Package constraints is the layout constraint model: the scale factors the
// fitting engine adjusts and the resolvers that turn a token plus the
// current constraints into an effective pixel value.
//
// Spacing is always scaled before typography; both scales are bounded and
// every value a Constraints holds is legal at all times.
package constraints

import (
	"math"

	"github.com/gompdf/pagefit/internal/tokens"
)

// Scale bounds.
const (
	MinSpacingScale  = 0.5
	MaxSpacingScale  = 1.0
	MinFontSizeScale = 0.7
	MaxFontSizeScale = 1.1
)

// Default scales.
const (
	DefaultSpacingScale  = 1.0
	DefaultFontSizeScale = 1.05
)

// scaleResolution is how many steps per unit scales are stored at. Adjustment
// steps are multiples of it, so repeated steps never drift past a bound.
const scaleResolution = 100

// Constraints is the mutable layout state of one document. It is a value
// type: copy it, change the copy, hand it back to the owner.
type Constraints struct {
	MaxHeight        float64 `json:"maxHeight" yaml:"maxHeight"`
	CurrentHeight    float64 `json:"currentHeight" yaml:"currentHeight"`
	SpacingScale     float64 `json:"spacingScale" yaml:"spacingScale"`
	FontSizeScale    float64 `json:"fontSizeScale" yaml:"fontSizeScale"`
	ShowBaselineGrid bool    `json:"showBaselineGrid" yaml:"showBaselineGrid"`
	LayoutFrozen     bool    `json:"layoutFrozen" yaml:"layoutFrozen"`
}

// Defaults returns the startup constraints for a page size.
func Defaults(g tokens.Geometry) Constraints {
	return Constraints{
		MaxHeight:     g.ContentHeight(),
		SpacingScale:  DefaultSpacingScale,
		FontSizeScale: DefaultFontSizeScale,
	}
}

// WithPageSize retargets the page budget after a page-size switch.
func WithPageSize(c Constraints, g tokens.Geometry) Constraints {
	c.MaxHeight = g.ContentHeight()
	return c
}

// Clamp bounds value to [min, max].
func Clamp(min, value, max float64) float64 {
	return math.Max(min, math.Min(value, max))
}

func quantize(v float64) float64 {
	return math.Round(v*scaleResolution) / scaleResolution
}

// Normalize clamps both scales into range and snaps them to the step resolution.
func (c Constraints) Normalize() Constraints {
	c.SpacingScale = quantize(Clamp(MinSpacingScale, c.SpacingScale, MaxSpacingScale))
	c.FontSizeScale = quantize(Clamp(MinFontSizeScale, c.FontSizeScale, MaxFontSizeScale))
	return c
}

// ScaledSpacing returns base*scale rounded to whole pixels.
func ScaledSpacing(base int, scale float64) int {
	return int(math.Round(float64(base) * scale))
}

// ScaledFontSize returns base*scale rounded to whole pixels, never below minSize.
func ScaledFontSize(base int, scale float64, minSize int) int {
	scaled := int(math.Round(float64(base) * scale))
	if scaled < minSize {
		return minSize
	}
	return scaled
}

// ResolveSpacing returns the effective pixel value of a spacing token.
// A frozen layout returns the base token unchanged.
func ResolveSpacing(key tokens.SpacingKey, c Constraints) int {
	if c.LayoutFrozen {
		return key.Value()
	}
	return ScaledSpacing(key.Value(), c.SpacingScale)
}

// ResolveFontSize returns the effective pixel value of a typography token,
// floored by the key's category. A frozen layout returns the base token.
func ResolveFontSize(key tokens.TypographyKey, c Constraints) int {
	if c.LayoutFrozen {
		return key.Value()
	}
	return ScaledFontSize(key.Value(), c.FontSizeScale, key.Floor())
}
