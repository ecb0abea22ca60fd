package constraints

import "github.com/gompdf/pagefit/internal/tokens"

// VerticalRhythm returns units baseline steps in pixels.
func VerticalRhythm(units int) float64 {
	return float64(tokens.BaselineUnit * units)
}
