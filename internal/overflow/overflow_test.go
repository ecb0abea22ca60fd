package overflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectToleranceBoundary(t *testing.T) {
	const maxHeight = 1004.0

	assert.Nil(t, Detect(maxHeight, maxHeight))
	assert.Nil(t, Detect(maxHeight-200, maxHeight))
	assert.Nil(t, Detect(maxHeight+Tolerance, maxHeight))

	w := Detect(maxHeight+31, maxHeight)
	require.NotNil(t, w)
	assert.Equal(t, 31.0, w.OverflowPx)
	assert.Equal(t, 2, w.EstimatedLines)
}

func TestDetectSuggestions(t *testing.T) {
	w := Detect(1060, 1000)
	require.NotNil(t, w)
	assert.Equal(t, 60.0, w.OverflowPx)
	assert.Equal(t, 3, w.EstimatedLines)
	assert.Equal(t, 30, w.SpacingReduction)
	assert.Equal(t, 20, w.FontReduction)
	assert.Equal(t,
		"⚠ Resume exceeds one page by 60px (~3 lines). Try: reduce spacing by 30px or font by 20px",
		w.Message)
}

func TestDetectLetterScenario(t *testing.T) {
	w := Detect(1050, 1004)
	require.NotNil(t, w)
	assert.Equal(t, 46.0, w.OverflowPx)
	assert.Equal(t, 3, w.EstimatedLines)
	assert.Equal(t, 23, w.SpacingReduction)
	assert.Equal(t, 16, w.FontReduction)
}

func TestSingularLineWording(t *testing.T) {
	// Tolerance is larger than one line, so Detect alone never yields a
	// single line; format one directly.
	w := &Warning{OverflowPx: 18, EstimatedLines: 1, SpacingReduction: 9, FontReduction: 6}
	assert.Contains(t, w.message(), "(~1 line)")
	assert.NotContains(t, w.message(), "lines")

	w = Detect(1045, 1004)
	require.NotNil(t, w)
	assert.Contains(t, w.Message, "(~3 lines)")
}

func TestMessageTracksMagnitude(t *testing.T) {
	a := Detect(1040, 1000)
	b := Detect(1080, 1000)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a.Message, b.Message)
	assert.Contains(t, b.Message, "80px")
}

func TestDetails(t *testing.T) {
	assert.Equal(t, "Overflow: Yes\nCurrent height: 1050px\nMax height: 1004px", Details(true, 1050, 1004))
	assert.Contains(t, Details(false, 900, 1004), "Overflow: No")
}

func TestNilWarningString(t *testing.T) {
	var w *Warning
	assert.Equal(t, "fits", w.String())
	assert.Len(t, Suggestions(), 4)
}
