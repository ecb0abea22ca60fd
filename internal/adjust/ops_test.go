package adjust

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagefit/internal/constraints"
	"github.com/gompdf/pagefit/internal/tokens"
)

func defaults() constraints.Constraints {
	return constraints.Defaults(tokens.MustGeometry(tokens.PageLetter))
}

func inRange(t *testing.T, c constraints.Constraints) {
	t.Helper()
	require.GreaterOrEqual(t, c.SpacingScale, constraints.MinSpacingScale)
	require.LessOrEqual(t, c.SpacingScale, constraints.MaxSpacingScale)
	require.GreaterOrEqual(t, c.FontSizeScale, constraints.MinFontSizeScale)
	require.LessOrEqual(t, c.FontSizeScale, constraints.MaxFontSizeScale)
}

func TestOpsStayInRange(t *testing.T) {
	ops := []Op{TightenSpacing, LoosenSpacing, ReduceFont, IncreaseFont, AutoFit, ToggleFreeze, ToggleBaselineGrid}
	rng := rand.New(rand.NewSource(7))
	c := defaults()
	for i := 0; i < 2000; i++ {
		c = ops[rng.Intn(len(ops))](c)
		inRange(t, c)
	}
}

func TestSpacingSaturates(t *testing.T) {
	c := defaults()
	for i := 0; i < 20; i++ {
		c = TightenSpacing(c)
	}
	assert.Equal(t, constraints.MinSpacingScale, c.SpacingScale)
	for i := 0; i < 20; i++ {
		c = LoosenSpacing(c)
	}
	assert.Equal(t, constraints.MaxSpacingScale, c.SpacingScale)
}

func TestFontSaturates(t *testing.T) {
	c := defaults()
	c = IncreaseFont(c)
	assert.Equal(t, 1.1, c.FontSizeScale)
	c = IncreaseFont(c)
	assert.Equal(t, 1.1, c.FontSizeScale)
	for i := 0; i < 20; i++ {
		c = ReduceFont(c)
	}
	assert.Equal(t, constraints.MinFontSizeScale, c.FontSizeScale)
}

func TestStepsAreExact(t *testing.T) {
	c := defaults()
	c = TightenSpacing(TightenSpacing(TightenSpacing(c)))
	assert.Equal(t, 0.7, c.SpacingScale)
	c = ReduceFont(ReduceFont(c))
	assert.Equal(t, 0.95, c.FontSizeScale)
}

func TestResetRestoresDefaults(t *testing.T) {
	reset := Reset(defaults())
	c := defaults()
	for _, op := range []Op{TightenSpacing, ReduceFont, ToggleBaselineGrid, ToggleFreeze, AutoFit} {
		c = op(c)
	}
	c.CurrentHeight = 1234

	got := reset(c)
	want := constraints.Constraints{MaxHeight: 1004, CurrentHeight: 1234, SpacingScale: 1, FontSizeScale: 1.05}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, got, reset(got))
}

func TestToggles(t *testing.T) {
	c := ToggleBaselineGrid(defaults())
	assert.True(t, c.ShowBaselineGrid)
	assert.False(t, ToggleBaselineGrid(c).ShowBaselineGrid)

	c = ToggleFreeze(defaults())
	assert.True(t, c.LayoutFrozen)
	assert.False(t, ToggleFreeze(c).LayoutFrozen)
}

func TestAutoFitConverges(t *testing.T) {
	c := constraints.Constraints{MaxHeight: 1004, SpacingScale: 1.0, FontSizeScale: 1.05}
	calls := 0
	for !Exhausted(c) {
		next := AutoFit(c)
		require.NotEqual(t, c, next, "auto-fit made no progress at call %d", calls)
		c = next
		calls++
		require.LessOrEqual(t, calls, 11)
		require.GreaterOrEqual(t, c.SpacingScale, AutoFitSpacingFloor)
		require.GreaterOrEqual(t, c.FontSizeScale, AutoFitFontSizeFloor)
	}
	assert.Equal(t, 9, calls)
	assert.Equal(t, 0.6, c.SpacingScale)
	assert.Equal(t, 0.8, c.FontSizeScale)

	for i := 0; i < 5; i++ {
		assert.Equal(t, c, AutoFit(c))
	}
}

func TestAutoFitShrinksSpacingFirst(t *testing.T) {
	c := AutoFit(defaults())
	assert.Equal(t, 0.9, c.SpacingScale)
	assert.Equal(t, 1.05, c.FontSizeScale)

	c.SpacingScale = 0.6
	c = AutoFit(c)
	assert.Equal(t, 0.6, c.SpacingScale)
	assert.Equal(t, 1.0, c.FontSizeScale)
}

func TestAutoFitBelowSecondaryFloorsIsNoop(t *testing.T) {
	c := constraints.Constraints{SpacingScale: 0.5, FontSizeScale: 0.7}
	assert.True(t, Exhausted(c))
	assert.Equal(t, c, AutoFit(c))
}
