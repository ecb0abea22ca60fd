package tokens

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpacingTableIsComplete(t *testing.T) {
	for _, k := range SpacingKeys() {
		assert.NotEmpty(t, spacingTable[k].name, "spacing key %d has no table entry", int(k))
		assert.GreaterOrEqual(t, k.Value(), 0, k.String())
	}
	assert.Equal(t, 32, SectionLarge.Value())
	assert.Equal(t, 2, Tiny.Value())
	assert.Equal(t, "BLOCK_TIGHT", BlockTight.String())
}

func TestTypographyTableIsComplete(t *testing.T) {
	for _, k := range TypographyKeys() {
		assert.NotEmpty(t, typographyTable[k].name, "typography key %d has no table entry", int(k))
		assert.Positive(t, k.Value(), k.String())
	}
}

func TestTypographyFloors(t *testing.T) {
	assert.Equal(t, 16, SizeXXL.Floor())
	assert.Equal(t, 16, SizeXL.Floor())
	assert.Equal(t, 11, SizeLG.Floor())
	assert.Equal(t, 11, SizeXS.Floor())
	assert.Equal(t, 11, LineHeightMD.Floor())
}

func TestLineHeightFor(t *testing.T) {
	pairs := map[TypographyKey]TypographyKey{
		SizeXXL: LineHeightXXL,
		SizeXL:  LineHeightXL,
		SizeLG:  LineHeightLG,
		SizeMD:  LineHeightMD,
		SizeSM:  LineHeightSM,
		SizeXS:  LineHeightXS,
	}
	for size, want := range pairs {
		assert.Equal(t, want, LineHeightFor(size), size.String())
	}
	assert.Equal(t, LineHeightMD, LineHeightFor(WeightBold))
}

func TestUnknownKeysPanic(t *testing.T) {
	assert.Panics(t, func() { SpacingKey(99).Value() })
	assert.Panics(t, func() { TypographyKey(-1).Value() })
	assert.Equal(t, "SpacingKey(99)", SpacingKey(99).String())
}

func TestGeometryContentArea(t *testing.T) {
	letter, err := GeometryFor(PageLetter)
	require.NoError(t, err)
	assert.Equal(t, 1004.0, letter.ContentHeight())
	assert.Equal(t, 761.0, letter.ContentWidth())

	a4, err := GeometryFor(PageA4)
	require.NoError(t, err)
	assert.Equal(t, 1071.0, a4.ContentHeight())
	assert.Equal(t, 739.0, a4.ContentWidth())
}

func TestEverySupportedGeometryHasContent(t *testing.T) {
	for _, size := range PageSizes() {
		g := MustGeometry(size)
		assert.Positive(t, g.ContentHeight(), size)
		assert.Positive(t, g.ContentWidth(), size)
	}
}

func TestNewGeometryRejectsDegenerate(t *testing.T) {
	_, err := NewGeometry("tiny", 100, 50, PageMargins)
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}

func TestParsePageSize(t *testing.T) {
	size, err := ParsePageSize(" A4 ")
	require.NoError(t, err)
	assert.Equal(t, PageA4, size)

	size, err = ParsePageSize("")
	require.NoError(t, err)
	assert.Equal(t, PageLetter, size)

	_, err = ParsePageSize("legal")
	assert.ErrorIs(t, err, ErrUnknownPageSize)
}
