package tokens

import "fmt"

// TypographyKey identifies a typography token. Sizes and line heights are
// pixels; weights are CSS font-weight numbers.
type TypographyKey int

const (
	SizeXXL TypographyKey = iota
	SizeXL
	SizeLG
	SizeMD
	SizeSM
	SizeXS

	LineHeightXXL
	LineHeightXL
	LineHeightLG
	LineHeightMD
	LineHeightSM
	LineHeightXS

	WeightBold
	WeightSemibold
	WeightNormal

	MinBodySize
	MinHeadingSize

	typographyKeyCount
)

// Category groups typography keys by how the resolver treats them.
type Category int

const (
	CategoryHeadingSize Category = iota
	CategoryBodySize
	CategoryLineHeight
	CategoryWeight
	CategoryFloor
)

func (c Category) String() string {
	switch c {
	case CategoryHeadingSize:
		return "heading-size"
	case CategoryBodySize:
		return "body-size"
	case CategoryLineHeight:
		return "line-height"
	case CategoryWeight:
		return "weight"
	case CategoryFloor:
		return "floor"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

var typographyTable = [typographyKeyCount]struct {
	name     string
	value    int
	category Category
}{
	SizeXXL: {"SIZE_XXL", 24, CategoryHeadingSize},
	SizeXL:  {"SIZE_XL", 20, CategoryHeadingSize},
	SizeLG:  {"SIZE_LG", 18, CategoryBodySize},
	SizeMD:  {"SIZE_MD", 14, CategoryBodySize},
	SizeSM:  {"SIZE_SM", 12, CategoryBodySize},
	SizeXS:  {"SIZE_XS", 11, CategoryBodySize},

	LineHeightXXL: {"LINE_HEIGHT_XXL", 30, CategoryLineHeight},
	LineHeightXL:  {"LINE_HEIGHT_XL", 26, CategoryLineHeight},
	LineHeightLG:  {"LINE_HEIGHT_LG", 22, CategoryLineHeight},
	LineHeightMD:  {"LINE_HEIGHT_MD", 19, CategoryLineHeight},
	LineHeightSM:  {"LINE_HEIGHT_SM", 15, CategoryLineHeight},
	LineHeightXS:  {"LINE_HEIGHT_XS", 13, CategoryLineHeight},

	WeightBold:     {"WEIGHT_BOLD", 700, CategoryWeight},
	WeightSemibold: {"WEIGHT_SEMIBOLD", 600, CategoryWeight},
	WeightNormal:   {"WEIGHT_NORMAL", 400, CategoryWeight},

	MinBodySize:    {"MIN_BODY_SIZE", 11, CategoryFloor},
	MinHeadingSize: {"MIN_HEADING_SIZE", 16, CategoryFloor},
}

// Value returns the base value of the token.
func (k TypographyKey) Value() int {
	if !k.Valid() {
		panic(fmt.Sprintf("tokens: unknown typography key %d", int(k)))
	}
	return typographyTable[k].value
}

// Category returns the semantic category of the token.
func (k TypographyKey) Category() Category {
	if !k.Valid() {
		panic(fmt.Sprintf("tokens: unknown typography key %d", int(k)))
	}
	return typographyTable[k].category
}

// Floor is the smallest size the key may scale down to. Heading sizes keep
// a larger minimum so headings and body text never collapse to one size.
func (k TypographyKey) Floor() int {
	if k.Category() == CategoryHeadingSize {
		return MinHeadingSize.Value()
	}
	return MinBodySize.Value()
}

// Valid reports whether k is a declared typography key.
func (k TypographyKey) Valid() bool { return k >= 0 && k < typographyKeyCount }

func (k TypographyKey) String() string {
	if !k.Valid() {
		return fmt.Sprintf("TypographyKey(%d)", int(k))
	}
	return typographyTable[k].name
}

// LineHeightFor pairs a font size key with its fixed line height key.
func LineHeightFor(size TypographyKey) TypographyKey {
	switch size {
	case SizeXXL:
		return LineHeightXXL
	case SizeXL:
		return LineHeightXL
	case SizeLG:
		return LineHeightLG
	case SizeMD:
		return LineHeightMD
	case SizeSM:
		return LineHeightSM
	case SizeXS:
		return LineHeightXS
	default:
		return LineHeightMD
	}
}

// TypographyKeys lists every typography key in declaration order.
func TypographyKeys() []TypographyKey {
	keys := make([]TypographyKey, 0, typographyKeyCount)
	for k := TypographyKey(0); k < typographyKeyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
