// Package tokens holds the immutable base values the fitting engine scales:
// spacing units, typography sizes and the page geometry of each supported
// page size. Nothing in this package is mutated after init.
package tokens

import "fmt"

// BaselineUnit is the 4px baseline grid every spacing token is derived from.
const BaselineUnit = 4

// SpacingKey identifies a spacing token.
type SpacingKey int

const (
	Baseline SpacingKey = iota

	// Section spacing
	SectionLarge
	SectionMedium
	SectionSmall
	SectionTight

	// Block spacing
	BlockLarge
	BlockMedium
	BlockSmall
	BlockTight
	BlockMinimal

	// Inline spacing
	InlineLarge
	InlineMedium
	InlineSmall

	// Bullets
	BulletGap
	BulletIndent

	// Role blocks
	RoleBlockGap
	RoleMetaGap

	Micro
	Tiny
	SidebarSectionGap

	spacingKeyCount
)

var spacingTable = [spacingKeyCount]struct {
	name  string
	value int
}{
	Baseline:          {"BASELINE", BaselineUnit},
	SectionLarge:      {"SECTION_LARGE", BaselineUnit * 8},
	SectionMedium:     {"SECTION_MEDIUM", BaselineUnit * 6},
	SectionSmall:      {"SECTION_SMALL", BaselineUnit * 4},
	SectionTight:      {"SECTION_TIGHT", BaselineUnit * 2},
	BlockLarge:        {"BLOCK_LARGE", BaselineUnit * 6},
	BlockMedium:       {"BLOCK_MEDIUM", BaselineUnit * 4},
	BlockSmall:        {"BLOCK_SMALL", BaselineUnit * 3},
	BlockTight:        {"BLOCK_TIGHT", BaselineUnit * 2},
	BlockMinimal:      {"BLOCK_MINIMAL", BaselineUnit},
	InlineLarge:       {"INLINE_LARGE", BaselineUnit * 4},
	InlineMedium:      {"INLINE_MEDIUM", BaselineUnit * 2},
	InlineSmall:       {"INLINE_SMALL", BaselineUnit},
	BulletGap:         {"BULLET_GAP", 0},
	BulletIndent:      {"BULLET_INDENT", BaselineUnit},
	RoleBlockGap:      {"ROLE_BLOCK_GAP", 0},
	RoleMetaGap:       {"ROLE_META_GAP", BaselineUnit},
	Micro:             {"MICRO", 0},
	Tiny:              {"TINY", 2}, // half a baseline unit
	SidebarSectionGap: {"SIDEBAR_SECTION_GAP", BaselineUnit},
}

// Value returns the base pixel value of the token.
func (k SpacingKey) Value() int {
	if !k.Valid() {
		panic(fmt.Sprintf("tokens: unknown spacing key %d", int(k)))
	}
	return spacingTable[k].value
}

// Valid reports whether k is a declared spacing key.
func (k SpacingKey) Valid() bool { return k >= 0 && k < spacingKeyCount }

func (k SpacingKey) String() string {
	if !k.Valid() {
		return fmt.Sprintf("SpacingKey(%d)", int(k))
	}
	return spacingTable[k].name
}

// SpacingKeys lists every spacing key in declaration order.
func SpacingKeys() []SpacingKey {
	keys := make([]SpacingKey, 0, spacingKeyCount)
	for k := SpacingKey(0); k < spacingKeyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
