package tokens

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDegenerateGeometry reports a page whose content area is empty.
	ErrDegenerateGeometry = errors.New("degenerate page geometry")
	// ErrUnknownPageSize reports a page size name that is not supported.
	ErrUnknownPageSize = errors.New("unknown page size")
)

// PageSize selects one of the supported page variants.
type PageSize string

const (
	PageLetter PageSize = "letter"
	PageA4     PageSize = "a4"
)

// ParsePageSize parses a page size name case-insensitively.
func ParsePageSize(s string) (PageSize, error) {
	switch PageSize(strings.ToLower(strings.TrimSpace(s))) {
	case PageLetter, "":
		return PageLetter, nil
	case PageA4:
		return PageA4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPageSize, s)
	}
}

// Margins represents page margins in pixels
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Geometry is the fixed page box of one page size, in pixels at 96 DPI.
type Geometry struct {
	Size    PageSize
	Width   float64
	Height  float64
	Margins Margins
}

// ContentHeight is the page height minus the vertical margins.
func (g Geometry) ContentHeight() float64 {
	return g.Height - g.Margins.Top - g.Margins.Bottom
}

// ContentWidth is the page width minus the horizontal margins.
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.Margins.Left - g.Margins.Right
}

// NewGeometry validates and returns a page geometry.
func NewGeometry(size PageSize, width, height float64, m Margins) (Geometry, error) {
	g := Geometry{Size: size, Width: width, Height: height, Margins: m}
	if g.ContentHeight() <= 0 || g.ContentWidth() <= 0 {
		return Geometry{}, fmt.Errorf("%w: %s content area %.0fx%.0f",
			ErrDegenerateGeometry, size, g.ContentWidth(), g.ContentHeight())
	}
	return g, nil
}

// Layout dimensions shared by every page size.
const (
	SidebarWidth    = 190
	DateColumnWidth = 180
	ColumnGap       = 10
	MetadataGutter  = 2
)

// PageMargins are the same for every page size.
var PageMargins = Margins{Top: 24, Right: 27, Bottom: 28, Left: 28}

var geometries = map[PageSize]Geometry{
	PageLetter: mustGeometry(PageLetter, 816, 1056), // 8.5 x 11 in
	PageA4:     mustGeometry(PageA4, 794, 1123),     // 210 x 297 mm
}

func mustGeometry(size PageSize, width, height float64) Geometry {
	g, err := NewGeometry(size, width, height, PageMargins)
	if err != nil {
		panic(err)
	}
	return g
}

// GeometryFor returns the page geometry of a supported page size.
func GeometryFor(size PageSize) (Geometry, error) {
	g, ok := geometries[size]
	if !ok {
		return Geometry{}, fmt.Errorf("%w: %q", ErrUnknownPageSize, string(size))
	}
	return g, nil
}

// MustGeometry is GeometryFor for sizes already validated by ParsePageSize.
func MustGeometry(size PageSize) Geometry {
	g, err := GeometryFor(size)
	if err != nil {
		panic(err)
	}
	return g
}

// PageSizes lists the supported page sizes.
func PageSizes() []PageSize {
	return []PageSize{PageLetter, PageA4}
}
