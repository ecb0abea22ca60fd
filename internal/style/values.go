package style

import (
	"strconv"
	"strings"
)

// Get returns the raw value of prop, or "".
func (s ComputedStyle) Get(prop string) string {
	return strings.TrimSpace(s[prop].Value)
}

// Length returns prop as px; see ParseLength.
func (s ComputedStyle) Length(prop string, container, def float64) float64 {
	return ParseLength(s.Get(prop), container, def)
}

// FontSize returns the font size in px.
func (s ComputedStyle) FontSize() float64 {
	return ParseLength(s.Get("font-size"), DefaultFontSize, DefaultFontSize)
}

// LineHeight returns the line height in px. Unitless values multiply the
// font size; "normal" is 1.2 times it.
func (s ComputedStyle) LineHeight() float64 {
	fs := s.FontSize()
	v := s.Get("line-height")
	if v == "" || v == "normal" {
		return 1.2 * fs
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f * fs
	}
	return ParseLength(v, fs, 1.2*fs)
}

// Weight returns the numeric font weight.
func (s ComputedStyle) Weight() int {
	switch v := s.Get("font-weight"); v {
	case "", "normal":
		return 400
	case "bold":
		return 700
	default:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 400
		}
		return n
	}
}

// Bold reports a weight of 600 or more.
func (s ComputedStyle) Bold() bool { return s.Weight() >= 600 }

// Italic reports font-style: italic.
func (s ComputedStyle) Italic() bool {
	v := s.Get("font-style")
	return v == "italic" || v == "oblique"
}

// Display returns the display value, block when unset.
func (s ComputedStyle) Display() string {
	if v := s.Get("display"); v != "" {
		return strings.ToLower(v)
	}
	return "block"
}

// Flex returns the flex-grow factor from "flex" or "flex-grow".
func (s ComputedStyle) Flex() float64 {
	for _, prop := range []string{"flex-grow", "flex"} {
		v := s.Get(prop)
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(strings.Fields(v)[0], 64); err == nil {
			return f
		}
	}
	return 0
}

// ParseLength converts a CSS length to px. Percentages are of container;
// em and rem use the default font size. Unparseable values return def.
func ParseLength(value string, container, def float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "auto" {
		return def
	}

	parse := func(num string, scale float64) float64 {
		f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return def
		}
		return f * scale
	}

	switch {
	case strings.HasSuffix(value, "%"):
		return parse(strings.TrimSuffix(value, "%"), container/100)
	case strings.HasSuffix(value, "px"):
		return parse(strings.TrimSuffix(value, "px"), 1)
	case strings.HasSuffix(value, "pt"):
		return parse(strings.TrimSuffix(value, "pt"), 96.0/72.0)
	case strings.HasSuffix(value, "rem"):
		return parse(strings.TrimSuffix(value, "rem"), DefaultFontSize)
	case strings.HasSuffix(value, "em"):
		return parse(strings.TrimSuffix(value, "em"), DefaultFontSize)
	default:
		return parse(value, 1)
	}
}

// ParseBox parses a margin or padding shorthand ("4px", "4px 8px",
// "4px 8px 2px", "4px 8px 2px 6px") into top, right, bottom, left.
func ParseBox(value string, container float64) (top, right, bottom, left float64) {
	parts := strings.Fields(value)
	to := func(s string) float64 { return ParseLength(s, container, 0) }
	switch len(parts) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		a := to(parts[0])
		return a, a, a, a
	case 2:
		v, h := to(parts[0]), to(parts[1])
		return v, h, v, h
	case 3:
		t, h, b := to(parts[0]), to(parts[1]), to(parts[2])
		return t, h, b, h
	default:
		return to(parts[0]), to(parts[1]), to(parts[2]), to(parts[3])
	}
}

// Edges returns prop's four sides, honouring both the shorthand and the
// per-side properties; the later-cascaded per-side value wins.
func (s ComputedStyle) Edges(prop string, container float64) (top, right, bottom, left float64) {
	top, right, bottom, left = ParseBox(s.Get(prop), container)
	sides := [4]*float64{&top, &right, &bottom, &left}
	for i, side := range [4]string{"top", "right", "bottom", "left"} {
		if v := s.Get(prop + "-" + side); v != "" {
			*sides[i] = ParseLength(v, container, *sides[i])
		}
	}
	return top, right, bottom, left
}

// Color returns prop as RGB; unknown values are black.
func (s ComputedStyle) Color(prop string) (r, g, b int) {
	return ParseColor(s.Get(prop))
}

// ParseColor reads #rgb, #rrggbb and rgb(r, g, b).
func ParseColor(value string) (r, g, b int) {
	value = strings.TrimSpace(strings.ToLower(value))
	switch {
	case strings.HasPrefix(value, "#"):
		hex := strings.TrimPrefix(value, "#")
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return 0, 0, 0
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, 0, 0
		}
		return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)
	case strings.HasPrefix(value, "rgb(") && strings.HasSuffix(value, ")"):
		parts := strings.Split(value[4:len(value)-1], ",")
		if len(parts) != 3 {
			return 0, 0, 0
		}
		var c [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return 0, 0, 0
			}
			c[i] = n
		}
		return c[0], c[1], c[2]
	case value == "white":
		return 255, 255, 255
	}
	return 0, 0, 0
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
