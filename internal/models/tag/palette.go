package tag

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ColorChoice struct {
	Hex   string `json:"hex" mapstructure:"hex"`
	Label string `json:"label" mapstructure:"label"`
}

// Palette is the ordered set of colors offered for tags. Order matters for
// AutoPick tie breaking.
type Palette []ColorChoice

func DefaultPalette() Palette {
	return Palette{
		{Hex: "#FF6B6B", Label: "Red"},
		{Hex: "#4ECDC4", Label: "Teal"},
		{Hex: "#45B7D1", Label: "Blue"},
		{Hex: "#FFA07A", Label: "Orange"},
		{Hex: "#98D8C8", Label: "Mint"},
		{Hex: "#F7DC6F", Label: "Yellow"},
		{Hex: "#BB8FCE", Label: "Purple"},
		{Hex: "#85C1E2", Label: "Sky Blue"},
	}
}

func NewPalette(choices []ColorChoice) (Palette, error) {
	if len(choices) == 0 {
		return DefaultPalette(), nil
	}
	seen := make(map[string]struct{}, len(choices))
	p := make(Palette, 0, len(choices))
	for _, c := range choices {
		if !IsHexColor(c.Hex) {
			return nil, fmt.Errorf("palette color %q is not a hex code", c.Hex)
		}
		key := strings.ToUpper(c.Hex)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("palette color %q listed twice", c.Hex)
		}
		seen[key] = struct{}{}
		p = append(p, c)
	}
	return p, nil
}

func (p Palette) Contains(color string) bool {
	for _, c := range p {
		if strings.EqualFold(c.Hex, color) {
			return true
		}
	}
	return false
}

// Default is the color used when nothing better is known.
func (p Palette) Default() string {
	if p.Contains(DefaultColor) || len(p) == 0 {
		return DefaultColor
	}
	return p[0].Hex
}

// AutoPick returns the least used palette color among existing, ties broken
// by palette order.
func (p Palette) AutoPick(existing []string) string {
	if len(p) == 0 {
		return DefaultColor
	}
	counts := make(map[string]int, len(p))
	for _, c := range existing {
		counts[strings.ToUpper(c)]++
	}

	best := p[0].Hex
	bestCount := counts[strings.ToUpper(best)]
	for _, c := range p[1:] {
		if n := counts[strings.ToUpper(c.Hex)]; n < bestCount {
			best, bestCount = c.Hex, n
		}
	}
	return best
}

// TextColor picks black or white text for a badge with the given background,
// using WCAG relative luminance.
func TextColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "#ffffff"
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "#ffffff"
	}

	linear := func(v uint64) float64 {
		c := float64(v) / 255
		if c <= 0.03928 {
			return c / 12.92
		}
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	lum := 0.2126*linear(rgb>>16&0xff) + 0.7152*linear(rgb>>8&0xff) + 0.0722*linear(rgb&0xff)
	if lum > 0.179 {
		return "#000000"
	}
	return "#ffffff"
}
