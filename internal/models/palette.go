package models

import "fmt"

// Color is an RGB palette entry with components in 0..1.
type Color struct {
	R, G, B float64
}

// Hex renders the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	return int(v*255 + 0.5)
}

// Palette is the fixed set of habit colors referenced by Habit.ColorIndex.
var Palette = [12]Color{
	{1.0, 0.6, 0.6},
	{1.0, 0.8, 0.5},
	{1.0, 0.95, 0.5},
	{0.6, 0.9, 0.6},
	{0.6, 0.85, 0.95},
	{0.6, 0.7, 0.95},
	{0.7, 0.6, 0.95},
	{1.0, 0.7, 0.8},
	{0.85, 0.6, 0.95},
	{0.75, 0.7, 0.65},
	{0.7, 0.7, 0.7},
	{0.9, 0.85, 0.85},
}

// PaletteColor returns the entry for idx and whether idx is in range.
func PaletteColor(idx int) (Color, bool) {
	if idx < 0 || idx >= len(Palette) {
		return Color{}, false
	}
	return Palette[idx], true
}
