package main

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// faded blends a category color toward black by remaining lifespan.
// Terminals have no alpha channel.
func faded(c color.RGBA, alpha float32) tcell.Color {
	if alpha >= 1 {
		return rgb(c)
	}
	if alpha < 0 {
		alpha = 0
	}
	base := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := colorful.Color{}.BlendRgb(base, float64(alpha)).Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// glyph picks a rune by drawn radius.
func glyph(r float32) rune {
	switch {
	case r < 20:
		return '·'
	case r < 40:
		return '*'
	default:
		return '✶'
	}
}
