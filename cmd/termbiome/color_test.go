package main

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestFaded(t *testing.T) {
	gold := color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}

	tests := []struct {
		name  string
		alpha float32
		want  tcell.Color
	}{
		{"full", 1, tcell.NewRGBColor(0xFF, 0xD7, 0x00)},
		{"over", 1.5, tcell.NewRGBColor(0xFF, 0xD7, 0x00)},
		{"gone", 0, tcell.NewRGBColor(0, 0, 0)},
		{"negative", -1, tcell.NewRGBColor(0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faded(gold, tt.alpha); got != tt.want {
				t.Errorf("faded(%v) = %v, want %v", tt.alpha, got, tt.want)
			}
		})
	}
}

func TestFadedDims(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	r, g, b := faded(c, 0.5).RGB()
	if r <= 0 || r >= 200 || g <= 0 || g >= 100 || b >= 50 {
		t.Errorf("half faded = (%d,%d,%d), want strictly between black and the base color", r, g, b)
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		r    float32
		want rune
	}{
		{5, '·'},
		{19.9, '·'},
		{20, '*'},
		{39, '*'},
		{40, '✶'},
		{90, '✶'},
	}
	for _, tt := range tests {
		if got := glyph(tt.r); got != tt.want {
			t.Errorf("glyph(%v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}
