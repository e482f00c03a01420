package css

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"red", color.RGBA{255, 0, 0, 255}},
		{" Blue ", color.RGBA{0, 0, 255, 255}},
		{"lightblue", color.RGBA{173, 216, 230, 255}},
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"#102030", color.RGBA{0x10, 0x20, 0x30, 255}},
		{"#10203080", color.RGBA{0x08, 0x10, 0x18, 0x80}},
		{"#ff000080", color.RGBA{0x80, 0, 0, 0x80}},
		{"#ffffff00", color.RGBA{0, 0, 0, 0}},
		{"transparent", color.RGBA{0, 0, 0, 0}},
		{"#12", Black},
		{"#zzzzzz", Black},
		{"chartreuse-ish", Black},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
