package css

import (
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.RGBA{
	"black":      {0, 0, 0, 255},
	"gray":       {128, 128, 128, 255},
	"grey":       {128, 128, 128, 255},
	"white":      {255, 255, 255, 255},
	"red":        {255, 0, 0, 255},
	"green":      {0, 128, 0, 255},
	"blue":       {0, 0, 255, 255},
	"lightblue":  {173, 216, 230, 255},
	"lightgreen": {144, 238, 144, 255},
	"orange":     {255, 165, 0, 255},
	"orangered":  {255, 69, 0, 255},
	"yellow":     {255, 255, 0, 255},
	"purple":     {128, 0, 128, 255},
	"silver":     {192, 192, 192, 255},
	"navy":       {0, 0, 128, 255},
	"teal":       {0, 128, 128, 255},
	"lightgray":  {211, 211, 211, 255},

	"transparent": {0, 0, 0, 0},
}

// Black is the fallback for unparsable colors.
var Black = color.RGBA{0, 0, 0, 255}

// ParseColor parses #rgb, #rrggbb, #rrggbbaa or a named color into a
// premultiplied color. Anything else falls back to black.
func ParseColor(token string) color.RGBA {
	if c, ok := LookupColor(token); ok {
		return c
	}
	return Black
}

// LookupColor is ParseColor without the fallback.
func LookupColor(token string) (color.RGBA, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if c, ok := namedColors[token]; ok {
		return c, true
	}
	if !strings.HasPrefix(token, "#") {
		return color.RGBA{}, false
	}
	hex := token[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	// hex channels are unpremultiplied; color.RGBA is premultiplied
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(c).(color.RGBA), true
}
