package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// composite blends src onto dst in premultiplied space. Both images must
// share bounds.
func composite(dst, src *image.RGBA, opacity float64, mode string) {
	opacity = min(max(opacity, 0), 1)
	if mode == "" || mode == "source-over" {
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
		draw.DrawMask(dst, dst.Bounds(), src, src.Bounds().Min, mask, image.Point{}, draw.Over)
		return
	}
	for i := 0; i+3 < len(dst.Pix) && i+3 < len(src.Pix); i += 4 {
		sa := float64(src.Pix[i+3]) / 255 * opacity
		da := float64(dst.Pix[i+3]) / 255
		for ch := 0; ch < 3; ch++ {
			sc := float64(src.Pix[i+ch]) / 255 * opacity
			dc := float64(dst.Pix[i+ch]) / 255
			dst.Pix[i+ch] = toByte(blendChannel(mode, sc, dc, sa, da))
		}
		switch mode {
		case "destination-in":
			dst.Pix[i+3] = toByte(da * sa)
		default:
			dst.Pix[i+3] = toByte(sa + da - sa*da)
		}
	}
}

func blendChannel(mode string, sc, dc, sa, da float64) float64 {
	switch mode {
	case "multiply":
		return sc*dc + sc*(1-da) + dc*(1-sa)
	case "difference":
		return sc + dc - 2*min(sc*da, dc*sa)
	case "destination-in":
		return dc * sa
	}
	return sc + dc*(1-sa)
}

func toByte(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}
