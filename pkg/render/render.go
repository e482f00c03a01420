// Package render executes display lists onto an RGBA canvas.
package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/skonuru8/browser/pkg/paint"
	"github.com/skonuru8/browser/pkg/text"
)

type Renderer struct {
	context *gg.Context
	fonts   *text.Fonts
	width   int
	height  int
}

// NewRenderer returns a renderer for a width x height viewport. A nil
// fonts uses the bundled Go fonts.
func NewRenderer(width, height int, fonts *text.Fonts) *Renderer {
	if fonts == nil {
		fonts = text.MustFonts()
	}
	return &Renderer{
		context: gg.NewContext(width, height),
		fonts:   fonts,
		width:   width,
		height:  height,
	}
}

// Render clears the canvas to white and executes cmds with the document
// scrolled down by scroll pixels.
func (r *Renderer) Render(cmds []paint.Command, scroll float64) {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	r.execute(r.context, cmds, scroll)
}

func (r *Renderer) Image() *image.RGBA {
	return r.context.Image().(*image.RGBA)
}

func (r *Renderer) SavePNG(filename string) error {
	if err := r.context.SavePNG(filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

// visible reports whether c can touch the viewport.
func (r *Renderer) visible(c paint.Command, scroll float64) bool {
	b := c.Bounds()
	return b.Y <= scroll+float64(r.height) && b.Bottom() >= scroll
}

func (r *Renderer) execute(dc *gg.Context, cmds []paint.Command, scroll float64) {
	for _, cmd := range cmds {
		if !r.visible(cmd, scroll) {
			continue
		}
		switch c := cmd.(type) {
		case paint.DrawText:
			dc.SetFontFace(r.fonts.Face(c.Font))
			dc.SetColor(c.Color)
			ascent := r.fonts.Metrics(c.Font).Ascent
			dc.DrawString(c.Text, c.X, c.Y-scroll+ascent)
		case paint.DrawRect:
			dc.SetColor(c.Color)
			dc.DrawRectangle(c.Rect.X, c.Rect.Y-scroll, c.Rect.Width, c.Rect.Height)
			dc.Fill()
		case paint.DrawRRect:
			dc.SetColor(c.Color)
			dc.DrawRoundedRectangle(c.Rect.X, c.Rect.Y-scroll, c.Rect.Width, c.Rect.Height, c.Radius)
			dc.Fill()
		case paint.DrawLine:
			dc.SetColor(c.Color)
			dc.SetLineWidth(c.Thickness)
			dc.DrawLine(c.X1, c.Y1-scroll, c.X2, c.Y2-scroll)
			dc.Stroke()
		case paint.DrawOutline:
			dc.SetColor(c.Color)
			dc.SetLineWidth(c.Thickness)
			dc.DrawRectangle(c.Rect.X, c.Rect.Y-scroll, c.Rect.Width, c.Rect.Height)
			dc.Stroke()
		case paint.Blend:
			layer := gg.NewContext(r.width, r.height)
			r.execute(layer, c.Children, scroll)
			composite(dc.Image().(*image.RGBA), layer.Image().(*image.RGBA), c.Opacity, c.BlendMode)
		}
	}
}
