package paint

import (
	"image/color"

	"github.com/skonuru8/browser/pkg/layout"
	"github.com/skonuru8/browser/pkg/text"
)

// Command is one display-list entry. The set is closed: only the types in
// this file implement it.
type Command interface {
	// Bounds is the area the command may touch, in document coordinates.
	Bounds() layout.Rect
	command()
}

// DrawText draws Text with its top-left corner at (X, Y). Width and
// Height are the laid out extent of the text.
type DrawText struct {
	X, Y          float64
	Width, Height float64
	Text          string
	Font          text.FontKey
	Color         color.RGBA
}

type DrawRect struct {
	Rect  layout.Rect
	Color color.RGBA
}

// DrawRRect fills a rectangle with rounded corners.
type DrawRRect struct {
	Rect   layout.Rect
	Radius float64
	Color  color.RGBA
}

type DrawLine struct {
	X1, Y1    float64
	X2, Y2    float64
	Color     color.RGBA
	Thickness float64
}

// DrawOutline strokes the border of Rect.
type DrawOutline struct {
	Rect      layout.Rect
	Color     color.RGBA
	Thickness float64
}

// Blend paints Children into a layer and composites the layer onto what
// is below with Opacity and BlendMode ("source-over", "multiply",
// "difference", "destination-in").
type Blend struct {
	Opacity   float64
	BlendMode string
	Children  []Command
}

func (c DrawText) Bounds() layout.Rect {
	return layout.Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

func (c DrawRect) Bounds() layout.Rect  { return c.Rect }
func (c DrawRRect) Bounds() layout.Rect { return c.Rect }

func (c DrawLine) Bounds() layout.Rect {
	x, y := min(c.X1, c.X2), min(c.Y1, c.Y2)
	return layout.Rect{X: x, Y: y, Width: max(c.X1, c.X2) - x, Height: max(c.Y1, c.Y2) - y}
}

func (c DrawOutline) Bounds() layout.Rect { return c.Rect }

func (c Blend) Bounds() layout.Rect {
	var r layout.Rect
	for _, child := range c.Children {
		r = r.Union(child.Bounds())
	}
	return r
}

func (DrawText) command()    {}
func (DrawRect) command()    {}
func (DrawRRect) command()   {}
func (DrawLine) command()    {}
func (DrawOutline) command() {}
func (Blend) command()       {}
