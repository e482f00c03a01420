package resource

import (
	"image"
	"image/draw"

	"github.com/skonuru8/browser/pkg/css"
	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/layout"
	"github.com/skonuru8/browser/pkg/paint"
	"github.com/skonuru8/browser/pkg/render"
	"github.com/skonuru8/browser/pkg/text"
)

// Document is the result of one style, layout and paint pass.
type Document struct {
	Frame       *layout.Frame
	DisplayList []paint.Command
}

// Height returns the laid out document height.
func (d Document) Height() float64 {
	return d.Frame.Height()
}

// Pipeline styles root with the user-agent sheet followed by sheets in
// order, then lays it out and paints it. Every call restyles the whole
// tree.
func Pipeline(root *html.Node, sheets [][]css.Rule, opts layout.Options) Document {
	if root != nil {
		all := append([][]css.Rule{css.DefaultStyleSheet()}, sheets...)
		css.Apply(root, css.Cascade(all...))
	}
	frame := layout.Layout(root, opts)
	return Document{Frame: frame, DisplayList: paint.Paint(frame)}
}

// Rasterize renders doc scrolled by scroll onto target. The target bounds
// give the viewport size.
func Rasterize(doc Document, scroll float64, target *image.RGBA, fonts *text.Fonts) {
	bounds := target.Bounds()
	r := render.NewRenderer(bounds.Dx(), bounds.Dy(), fonts)
	r.Render(doc.DisplayList, scroll)
	draw.Draw(target, bounds, r.Image(), image.Point{}, draw.Src)
}
