package visualtest

import (
	"image"

	"github.com/skonuru8/browser/pkg/css"
	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/layout"
	"github.com/skonuru8/browser/pkg/resource"
	"github.com/skonuru8/browser/pkg/text"
)

// RenderHTML runs a page through the full pipeline with the given author
// stylesheet and rasterizes its first viewport.
func RenderHTML(body, stylesheet string, width, height int, fonts *text.Fonts) *image.RGBA {
	var sheets [][]css.Rule
	if stylesheet != "" {
		sheets = append(sheets, css.Parse(stylesheet))
	}
	doc := resource.Pipeline(html.Parse(body), sheets, layout.Options{Width: float64(width), Measurer: fonts})
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	resource.Rasterize(doc, 0, img, fonts)
	return img
}
