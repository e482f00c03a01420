package main

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// pageView shows the rendered viewport and forwards taps and wheel
// scrolls in page coordinates.
type pageView struct {
	widget.BaseWidget
	img      *canvas.Image
	size     fyne.Size
	onTap    func(x, y float64)
	onScroll func(dy float64)
}

func newPageView(width, height int) *pageView {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
	img.FillMode = canvas.ImageFillOriginal
	p := &pageView{img: img, size: fyne.NewSize(float32(width), float32(height))}
	p.ExtendBaseWidget(p)
	return p
}

func (p *pageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.img)
}

func (p *pageView) MinSize() fyne.Size {
	return p.size
}

func (p *pageView) setImage(img image.Image) {
	p.img.Image = img
	p.img.Refresh()
}

func (p *pageView) Tapped(ev *fyne.PointEvent) {
	if p.onTap != nil {
		p.onTap(float64(ev.Position.X), float64(ev.Position.Y))
	}
}

func (p *pageView) Scrolled(ev *fyne.ScrollEvent) {
	if p.onScroll != nil {
		p.onScroll(float64(-ev.Scrolled.DY))
	}
}
