// Package paint walks a laid out frame in painter's order and emits the
// display list a raster backend executes.
package paint

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/skonuru8/browser/pkg/css"
	"github.com/skonuru8/browser/pkg/layout"
)

var (
	checkboxFill = color.RGBA{0xe6, 0xf2, 0xff, 0xff}
	black        = color.RGBA{0, 0, 0, 0xff}
	white        = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Paint returns the display list for f. The same frame always yields the
// same list.
func Paint(f *layout.Frame) []Command {
	if f == nil || f.Document == nil {
		return nil
	}
	return paintBox(f.Document)
}

func paintBox(b *layout.Box) []Command {
	var cmds []Command
	switch b.Kind {
	case layout.DocumentBox:
		// pass-through
	case layout.BlockBox:
		cmds = append(cmds, background(b)...)
	case layout.InlineBox:
		cmds = append(cmds, background(b)...)
		cmds = append(cmds, paintItems(b.Items())...)
	case layout.WidgetBox:
		// widget backgrounds are part of the widget item
		cmds = append(cmds, paintItems(b.Items())...)
	}
	for _, child := range b.Children {
		cmds = append(cmds, paintBox(child)...)
	}
	if b.Kind == layout.DocumentBox {
		return cmds
	}
	return effects(b, cmds)
}

func background(b *layout.Box) []Command {
	bg := b.Style()["background-color"]
	if bg == "" {
		return nil
	}
	c := css.ParseColor(bg)
	if c.A == 0 {
		return nil
	}
	if r := radius(b); r > 0 {
		return []Command{DrawRRect{Rect: b.Rect(), Radius: r, Color: c}}
	}
	return []Command{DrawRect{Rect: b.Rect(), Color: c}}
}

func radius(b *layout.Box) float64 {
	r, ok := css.ParseLength(b.Style()["border-radius"])
	if !ok || r < 0 {
		return 0
	}
	return r
}

// effects wraps cmds in a Blend when the box has opacity, a blend mode or
// clips its overflow.
func effects(b *layout.Box, cmds []Command) []Command {
	style := b.Style()
	opacity := 1.0
	if v, err := strconv.ParseFloat(strings.TrimSpace(style["opacity"]), 64); err == nil {
		opacity = min(max(v, 0), 1)
	}
	mode := style["mix-blend-mode"]
	if mode == "" || mode == "normal" {
		mode = "source-over"
	}
	clip := style["overflow"] == "clip"
	if opacity == 1 && mode == "source-over" && !clip {
		return cmds
	}
	if clip {
		mask := DrawRRect{Rect: b.Rect(), Radius: radius(b), Color: white}
		cmds = append(cmds, Blend{Opacity: 1, BlendMode: "destination-in", Children: []Command{mask}})
	}
	return []Command{Blend{Opacity: opacity, BlendMode: mode, Children: cmds}}
}

func paintItems(items []*layout.InlineItem) []Command {
	var cmds []Command
	for _, it := range items {
		switch it.Type {
		case layout.InlineItemText:
			cmds = append(cmds, textCommand(it))
		case layout.InlineItemWidget:
			cmds = append(cmds, paintWidget(it)...)
		}
	}
	return cmds
}

func textCommand(it *layout.InlineItem) DrawText {
	return DrawText{
		X:      it.X,
		Y:      it.Y,
		Width:  it.Width,
		Height: it.Height,
		Text:   it.Text,
		Font:   it.Font,
		Color:  css.ParseColor(it.Color),
	}
}

func paintWidget(it *layout.InlineItem) []Command {
	r := it.Rect()
	if it.Widget == layout.Checkbox {
		cmds := []Command{
			DrawRect{Rect: r, Color: checkboxFill},
			DrawOutline{Rect: r, Color: black, Thickness: 1},
		}
		if it.Checked {
			cmds = append(cmds,
				DrawLine{X1: r.X + 3, Y1: r.Y + 3, X2: r.Right() - 3, Y2: r.Bottom() - 3, Color: black, Thickness: 2},
				DrawLine{X1: r.Right() - 3, Y1: r.Y + 3, X2: r.X + 3, Y2: r.Bottom() - 3, Color: black, Thickness: 2},
			)
		}
		return cmds
	}

	var cmds []Command
	if bg := css.ParseColor(it.Background); it.Background != "" && bg.A > 0 {
		cmds = append(cmds, DrawRect{Rect: r, Color: bg})
	}
	if it.Text != "" {
		cmds = append(cmds, textCommand(it))
	}
	if it.Focused && it.Widget != layout.Button {
		cmds = append(cmds, DrawLine{X1: it.CaretX, Y1: r.Y, X2: it.CaretX, Y2: r.Bottom(), Color: black, Thickness: 1})
	}
	return cmds
}
