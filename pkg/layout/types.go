package layout

import (
	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/text"
)

// BoxKind is the closed set of layout box variants. Every consumer of the
// box tree switches on it exhaustively.
type BoxKind int

const (
	// DocumentBox anchors the page and owns a single root block.
	DocumentBox BoxKind = iota
	// BlockBox stacks child boxes vertically.
	BlockBox
	// InlineBox flows words and widgets into line boxes.
	InlineBox
	// WidgetBox is an input or button laid out as a block child; it holds
	// exactly one widget item.
	WidgetBox
)

func (k BoxKind) String() string {
	switch k {
	case DocumentBox:
		return "document"
	case BlockBox:
		return "block"
	case InlineBox:
		return "inline"
	case WidgetBox:
		return "widget"
	}
	return "unknown"
}

type Box struct {
	Kind     BoxKind
	Node     *html.Node
	Parent   *Box
	Previous *Box
	Children []*Box
	X        float64
	Y        float64
	Width    float64
	Height   float64

	// Line boxes for inline and widget boxes, in document coordinates.
	LineBoxes []*LineBox
}

// Rect returns the border box of b.
func (b *Box) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Style returns the computed style of the box's node, or an empty map.
func (b *Box) Style() map[string]string {
	if b.Node == nil || b.Node.Style == nil {
		return map[string]string{}
	}
	return b.Node.Style
}

// Items returns every inline item of b in line order.
func (b *Box) Items() []*InlineItem {
	var out []*InlineItem
	for _, line := range b.LineBoxes {
		out = append(out, line.Items...)
	}
	return out
}

// Rect represents a rectangular region
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Union returns the smallest rect covering r and o. An empty r yields o.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 && r.X == 0 && r.Y == 0 {
		return o
	}
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	return Rect{X: x, Y: y, Width: max(r.Right(), o.Right()) - x, Height: max(r.Bottom(), o.Bottom()) - y}
}

type InlineItemType int

const (
	InlineItemText InlineItemType = iota
	InlineItemWidget
)

type WidgetType int

const (
	TextInput WidgetType = iota
	PasswordInput
	Checkbox
	Button
)

// InlineItem is a positioned word or widget. X and Y are the top-left
// corner in document coordinates.
type InlineItem struct {
	Type   InlineItemType
	X      float64
	Y      float64
	Width  float64
	Height float64
	Font   text.FontKey
	Color  string
	Text   string     // word, or the rendered widget label/value
	Node   *html.Node // text node for words, element for widgets

	// own metrics, used while aligning to the baseline
	ascent  float64
	descent float64
	space   float64
	caret   float64

	Widget     WidgetType
	Background string
	Checked    bool
	Focused    bool
	CaretX     float64
}

func (it *InlineItem) Rect() Rect {
	return Rect{X: it.X, Y: it.Y, Width: it.Width, Height: it.Height}
}

// LineBox is one laid out line. Y is the top of the line and Baseline the
// shared baseline; both are in document coordinates.
type LineBox struct {
	Y        float64
	Baseline float64
	Height   float64
	Items    []*InlineItem
}

// Options configure a layout pass.
type Options struct {
	// Width is the viewport width; zero means DefaultWidth.
	Width    float64
	Measurer text.Measurer
}

// Frame is the result of a layout pass.
type Frame struct {
	Document *Box
	Hits     *HitTable
}

// Height returns the document height used for scroll clamping.
func (f *Frame) Height() float64 {
	if f == nil || f.Document == nil {
		return 0
	}
	return f.Document.Height
}
