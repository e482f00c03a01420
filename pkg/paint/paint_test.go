package paint

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skonuru8/browser/pkg/css"
	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/layout"
	"github.com/skonuru8/browser/pkg/text"
)

func layoutHTML(t *testing.T, src string) (*html.Node, *layout.Frame) {
	t.Helper()
	root := html.Parse(src)
	css.Apply(root, css.Cascade(css.DefaultStyleSheet()))
	return root, layout.Layout(root, layout.Options{Measurer: text.NewFixed()})
}

func flatten(cmds []Command) []Command {
	var out []Command
	for _, c := range cmds {
		out = append(out, c)
		if b, ok := c.(Blend); ok {
			out = append(out, flatten(b.Children)...)
		}
	}
	return out
}

func findBlend(cmds []Command, mode string) (Blend, bool) {
	for _, c := range flatten(cmds) {
		if b, ok := c.(Blend); ok && b.BlendMode == mode {
			return b, true
		}
	}
	return Blend{}, false
}

func texts(cmds []Command) []string {
	var out []string
	for _, c := range flatten(cmds) {
		if t, ok := c.(DrawText); ok {
			out = append(out, t.Text)
		}
	}
	return out
}

func countItems(b *layout.Box) int {
	n := 0
	for _, it := range b.Items() {
		if it.Type == layout.InlineItemText {
			n++
		}
	}
	for _, c := range b.Children {
		n += countItems(c)
	}
	return n
}

func TestPaint_Idempotent(t *testing.T) {
	src := `<body><h1>Title</h1><p style="opacity: 0.5">Some <b>bold</b> text</p>` +
		`<pre>code</pre><form><input value=x><button>Go</button></form></body>`
	root, f := layoutHTML(t, src)
	first := Paint(f)
	second := Paint(f)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("display list changed between paints (-first +second):\n%s", diff)
	}
	relaid := Paint(layout.Layout(root, layout.Options{Measurer: text.NewFixed()}))
	if diff := cmp.Diff(first, relaid); diff != "" {
		t.Errorf("display list changed after re-layout (-first +relaid):\n%s", diff)
	}
}

func TestPaint_NoSubtreeDropped(t *testing.T) {
	src := `<div><p>one two</p><div><span>three</span> <i>four</i></div></div><p style="overflow: clip">five</p>`
	_, f := layoutHTML(t, src)
	cmds := Paint(f)
	assert.Equal(t, countItems(f.Document), len(texts(cmds)))
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, texts(cmds))
}

func TestPaint_Backgrounds(t *testing.T) {
	_, f := layoutHTML(t, `<pre>code</pre><div style="background-color: #ff0000; border-radius: 6px">x</div>`)
	cmds := Paint(f)
	require.NotEmpty(t, cmds)

	body, ok := cmds[0].(DrawRect)
	require.True(t, ok, "expected the body background first, got %T", cmds[0])
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, body.Color)

	var gray, rounded bool
	for _, c := range cmds {
		switch c := c.(type) {
		case DrawRect:
			gray = gray || c.Color == (color.RGBA{128, 128, 128, 255})
		case DrawRRect:
			rounded = true
			assert.Equal(t, 6.0, c.Radius)
			assert.Equal(t, color.RGBA{255, 0, 0, 255}, c.Color)
		}
	}
	assert.True(t, gray, "expected a gray pre background")
	assert.True(t, rounded, "expected a rounded background")
}

func TestPaint_NoEffectsNoBlend(t *testing.T) {
	_, f := layoutHTML(t, `<p>plain</p>`)
	for _, c := range Paint(f) {
		_, isBlend := c.(Blend)
		assert.False(t, isBlend)
	}
}

func TestPaint_Opacity(t *testing.T) {
	_, f := layoutHTML(t, `<p style="opacity: 0.5">faded</p><p>solid</p>`)
	b, ok := findBlend(Paint(f), "source-over")
	require.True(t, ok)
	assert.Equal(t, 0.5, b.Opacity)
	assert.Equal(t, []string{"faded"}, texts(b.Children))
}

func TestPaint_BlendMode(t *testing.T) {
	_, f := layoutHTML(t, `<div style="mix-blend-mode: multiply"><p>x</p></div>`)
	b, ok := findBlend(Paint(f), "multiply")
	require.True(t, ok)
	assert.Equal(t, 1.0, b.Opacity)
}

func TestPaint_OverflowClip(t *testing.T) {
	_, f := layoutHTML(t, `<div style="overflow: clip; border-radius: 4px; background-color: red"><p>x</p></div>`)
	cmds := Paint(f)
	outer, ok := findBlend(cmds, "source-over")
	require.True(t, ok)
	require.NotEmpty(t, outer.Children)

	mask, ok := outer.Children[len(outer.Children)-1].(Blend)
	require.True(t, ok, "expected the clip mask last")
	assert.Equal(t, "destination-in", mask.BlendMode)
	require.Len(t, mask.Children, 1)
	rr, ok := mask.Children[0].(DrawRRect)
	require.True(t, ok)
	assert.Equal(t, 4.0, rr.Radius)
	assert.Equal(t, white, rr.Color)
	assert.Equal(t, outer.Children[0].Bounds(), rr.Rect)
}

func TestPaint_Checkbox(t *testing.T) {
	_, f := layoutHTML(t, `<p><input type=checkbox checked><input type=checkbox></p>`)
	var rects, outlines, lines int
	for _, c := range Paint(f) {
		switch c := c.(type) {
		case DrawRect:
			if c.Color == checkboxFill {
				rects++
			}
		case DrawOutline:
			outlines++
			assert.Equal(t, float64(layout.CheckboxSize), c.Rect.Width)
		case DrawLine:
			lines++
			assert.Equal(t, 2.0, c.Thickness)
		}
	}
	assert.Equal(t, 2, rects)
	assert.Equal(t, 2, outlines)
	assert.Equal(t, 2, lines)
}

func TestPaint_InputAndButton(t *testing.T) {
	root := html.Parse(`<p><input value=hi><button>Go</button></p>`)
	css.Apply(root, css.Cascade(css.DefaultStyleSheet()))
	for _, n := range html.TreeToList(root) {
		if n.IsElement("input") {
			n.IsFocused = true
		}
	}
	f := layout.Layout(root, layout.Options{Measurer: text.NewFixed()})
	cmds := Paint(f)

	assert.Equal(t, []string{"hi", "Go"}, texts(cmds))
	var caret *DrawLine
	var backgrounds []color.RGBA
	for _, c := range cmds {
		switch c := c.(type) {
		case DrawLine:
			caret = &c
		case DrawRect:
			backgrounds = append(backgrounds, c.Color)
		}
	}
	require.NotNil(t, caret)
	assert.Equal(t, caret.X1, caret.X2)
	assert.Equal(t, 1.0, caret.Thickness)
	assert.Contains(t, backgrounds, color.RGBA{173, 216, 230, 255})
	assert.Contains(t, backgrounds, color.RGBA{255, 165, 0, 255})
}

func TestPaint_WidgetBox(t *testing.T) {
	_, f := layoutHTML(t, `<div><p>label</p><button>Send</button></div>`)
	assert.Equal(t, []string{"label", "Send"}, texts(Paint(f)))
}

func TestBounds(t *testing.T) {
	line := DrawLine{X1: 10, Y1: 20, X2: 5, Y2: 2}
	assert.Equal(t, layout.Rect{X: 5, Y: 2, Width: 5, Height: 18}, line.Bounds())

	b := Blend{Children: []Command{
		DrawRect{Rect: layout.Rect{X: 10, Y: 10, Width: 10, Height: 10}},
		DrawText{X: 30, Y: 0, Width: 5, Height: 5},
	}}
	assert.Equal(t, layout.Rect{X: 10, Y: 0, Width: 25, Height: 20}, b.Bounds())
	assert.Equal(t, layout.Rect{}, Blend{}.Bounds())
}

func TestPaint_NilFrame(t *testing.T) {
	assert.Nil(t, Paint(nil))
}
