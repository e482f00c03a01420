package layout

import (
	"strings"

	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/text"
)

// InlineItemBreak forces a line break (<br>).
const InlineItemBreak InlineItemType = -1

// collectInlineItems flattens the inline content under node into measured
// words, widgets and forced breaks, in document order.
func (le *LayoutEngine) collectInlineItems(node *html.Node) []*InlineItem {
	var items []*InlineItem
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			for _, w := range strings.Fields(n.Text) {
				items = append(items, le.wordItem(n, w))
			}
			return
		}
		if !displayed(n) {
			return
		}
		switch {
		case n.TagName == "br":
			items = append(items, &InlineItem{Type: InlineItemBreak, Node: n})
		case isWidget(n):
			items = append(items, le.widgetItem(n))
		default:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(node)
	return items
}

func (le *LayoutEngine) wordItem(n *html.Node, word string) *InlineItem {
	key := text.KeyFromStyle(n.Style)
	m := le.measurer.Metrics(key)
	return &InlineItem{
		Type:    InlineItemText,
		Width:   le.measurer.Measure(key, word),
		Height:  m.Linespace,
		Font:    key,
		Color:   styleValue(n, "color", "black"),
		Text:    word,
		Node:    n,
		ascent:  m.Ascent,
		descent: m.Descent,
		space:   le.measurer.Measure(key, " "),
	}
}

func (le *LayoutEngine) widgetItem(n *html.Node) *InlineItem {
	key := text.KeyFromStyle(n.Style)
	m := le.measurer.Metrics(key)
	it := &InlineItem{
		Type:       InlineItemWidget,
		Height:     m.Linespace,
		Font:       key,
		Color:      styleValue(n, "color", "black"),
		Node:       n,
		Background: styleValue(n, "background-color", "transparent"),
		ascent:     m.Ascent,
		descent:    m.Descent,
		space:      le.measurer.Measure(key, " "),
	}
	switch {
	case n.TagName == "button":
		it.Widget = Button
		it.Text = buttonLabel(n)
		it.Width = max(ButtonMinWidth, le.measurer.Measure(key, it.Text)+ButtonPadding)
	case inputType(n) == "checkbox":
		it.Widget = Checkbox
		it.Width = CheckboxSize
		it.Height = CheckboxSize
		_, checked := n.GetAttribute("checked")
		state, _ := n.GetAttribute("_checked_state")
		it.Checked = checked || state == "true"
	default:
		it.Widget = TextInput
		value, _ := n.GetAttribute("value")
		it.Text = value
		if inputType(n) == "password" {
			it.Widget = PasswordInput
			it.Text = strings.Repeat("•", len([]rune(value)))
		}
		it.Width = InputWidth
		it.Focused = n.IsFocused
		it.caret = le.measurer.Measure(key, it.Text)
	}
	return it
}

// buttonLabel is the text of a button whose only child is a text node.
func buttonLabel(n *html.Node) string {
	if len(n.Children) == 1 && n.Children[0].Type == html.TextNode {
		return n.Children[0].Text
	}
	return ""
}

// BreakLines places items greedily into lines of the given width starting
// at (x, y). An item that does not fit starts a new line unless the line
// is empty, so an oversize word sits alone on its own line. Items on a
// line share a baseline at the line's deepest ascent; the next line starts
// descentFactor times the deepest descent below it.
func (le *LayoutEngine) BreakLines(items []*InlineItem, x, y, width float64) []*LineBox {
	var (
		lines   []*LineBox
		line    []*InlineItem
		offsets []float64
		cursorX float64
		cursorY float64
	)
	flush := func() {
		if len(line) == 0 {
			return
		}
		var maxAscent, maxDescent float64
		for _, it := range line {
			maxAscent = max(maxAscent, it.ascent)
			maxDescent = max(maxDescent, it.descent)
		}
		baseline := cursorY + maxAscent
		for i, it := range line {
			it.X = x + offsets[i]
			it.Y = y + baseline - it.ascent
			if it.Type == InlineItemWidget {
				it.CaretX = it.X + it.caret
			}
		}
		next := baseline + descentFactor*maxDescent
		lines = append(lines, &LineBox{
			Y:        y + cursorY,
			Baseline: y + baseline,
			Height:   next - cursorY,
			Items:    line,
		})
		cursorY = next
		cursorX = 0
		line, offsets = nil, nil
	}
	for _, it := range items {
		if it.Type == InlineItemBreak {
			flush()
			continue
		}
		if cursorX+it.Width > width && len(line) > 0 {
			flush()
		}
		line = append(line, it)
		offsets = append(offsets, cursorX)
		cursorX += it.Width + it.space
	}
	flush()
	return lines
}

// registerHits records widgets and hyperlinked words in paint order.
func (le *LayoutEngine) registerHits(lines []*LineBox) {
	for _, line := range lines {
		for _, it := range line.Items {
			switch it.Type {
			case InlineItemWidget:
				le.hits.Register(it.Rect(), it.Node)
			case InlineItemText:
				link := html.FindAncestor(it.Node, "a")
				if link == nil {
					continue
				}
				if _, ok := link.GetAttribute("href"); ok {
					le.hits.Register(it.Rect(), link)
				}
			}
		}
	}
}
