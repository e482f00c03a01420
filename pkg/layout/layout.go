// Package layout turns a styled DOM tree into positioned boxes: a document
// box, blocks stacked vertically, and inline content broken greedily into
// line boxes.
package layout

import (
	"strings"

	"github.com/skonuru8/browser/pkg/css"
	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/text"
)

const (
	DefaultWidth   = 800
	DefaultHeight  = 600
	HStep          = 13
	VStep          = 18
	ScrollStep     = 100
	ScrollbarWidth = 12
	InputWidth     = 200
	CheckboxSize   = 16
	ButtonMinWidth = 80
	ButtonPadding  = 20

	// descentFactor spaces consecutive lines by the deepest descent.
	descentFactor = 1.25
)

type LayoutEngine struct {
	width    float64
	measurer text.Measurer
	hits     *HitTable
}

// NewLayoutEngine returns an engine for one layout pass. A nil Measurer
// uses text.NewFixed.
func NewLayoutEngine(opts Options) *LayoutEngine {
	le := &LayoutEngine{width: opts.Width, measurer: opts.Measurer}
	if le.width <= 0 {
		le.width = DefaultWidth
	}
	if le.measurer == nil {
		le.measurer = text.NewFixed()
	}
	return le
}

// Layout lays out root with a fresh engine.
func Layout(root *html.Node, opts Options) *Frame {
	return NewLayoutEngine(opts).Layout(root)
}

// Layout builds the box tree for root and the hit-test table for it. The
// nodes are expected to carry computed styles; a node without one is laid
// out with defaults.
func (le *LayoutEngine) Layout(root *html.Node) *Frame {
	le.hits = NewHitTable()
	doc := &Box{
		Kind:  DocumentBox,
		Node:  root,
		X:     HStep,
		Y:     VStep,
		Width: le.width - 2*HStep - ScrollbarWidth,
	}
	if root != nil {
		child := le.newBox(root, doc, nil)
		doc.Children = []*Box{child}
		le.layoutBox(child)
		doc.Height = child.Height
	}
	return &Frame{Document: doc, Hits: le.hits}
}

func (le *LayoutEngine) newBox(node *html.Node, parent, previous *Box) *Box {
	kind := BlockBox
	switch {
	case isWidget(node):
		kind = WidgetBox
	case layoutMode(node) == "inline":
		kind = InlineBox
	}
	return &Box{Kind: kind, Node: node, Parent: parent, Previous: previous}
}

func (le *LayoutEngine) layoutBox(b *Box) {
	b.X = b.Parent.X
	b.Width = b.Parent.Width
	if b.Previous != nil {
		b.Y = b.Previous.Y + b.Previous.Height
	} else {
		b.Y = b.Parent.Y
	}

	switch b.Kind {
	case BlockBox:
		var prev *Box
		for _, c := range b.Node.Children {
			if !displayed(c) {
				continue
			}
			child := le.newBox(c, b, prev)
			b.Children = append(b.Children, child)
			prev = child
		}
		height := 0.0
		for _, child := range b.Children {
			le.layoutBox(child)
			height += child.Height
		}
		if len(b.Children) == 0 {
			height = VStep
		}
		b.Height = height
	case InlineBox, WidgetBox:
		items := le.collectInlineItems(b.Node)
		b.LineBoxes = le.BreakLines(items, b.X, b.Y, b.Width)
		le.registerHits(b.LineBoxes)
		b.Height = le.inlineHeight(b)
	}
}

// inlineHeight measures from the top of the last item placed, plus the
// default line spacing.
func (le *LayoutEngine) inlineHeight(b *Box) float64 {
	last := b.Y
	for i := len(b.LineBoxes) - 1; i >= 0; i-- {
		if items := b.LineBoxes[i].Items; len(items) > 0 {
			last = items[len(items)-1].Y
			break
		}
	}
	return max(last-b.Y+le.measurer.Metrics(text.DefaultKey).Linespace, VStep)
}

// layoutMode decides whether node stacks block children or flows inline
// content.
func layoutMode(node *html.Node) string {
	if node.Type == html.TextNode {
		return "inline"
	}
	for _, c := range node.Children {
		if c.Type == html.ElementNode && display(c) == "block" {
			return "block"
		}
	}
	if len(node.Children) > 0 || isWidget(node) {
		return "inline"
	}
	return "block"
}

func display(n *html.Node) string {
	if d := n.Style["display"]; d != "" {
		return d
	}
	if n.Type == html.ElementNode && css.IsBlockElement(n.TagName) {
		return "block"
	}
	return "inline"
}

// displayed reports whether n produces any box or inline content.
func displayed(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return true
	}
	if display(n) == "none" {
		return false
	}
	return !(n.TagName == "input" && inputType(n) == "hidden")
}

func isWidget(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.TagName == "input" || n.TagName == "button")
}

func inputType(n *html.Node) string {
	t, ok := n.GetAttribute("type")
	if !ok || t == "" {
		return "text"
	}
	return strings.ToLower(t)
}

func styleValue(n *html.Node, prop, fallback string) string {
	if v := n.Style[prop]; v != "" {
		return v
	}
	return fallback
}
