package html

import (
	"sort"
	"strings"
)

// Node is either an element or a text leaf. Parent is a non-owning
// back-reference used only for upward walks (selector matching, form and
// link lookup); ownership flows through Children.
type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node

	// Style holds the computed style, rewritten on every style pass.
	Style map[string]string
	// IsFocused marks the text input that receives key presses.
	IsFocused bool
	// RawText keeps the unparsed body of <script> and <style> elements,
	// which never produce text children.
	RawText string
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// NewElement returns a detached element with an initialized attribute map.
func NewElement(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{
		Type:       ElementNode,
		TagName:    tag,
		Attributes: attrs,
		Children:   make([]*Node, 0),
		Style:      make(map[string]string),
	}
}

// NewText returns a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Text: text, Style: make(map[string]string)}
}

func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Type == ElementNode && n.TagName == tag
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

// SetAttribute sets an attribute, allocating the map on first use.
func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(NewText(text))
}

// RemoveChild removes the given child from this node's children list,
// clears its parent pointer, and returns the removed child.
// Returns nil if child is not found.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// InsertBefore inserts newChild before refChild in this node's children.
// If refChild is nil or not a child, newChild is appended.
// If newChild already has a parent, it is removed from that parent first.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}
	for i, c := range n.Children {
		if refChild != nil && c == refChild {
			n.Children = append(n.Children, nil)
			copy(n.Children[i+1:], n.Children[i:])
			n.Children[i] = newChild
			newChild.Parent = n
			return newChild
		}
	}
	n.AddChild(newChild)
	return newChild
}

// ReplaceChildren detaches every current child and adopts nodes.
func (n *Node) ReplaceChildren(nodes []*Node) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = make([]*Node, 0, len(nodes))
	for _, c := range nodes {
		n.AddChild(c)
	}
}

// Contains returns true if other is a descendant of n (or n itself).
func (n *Node) Contains(other *Node) bool {
	for ; other != nil; other = other.Parent {
		if other == n {
			return true
		}
	}
	return false
}

// Serialize returns the innerHTML of this node: the serialized HTML of
// all child nodes, but not the node's own tags.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of this node: the node's own tags
// plus all descendants.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	if n.Type == TextNode {
		sb.WriteString(escapeHTML(n.Text))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// Sort attributes for deterministic output
	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			if strings.HasPrefix(k, "_") {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			if v := n.Attributes[k]; v != "" {
				sb.WriteString(`="`)
				sb.WriteString(escapeAttr(v))
				sb.WriteByte('"')
			}
		}
	}

	sb.WriteByte('>')
	if IsSelfClosing(n.TagName) {
		return
	}
	sb.WriteString(n.RawText)
	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// TreeToList flattens the tree rooted at n in preorder.
func TreeToList(n *Node) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// FindAncestor returns the nearest element named tag at or above n.
func FindAncestor(n *Node, tag string) *Node {
	for ; n != nil; n = n.Parent {
		if n.IsElement(tag) {
			return n
		}
	}
	return nil
}

// Title returns the whitespace-joined text of the first <title> element.
func Title(root *Node) string {
	for _, n := range TreeToList(root) {
		if !n.IsElement("title") {
			continue
		}
		var words []string
		for _, t := range TreeToList(n) {
			if t.Type == TextNode {
				words = append(words, strings.Fields(t.Text)...)
			}
		}
		if len(words) > 0 {
			return strings.Join(words, " ")
		}
	}
	return ""
}

// TextContent concatenates every text descendant of n.
func TextContent(n *Node) string {
	var sb strings.Builder
	for _, t := range TreeToList(n) {
		if t.Type == TextNode {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}
