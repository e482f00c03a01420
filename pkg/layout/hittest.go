package layout

import "github.com/skonuru8/browser/pkg/html"

// HitEntry maps a clickable rectangle to the element it activates.
type HitEntry struct {
	Rect Rect
	Node *html.Node
}

// HitTable is rebuilt by every layout pass.
type HitTable struct {
	entries []HitEntry
}

func NewHitTable() *HitTable {
	return &HitTable{}
}

func (h *HitTable) Register(r Rect, node *html.Node) {
	h.entries = append(h.entries, HitEntry{Rect: r, Node: node})
}

// Hit returns the element of the most recently registered rectangle
// containing (x, y), or nil.
func (h *HitTable) Hit(x, y float64) *html.Node {
	if h == nil {
		return nil
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Rect.Contains(x, y) {
			return h.entries[i].Node
		}
	}
	return nil
}

func (h *HitTable) Entries() []HitEntry {
	if h == nil {
		return nil
	}
	return h.entries
}
