package css

import (
	"strings"

	"github.com/skonuru8/browser/pkg/html"
)

// Matches reports whether node matches s. Descendant selectors walk the
// parent chain looking for an ancestor match.
func (s Selector) Matches(node *html.Node) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	switch s.Type {
	case TagSelector:
		return node.TagName == s.Value
	case ClassSelector:
		return hasClass(node, s.Value)
	case IDSelector:
		id, ok := node.GetAttribute("id")
		return ok && id == s.Value
	case DescendantSelector:
		if !s.Subject.Matches(node) {
			return false
		}
		for anc := node.Parent; anc != nil; anc = anc.Parent {
			if s.Ancestor.Matches(anc) {
				return true
			}
		}
	}
	return false
}

func hasClass(node *html.Node, class string) bool {
	attr, ok := node.GetAttribute("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}

// FindMatchingRules returns the rules whose selector matches node, in the
// order given.
func FindMatchingRules(node *html.Node, rules []Rule) []Rule {
	matches := make([]Rule, 0)
	for _, rule := range rules {
		if rule.Selector.Matches(node) {
			matches = append(matches, rule)
		}
	}
	return matches
}

// QuerySelectorAll returns every element under root matching selector in
// document order.
func QuerySelectorAll(root *html.Node, selector string) ([]*html.Node, bool) {
	sel, ok := ParseSelector(selector)
	if !ok {
		return nil, false
	}
	var out []*html.Node
	for _, n := range html.TreeToList(root) {
		if sel.Matches(n) {
			out = append(out, n)
		}
	}
	return out, true
}
