package css

import (
	"testing"

	"github.com/skonuru8/browser/pkg/html"
)

func TestSelectorMatches(t *testing.T) {
	root := html.Parse(`<div id="main" class="box wide"><p class="note">x <a href="#">y</a></p></div>`)
	a := findTag(root, "a")
	p := findTag(root, "p")
	div := findTag(root, "div")

	tests := []struct {
		selector string
		node     *html.Node
		want     bool
	}{
		{"p", p, true},
		{"div", p, false},
		{".note", p, true},
		{".wide", div, true},
		{".box", p, false},
		{"#main", div, true},
		{"#main", p, false},
		{"div a", a, true},
		{"#main .note a", a, true},
		{"body div p", p, true},
		{"p div", div, false},
		{"span a", a, false},
		{"a", a.Children[0], false},
	}
	for _, tt := range tests {
		sel, ok := ParseSelector(tt.selector)
		if !ok {
			t.Fatalf("failed to parse %q", tt.selector)
		}
		if got := sel.Matches(tt.node); got != tt.want {
			t.Errorf("%q matches %s: expected %v, got %v", tt.selector, tt.node.TagName, tt.want, got)
		}
	}
}

func TestQuerySelectorAll(t *testing.T) {
	root := html.Parse(`<ul><li class="x">1</li><li>2</li><li class="x">3</li></ul>`)
	nodes, ok := QuerySelectorAll(root, "ul .x")
	if !ok {
		t.Fatal("expected selector to parse")
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(nodes))
	}
	if html.TextContent(nodes[1]) != "3" {
		t.Errorf("expected document order, got %q", html.TextContent(nodes[1]))
	}
	if _, ok := QuerySelectorAll(root, "li:first-child"); ok {
		t.Error("expected unsupported selector to fail")
	}
}
