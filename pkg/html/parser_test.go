package html

import (
	"reflect"
	"strings"
	"testing"
)

// shape renders a tree as tag(children...) with text as "quoted".
func shape(n *Node) string {
	if n.Type == TextNode {
		return `"` + n.Text + `"`
	}
	if len(n.Children) == 0 {
		return n.TagName
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = shape(c)
	}
	return n.TagName + "(" + strings.Join(parts, " ") + ")"
}

func TestParser_FullDocument(t *testing.T) {
	root := Parse("<html><body><p>Hello</p></body></html>")
	if got, want := shape(root), `html(body(p("Hello")))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_ImplicitClosing(t *testing.T) {
	root := Parse("<p>Hi")
	if got, want := shape(root), `html(body(p("Hi")))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_ParentPointers(t *testing.T) {
	root := Parse("<div><p>Hello</p></div>")
	for _, n := range TreeToList(root) {
		for _, c := range n.Children {
			if c.Parent != n {
				t.Errorf("child %s of %s has wrong parent", shape(c), n.TagName)
			}
		}
	}
	if root.Parent != nil {
		t.Error("root should have no parent")
	}
}

func TestParser_ImplicitHead(t *testing.T) {
	root := Parse("<title>Page</title><p>text</p>")
	if got, want := shape(root), `html(head(title("Page")) body(p("text")))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_HeadClosedByBodyContent(t *testing.T) {
	root := Parse(`<meta charset="utf-8"><link rel="stylesheet" href="a.css">Hello`)
	if got, want := shape(root), `html(head(meta link) body("Hello"))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_SelfClosing(t *testing.T) {
	root := Parse("<p>a<br>b<img src=x.png>c</p>")
	if got, want := shape(root), `html(body(p("a" br "b" img "c")))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	root = Parse("<p>a<br/>b</p>")
	if got, want := shape(root), `html(body(p("a" br "b")))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_WhitespaceTextDropped(t *testing.T) {
	root := Parse("<div>\n  <p>x</p>\n  </div>")
	if got, want := shape(root), `html(body(div(p("x"))))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_CommentsAndDoctype(t *testing.T) {
	root := Parse("<!doctype html><!-- a <b> comment --><p>x</p>")
	if got, want := shape(root), `html(body(p("x")))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_ScriptAndStyleText(t *testing.T) {
	root := Parse("<style>p { color: red; }</style><script>if (a < b) { go(); }</script><p>x</p>")
	if got, want := shape(root), `html(head(style script) body(p("x")))`; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	head := root.Children[0]
	if head.Children[0].RawText != "p { color: red; }" {
		t.Errorf("unexpected style text %q", head.Children[0].RawText)
	}
	if head.Children[1].RawText != "if (a < b) { go(); }" {
		t.Errorf("unexpected script text %q", head.Children[1].RawText)
	}
}

func TestParser_TrailingPartialTagDiscarded(t *testing.T) {
	root := Parse("<p>ok</p><div class=")
	if got, want := shape(root), `html(body(p("ok")))`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParser_StrayCloseTags(t *testing.T) {
	root := Parse("</div></p>text")
	if root.TagName != "html" {
		t.Fatalf("expected html root, got %s", root.TagName)
	}
	if !strings.Contains(shape(root), `"text"`) {
		t.Errorf("text lost in %s", shape(root))
	}
}

func TestParser_EntityDecoding(t *testing.T) {
	root := Parse("<p>a &lt;b&gt; &amp; c</p>")
	p := root.Children[0].Children[0]
	if p.Children[0].Text != "a <b> & c" {
		t.Errorf("expected decoded text, got %q", p.Children[0].Text)
	}
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		in    string
		tag   string
		attrs map[string]string
	}{
		{"div", "div", map[string]string{}},
		{`A HREF="x.html"`, "a", map[string]string{"href": "x.html"}},
		{`input type=checkbox checked`, "input", map[string]string{"type": "checkbox", "checked": ""}},
		{`p style="color: red; font-size: 20px" class='x y'`, "p",
			map[string]string{"style": "color: red; font-size: 20px", "class": "x y"}},
		{`img src="a.png" /`, "img", map[string]string{"src": "a.png"}},
		{`a title="&quot;hi&quot;"`, "a", map[string]string{"title": `"hi"`}},
		{`input value = "spaced"`, "input", map[string]string{"value": "spaced"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tag, attrs := parseAttributes(tt.in)
			if tag != tt.tag {
				t.Errorf("expected tag %q, got %q", tt.tag, tag)
			}
			if !reflect.DeepEqual(attrs, tt.attrs) {
				t.Errorf("expected %v, got %v", tt.attrs, attrs)
			}
		})
	}
}

func TestImplicitTag(t *testing.T) {
	tests := []struct {
		open []string
		tag  string
		want string
	}{
		{nil, "p", "html"},
		{nil, "html", ""},
		{nil, "", "html"},
		{[]string{"html"}, "p", "body"},
		{[]string{"html"}, "title", "head"},
		{[]string{"html"}, "", "body"},
		{[]string{"html"}, "head", ""},
		{[]string{"html"}, "/html", ""},
		{[]string{"html", "head"}, "meta", ""},
		{[]string{"html", "head"}, "p", "/head"},
		{[]string{"html", "head"}, "", "/head"},
		{[]string{"html", "head"}, "/head", ""},
		{[]string{"html", "body"}, "title", ""},
	}
	for _, tt := range tests {
		if got := implicitTag(tt.open, tt.tag); got != tt.want {
			t.Errorf("implicitTag(%v, %q): expected %q, got %q", tt.open, tt.tag, tt.want, got)
		}
	}
}

func TestParseFragment(t *testing.T) {
	nodes := ParseFragment("<b>bold</b> and <i>it</i>")
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	if nodes[0].TagName != "b" || nodes[1].Text != " and " || nodes[2].TagName != "i" {
		t.Errorf("unexpected fragment %s %q %s", nodes[0].TagName, nodes[1].Text, nodes[2].TagName)
	}
	for _, n := range nodes {
		if n.Parent != nil {
			t.Error("fragment nodes should be detached")
		}
	}
}

func TestTitle(t *testing.T) {
	root := Parse("<title>  My   Page </title><p>body</p>")
	if got := Title(root); got != "My Page" {
		t.Errorf("expected 'My Page', got %q", got)
	}
	if got := Title(Parse("<p>none</p>")); got != "" {
		t.Errorf("expected empty title, got %q", got)
	}
}
