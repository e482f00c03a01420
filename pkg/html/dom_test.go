package html

import "testing"

func makeTree() *Node {
	// <div id="parent"><span>hello</span><p>world</p></div>
	parent := NewElement("div", map[string]string{"id": "parent"})
	span := NewElement("span", nil)
	span.AppendText("hello")
	parent.AddChild(span)

	p := NewElement("p", nil)
	p.AppendText("world")
	parent.AddChild(p)

	return parent
}

func TestRemoveChild(t *testing.T) {
	parent := makeTree()
	span := parent.Children[0]
	removed := parent.RemoveChild(span)
	if removed != span {
		t.Fatal("RemoveChild should return the removed child")
	}
	if span.Parent != nil {
		t.Error("removed child should have nil parent")
	}
	if len(parent.Children) != 1 {
		t.Errorf("expected 1 child, got %d", len(parent.Children))
	}
	if parent.Children[0].TagName != "p" {
		t.Error("remaining child should be <p>")
	}
}

func TestRemoveChildNotFound(t *testing.T) {
	parent := makeTree()
	if parent.RemoveChild(NewElement("em", nil)) != nil {
		t.Error("RemoveChild of non-child should return nil")
	}
}

func TestInsertBefore(t *testing.T) {
	parent := makeTree()
	em := NewElement("em", nil)
	parent.InsertBefore(em, parent.Children[1])
	if len(parent.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(parent.Children))
	}
	if parent.Children[1] != em {
		t.Error("em should be at index 1")
	}
	if em.Parent != parent {
		t.Error("em.Parent should be parent")
	}
}

func TestInsertBeforeNilRef(t *testing.T) {
	parent := makeTree()
	em := NewElement("em", nil)
	parent.InsertBefore(em, nil)
	if parent.Children[len(parent.Children)-1] != em {
		t.Error("InsertBefore(nil) should append")
	}
}

func TestInsertBeforeReparent(t *testing.T) {
	parent := makeTree()
	other := NewElement("section", nil)
	span := parent.Children[0]
	other.InsertBefore(span, nil)
	if len(parent.Children) != 1 {
		t.Fatalf("expected span removed from old parent, got %d children", len(parent.Children))
	}
	if span.Parent != other {
		t.Error("span should be reparented")
	}
}

func TestReplaceChildren(t *testing.T) {
	parent := makeTree()
	old := parent.Children[0]
	b := NewElement("b", nil)
	parent.ReplaceChildren([]*Node{b})
	if len(parent.Children) != 1 || parent.Children[0] != b {
		t.Fatal("expected only the new child")
	}
	if old.Parent != nil {
		t.Error("old child should be detached")
	}
	if b.Parent != parent {
		t.Error("new child should point at parent")
	}
}

func TestContains(t *testing.T) {
	parent := makeTree()
	span := parent.Children[0]
	textNode := span.Children[0]

	if !parent.Contains(parent) {
		t.Error("node should contain itself")
	}
	if !parent.Contains(textNode) {
		t.Error("parent should contain grandchild")
	}
	if parent.Contains(NewElement("em", nil)) {
		t.Error("parent should not contain unrelated node")
	}
}

func TestFindAncestor(t *testing.T) {
	root := Parse(`<form action="/go"><div><input name=q></div></form>`)
	var input *Node
	for _, n := range TreeToList(root) {
		if n.IsElement("input") {
			input = n
		}
	}
	if input == nil {
		t.Fatal("input not found")
	}
	form := FindAncestor(input, "form")
	if form == nil || form.Attributes["action"] != "/go" {
		t.Errorf("expected enclosing form, got %v", form)
	}
	if FindAncestor(input, "table") != nil {
		t.Error("expected no table ancestor")
	}
}

func TestTreeToListPreorder(t *testing.T) {
	var tags []string
	for _, n := range TreeToList(makeTree()) {
		if n.Type == ElementNode {
			tags = append(tags, n.TagName)
		} else {
			tags = append(tags, n.Text)
		}
	}
	want := []string{"div", "span", "hello", "p", "world"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], tags[i])
		}
	}
}

func TestSerialize(t *testing.T) {
	got := makeTree().Serialize()
	want := "<span>hello</span><p>world</p>"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeOuter(t *testing.T) {
	got := makeTree().SerializeOuter()
	want := `<div id="parent"><span>hello</span><p>world</p></div>`
	if got != want {
		t.Errorf("SerializeOuter() = %q, want %q", got, want)
	}
}

func TestSerializeVoidElement(t *testing.T) {
	n := NewElement("div", nil)
	n.AddChild(NewElement("br", nil))
	n.AddChild(NewElement("input", map[string]string{"checked": "", "_checked_state": "true"}))
	got := n.Serialize()
	want := "<br><input checked>"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeEscaping(t *testing.T) {
	n := NewElement("p", nil)
	n.AppendText(`<b>"hello" & 'world'</b>`)
	got := n.Serialize()
	want := `&lt;b&gt;"hello" &amp; 'world'&lt;/b&gt;`
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeAttributes(t *testing.T) {
	n := NewElement("a", map[string]string{"href": "/test", "class": "link"})
	n.AppendText("click")
	got := n.SerializeOuter()
	// Attributes sorted alphabetically
	want := `<a class="link" href="/test">click</a>`
	if got != want {
		t.Errorf("SerializeOuter() = %q, want %q", got, want)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	src := `<p class="x">a <b>b</b></p>`
	nodes := ParseFragment(src)
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if got := nodes[0].SerializeOuter(); got != src {
		t.Errorf("expected %q, got %q", src, got)
	}
}
