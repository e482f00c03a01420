package css

import (
	"testing"

	"github.com/skonuru8/browser/pkg/html"
)

func findTag(root *html.Node, tag string) *html.Node {
	for _, n := range html.TreeToList(root) {
		if n.IsElement(tag) {
			return n
		}
	}
	return nil
}

func TestComputeStyle_ClassBeatsTagRegardlessOfOrder(t *testing.T) {
	classRule, _ := ParseSelector(".x")
	tagRule, _ := ParseSelector("p")
	rules := []Rule{
		{Selector: classRule, Declarations: map[string]string{"color": "blue"}, Order: 0},
		{Selector: tagRule, Declarations: map[string]string{"color": "red"}, Order: 1},
	}
	SortRules(rules)

	root := html.Parse(`<p class="x">hi</p>`)
	Apply(root, rules)
	if got := findTag(root, "p").Style["color"]; got != "blue" {
		t.Errorf("expected color='blue' (class overrides tag), got '%s'", got)
	}
}

func TestComputeStyle_IDHasHighestSpecificity(t *testing.T) {
	rules := Cascade(Parse(`
		#header { color: green; }
		div { color: red; }
		.highlight { color: blue; }
	`))
	root := html.Parse(`<div class="highlight" id="header">x</div>`)
	Apply(root, rules)
	if got := findTag(root, "div").Style["color"]; got != "green" {
		t.Errorf("expected color='green', got '%s'", got)
	}
}

func TestComputeStyle_LaterRuleWinsTie(t *testing.T) {
	rules := Cascade(Parse(`p { color: red; } p { color: blue; }`))
	root := html.Parse(`<p>x</p>`)
	Apply(root, rules)
	if got := findTag(root, "p").Style["color"]; got != "blue" {
		t.Errorf("expected later rule to win, got '%s'", got)
	}
}

func TestComputeStyle_AuthorSheetBeatsDefaultOnTie(t *testing.T) {
	rules := Cascade(DefaultStyleSheet(), Parse(`body { background-color: red; }`))
	root := html.Parse(`<p>x</p>`)
	Apply(root, rules)
	if got := findTag(root, "body").Style["background-color"]; got != "red" {
		t.Errorf("expected author background, got '%s'", got)
	}
}

func TestComputeStyle_InlineStyleOverridesAll(t *testing.T) {
	rules := Cascade(Parse(`#header { color: green; }`))
	root := html.Parse(`<div id="header" style="color: purple">x</div>`)
	Apply(root, rules)
	if got := findTag(root, "div").Style["color"]; got != "purple" {
		t.Errorf("expected inline color, got '%s'", got)
	}
}

func TestComputeStyle_InheritedFontSize(t *testing.T) {
	rules := Cascade(Parse(`div { font-size: 30px; }`))
	root := html.Parse(`<div><section><span>deep</span></section></div>`)
	Apply(root, rules)
	span := findTag(root, "span")
	if got := span.Style["font-size"]; got != "30px" {
		t.Errorf("expected inherited 30px, got '%s'", got)
	}
	if got := span.Children[0].Style["font-size"]; got != "30px" {
		t.Errorf("expected text node to inherit 30px, got '%s'", got)
	}
	if got := findTag(root, "html").Style["font-size"]; got != "16px" {
		t.Errorf("expected root default 16px, got '%s'", got)
	}
}

func TestComputeStyle_FontSizeResolution(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"50%", "10px"},
		{"1.5em", "30px"},
		{"12px", "12px"},
		{"14", "14px"},
		{"huge", "20px"},
		{"-3px", "20px"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			rules := Cascade(Parse(`div { font-size: 20px; } span { font-size: ` + tt.value + `; }`))
			root := html.Parse(`<div><span>x</span></div>`)
			Apply(root, rules)
			if got := findTag(root, "span").Style["font-size"]; got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestComputeStyle_DefaultSheet(t *testing.T) {
	rules := Cascade(DefaultStyleSheet())
	root := html.Parse(`<p>a <a href="/x">link</a> <small>s</small> <b>bold</b></p><script>x()</script>`)
	Apply(root, rules)

	if got := findTag(root, "a").Style["color"]; got != "blue" {
		t.Errorf("expected link color blue, got %s", got)
	}
	if got := findTag(root, "small").Style["font-size"]; got != "14.4px" {
		t.Errorf("expected small at 14.4px, got %s", got)
	}
	if got := findTag(root, "b").Style["font-weight"]; got != "bold" {
		t.Errorf("expected bold, got %s", got)
	}
	if got := findTag(root, "script").Style["display"]; got != "none" {
		t.Errorf("expected script hidden, got %s", got)
	}
	if got := findTag(root, "p").Style["display"]; got != "block" {
		t.Errorf("expected p block, got %s", got)
	}
	if got := findTag(root, "a").Style["display"]; got != "inline" {
		t.Errorf("expected a inline, got %s", got)
	}
}

func TestComputeStyle_ColorInherits(t *testing.T) {
	rules := Cascade(Parse(`div { color: red; }`))
	root := html.Parse(`<div><i>x</i></div><p>y</p>`)
	Apply(root, rules)
	if got := findTag(root, "i").Style["color"]; got != "red" {
		t.Errorf("expected inherited red, got %s", got)
	}
	if got := findTag(root, "p").Style["color"]; got != "black" {
		t.Errorf("expected default black, got %s", got)
	}
}
