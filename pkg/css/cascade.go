package css

import (
	"sort"
	"strconv"
	"strings"

	"github.com/skonuru8/browser/pkg/html"
)

const defaultFontSize = 16.0

// inheritedProperties flow from parent to child, with root defaults.
var inheritedProperties = map[string]string{
	"font-size":   "16px",
	"font-style":  "normal",
	"font-weight": "normal",
	"color":       "black",
}

var blockElements = map[string]bool{
	"html": true, "body": true, "article": true, "section": true, "nav": true,
	"aside": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hgroup": true, "header": true, "footer": true, "address": true,
	"p": true, "hr": true, "pre": true, "blockquote": true, "ol": true,
	"ul": true, "menu": true, "li": true, "dl": true, "dt": true, "dd": true,
	"figure": true, "figcaption": true, "main": true, "div": true,
	"table": true, "form": true, "fieldset": true, "legend": true,
	"details": true, "summary": true,
}

// IsBlockElement reports whether tag displays as a block by default.
func IsBlockElement(tag string) bool {
	return blockElements[tag]
}

const userAgentCSS = `
body { background-color: white; color: black; }
pre { background-color: gray; }
body a { color: blue; }
input { font-size: 16px; font-weight: normal; font-style: normal; background-color: lightblue; color: black; }
button { font-size: 16px; font-weight: normal; font-style: normal; background-color: orange; color: black; }
script { display: none; }
style { display: none; }
head { display: none; }
i { font-style: italic; }
b { font-weight: bold; }
small { font-size: 90%; }
big { font-size: 110%; }
h1 { font-size: 200%; font-weight: bold; }
h2 { font-size: 150%; font-weight: bold; }
`

var defaultStyleSheet = Parse(userAgentCSS)

// DefaultStyleSheet returns a copy of the user-agent rules.
func DefaultStyleSheet() []Rule {
	return append([]Rule(nil), defaultStyleSheet...)
}

// Cascade concatenates sheets, renumbers Order globally so later sheets
// win ties, and sorts by (specificity, order) ascending.
func Cascade(sheets ...[]Rule) []Rule {
	var out []Rule
	for _, sheet := range sheets {
		for _, r := range sheet {
			r.Order = len(out)
			out = append(out, r)
		}
	}
	SortRules(out)
	return out
}

// SortRules sorts rules into application order.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Selector.Specificity != rules[j].Selector.Specificity {
			return rules[i].Selector.Specificity < rules[j].Selector.Specificity
		}
		return rules[i].Order < rules[j].Order
	})
}

// ComputeStyle computes node's style from its parent's already computed
// style and rules, which must be in application order. Text nodes only
// inherit.
func ComputeStyle(node *html.Node, rules []Rule) map[string]string {
	var parent map[string]string
	if node.Parent != nil {
		parent = node.Parent.Style
	}
	style := make(map[string]string, len(inheritedProperties)+4)
	for prop, def := range inheritedProperties {
		if v, ok := parent[prop]; ok {
			style[prop] = v
		} else {
			style[prop] = def
		}
	}
	if node.Type != html.ElementNode {
		return style
	}

	for _, rule := range FindMatchingRules(node, rules) {
		for prop, value := range rule.Declarations {
			style[prop] = value
		}
	}
	// Inline styles override every rule
	if attr, ok := node.GetAttribute("style"); ok {
		for prop, value := range ParseInline(attr) {
			style[prop] = value
		}
	}

	parentPx := defaultFontSize
	if parent != nil {
		parentPx = FontSizePx(parent)
	}
	style["font-size"] = FormatPx(resolveFontSize(style["font-size"], parentPx))

	if _, ok := style["display"]; !ok {
		if IsBlockElement(node.TagName) {
			style["display"] = "block"
		} else {
			style["display"] = "inline"
		}
	}
	return style
}

// resolveFontSize turns percentages and em against the parent size.
// Unparsable values fall back to the parent size.
func resolveFontSize(v string, parentPx float64) float64 {
	v = strings.TrimSpace(v)
	var num string
	var scale float64
	switch {
	case strings.HasSuffix(v, "%"):
		num, scale = v[:len(v)-1], parentPx/100
	case strings.HasSuffix(v, "em"):
		num, scale = v[:len(v)-2], parentPx
	case strings.HasSuffix(v, "px"):
		num, scale = v[:len(v)-2], 1
	default:
		num, scale = v, 1
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || f < 0 {
		return parentPx
	}
	return f * scale
}

// Apply styles the whole tree rooted at root. rules must be in
// application order (see Cascade).
func Apply(root *html.Node, rules []Rule) {
	root.Style = ComputeStyle(root, rules)
	for _, child := range root.Children {
		Apply(child, rules)
	}
}
