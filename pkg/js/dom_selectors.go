package js

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/skonuru8/browser/pkg/css"
	"github.com/skonuru8/browser/pkg/html"
)

// parseSelectorGroup parses a comma-separated selector list. ok is false
// when any member fails to parse.
func parseSelectorGroup(text string) ([]css.Selector, bool) {
	var group []css.Selector
	for _, part := range strings.Split(text, ",") {
		sel, ok := css.ParseSelector(part)
		if !ok {
			return nil, false
		}
		group = append(group, sel)
	}
	return group, true
}

func matchesAny(n *html.Node, group []css.Selector) bool {
	for _, sel := range group {
		if sel.Matches(n) {
			return true
		}
	}
	return false
}

// selectorArg parses the first argument or throws a SyntaxError.
func selectorArg(ctx *domContext, call goja.FunctionCall, method string) []css.Selector {
	text, ok := argString(call, 0)
	if !ok {
		panic(ctx.vm.NewTypeError("Failed to execute '" + method + "': 1 argument required"))
	}
	group, ok := parseSelectorGroup(text)
	if !ok {
		panic(ctx.vm.NewGoError(&SyntaxError{Method: method, Selector: text}))
	}
	return group
}

// SyntaxError reports a selector the engine cannot parse.
type SyntaxError struct {
	Method   string
	Selector string
}

func (e *SyntaxError) Error() string {
	return "Failed to execute '" + e.Method + "': '" + e.Selector + "' is not a valid selector"
}

// descendants lists the elements under root in document order. Elements
// search their descendants only; the document also searches its root.
func descendants(root *html.Node, includeRoot bool) []*html.Node {
	var out []*html.Node
	for _, n := range html.TreeToList(root) {
		if (includeRoot || n != root) && n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out
}

// querySelectorFn returns a JS function implementing querySelector.
func querySelectorFn(ctx *domContext, root *html.Node, includeRoot bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		group := selectorArg(ctx, call, "querySelector")
		for _, n := range descendants(root, includeRoot) {
			if matchesAny(n, group) {
				return ctx.elementProxy(n)
			}
		}
		return goja.Null()
	}
}

// querySelectorAllFn returns a JS function implementing querySelectorAll.
func querySelectorAllFn(ctx *domContext, root *html.Node, includeRoot bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		group := selectorArg(ctx, call, "querySelectorAll")
		var results []*html.Node
		for _, n := range descendants(root, includeRoot) {
			if matchesAny(n, group) {
				results = append(results, n)
			}
		}
		return ctx.elementArray(results)
	}
}

// matchesFn returns a JS function implementing element.matches(selector).
func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		group := selectorArg(ctx, call, "matches")
		return ctx.vm.ToValue(matchesAny(node, group))
	}
}

// closestFn returns a JS function implementing element.closest(selector).
func closestFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		group := selectorArg(ctx, call, "closest")
		for current := node; current != nil; current = current.Parent {
			if matchesAny(current, group) {
				return ctx.elementProxy(current)
			}
		}
		return goja.Null()
	}
}
