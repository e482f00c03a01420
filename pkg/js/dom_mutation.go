package js

import (
	"github.com/dop251/goja"

	"github.com/skonuru8/browser/pkg/html"
)

// appendChildFn returns a JS function that implements node.appendChild(child).
func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, 0, "appendChild")
		if child.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': The new child element contains the parent"))
		}
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		e.node.AddChild(child)
		e.ctx.changed("")
		return e.ctx.elementProxy(child)
	}
}

// removeChildFn returns a JS function that implements node.removeChild(child).
func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, 0, "removeChild")
		removed := e.node.RemoveChild(child)
		if removed == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		e.ctx.changed("")
		return e.ctx.elementProxy(removed)
	}
}

// insertBeforeFn returns a JS function that implements node.insertBefore(newNode, refNode).
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		newChild := e.nodeArg(call, 0, "insertBefore")
		if newChild.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': The new child element contains the parent"))
		}
		var refChild *html.Node
		if len(call.Arguments) > 1 {
			refChild = e.ctx.unwrapNode(call.Arguments[1])
		}
		e.node.InsertBefore(newChild, refChild)
		e.ctx.changed("")
		return e.ctx.elementProxy(newChild)
	}
}

// nodeArg unwraps argument i or throws a TypeError naming method.
func (e *elementAccessor) nodeArg(call goja.FunctionCall, i int, method string) *html.Node {
	if len(call.Arguments) <= i {
		panic(e.ctx.vm.NewTypeError("Failed to execute '" + method + "': 1 argument required"))
	}
	n := e.ctx.unwrapNode(call.Arguments[i])
	if n == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute '" + method + "': parameter is not a Node"))
	}
	return n
}

// setInnerHTML parses the markup and replaces the node's children.
func (e *elementAccessor) setInnerHTML(markup string) {
	if e.node.Type != html.ElementNode {
		return
	}
	e.node.ReplaceChildren(html.ParseFragment(markup))
	e.ctx.changed("")
}
