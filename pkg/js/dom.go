package js

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/html"
)

// domContext holds shared state for DOM bindings within an engine. It
// maintains a node-to-proxy cache so the same JS object is returned for
// the same underlying *html.Node (needed for === identity checks).
type domContext struct {
	engine *Engine
	vm     *goja.Runtime
	root   *html.Node
	cache  map[*html.Node]*goja.Object
	nodes  map[*goja.Object]*html.Node
}

// registerDocument sets up the global `document` object on the runtime.
func registerDocument(e *Engine, root *html.Node) *domContext {
	ctx := &domContext{
		engine: e,
		vm:     e.vm,
		root:   root,
		cache:  make(map[*html.Node]*goja.Object),
		nodes:  make(map[*goja.Object]*html.Node),
	}
	e.vm.Set("document", e.vm.NewDynamicObject(&documentAccessor{ctx: ctx}))
	return ctx
}

// elementArray creates a JS array of element proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	vals := make([]interface{}, len(nodes))
	for i, n := range nodes {
		vals[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(vals...)
}

// elementProxy creates (or retrieves from cache) a JS DynamicObject
// wrapping an html.Node.
func (ctx *domContext) elementProxy(node *html.Node) *goja.Object {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	ctx.nodes[v] = node
	return v
}

// unwrapNode extracts the *html.Node behind a proxy, or nil.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	if n, ok := ctx.nodes[obj]; ok {
		return n
	}
	for o, n := range ctx.nodes {
		if o.SameAs(obj) {
			return n
		}
	}
	return nil
}

func (ctx *domContext) getElementById(id string) *html.Node {
	for _, n := range html.TreeToList(ctx.root) {
		if v, ok := n.GetAttribute("id"); ok && n.Type == html.ElementNode && v == id {
			return n
		}
	}
	return nil
}

func argString(call goja.FunctionCall, i int) (string, bool) {
	if len(call.Arguments) <= i || goja.IsUndefined(call.Arguments[i]) {
		return "", false
	}
	return call.Arguments[i].String(), true
}

// documentAccessor implements the global document object.
type documentAccessor struct {
	ctx *domContext
}

var documentKeys = []string{
	"cookie", "title", "documentElement", "body", "head",
	"getElementById", "createElement", "createTextNode",
	"querySelector", "querySelectorAll",
}

func (d *documentAccessor) Get(key string) goja.Value {
	ctx := d.ctx
	vm := ctx.vm
	switch key {
	case "cookie":
		if ctx.engine.opts.Cookies == nil {
			return vm.ToValue("")
		}
		return vm.ToValue(ctx.engine.opts.Cookies.ScriptCookie())
	case "title":
		return vm.ToValue(html.Title(ctx.root))
	case "documentElement":
		if ctx.root == nil {
			return goja.Null()
		}
		return ctx.elementProxy(ctx.root)
	case "body", "head":
		for _, n := range html.TreeToList(ctx.root) {
			if n.IsElement(key) {
				return ctx.elementProxy(n)
			}
		}
		return goja.Null()
	case "getElementById":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			id, _ := argString(call, 0)
			if n := ctx.getElementById(id); n != nil {
				return ctx.elementProxy(n)
			}
			return goja.Null()
		})
	case "createElement":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			tag, ok := argString(call, 0)
			if !ok {
				panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
			}
			return ctx.elementProxy(html.NewElement(strings.ToLower(tag), nil))
		})
	case "createTextNode":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			text, _ := argString(call, 0)
			return ctx.elementProxy(html.NewText(text))
		})
	case "querySelector":
		return vm.ToValue(querySelectorFn(ctx, ctx.root, true))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(ctx, ctx.root, true))
	}
	return goja.Undefined()
}

func (d *documentAccessor) Set(key string, val goja.Value) bool {
	if key != "cookie" {
		return false
	}
	cookies := d.ctx.engine.opts.Cookies
	if cookies == nil {
		return true
	}
	if err := cookies.SetScriptCookie(val.String()); err != nil {
		d.ctx.engine.logger.Warn("cookie write rejected", zap.Error(err))
	}
	return true
}

func (d *documentAccessor) Has(key string) bool {
	for _, k := range documentKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (d *documentAccessor) Delete(key string) bool { return false }
func (d *documentAccessor) Keys() []string         { return documentKeys }

// elementAccessor implements goja.DynamicObject to intercept property access
// on DOM element proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"tagName", "nodeName", "nodeType", "nodeValue", "id", "className",
	"textContent", "innerHTML", "outerHTML",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "childNodes", "parentElement", "parentNode",
	"appendChild", "removeChild", "insertBefore", "remove",
	"querySelector", "querySelectorAll", "matches", "closest",
	"addEventListener", "removeEventListener", "dispatchEvent",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	n := e.node

	switch key {
	case "nodeType":
		if n.Type == html.TextNode {
			return vm.ToValue(3) // Node.TEXT_NODE
		}
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "nodeName":
		if n.Type == html.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "nodeValue":
		if n.Type == html.TextNode {
			return vm.ToValue(n.Text)
		}
		return goja.Null()
	case "tagName":
		if n.Type == html.TextNode {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "id":
		id, _ := n.GetAttribute("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := n.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(html.TextContent(n))
	case "innerHTML":
		return vm.ToValue(n.Serialize())
	case "outerHTML":
		return vm.ToValue(n.SerializeOuter())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			name, _ := argString(call, 0)
			val, ok := n.GetAttribute(strings.ToLower(name))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			name, ok := argString(call, 0)
			if !ok || len(call.Arguments) < 2 {
				return goja.Undefined()
			}
			e.setAttribute(strings.ToLower(name), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			name, _ := argString(call, 0)
			_, ok := n.GetAttribute(strings.ToLower(name))
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			name, _ := argString(call, 0)
			name = strings.ToLower(name)
			if _, ok := n.GetAttribute(name); ok {
				delete(n.Attributes, name)
				e.ctx.changed(name)
			}
			return goja.Undefined()
		})
	case "children":
		var elChildren []*html.Node
		for _, child := range n.Children {
			if child.Type == html.ElementNode {
				elChildren = append(elChildren, child)
			}
		}
		return e.ctx.elementArray(elChildren)
	case "childNodes":
		return e.ctx.elementArray(n.Children)
	case "parentElement", "parentNode":
		if n.Parent != nil {
			return e.ctx.elementProxy(n.Parent)
		}
		return goja.Null()

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
				e.ctx.changed("")
			}
			return goja.Undefined()
		})

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, n, false))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, n, false))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, n))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, n))

	case "addEventListener":
		return vm.ToValue(e.ctx.engine.addEventListenerFn(n))
	case "removeEventListener":
		return vm.ToValue(e.ctx.engine.removeEventListenerFn(n))
	case "dispatchEvent":
		return vm.ToValue(e.ctx.engine.dispatchEventFn(n))
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.node.ReplaceChildren(nil)
		e.node.AppendText(val.String())
		e.ctx.changed("")
		return true
	case "className":
		e.setAttribute("class", val.String())
		return true
	case "id":
		e.setAttribute("id", val.String())
		return true
	case "innerHTML":
		e.setInnerHTML(val.String())
		return true
	case "nodeValue":
		if e.node.Type == html.TextNode {
			e.node.Text = val.String()
			e.ctx.changed("")
		}
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool { return false }
func (e *elementAccessor) Keys() []string         { return elementKeys }

func (e *elementAccessor) setAttribute(name, value string) {
	e.node.SetAttribute(name, value)
	e.ctx.changed(name)
}

// changed notifies the engine of a mutation. Touching an id attribute or
// the tree shape refreshes the id globals.
func (ctx *domContext) changed(attr string) {
	if attr == "" || attr == "id" {
		ctx.engine.UpdateIDs()
	}
	ctx.engine.mutated()
}
