package js

import (
	"errors"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/html"
)

const eventPrelude = `
function Event(type) {
  this.type = String(type);
  this.target = null;
  this.currentTarget = null;
  this.defaultPrevented = false;
  this.cancelBubble = false;
}
Event.prototype.preventDefault = function() { this.defaultPrevented = true; };
Event.prototype.stopPropagation = function() { this.cancelBubble = true; };
`

// listeners maps a node and event type to the registered JS functions in
// registration order.
type listeners map[*html.Node]map[string][]goja.Value

func registerEvents(e *Engine) {
	e.listeners = make(listeners)
	if _, err := e.vm.RunString(eventPrelude); err != nil {
		panic(err)
	}
}

// DispatchEvent fires a bubbling event of type typ at node and reports
// whether a listener called preventDefault.
func (e *Engine) DispatchEvent(typ string, node *html.Node) bool {
	if node == nil {
		return false
	}
	evt, err := e.vm.New(e.vm.Get("Event"), e.vm.ToValue(typ))
	if err != nil {
		e.logger.Warn("create event", zap.String("type", typ), zap.Error(err))
		return false
	}
	var prevented bool
	e.guard(func() {
		prevented = e.dispatch(node, evt)
	})
	return prevented
}

// dispatch calls the listeners of target and then of each ancestor until
// one stops propagation.
func (e *Engine) dispatch(target *html.Node, evt *goja.Object) bool {
	typ := evt.Get("type").String()
	evt.Set("target", e.dom.elementProxy(target))
	for n := target; n != nil; n = n.Parent {
		fns := e.listeners[n][typ]
		if len(fns) == 0 {
			continue
		}
		this := e.dom.elementProxy(n)
		evt.Set("currentTarget", this)
		for _, fn := range append([]goja.Value(nil), fns...) {
			call, ok := goja.AssertFunction(fn)
			if !ok {
				continue
			}
			if _, err := call(this, evt); err != nil {
				e.logger.Warn("event listener failed", zap.String("type", typ), zap.Error(err))
				var interrupted *goja.InterruptedError
				if errors.As(err, &interrupted) {
					return evt.Get("defaultPrevented").ToBoolean()
				}
			}
		}
		if evt.Get("cancelBubble").ToBoolean() {
			break
		}
	}
	return evt.Get("defaultPrevented").ToBoolean()
}

func (e *Engine) addEventListenerFn(n *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		typ, ok := argString(call, 0)
		if !ok || len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		if _, ok := goja.AssertFunction(call.Arguments[1]); !ok {
			return goja.Undefined()
		}
		if e.listeners[n] == nil {
			e.listeners[n] = make(map[string][]goja.Value)
		}
		e.listeners[n][typ] = append(e.listeners[n][typ], call.Arguments[1])
		return goja.Undefined()
	}
}

func (e *Engine) removeEventListenerFn(n *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		typ, ok := argString(call, 0)
		if !ok || len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		fns := e.listeners[n][typ]
		for i, fn := range fns {
			if fn.SameAs(call.Arguments[1]) {
				e.listeners[n][typ] = append(fns[:i:i], fns[i+1:]...)
				break
			}
		}
		return goja.Undefined()
	}
}

// dispatchEventFn implements element.dispatchEvent(evt), which returns
// false when the default was prevented.
func (e *Engine) dispatchEventFn(n *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.vm.NewTypeError("Failed to execute 'dispatchEvent': 1 argument required"))
		}
		evt := call.Arguments[0].ToObject(e.vm)
		return e.vm.ToValue(!e.dispatch(n, evt))
	}
}
