package js

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// xhrRequest backs one XMLHttpRequest object. Only synchronous requests
// are supported; the page decides which URLs may be fetched.
type xhrRequest struct {
	engine *Engine
	obj    *goja.Object
	method string
	url    string
}

func registerXHR(e *Engine) {
	e.vm.Set("XMLHttpRequest", func(call goja.ConstructorCall) *goja.Object {
		x := &xhrRequest{engine: e, obj: call.This, method: "GET"}
		call.This.Set("readyState", 0)
		call.This.Set("status", 0)
		call.This.Set("responseText", "")
		call.This.Set("open", x.open)
		call.This.Set("send", x.send)
		return nil
	})
}

func (x *xhrRequest) open(call goja.FunctionCall) goja.Value {
	vm := x.engine.vm
	method, ok := argString(call, 0)
	if !ok {
		panic(vm.NewTypeError("Failed to execute 'open' on 'XMLHttpRequest': 2 arguments required"))
	}
	url, ok := argString(call, 1)
	if !ok {
		panic(vm.NewTypeError("Failed to execute 'open' on 'XMLHttpRequest': 2 arguments required"))
	}
	if len(call.Arguments) > 2 && call.Arguments[2].ToBoolean() {
		panic(vm.NewGoError(errAsyncXHR))
	}
	x.method = method
	x.url = url
	x.obj.Set("readyState", 1)
	return goja.Undefined()
}

func (x *xhrRequest) send(call goja.FunctionCall) goja.Value {
	vm := x.engine.vm
	if x.engine.opts.XHR == nil {
		panic(vm.NewGoError(errNoXHR))
	}
	var body *string
	if len(call.Arguments) > 0 && !goja.IsUndefined(call.Arguments[0]) && !goja.IsNull(call.Arguments[0]) {
		s := call.Arguments[0].String()
		body = &s
	}
	resp, err := x.engine.opts.XHR(x.method, x.url, body)
	if err != nil {
		x.engine.logger.Warn("xhr failed", zap.String("method", x.method), zap.String("url", x.url), zap.Error(err))
		panic(vm.NewGoError(err))
	}
	x.obj.Set("status", 200)
	x.obj.Set("responseText", resp)
	x.obj.Set("readyState", 4)
	return goja.Undefined()
}
