// Package js runs page scripts against the DOM with goja.
package js

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/html"
)

// ErrTimeout is returned when a script or listener is interrupted for
// running past Options.Timeout.
var ErrTimeout = errors.New("script timed out")

var (
	errAsyncXHR = errors.New("asynchronous XMLHttpRequest is not supported")
	errNoXHR    = errors.New("XMLHttpRequest is not available")
)

// CookieStore is the document.cookie backing for the page origin.
type CookieStore interface {
	ScriptCookie() string
	SetScriptCookie(s string) error
}

// Options wire an Engine to its page. Every field is optional.
type Options struct {
	Logger *zap.Logger
	// Timeout interrupts a single Run or event dispatch; zero disables it.
	Timeout time.Duration
	Cookies CookieStore
	// XHR performs a synchronous XMLHttpRequest for the page and returns
	// the response body.
	XHR func(method, url string, body *string) (string, error)
	// OnMutate is called after every DOM mutation made by script.
	OnMutate func()
}

// Engine executes JavaScript against one document's DOM.
type Engine struct {
	vm        *goja.Runtime
	dom       *domContext
	opts      Options
	logger    *zap.Logger
	listeners listeners
	idVars    []string
	running   bool
}

// New creates an engine with a fresh goja runtime bound to root.
func New(root *html.Node, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{vm: goja.New(), opts: opts, logger: logger.Named("js")}

	c := &consoleAPI{logger: e.logger}
	c.register(e.vm)

	e.dom = registerDocument(e, root)
	registerEvents(e)
	registerXHR(e)
	e.UpdateIDs()
	return e
}

// Run executes code. name identifies the script in errors and logs.
func (e *Engine) Run(name, code string) error {
	var err error
	e.guard(func() {
		_, err = e.vm.RunScript(name, code)
	})
	if err != nil {
		return e.wrap(name, err)
	}
	return nil
}

// guard runs fn with the interrupt timer armed. Nested calls share the
// outer timer.
func (e *Engine) guard(fn func()) {
	if e.running || e.opts.Timeout <= 0 {
		fn()
		return
	}
	e.running = true
	timer := time.AfterFunc(e.opts.Timeout, func() {
		e.vm.Interrupt(ErrTimeout)
	})
	defer func() {
		timer.Stop()
		e.vm.ClearInterrupt()
		e.running = false
	}()
	fn()
}

func (e *Engine) wrap(name string, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%s: %w", name, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// mutated reports a DOM change made by script.
func (e *Engine) mutated() {
	if e.opts.OnMutate != nil {
		e.opts.OnMutate()
	}
}

// UpdateIDs exposes every element with a usable id as a global variable,
// removing the globals of ids that disappeared.
func (e *Engine) UpdateIDs() {
	global := e.vm.GlobalObject()
	for _, name := range e.idVars {
		global.Delete(name)
	}
	e.idVars = e.idVars[:0]
	for _, n := range html.TreeToList(e.dom.root) {
		id, ok := n.GetAttribute("id")
		if !ok || n.Type != html.ElementNode || !isIdentifier(id) || global.Get(id) != nil {
			continue
		}
		if err := global.Set(id, e.dom.elementProxy(n)); err != nil {
			continue
		}
		e.idVars = append(e.idVars, id)
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
