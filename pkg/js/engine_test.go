package js

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skonuru8/browser/pkg/html"
)

type fakeCookies struct {
	value    string
	writes   []string
	httpOnly bool
}

func (f *fakeCookies) ScriptCookie() string { return f.value }

func (f *fakeCookies) SetScriptCookie(s string) error {
	if f.httpOnly {
		return errors.New("cookie is HttpOnly")
	}
	f.writes = append(f.writes, s)
	f.value = s
	return nil
}

func newEngine(t *testing.T, markup string, opts Options) (*Engine, *html.Node) {
	t.Helper()
	root := html.Parse(markup)
	return New(root, opts), root
}

func eval(t *testing.T, e *Engine, code string) string {
	t.Helper()
	v, err := e.vm.RunString(code)
	require.NoError(t, err)
	return v.String()
}

func TestRunReturnsScriptErrors(t *testing.T) {
	e, _ := newEngine(t, "<p>x</p>", Options{})
	err := e.Run("bad.js", "throw new Error('boom')")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.js")
	assert.Contains(t, err.Error(), "boom")

	assert.NoError(t, e.Run("ok.js", "var a = 1 + 1;"))
	assert.Equal(t, "2", eval(t, e, "a"))
}

func TestRunSyntaxError(t *testing.T) {
	e, _ := newEngine(t, "<p>x</p>", Options{})
	assert.Error(t, e.Run("syntax.js", "function ("))
}

func TestRunTimeout(t *testing.T) {
	e, _ := newEngine(t, "<p>x</p>", Options{Timeout: 50 * time.Millisecond})
	err := e.Run("loop.js", "while (true) {}")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	// the runtime is usable after an interrupt
	assert.NoError(t, e.Run("after.js", "var b = 3;"))
	assert.Equal(t, "3", eval(t, e, "b"))
}

func TestConsoleDoesNotThrow(t *testing.T) {
	e, _ := newEngine(t, "<p>x</p>", Options{})
	assert.NoError(t, e.Run("console.js", "console.log('a', 1); console.warn('b'); console.error('c');"))
}

func TestIDGlobals(t *testing.T) {
	e, _ := newEngine(t, `<div id="main"><p id="para">x</p><p id="not-ident">y</p></div>`, Options{})
	assert.Equal(t, "DIV", eval(t, e, "main.tagName"))
	assert.Equal(t, "P", eval(t, e, "para.tagName"))
	assert.Equal(t, "true", eval(t, e, "para === document.getElementById('para')"))

	require.NoError(t, e.Run("rm.js", "para.remove();"))
	assert.Equal(t, "undefined", eval(t, e, "typeof para"))

	require.NoError(t, e.Run("add.js", "var d = document.createElement('span'); d.id = 'fresh'; main.appendChild(d);"))
	assert.Equal(t, "SPAN", eval(t, e, "fresh.tagName"))
}

func TestIDGlobalsDoNotShadow(t *testing.T) {
	e, _ := newEngine(t, `<div id="document">x</div>`, Options{})
	assert.Equal(t, "function", eval(t, e, "typeof document.querySelectorAll"))
}

func TestOnMutate(t *testing.T) {
	calls := 0
	e, _ := newEngine(t, `<p id="a">x</p>`, Options{OnMutate: func() { calls++ }})
	require.NoError(t, e.Run("read.js", "a.textContent; a.getAttribute('id');"))
	assert.Equal(t, 0, calls)

	require.NoError(t, e.Run("write.js", "a.textContent = 'y'; a.setAttribute('class', 'c');"))
	assert.Equal(t, 2, calls)
}

func TestCookieAccess(t *testing.T) {
	store := &fakeCookies{value: "foo=bar"}
	e, _ := newEngine(t, "<p>x</p>", Options{Cookies: store})
	assert.Equal(t, "foo=bar", eval(t, e, "document.cookie"))

	require.NoError(t, e.Run("set.js", "document.cookie = 'k=v';"))
	assert.Equal(t, []string{"k=v"}, store.writes)
	assert.Equal(t, "k=v", eval(t, e, "document.cookie"))
}

func TestCookieWriteRejected(t *testing.T) {
	store := &fakeCookies{value: "", httpOnly: true}
	e, _ := newEngine(t, "<p>x</p>", Options{Cookies: store})
	assert.NoError(t, e.Run("set.js", "document.cookie = 'session=evil';"))
	assert.Empty(t, store.writes)
	assert.Equal(t, "", eval(t, e, "document.cookie"))
}

func TestCookieWithoutStore(t *testing.T) {
	e, _ := newEngine(t, "<p>x</p>", Options{})
	assert.Equal(t, "", eval(t, e, "document.cookie"))
}

func TestXHR(t *testing.T) {
	var gotMethod, gotURL string
	var gotBody *string
	e, _ := newEngine(t, "<p>x</p>", Options{XHR: func(method, url string, body *string) (string, error) {
		gotMethod, gotURL, gotBody = method, url, body
		return "hello", nil
	}})
	require.NoError(t, e.Run("xhr.js", `
		var x = new XMLHttpRequest();
		x.open('POST', '/api', false);
		x.send('payload');
		var out = x.responseText;
	`))
	assert.Equal(t, "hello", eval(t, e, "out"))
	assert.Equal(t, "4", eval(t, e, "x.readyState"))
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "/api", gotURL)
	require.NotNil(t, gotBody)
	assert.Equal(t, "payload", *gotBody)
}

func TestXHRErrors(t *testing.T) {
	e, _ := newEngine(t, "<p>x</p>", Options{XHR: func(method, url string, body *string) (string, error) {
		return "", errors.New("Cross-origin XHR request not allowed")
	}})
	assert.Equal(t, "Cross-origin XHR request not allowed", eval(t, e, `
		var msg = '';
		try { var x = new XMLHttpRequest(); x.open('GET', 'http://other/'); x.send(); } catch (err) { msg = err.message; }
		msg;
	`))
	assert.Error(t, e.Run("async.js", "new XMLHttpRequest().open('GET', '/x', true);"))
}

func TestXHRUnavailable(t *testing.T) {
	e, _ := newEngine(t, "<p>x</p>", Options{})
	assert.Error(t, e.Run("xhr.js", "var x = new XMLHttpRequest(); x.open('GET', '/'); x.send();"))
}

func TestIsIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"a": true, "_x": true, "$y1": true, "a1": true,
		"": false, "1a": false, "a-b": false, "a b": false,
	} {
		assert.Equal(t, want, isIdentifier(s), s)
	}
}
