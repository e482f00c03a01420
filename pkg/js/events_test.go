package js

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

const eventPage = `<div id="outer"><a id="link" href="/next">go</a></div>`

func TestDispatchEventPreventDefault(t *testing.T) {
	e, root := newEngine(t, eventPage, Options{})
	require.NoError(t, e.Run("listen.js", `
		var seen = [];
		link.addEventListener('click', function(evt) {
			seen.push(this.id + ':' + evt.type);
			evt.preventDefault();
		});
	`))
	assert.True(t, e.DispatchEvent("click", findTag(root, "a")))
	assert.Equal(t, "link:click", eval(t, e, "seen.join(',')"))
}

func TestDispatchEventNoListeners(t *testing.T) {
	e, root := newEngine(t, eventPage, Options{})
	assert.False(t, e.DispatchEvent("click", findTag(root, "a")))
	assert.False(t, e.DispatchEvent("click", nil))
}

func TestDispatchEventBubbles(t *testing.T) {
	e, root := newEngine(t, eventPage, Options{})
	require.NoError(t, e.Run("listen.js", `
		var order = [];
		link.addEventListener('click', function(evt) { order.push('link'); });
		outer.addEventListener('click', function(evt) {
			order.push('outer:' + evt.target.id + ':' + evt.currentTarget.id);
			evt.preventDefault();
		});
	`))
	assert.True(t, e.DispatchEvent("click", findTag(root, "a")))
	assert.Equal(t, "link,outer:link:outer", eval(t, e, "order.join(',')"))
}

func TestDispatchEventStopPropagation(t *testing.T) {
	e, root := newEngine(t, eventPage, Options{})
	require.NoError(t, e.Run("listen.js", `
		var order = [];
		link.addEventListener('click', function(evt) { order.push('link'); evt.stopPropagation(); });
		outer.addEventListener('click', function(evt) { order.push('outer'); evt.preventDefault(); });
	`))
	assert.False(t, e.DispatchEvent("click", findTag(root, "a")))
	assert.Equal(t, "link", eval(t, e, "order.join(',')"))
}

func TestRemoveEventListener(t *testing.T) {
	e, root := newEngine(t, eventPage, Options{})
	require.NoError(t, e.Run("listen.js", `
		var count = 0;
		function onClick(evt) { count++; evt.preventDefault(); }
		link.addEventListener('click', onClick);
		link.removeEventListener('click', onClick);
	`))
	assert.False(t, e.DispatchEvent("click", findTag(root, "a")))
	assert.Equal(t, "0", eval(t, e, "count"))
}

func TestListenerErrorContinues(t *testing.T) {
	e, root := newEngine(t, eventPage, Options{})
	require.NoError(t, e.Run("listen.js", `
		link.addEventListener('keydown', function() { throw new Error('bad'); });
		link.addEventListener('keydown', function(evt) { evt.preventDefault(); });
	`))
	assert.True(t, e.DispatchEvent("keydown", findTag(root, "a")))
}

func TestListenerTimeout(t *testing.T) {
	e, root := newEngine(t, eventPage, Options{Timeout: 50 * time.Millisecond})
	require.NoError(t, e.Run("listen.js", `
		link.addEventListener('click', function(evt) { evt.preventDefault(); while (true) {} });
	`))
	assert.True(t, e.DispatchEvent("click", findTag(root, "a")))
	assert.NoError(t, e.Run("after.js", "var ok = true;"))
}

func TestScriptDispatchEvent(t *testing.T) {
	e, _ := newEngine(t, eventPage, Options{})
	assert.Equal(t, "false,true", eval(t, e, `
		link.addEventListener('submit', function(evt) { evt.preventDefault(); });
		[link.dispatchEvent(new Event('submit')), outer.dispatchEvent(new Event('submit'))].join(',');
	`))
}
