package browser

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/html"
)

// Key runes with editing meaning for KeyPress.
const (
	KeyBackspace = '\b'
	KeyEnter     = '\r'
)

// Click routes a click at viewport coordinates. Links navigate, checkboxes
// toggle, text inputs take focus with their value cleared and buttons
// submit their form. A click listener calling preventDefault suppresses
// the default action.
func (t *Tab) Click(ctx context.Context, x, y float64) error {
	t.ctx = ctx
	if t.Nodes == nil {
		return nil
	}
	elt := t.Hits.Hit(x, y+t.Scroll)
	t.blur()
	if elt == nil {
		t.Render()
		return nil
	}
	if t.dispatch("click", elt) {
		t.Render()
		return nil
	}

	switch {
	case elt.IsElement("a"):
		href, ok := elt.GetAttribute("href")
		if !ok {
			break
		}
		u, err := t.URL.Resolve(href)
		if err != nil {
			t.logger.Warn("bad link", zap.String("href", href), zap.Error(err))
			break
		}
		return t.Navigate(ctx, u, nil)
	case elt.IsElement("input"):
		if inputType(elt) == "checkbox" {
			if checked(elt) {
				delete(elt.Attributes, "checked")
				elt.SetAttribute("_checked_state", "false")
			} else {
				elt.SetAttribute("_checked_state", "true")
			}
			break
		}
		elt.SetAttribute("value", "")
		t.Focus = elt
		elt.IsFocused = true
	case elt.IsElement("button"):
		if form := html.FindAncestor(elt, "form"); form != nil {
			return t.submitForm(ctx, form)
		}
	}
	t.Render()
	return nil
}

// KeyPress delivers a typed rune to the focused input. KeyBackspace
// deletes the last character and KeyEnter (or '\n') submits the form.
func (t *Tab) KeyPress(ctx context.Context, r rune) error {
	t.ctx = ctx
	n := t.Focus
	if n == nil || !n.IsElement("input") {
		return nil
	}
	if t.dispatch("keydown", n) {
		t.Render()
		return nil
	}
	if inputType(n) == "checkbox" {
		return nil
	}
	value, _ := n.GetAttribute("value")
	switch r {
	case KeyBackspace:
		runes := []rune(value)
		if len(runes) > 0 {
			n.SetAttribute("value", string(runes[:len(runes)-1]))
		}
	case KeyEnter, '\n':
		if form := html.FindAncestor(n, "form"); form != nil {
			return t.submitForm(ctx, form)
		}
		return nil
	default:
		n.SetAttribute("value", value+string(r))
	}
	t.Render()
	return nil
}

// Blur clears the input focus.
func (t *Tab) Blur() {
	t.blur()
	t.Render()
}

func (t *Tab) blur() {
	if t.Focus != nil {
		t.Focus.IsFocused = false
	}
	t.Focus = nil
}

// submitForm POSTs the named inputs of form to its resolved action.
func (t *Tab) submitForm(ctx context.Context, form *html.Node) error {
	if t.dispatch("submit", form) {
		t.Render()
		return nil
	}
	action, _ := form.GetAttribute("action")
	u, err := t.URL.Resolve(action)
	if err != nil {
		t.logger.Warn("bad form action", zap.String("action", action), zap.Error(err))
		return nil
	}
	body := EncodeForm(form)
	return t.Navigate(ctx, u, &body)
}

// EncodeForm url-encodes the named inputs under form in document order.
// Unchecked checkboxes are skipped; a checked checkbox without a value
// sends "on".
func EncodeForm(form *html.Node) string {
	var parts []string
	for _, n := range html.TreeToList(form) {
		if !n.IsElement("input") {
			continue
		}
		name, ok := n.GetAttribute("name")
		if !ok {
			continue
		}
		value, hasValue := n.GetAttribute("value")
		if inputType(n) == "checkbox" {
			if !checked(n) {
				continue
			}
			if !hasValue {
				value = "on"
			}
		}
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	return strings.Join(parts, "&")
}

func inputType(n *html.Node) string {
	if t, ok := n.GetAttribute("type"); ok && t != "" {
		return strings.ToLower(t)
	}
	return "text"
}

func checked(n *html.Node) bool {
	if _, ok := n.GetAttribute("checked"); ok {
		return true
	}
	v, _ := n.GetAttribute("_checked_state")
	return v == "true"
}
