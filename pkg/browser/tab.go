// Package browser hosts documents in tabs: navigation and history,
// subresource loading, scripts and input routing on top of the rendering
// pipeline.
package browser

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/css"
	"github.com/skonuru8/browser/pkg/html"
	"github.com/skonuru8/browser/pkg/js"
	"github.com/skonuru8/browser/pkg/layout"
	"github.com/skonuru8/browser/pkg/paint"
	"github.com/skonuru8/browser/pkg/resource"
	"github.com/skonuru8/browser/pkg/text"
	stdnet "github.com/skonuru8/browser/std/net"
)

// ScrollbarColor fills the scrollbar thumb.
var ScrollbarColor = color.RGBA{0, 0, 255, 255}

const (
	StatusLoading   = "Loading…"
	StatusCertError = "⚠ Certificate error"
	newTabTitle     = "New Tab"
)

// Options configure a Tab. Zero values select the defaults.
type Options struct {
	Width    float64
	Height   float64
	Measurer text.Measurer
	// Jar backs document.cookie. It should be the jar of the fetcher.
	Jar           *stdnet.CookieJar
	ScriptTimeout time.Duration
	// DisableScripts skips page scripts and script event listeners.
	DisableScripts bool
	Logger         *zap.Logger
	Now            func() time.Time
}

// HistoryEntry is one navigation. Body is the POST payload, if any; it is
// never re-sent when the entry is revisited.
type HistoryEntry struct {
	URL    stdnet.URL
	Method string
	Body   *string
}

// Tab holds one document and its navigation history.
type Tab struct {
	ID uuid.UUID

	URL         stdnet.URL
	Title       string
	Status      string
	CertError   bool
	Nodes       *html.Node
	Frame       *layout.Frame
	DisplayList []paint.Command
	Hits        *layout.HitTable
	Scroll      float64
	Focus       *html.Node

	fetcher resource.Fetcher
	opts    Options
	logger  *zap.Logger

	history []HistoryEntry
	index   int

	policy         *resource.Policy
	referrerPolicy string
	loader         *resource.Loader
	js             *js.Engine
	loadedScripts  map[string]bool
	loadedStyles   map[*html.Node][]css.Rule
	sheets         [][]css.Rule

	// ctx is the context of the operation in progress; script requests
	// run under it.
	ctx context.Context
}

// NewTab creates an empty tab fetching through fetcher.
func NewTab(fetcher resource.Fetcher, opts Options) *Tab {
	if opts.Width <= 0 {
		opts.Width = layout.DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = layout.DefaultHeight
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &Tab{
		ID:      id,
		Title:   newTabTitle,
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.Named("tab").With(zap.String("tab", id.String())),
		index:   -1,
		ctx:     context.Background(),
	}
}

func (t *Tab) now() time.Time {
	if t.opts.Now != nil {
		return t.opts.Now()
	}
	return time.Now()
}

// History returns a copy of the navigation history and the current index.
func (t *Tab) History() ([]HistoryEntry, int) {
	return append([]HistoryEntry(nil), t.history...), t.index
}

func (t *Tab) CanGoBack() bool    { return t.index > 0 }
func (t *Tab) CanGoForward() bool { return t.index+1 < len(t.history) }

// Navigate records a history entry, dropping any forward entries, and
// loads u. A non-nil payload is POSTed.
func (t *Tab) Navigate(ctx context.Context, u stdnet.URL, payload *string) error {
	if t.CanGoForward() {
		t.history = t.history[:t.index+1]
	}
	method := "GET"
	if payload != nil {
		method = "POST"
	}
	t.history = append(t.history, HistoryEntry{URL: u, Method: method, Body: payload})
	t.index++
	return t.Load(ctx, u, payload)
}

// Back loads the previous history entry with a GET.
func (t *Tab) Back(ctx context.Context) error {
	if !t.CanGoBack() {
		return nil
	}
	t.index--
	return t.Load(ctx, t.history[t.index].URL, nil)
}

// Forward loads the next history entry with a GET.
func (t *Tab) Forward(ctx context.Context) error {
	if !t.CanGoForward() {
		return nil
	}
	t.index++
	return t.Load(ctx, t.history[t.index].URL, nil)
}

// Reload loads the current entry again. POST entries are reloaded with a
// GET.
func (t *Tab) Reload(ctx context.Context) error {
	if t.index < 0 || t.index >= len(t.history) {
		return nil
	}
	return t.Load(ctx, t.history[t.index].URL, nil)
}

// referrer returns the Referer for a load of u under the current page's
// referrer policy.
func (t *Tab) referrer(u stdnet.URL) string {
	if t.index <= 0 || t.index-1 >= len(t.history) {
		return ""
	}
	prev := t.history[t.index-1].URL
	switch t.referrerPolicy {
	case "no-referrer":
		return ""
	case "same-origin":
		if !prev.SameOrigin(u) {
			return ""
		}
	}
	return prev.String()
}

// Load fetches u and replaces the document. On failure the previous
// document is kept and Status describes the error.
func (t *Tab) Load(ctx context.Context, u stdnet.URL, payload *string) error {
	t.ctx = ctx
	log := t.logger.With(zap.String("url", u.String()))
	t.CertError = false
	t.Status = StatusLoading

	resp, err := t.fetcher.Fetch(ctx, u, stdnet.Request{Referrer: t.referrer(u), Payload: payload})
	if err != nil {
		if errors.Is(err, stdnet.ErrTLS) {
			t.CertError = true
			t.Status = StatusCertError
		} else {
			t.Status = "Network error: " + err.Error()
		}
		log.Warn("load failed", zap.Error(err))
		return fmt.Errorf("loading %s: %w", u, err)
	}
	t.Status = ""
	t.URL = u
	t.policy = resource.ParsePolicy(resp.Get("content-security-policy"))
	t.referrerPolicy = strings.ToLower(strings.TrimSpace(resp.Get("referrer-policy")))
	t.loader = resource.NewLoader(t.fetcher, u, t.policy, t.logger)

	t.Nodes = html.Parse(string(resp.Body))
	t.Title = html.Title(t.Nodes)
	if t.Title == "" {
		t.Title = u.Host
	}
	t.Focus = nil
	t.Scroll = 0

	t.js = nil
	if !t.opts.DisableScripts {
		t.js = js.New(t.Nodes, js.Options{
			Logger:   t.logger,
			Timeout:  t.opts.ScriptTimeout,
			Cookies:  t.cookies(),
			XHR:      t.xhr,
			OnMutate: func() { t.logger.Debug("document mutated by script") },
		})
	}
	t.loadedScripts = make(map[string]bool)
	t.loadedStyles = make(map[*html.Node][]css.Rule)
	t.sheets = nil

	t.processScriptsAndStyles(ctx)
	t.Render()
	if t.js != nil {
		t.js.UpdateIDs()
	}
	log.Info("loaded",
		zap.Int("status", resp.StatusCode),
		zap.String("title", t.Title),
		zap.Int("commands", len(t.DisplayList)))
	return nil
}

func (t *Tab) xhr(method, url string, body *string) (string, error) {
	if t.loader == nil {
		return "", errors.New("no document")
	}
	return t.loader.XHR(t.ctx, method, url, body)
}

// processScriptsAndStyles runs page scripts and collects style sheets in
// document order. Each external script source runs at most once per load.
func (t *Tab) processScriptsAndStyles(ctx context.Context) {
	styles := make(map[*html.Node][]css.Rule)
	var sheets [][]css.Rule
	for _, n := range html.TreeToList(t.Nodes) {
		switch {
		case n.IsElement("script"):
			t.runScript(ctx, n)
		case n.IsElement("style"):
			rules := css.Parse(n.RawText)
			styles[n] = rules
			sheets = append(sheets, rules)
		case n.IsElement("link"):
			rel, _ := n.GetAttribute("rel")
			href, ok := n.GetAttribute("href")
			if !ok || !strings.EqualFold(strings.TrimSpace(rel), "stylesheet") {
				continue
			}
			rules, cached := t.loadedStyles[n]
			if !cached {
				body, err := t.loader.FetchCSS(ctx, href)
				if err != nil {
					t.logger.Warn("stylesheet skipped", zap.String("href", href), zap.Error(err))
					if errors.Is(err, resource.ErrBlocked) {
						continue
					}
				}
				rules = css.Parse(body)
			}
			styles[n] = rules
			sheets = append(sheets, rules)
		}
	}
	t.loadedStyles = styles
	t.sheets = sheets
}

func (t *Tab) runScript(ctx context.Context, n *html.Node) {
	if t.js == nil {
		return
	}
	src, external := n.GetAttribute("src")
	if !external {
		if strings.TrimSpace(n.RawText) == "" {
			return
		}
		if err := t.js.Run("inline", n.RawText); err != nil {
			t.logger.Warn("script failed", zap.Error(err))
		}
		return
	}
	if t.loadedScripts[src] {
		return
	}
	t.loadedScripts[src] = true
	code, err := t.loader.FetchScript(ctx, src)
	if err != nil {
		t.logger.Warn("script skipped", zap.String("src", src), zap.Error(err))
		return
	}
	if err := t.js.Run(src, code); err != nil {
		t.logger.Warn("script failed", zap.String("src", src), zap.Error(err))
	}
}

// Render restyles, lays out and paints the current document, then clamps
// the scroll offset to the new document height.
func (t *Tab) Render() {
	if t.Nodes == nil {
		return
	}
	doc := resource.Pipeline(t.Nodes, t.sheets, layout.Options{Width: t.opts.Width, Measurer: t.opts.Measurer})
	t.Frame = doc.Frame
	t.DisplayList = doc.DisplayList
	t.Hits = doc.Frame.Hits
	t.Scroll = min(t.Scroll, t.maxScroll())
}

// Document returns the current frame and display list.
func (t *Tab) Document() resource.Document {
	return resource.Document{Frame: t.Frame, DisplayList: t.DisplayList}
}

func (t *Tab) maxScroll() float64 {
	return max(0, t.Frame.Height()-t.opts.Height)
}

// ScrollDown scrolls by px, stopping at the end of the document.
func (t *Tab) ScrollDown(px float64) {
	t.Scroll = min(t.Scroll+px, t.maxScroll())
}

// ScrollUp scrolls back by px, stopping at the top.
func (t *Tab) ScrollUp(px float64) {
	t.Scroll = max(0, t.Scroll-px)
}

// ViewportCommands returns the display list followed by the scrollbar
// thumb, in a fresh slice. The thumb is only drawn when the document is
// taller than the viewport and is placed in document coordinates.
func (t *Tab) ViewportCommands() []paint.Command {
	cmds := make([]paint.Command, 0, len(t.DisplayList)+1)
	cmds = append(cmds, t.DisplayList...)

	docHeight := t.Frame.Height()
	if docHeight <= t.opts.Height {
		return cmds
	}
	thumb := t.opts.Height * t.opts.Height / docHeight
	y := t.Scroll / docHeight * t.opts.Height
	return append(cmds, paint.DrawRect{
		Rect: layout.Rect{
			X:      t.opts.Width - layout.ScrollbarWidth,
			Y:      t.Scroll + y,
			Width:  layout.ScrollbarWidth,
			Height: thumb,
		},
		Color: ScrollbarColor,
	})
}

// dispatch fires a script event and reports whether it was prevented.
func (t *Tab) dispatch(typ string, n *html.Node) bool {
	if t.js == nil {
		return false
	}
	return t.js.DispatchEvent(typ, n)
}

// cookies adapts the jar to document.cookie for the current origin.
func (t *Tab) cookies() js.CookieStore {
	if t.opts.Jar == nil {
		return nil
	}
	return scriptCookies{tab: t}
}

type scriptCookies struct {
	tab *Tab
}

func (c scriptCookies) ScriptCookie() string {
	return c.tab.opts.Jar.ScriptCookie(c.tab.URL.Origin(), c.tab.now())
}

func (c scriptCookies) SetScriptCookie(s string) error {
	return c.tab.opts.Jar.SetScriptCookie(c.tab.URL.Origin(), s, c.tab.now())
}
