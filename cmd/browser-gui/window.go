package main

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/browser"
	"github.com/skonuru8/browser/pkg/config"
	"github.com/skonuru8/browser/pkg/layout"
	"github.com/skonuru8/browser/pkg/render"
	"github.com/skonuru8/browser/pkg/text"
	stdnet "github.com/skonuru8/browser/std/net"
)

// window hosts one tab. Tab operations go through a Runner so they apply
// in the order they were submitted; widget updates go through fyne.Do.
type window struct {
	cfg    *config.Config
	fonts  *text.Fonts
	logger *zap.Logger

	win     fyne.Window
	address *widget.Entry
	status  *widget.Label
	page    *pageView

	runner *browser.Runner
}

func newWindow(a fyne.App, cfg *config.Config, fonts *text.Fonts, logger *zap.Logger) *window {
	w := &window{cfg: cfg, fonts: fonts, logger: logger}
	jar := stdnet.NewCookieJar()
	client := stdnet.NewClient(jar, logger)
	client.UserAgent = cfg.Network.UserAgent
	tab := browser.NewTab(client, browser.Options{
		Width:          float64(cfg.Viewport.Width),
		Height:         float64(cfg.Viewport.Height),
		Measurer:       fonts,
		Jar:            jar,
		ScriptTimeout:  cfg.Script.Timeout,
		DisableScripts: !cfg.Script.Enabled,
		Logger:         logger,
	})

	w.win = a.NewWindow("browser")
	w.address = widget.NewEntry()
	w.address.SetPlaceHolder("https://example.com")
	w.address.OnSubmitted = w.navigate
	w.status = widget.NewLabel("Enter a URL and press Enter")

	w.page = newPageView(cfg.Viewport.Width, cfg.Viewport.Height)
	w.page.onTap = func(x, y float64) {
		w.win.Canvas().Unfocus()
		w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.Click(ctx, x, y) })
	}
	w.page.onScroll = func(dy float64) {
		w.do(func(ctx context.Context, tab *browser.Tab) error {
			if dy > 0 {
				tab.ScrollDown(dy)
			} else {
				tab.ScrollUp(-dy)
			}
			return nil
		})
	}
	w.win.Canvas().SetOnTypedRune(func(r rune) {
		w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.KeyPress(ctx, r) })
	})
	w.win.Canvas().SetOnTypedKey(w.typedKey)

	back := widget.NewButton("←", func() { w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.Back(ctx) }) })
	forward := widget.NewButton("→", func() { w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.Forward(ctx) }) })
	reload := widget.NewButton("↻", func() { w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.Reload(ctx) }) })

	top := container.NewBorder(nil, nil, container.NewHBox(back, forward, reload), nil, w.address)
	w.win.SetContent(container.NewBorder(top, w.status, nil, nil, w.page))
	w.win.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height+80)))
	w.runner = browser.NewRunner(tab, cfg.Network.Timeout, logger, w.repaint)
	return w
}

func (w *window) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyBackspace:
		w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.KeyPress(ctx, browser.KeyBackspace) })
	case fyne.KeyReturn, fyne.KeyEnter:
		w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.KeyPress(ctx, browser.KeyEnter) })
	case fyne.KeyDown:
		w.do(func(ctx context.Context, tab *browser.Tab) error { tab.ScrollDown(layout.ScrollStep); return nil })
	case fyne.KeyUp:
		w.do(func(ctx context.Context, tab *browser.Tab) error { tab.ScrollUp(layout.ScrollStep); return nil })
	case fyne.KeyEscape:
		w.do(func(ctx context.Context, tab *browser.Tab) error { tab.Blur(); return nil })
	}
}

// navigate loads an address typed by the user. A bare host gets https.
func (w *window) navigate(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := stdnet.Parse(raw)
	if err != nil {
		w.status.SetText(err.Error())
		return
	}
	w.status.SetText(browser.StatusLoading)
	w.do(func(ctx context.Context, tab *browser.Tab) error { return tab.Navigate(ctx, u, nil) })
}

// do queues op for the tab.
func (w *window) do(op browser.Op) {
	w.runner.Submit(op)
}

// repaint runs on the runner goroutine after each op.
func (w *window) repaint(tab *browser.Tab) {
	r := render.NewRenderer(w.cfg.Viewport.Width, w.cfg.Viewport.Height, w.fonts)
	r.Render(tab.ViewportCommands(), tab.Scroll)
	img := r.Image()
	title, status, address := tab.Title, tab.Status, tab.URL.String()
	loaded := tab.URL.Host != ""
	if tab.CertError {
		address = "⚠ " + address
	} else if tab.URL.Scheme == "https" {
		address = "🔒 " + address
	}

	fyne.Do(func() {
		w.page.setImage(img)
		w.win.SetTitle(fmt.Sprintf("%s - browser", title))
		w.status.SetText(status)
		if loaded {
			w.address.SetText(address)
		}
	})
}
