package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/browser"
	"github.com/skonuru8/browser/pkg/config"
	"github.com/skonuru8/browser/pkg/logging"
	"github.com/skonuru8/browser/pkg/resource"
	"github.com/skonuru8/browser/pkg/text"
	stdnet "github.com/skonuru8/browser/std/net"
)

// app carries the state shared by subcommands after the root pre-run.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	fonts   *text.Fonts
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "browser",
		Short:         "A small web rendering engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.browser/config.yaml)")
	root.AddCommand(newRenderCmd(a), newDumpCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	fonts, err := text.NewFonts()
	if err != nil {
		return fmt.Errorf("loading fonts: %w", err)
	}
	a.cfg, a.logger, a.fonts = cfg, logger, fonts
	return nil
}

// open loads target, a URL or a local HTML file, into a new tab.
func (a *app) open(ctx context.Context, target string) (*browser.Tab, error) {
	jar := stdnet.NewCookieJar()
	var fetcher resource.Fetcher
	var u stdnet.URL
	if stdnet.IsNetworkURL(target) {
		parsed, err := stdnet.Parse(target)
		if err != nil {
			return nil, err
		}
		client := stdnet.NewClient(jar, a.logger)
		client.UserAgent = a.cfg.Network.UserAgent
		fetcher, u = client, parsed
	} else {
		files, start, err := newFileFetcher(target)
		if err != nil {
			return nil, err
		}
		fetcher, u = files, start
	}

	tab := browser.NewTab(fetcher, browser.Options{
		Width:          float64(a.cfg.Viewport.Width),
		Height:         float64(a.cfg.Viewport.Height),
		Measurer:       a.fonts,
		Jar:            jar,
		ScriptTimeout:  a.cfg.Script.Timeout,
		DisableScripts: !a.cfg.Script.Enabled,
		Logger:         a.logger,
	})

	if a.cfg.Network.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Network.Timeout)
		defer cancel()
	}
	if err := tab.Navigate(ctx, u, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", tab.Status, err)
	}
	return tab, nil
}
