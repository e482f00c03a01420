// Command browser-gui shows pages in a desktop window with an address bar,
// history buttons and click, key and wheel routing into the page.
package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/skonuru8/browser/pkg/config"
	"github.com/skonuru8/browser/pkg/logging"
	"github.com/skonuru8/browser/pkg/text"
)

func main() {
	var cfgFile string
	cmd := &cobra.Command{
		Use:          "browser-gui [url]",
		Short:        "Open the browser window",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logger)
			if err != nil {
				return err
			}
			defer logger.Sync()
			fonts, err := text.NewFonts()
			if err != nil {
				return fmt.Errorf("loading fonts: %w", err)
			}

			start := cfg.Network.HomePage
			if len(args) > 0 {
				start = args[0]
			}
			w := newWindow(app.New(), cfg, fonts, logger)
			w.navigate(start)
			w.win.ShowAndRun()
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
