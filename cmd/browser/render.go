package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var output string
	var scroll float64
	cmd := &cobra.Command{
		Use:   "render <url|file>",
		Short: "Render a page to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tab.ScrollDown(scroll)

			r := render.NewRenderer(a.cfg.Viewport.Width, a.cfg.Viewport.Height, a.fonts)
			r.Render(tab.DisplayList, tab.Scroll)
			if err := r.SavePNG(output); err != nil {
				return err
			}
			a.logger.Info("rendered",
				zap.String("url", tab.URL.String()),
				zap.String("title", tab.Title),
				zap.String("output", output))
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %q to %s\n", tab.Title, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "output PNG file path")
	cmd.Flags().Float64Var(&scroll, "scroll", 0, "scroll offset in pixels")
	return cmd
}
