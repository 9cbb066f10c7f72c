package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLattice/internal/ui"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

var viewScene string

var viewCmd = &cobra.Command{
	Use:   "view [region]",
	Short: "Open the interactive viewer",
	Long: `Open a window showing one panel of a plot region at a time.

Keys: F or Space fits the panel, R runs the draw pass again, the arrow keys
step through panels and Esc or Q quits. Drag to pan, scroll to zoom.

Examples:
  otl view r1
  otl view --scene r1.scene`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if viewScene != "" {
			return ui.Run("otl - "+viewScene, func(context.Context) (*taoplot.Figure, error) {
				return readScene(viewScene)
			}, nil)
		}

		region := cfg.Plot.Region
		if len(args) == 1 {
			region = args[0]
		}
		if region == "" {
			return fmt.Errorf("no region given and none configured")
		}
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		pl := taoplot.New(s, cfg.PlotOptions()...)
		return ui.Run("otl - "+region, func(ctx context.Context) (*taoplot.Figure, error) {
			return pl.Plot(ctx, region)
		}, func() {
			if err := s.Close(); err != nil {
				taoplot.Logger().Warn("closing session", "error", err)
			}
		})
	},
}

func init() {
	viewCmd.Flags().StringVar(&viewScene, "scene", "", "show a saved scene file instead of running Tao")
	rootCmd.AddCommand(viewCmd)
}
