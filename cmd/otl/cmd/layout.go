package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/scene"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

var layoutRegion string

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Dump the lattice layout strip of a region as a scene",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpPanel(cmd, curve.KindLatLayout)
	},
}

var floorplanCmd = &cobra.Command{
	Use:   "floorplan",
	Short: "Dump the floor plan of a region as a scene",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpPanel(cmd, curve.KindFloorPlan)
	},
}

func init() {
	for _, c := range []*cobra.Command{layoutCmd, floorplanCmd} {
		c.Flags().StringVar(&layoutRegion, "region", "", "plot region (default from config)")
		rootCmd.AddCommand(c)
	}
}

// dumpPanel writes the first panel of the given kind to stdout.
func dumpPanel(cmd *cobra.Command, kind curve.Kind) error {
	region := layoutRegion
	if region == "" {
		region = cfg.Plot.Region
	}
	return withPlotter(cmd, func(ctx context.Context, pl *taoplot.Plotter) error {
		fig, err := pl.Plot(ctx, region)
		if err != nil {
			return err
		}
		p, ok := fig.Panel(kind)
		if !ok {
			return fmt.Errorf("region %s has no %s panel", region, kind)
		}
		one := &taoplot.Figure{Region: fig.Region, Panels: []taoplot.Panel{*p}}
		printDiagnostics(one)
		return scene.Encode(os.Stdout, one)
	})
}
