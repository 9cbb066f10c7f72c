package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/raster"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/scene"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

var (
	plotOutput string
	plotScene  string
	plotWidth  int
	plotHeight int
)

var plotCmd = &cobra.Command{
	Use:   "plot <region>",
	Short: "Draw a plot region to PNG",
	Long: `Run a draw pass over a Tao plot region and render every panel to a PNG.

Curves or shapes Tao cannot describe are skipped and listed on stderr.

Examples:
  otl plot r1                         # writes r1.png
  otl plot r1 -o orbit.png --width 1600
  otl plot r1 --scene r1.scene -o ""  # scene file only`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "PNG output file (default <region>.png)")
	plotCmd.Flags().StringVar(&plotScene, "scene", "", "also write the drawn figure as a scene file")
	plotCmd.Flags().IntVar(&plotWidth, "width", 0, "image width in pixels (overrides config)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 0, "image height in pixels (overrides config)")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	region := args[0]
	output := plotOutput
	if !cmd.Flags().Changed("output") {
		output = region + ".png"
	}
	opts := rasterOptions(plotWidth, plotHeight)
	if err := opts.Validate(); err != nil {
		return err
	}

	return withPlotter(cmd, func(ctx context.Context, pl *taoplot.Plotter) error {
		fig, err := pl.Plot(ctx, region)
		if err != nil {
			return err
		}
		printDiagnostics(fig)

		if plotScene != "" {
			if err := writeScene(plotScene, fig); err != nil {
				return err
			}
			fmt.Printf("Scene written to %s\n", plotScene)
		}
		if output == "" {
			return nil
		}
		if err := writePNG(output, fig, opts); err != nil {
			return err
		}
		fmt.Printf("%s: %d panel(s) written to %s\n", region, len(fig.Panels), output)
		return nil
	})
}

// rasterOptions applies non-zero size overrides to the configured options.
func rasterOptions(width, height int) raster.Options {
	opts := cfg.RasterOptions()
	if width != 0 {
		opts.Width = width
	}
	if height != 0 {
		opts.Height = height
	}
	return opts
}

func writePNG(path string, fig *taoplot.Figure, opts raster.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := raster.WritePNG(f, fig, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

func writeScene(path string, fig *taoplot.Figure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scene file: %w", err)
	}
	if err := scene.Encode(f, fig); err != nil {
		f.Close()
		return fmt.Errorf("failed to write scene: %w", err)
	}
	return f.Close()
}

func readScene(path string) (*taoplot.Figure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fig, err := scene.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fig, nil
}
