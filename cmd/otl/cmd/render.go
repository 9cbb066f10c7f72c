package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	renderOutput string
	renderWidth  int
	renderHeight int
)

var renderCmd = &cobra.Command{
	Use:   "render <scene-file>",
	Short: "Render a saved scene file to PNG",
	Long: `Render a scene file written by "otl plot --scene" without starting Tao.

Examples:
  otl render r1.scene                 # writes r1.png
  otl render r1.scene -o big.png --width 2400 --height 1600`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := rasterOptions(renderWidth, renderHeight)
		if err := opts.Validate(); err != nil {
			return err
		}
		fig, err := readScene(args[0])
		if err != nil {
			return err
		}
		printDiagnostics(fig)

		output := renderOutput
		if output == "" {
			output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
		}
		if err := writePNG(output, fig, opts); err != nil {
			return err
		}
		fmt.Printf("%d panel(s) written to %s\n", len(fig.Panels), output)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "PNG output file (default <scene>.png)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "image width in pixels (overrides config)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "image height in pixels (overrides config)")
	rootCmd.AddCommand(renderCmd)
}
