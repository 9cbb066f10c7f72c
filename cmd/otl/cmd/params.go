package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

var paramsCmd = &cobra.Command{
	Use:   "params <query...>",
	Short: "Show a Tao parameter table",
	Long: `Send a python query to Tao and print the parameter table it returns.

Examples:
  otl params plot1 r1
  otl params plot_graph r1.g
  otl params plot_curve r1.g.c1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withPlotter(cmd, func(ctx context.Context, pl *taoplot.Plotter) error {
			t, err := pl.Table(ctx, query)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tSETTABLE\tVALUE")
			for _, p := range t.Params() {
				settable := "-"
				if p.HasSettable {
					settable = fmt.Sprint(p.Settable)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Kind, settable, p.Format())
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
