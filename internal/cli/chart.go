package cli

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/tabconv/internal/chart"
	"github.com/spf13/cobra"
)

func newChartCommand() *cobra.Command {
	var (
		flags pipelineFlags
		kind  string
		req   chart.Request
	)

	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Describe a chart over a file as JSON",
		Long: `Chart builds a line, bar, pie, scatter or histogram description of the
cleaned table and prints it as JSON for a front end to draw.

Line and bar charts plot every numeric column against the row index. Pie
charts count the values of --column, histograms bin the numeric --column and
scatter plots need --x and --y.`,
		Example: `  tabconv chart sales.csv --kind line
  tabconv chart sales.csv --kind pie --column region
  tabconv chart sales.csv --kind scatter --x price --y quantity --op fill-mean`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			k, err := chart.ParseKind(kind)
			if err != nil {
				return err
			}
			req.Kind = k
			if err := chart.CheckBins(req.Bins); err != nil {
				return err
			}

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			files, err := readInputs(args)
			if err != nil {
				return err
			}

			res, err := a.service.Chart(cmd.Context(), files[0], opts, req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&kind, "kind", "", "Chart kind (line|bar|pie|scatter|histogram)")
	cmd.Flags().StringVar(&req.Column, "column", "", "Column for pie and histogram charts")
	cmd.Flags().StringVar(&req.X, "x", "", "X column for scatter charts")
	cmd.Flags().StringVar(&req.Y, "y", "", "Y column for scatter charts")
	cmd.Flags().IntVar(&req.Bins, "bins", chart.DefaultBins, fmt.Sprintf("Histogram bin count (at most %d)", chart.MaxBins))
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(chart.Kinds))
		for i, k := range chart.Kinds {
			names[i] = string(k)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
