package cli

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/chart"
	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/tabio"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tabconv v%s (%s)\n", Version, GitCommit)
		},
	}
}

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported formats, cleaning operations and chart kinds",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			formats := make([]string, len(tabio.Formats))
			for i, f := range tabio.Formats {
				formats[i] = string(f)
			}
			ops := make([]string, len(clean.Operations))
			for i, op := range clean.Operations {
				ops[i] = string(op)
			}
			kinds := make([]string, len(chart.Kinds))
			for i, k := range chart.Kinds {
				kinds[i] = string(k)
			}

			t := prettytable.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(prettytable.StyleLight)
			t.AppendRow(prettytable.Row{"Formats", strings.Join(formats, ", ")})
			t.AppendRow(prettytable.Row{"Operations", strings.Join(ops, ", ")})
			t.AppendRow(prettytable.Row{"Charts", strings.Join(kinds, ", ")})
			t.Render()
		},
	}
}
