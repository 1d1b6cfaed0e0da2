package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/tabconv/internal/core"
	"github.com/JonMunkholm/tabconv/internal/table"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newPreviewCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "preview FILE...",
		Short: "Show shape, column summary and first rows of each file",
		Long: `Preview loads each file, applies the chosen cleaning operations and column
selection, and prints the file size, the number of rows and columns, how many
duplicate rows remain, a per-column summary and the first rows.`,
		Example: `  # Inspect a file
  tabconv preview data.csv

  # See the effect of cleaning on the first 10 rows
  tabconv preview data.xlsx --op dedupe --op fill-mean --rows 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			files, err := readInputs(args)
			if err != nil {
				return err
			}

			outcomes, err := a.service.PreviewBatch(cmd.Context(), files, opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(outcomes); err != nil {
					return err
				}
			} else {
				for i, o := range outcomes {
					if i > 0 {
						_, _ = fmt.Fprintln(w)
					}
					renderPreview(w, o)
				}
			}

			for _, o := range outcomes {
				if o.Status == core.StatusOK {
					return nil
				}
			}
			return fmt.Errorf("no file could be previewed")
		},
	}

	flags.register(cmd, false)
	cmd.Flags().IntVar(&flags.rows, "rows", 0, "Number of leading rows to show (default: UPLOAD_PREVIEW_ROWS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print previews as JSON")

	return cmd
}

func renderPreview(w io.Writer, o core.PreviewOutcome) {
	if o.Status != core.StatusOK {
		_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", o.FileName, o.Status, o.Message.Message)
		return
	}
	p := o.Preview

	_, _ = fmt.Fprintf(w, "%s  %s, %.2f KiB, %d rows x %d columns, %d duplicate rows\n",
		p.FileName, p.Format, p.SizeKiB, p.Rows, p.Columns, p.Duplicates)
	for _, s := range p.Steps {
		_, _ = fmt.Fprintf(w, "  %s: %d -> %d rows\n", s.Operation, s.RowsBefore, s.RowsAfter)
	}

	summary := prettytable.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(prettytable.StyleLight)
	summary.AppendHeader(prettytable.Row{"Column", "Type", "Missing", "Present", "Mean"})
	for _, c := range p.Summary {
		mean := ""
		if c.Mean != nil {
			mean = table.FormatNumber(*c.Mean)
		}
		summary.AppendRow(prettytable.Row{c.Name, c.Kind, c.Missing, c.Present, mean})
	}
	summary.Render()

	if p.Columns == 0 {
		return
	}
	head := prettytable.NewWriter()
	head.SetOutputMirror(w)
	head.SetStyle(prettytable.StyleLight)
	header := make(prettytable.Row, p.Columns)
	for i, name := range p.Head.Names() {
		header[i] = name
	}
	head.AppendHeader(header)
	for _, values := range p.HeadRows {
		row := make(prettytable.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		head.AppendRow(row)
	}
	head.Render()
	_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(p.HeadRows), p.Rows)
}

// formatValue renders a preview cell. Missing cells show as NaN.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case float64:
		return table.FormatNumber(x)
	default:
		return fmt.Sprint(x)
	}
}
