package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/tabconv/internal/core"
	"github.com/JonMunkholm/tabconv/internal/storage"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newStorage is replaced in tests.
var newStorage = storage.New

// errDuplicateOutput marks inputs whose output name was already written in
// the same run, e.g. x/data.csv and y/data.csv.
var errDuplicateOutput = errors.New("duplicate output name")

func newConvertCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Clean and convert files to CSV or XLSX",
		Long: `Convert runs every file through the pipeline (load, cleaning operations in
the order given, column selection, serialization) and stores the result as
<name>_converted.<ext>. Files are processed in parallel; an unsupported or
broken file is reported without stopping the others.

Output goes to the storage selected by --storage or STORAGE_MODE:
  local   a directory (--out, default ./converted)
  memory  discarded after the run, useful for validation
  s3      an S3-compatible bucket (--bucket, --prefix, S3_* variables)`,
		Example: `  # Convert a CSV file to Excel
  tabconv convert data.csv --to xlsx

  # Deduplicate before filling means, keep two columns
  tabconv convert a.csv b.xlsx --op dedupe,fill-mean --columns id,amount

  # Upload to a bucket
  tabconv convert data.xlsx --storage s3 --bucket exports --prefix daily`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			files, err := readInputs(args)
			if err != nil {
				return err
			}
			store, err := newStorage(ctx, a.cfg.Storage)
			if err != nil {
				return err
			}

			batch, err := a.service.ProcessBatch(ctx, files, opts)
			if err != nil {
				return err
			}

			rows := make([]convertRow, len(batch.Files))
			written := make(map[string]string) // output name -> input path
			stored, failed := 0, batch.Failed
			for i, out := range batch.Files {
				row := convertRow{outcome: out}
				if out.Status == core.StatusOK {
					o := out.Result.Output
					input := args[out.Index]
					if prev, ok := written[o.FileName]; ok {
						row.storeErr = fmt.Errorf("%w: %s would overwrite the output of %s", errDuplicateOutput, o.FileName, prev)
					} else if err := store.Write(ctx, o.FileName, bytes.NewReader(o.Data), int64(len(o.Data))); err != nil {
						slog.Error("store converted file", "file", o.FileName, "error", err)
						row.storeErr = err
					} else {
						written[o.FileName] = input
						row.location = store.Location(o.FileName)
						stored++
					}
					if row.storeErr != nil {
						failed++
					}
				}
				rows[i] = row
			}

			renderConvert(cmd.OutOrStdout(), rows)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d converted, %d skipped, %d failed\n",
				stored, batch.Skipped, failed)

			if stored == 0 {
				return fmt.Errorf("no file converted")
			}
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().String("storage", "", "Output storage (local|memory|s3)")
	cmd.Flags().String("out", "", "Output directory for local storage")
	cmd.Flags().String("bucket", "", "S3 bucket")
	cmd.Flags().String("prefix", "", "S3 key prefix")

	return cmd
}

type convertRow struct {
	outcome  core.FileOutcome
	location string
	storeErr error
}

func renderConvert(w io.Writer, rows []convertRow) {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(prettytable.StyleLight)
	t.AppendHeader(prettytable.Row{"File", "Status", "Rows", "Columns", "Output"})
	for _, r := range rows {
		o := r.outcome
		switch {
		case r.storeErr != nil:
			t.AppendRow(prettytable.Row{o.FileName, core.StatusFailed, o.Result.Rows, len(o.Result.Columns), r.storeErr.Error()})
		case o.Status == core.StatusOK:
			t.AppendRow(prettytable.Row{o.FileName, o.Status, o.Result.Rows, len(o.Result.Columns), r.location})
		default:
			t.AppendRow(prettytable.Row{o.FileName, o.Status, "", "", errorText(o.Err)})
		}
	}
	t.Render()
}
