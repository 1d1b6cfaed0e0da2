package cli

import (
	"strings"

	"github.com/JonMunkholm/tabconv/internal/clean"
	"github.com/JonMunkholm/tabconv/internal/core"
	"github.com/JonMunkholm/tabconv/internal/tabio"
	"github.com/spf13/cobra"
)

// pipelineFlags are the cleaning and projection choices shared by preview,
// convert and chart.
type pipelineFlags struct {
	ops     []string
	columns []string
	to      string
	rows    int
}

func (p *pipelineFlags) register(cmd *cobra.Command, withTarget bool) {
	cmd.Flags().StringSliceVar(&p.ops, "op", nil, "Cleaning operation, applied in the order given (dedupe|fill-mean); repeatable")
	cmd.Flags().StringSliceVar(&p.columns, "columns", nil, "Output columns in order (default: all)")
	if withTarget {
		cmd.Flags().StringVar(&p.to, "to", "csv", "Output format (csv|xlsx)")
	}
}

// options converts the flags into pipeline options. --columns given with
// an empty value selects no columns.
func (p *pipelineFlags) options(cmd *cobra.Command) (core.Options, error) {
	var opts core.Options

	ops, err := clean.ParseOperations(p.ops)
	if err != nil {
		return opts, err
	}
	opts.Operations = ops

	if cmd.Flags().Changed("columns") {
		opts.Columns = []string{}
		for _, c := range p.columns {
			if c = strings.TrimSpace(c); c != "" {
				opts.Columns = append(opts.Columns, c)
			}
		}
	}

	if p.to != "" {
		target, err := tabio.ParseFormat(p.to)
		if err != nil {
			return opts, err
		}
		opts.Target = target
	}
	opts.PreviewRows = p.rows
	return opts, nil
}
