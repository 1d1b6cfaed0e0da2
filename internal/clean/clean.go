// Package clean implements the table cleaning operations: duplicate row
// removal and mean imputation of missing numeric cells.
//
// Every operation is a pure function from table to table. Apply runs a
// caller-chosen sequence of operations; the order is significant because
// deduplicating first changes the means used for imputation.
package clean

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabconv/internal/table"
)

// ErrUnknownOperation is returned by ParseOperation for unrecognised names.
var ErrUnknownOperation = errors.New("unknown cleaning operation")

// Operation names a cleaning step.
type Operation string

const (
	OpRemoveDuplicates Operation = "dedupe"
	OpFillMissingMean  Operation = "fill-mean"
)

// Operations lists every supported operation.
var Operations = []Operation{OpRemoveDuplicates, OpFillMissingMean}

// ParseOperation accepts the canonical names and a few common aliases.
func ParseOperation(name string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dedupe", "remove-duplicates", "drop-duplicates":
		return OpRemoveDuplicates, nil
	case "fill-mean", "fill-missing", "fillna":
		return OpFillMissingMean, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// ParseOperations parses names in order, skipping blanks.
func ParseOperations(names []string) ([]Operation, error) {
	var ops []Operation
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		op, err := ParseOperation(n)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Step reports what one applied operation did.
type Step struct {
	Operation  Operation      `json:"operation"`
	RowsBefore int            `json:"rowsBefore"`
	RowsAfter  int            `json:"rowsAfter"`
	Filled     map[string]int `json:"filled,omitempty"`
	Skipped    []string       `json:"skipped,omitempty"`
}

// Apply runs ops in order, threading the working table through each one.
func Apply(t *table.Table, ops []Operation) (*table.Table, []Step, error) {
	steps := make([]Step, 0, len(ops))
	working := t
	for _, op := range ops {
		step := Step{Operation: op, RowsBefore: working.NumRows()}
		switch op {
		case OpRemoveDuplicates:
			working = RemoveDuplicates(working)
		case OpFillMissingMean:
			var report FillReport
			working, report = FillMissingNumeric(working)
			step.Filled = report.Filled
			step.Skipped = report.Skipped
		default:
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
		}
		step.RowsAfter = working.NumRows()
		steps = append(steps, step)
	}
	return working, steps, nil
}
