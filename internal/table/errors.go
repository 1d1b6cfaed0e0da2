package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColumn is the sentinel wrapped by UnknownColumnError.
var ErrUnknownColumn = errors.New("unknown column")

// ErrDuplicateColumn indicates a column name appears more than once.
var ErrDuplicateColumn = errors.New("duplicate column")

// ErrRaggedColumns indicates columns of different lengths.
var ErrRaggedColumns = errors.New("columns have different lengths")

// UnknownColumnError reports column names that are not present in a table.
type UnknownColumnError struct {
	Names []string
}

func (e *UnknownColumnError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("unknown column: %s", strings.Join(quoted, ", "))
}

func (e *UnknownColumnError) Unwrap() error {
	return ErrUnknownColumn
}
