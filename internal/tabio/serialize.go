package tabio

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/JonMunkholm/tabconv/internal/table"
	"github.com/xuri/excelize/v2"
)

// Output is a serialized table ready to be offered as a download.
type Output struct {
	Data     []byte
	FileName string
	MIMEType string
	Format   Format
}

// Serialize writes t in the target format. originalName is used to build
// the suggested download name. Tables without columns cannot be serialized.
func Serialize(t *table.Table, target Format, originalName string) (*Output, error) {
	if t == nil || t.NumColumns() == 0 {
		return nil, &SerializationError{Format: target, Err: ErrNoColumns}
	}

	var data []byte
	var err error
	switch target {
	case FormatCSV:
		data, err = writeCSV(t)
	case FormatXLSX:
		data, err = writeXLSX(t)
	default:
		return nil, &SerializationError{Format: target, Err: &UnsupportedFormatError{Ext: string(target)}}
	}
	if err != nil {
		return nil, &SerializationError{Format: target, Err: err}
	}

	return &Output{
		Data:     data,
		FileName: ConvertedName(originalName, target),
		MIMEType: target.MIMEType(),
		Format:   target,
	}, nil
}

// cellText renders a cell for text formats. Missing cells are empty and
// numbers use the canonical form.
func cellText(kind table.Kind, c table.Cell) string {
	if c.Missing {
		return ""
	}
	if kind == table.KindNumeric {
		return table.FormatNumber(c.Num)
	}
	return c.Text
}

func writeCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	cols := t.Columns()

	if err := writeCSVRecord(&buf, w, t.Names()); err != nil {
		return nil, err
	}

	record := make([]string, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		for j, col := range cols {
			record[j] = cellText(col.Kind, col.Cells[r])
		}
		if err := writeCSVRecord(&buf, w, record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeCSVRecord writes one record. A record holding a single empty field
// would come out as a blank line, which readers skip, so it is written as
// an explicit empty quoted field instead.
func writeCSVRecord(buf *bytes.Buffer, w *csv.Writer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		buf.WriteString("\"\"\n")
		return nil
	}
	return w.Write(record)
}

func writeXLSX(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("open stream writer: %w", err)
	}

	names := t.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	cols := t.Columns()
	for r := 0; r < t.NumRows(); r++ {
		values := make([]interface{}, len(cols))
		for j, col := range cols {
			c := col.Cells[r]
			switch {
			case c.Missing:
				values[j] = nil
			case col.Kind == table.KindNumeric:
				values[j] = c.Num
			default:
				values[j] = c.Text
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
