package exportsvc

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// writeCSV writes header then rows as RFC 4180 CSV.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing csv rows")
	}
	return nil
}

// writeXLSX writes header then rows on the first sheet of a new workbook.
func writeXLSX(w io.Writer, header []string, rows [][]string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing workbook")
		}
	}()

	name := f.GetSheetName(0)

	setRow := func(i int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		return f.SetSheetRow(name, cell, &cells)
	}

	if err = setRow(0, header); err != nil {
		return errors.Wrap(err, "writing xlsx header")
	}
	for i, row := range rows {
		if err = setRow(i+1, row); err != nil {
			return errors.Wrapf(err, "writing xlsx row %d", i+1)
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}
