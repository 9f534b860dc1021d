package exportsvc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/smpn3kaledupa/presensi-nilai/core/school"
)

// ReadStudents reads an enrollment sheet: the first sheet, a header row, then one student per row with
// columns name, email, student_number, parent_name, parent_email, parent_phone. Blank rows are skipped.
func ReadStudents(r io.Reader) ([]school.ImportStudent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheet)
	}

	students := make([]school.ImportStudent, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		col := func(j int) string {
			if j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}
		is := school.ImportStudent{
			Name:          col(0),
			Email:         col(1),
			StudentNumber: col(2),
			ParentName:    col(3),
			ParentEmail:   col(4),
			ParentPhone:   col(5),
		}
		if is == (school.ImportStudent{}) {
			continue
		}
		students = append(students, is)
	}
	return students, nil
}
