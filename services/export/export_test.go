package exportsvc

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
)

var now = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

func gradeDetails() []grade.Detail {
	return []grade.Detail{
		{
			Grade: grade.Grade{
				ID:             1,
				AssignmentType: grade.AssignmentDaily,
				AssignmentName: "Quiz 1",
				Score:          decimal.NewFromInt(17),
				MaxScore:       decimal.NewFromInt(20),
				Weight:         decimal.NewFromInt(20),
				DateRecorded:   core.NewDate(2023, time.March, 1),
			},
			StudentName:    "Alice",
			StudentNumber:  "S001",
			ClassName:      "7A",
			SubjectName:    "Mathematics",
			SubjectCode:    "MTK",
			RecordedByName: "Pak Budi",
		},
		{
			Grade: grade.Grade{
				ID:             2,
				AssignmentType: grade.AssignmentFinal,
				AssignmentName: "Final, term 1",
				Score:          decimal.RequireFromString("2"),
				MaxScore:       decimal.NewFromInt(3),
				Weight:         decimal.RequireFromString("12.5"),
				DateRecorded:   core.NewDate(2023, time.June, 10),
			},
			StudentName:    "Bob",
			StudentNumber:  "S002",
			ClassName:      "7A",
			SubjectName:    "English",
			SubjectCode:    "ENG",
			RecordedByName: "Bu Sari",
		},
	}
}

func attendanceDetails() []attendance.Detail {
	return []attendance.Detail{
		{
			Attendance: attendance.Attendance{
				ID: 7, Date: core.NewDate(2024, time.January, 3), Status: attendance.StatusAbsent,
				Notes: null.StringFrom(`sick, "flu"`),
			},
			StudentName: "Alice", StudentNumber: "S001", ClassName: "7A",
		},
		{
			Attendance: attendance.Attendance{
				ID: 8, SubjectID: null.IntFrom(1), Date: core.NewDate(2024, time.January, 3), Status: attendance.StatusPresent,
			},
			StudentName: "Bob", StudentNumber: "S002", ClassName: "7A", SubjectName: null.StringFrom("Mathematics"),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: " xlsx ", want: FormatXLSX},
		{in: "excel", want: FormatXLSX},
		{in: "text", want: FormatText},
		{in: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Equal(t, ErrUnknownFormat, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "grades_20240102_150405.txt", FormatText.Filename("grades", now))
	assert.Equal(t, "attendance_20240102_150405.xlsx", FormatXLSX.Filename("attendance", now))
}

func TestGrades_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Grades(&buf, FormatCSV, core.NewAcademicYear(2023), gradeDetails(), now))

	want := "Student Name,Student Number,Class,Subject,Assignment Type,Assignment Name,Score,Max Score,Percentage,Weight (%),Date Recorded,Recorded By\n" +
		"Alice,S001,7A,Mathematics,daily,Quiz 1,17,20,85%,20%,2023-03-01,Pak Budi\n" +
		"Bob,S002,7A,English,final,\"Final, term 1\",2,3,66.67%,12.5%,2023-06-10,Bu Sari\n"
	assert.Equal(t, want, buf.String())
}

func TestGrades_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Grades(&buf, FormatText, core.NewAcademicYear(2023), gradeDetails(), now))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "GRADE EXPORT REPORT\nAcademic Year: 2023/2024\nGenerated: 2024-01-02 15:04:05\nTotal Records: 2\n"))
	assert.Contains(t, out, "Student: Alice (S001)\n")
	assert.Contains(t, out, "Subject: Mathematics (MTK)\n")
	assert.Contains(t, out, "Score: 17/20 (85%)\n")
	assert.Contains(t, out, "Weight: 12.5%\n")
}

func TestAttendance_CSV(t *testing.T) {
	var buf bytes.Buffer
	from, to := core.NewDate(2024, time.January, 1), core.NewDate(2024, time.January, 31)
	require.NoError(t, Attendance(&buf, FormatCSV, from, to, attendanceDetails(), now))

	want := "ID,Student Name,Student Number,Class,Subject,Date,Status,Notes\n" +
		"7,Alice,S001,7A,,2024-01-03,absent,\"sick, \"\"flu\"\"\"\n" +
		"8,Bob,S002,7A,Mathematics,2024-01-03,present,\n"
	assert.Equal(t, want, buf.String())
}

func TestAttendance_Text(t *testing.T) {
	var buf bytes.Buffer
	from, to := core.NewDate(2024, time.January, 1), core.NewDate(2024, time.January, 31)
	require.NoError(t, Attendance(&buf, FormatText, from, to, attendanceDetails(), now))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "ATTENDANCE EXPORT REPORT\nPeriod: 2024-01-01 - 2024-01-31\n"))
	assert.Contains(t, out, "Status Summary:\npresent: 1\nabsent: 1\nlate: 0\nexcused: 0\n")
	assert.Contains(t, out, "Subject: General\n")
	assert.Contains(t, out, "Notes: sick, \"flu\"\n")
}

func TestAttendance_XLSX(t *testing.T) {
	var buf bytes.Buffer
	from, to := core.NewDate(2024, time.January, 1), core.NewDate(2024, time.January, 31)
	require.NoError(t, Attendance(&buf, FormatXLSX, from, to, attendanceDetails(), now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, attendanceHeader, rows[0])
	assert.Equal(t, []string{"8", "Bob", "S002", "7A", "Mathematics", "2024-01-03", "present"}, rows[2])
}

func TestReadStudents(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range [][]interface{}{
		{"Name", "Email", "Student Number", "Parent Name", "Parent Email", "Parent Phone"},
		{" Alice ", "alice@school.id", "S001", "Mother", "mother@mail.id", "0812"},
		{},
		{"Bob", "bob@school.id", "S002"},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	students, err := ReadStudents(&buf)
	require.NoError(t, err)
	assert.Equal(t, []school.ImportStudent{
		{
			Name: "Alice", Email: "alice@school.id", StudentNumber: "S001",
			ParentName: "Mother", ParentEmail: "mother@mail.id", ParentPhone: "0812",
		},
		{Name: "Bob", Email: "bob@school.id", StudentNumber: "S002"},
	}, students)

	_, err = ReadStudents(strings.NewReader("not a workbook"))
	assert.Error(t, err)
}
