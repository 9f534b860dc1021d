package exportsvc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
)

var gradeHeader = []string{
	"Student Name", "Student Number", "Class", "Subject", "Assignment Type", "Assignment Name",
	"Score", "Max Score", "Percentage", "Weight (%)", "Date Recorded", "Recorded By",
}

func percentage(g grade.Grade) string {
	return g.Percentage().Round(2).String() + "%"
}

func gradeRows(details []grade.Detail) [][]string {
	rows := make([][]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, []string{
			d.StudentName,
			d.StudentNumber,
			d.ClassName,
			d.SubjectName,
			string(d.AssignmentType),
			d.AssignmentName,
			d.Score.String(),
			d.MaxScore.String(),
			percentage(d.Grade),
			d.Weight.String() + "%",
			d.DateRecorded.String(),
			d.RecordedByName,
		})
	}
	return rows
}

// Grades writes details in the given format. year and now only appear in the text report.
func Grades(w io.Writer, format Format, year core.AcademicYear, details []grade.Detail, now time.Time) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, gradeHeader, gradeRows(details))
	case FormatXLSX:
		return writeXLSX(w, gradeHeader, gradeRows(details))
	case FormatText:
		return gradesText(w, year, details, now)
	}
	return ErrUnknownFormat
}

func gradesText(w io.Writer, year core.AcademicYear, details []grade.Detail, now time.Time) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "GRADE EXPORT REPORT")
	fmt.Fprintf(bw, "Academic Year: %s\n", year)
	fmt.Fprintf(bw, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Total Records: %d\n\n", len(details))
	fmt.Fprintln(bw, strings.Repeat("-", 80))

	for _, d := range details {
		fmt.Fprintf(bw, "Student: %s (%s)\n", d.StudentName, d.StudentNumber)
		fmt.Fprintf(bw, "Class: %s\n", d.ClassName)
		fmt.Fprintf(bw, "Subject: %s (%s)\n", d.SubjectName, d.SubjectCode)
		fmt.Fprintf(bw, "Assignment: %s (%s)\n", d.AssignmentName, d.AssignmentType)
		fmt.Fprintf(bw, "Score: %s/%s (%s)\n", d.Score, d.MaxScore, percentage(d.Grade))
		fmt.Fprintf(bw, "Weight: %s%%\n", d.Weight)
		fmt.Fprintf(bw, "Date: %s\n", d.DateRecorded)
		fmt.Fprintf(bw, "Recorded By: %s\n", d.RecordedByName)
		fmt.Fprintln(bw, strings.Repeat("-", 40))
	}
	return errors.Wrap(bw.Flush(), "writing grade report")
}
