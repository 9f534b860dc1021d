package exportsvc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
)

var attendanceHeader = []string{"ID", "Student Name", "Student Number", "Class", "Subject", "Date", "Status", "Notes"}

func attendanceRows(details []attendance.Detail) [][]string {
	rows := make([][]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, []string{
			strconv.Itoa(d.ID),
			d.StudentName,
			d.StudentNumber,
			d.ClassName,
			d.SubjectName.String,
			d.Date.String(),
			string(d.Status),
			d.Notes.String,
		})
	}
	return rows
}

// Attendance writes details in the given format. The period and now only appear in the text report.
func Attendance(w io.Writer, format Format, from, to core.Date, details []attendance.Detail, now time.Time) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, attendanceHeader, attendanceRows(details))
	case FormatXLSX:
		return writeXLSX(w, attendanceHeader, attendanceRows(details))
	case FormatText:
		return attendanceText(w, from, to, details, now)
	}
	return ErrUnknownFormat
}

func attendanceText(w io.Writer, from, to core.Date, details []attendance.Detail, now time.Time) error {
	counts := make(map[attendance.Status]int, len(attendance.Statuses))
	for _, d := range details {
		counts[d.Status]++
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ATTENDANCE EXPORT REPORT")
	fmt.Fprintf(bw, "Period: %s - %s\n", from, to)
	fmt.Fprintf(bw, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Total Records: %d\n\n", len(details))

	fmt.Fprintln(bw, "Status Summary:")
	for _, status := range attendance.Statuses {
		fmt.Fprintf(bw, "%s: %d\n", status, counts[status])
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, strings.Repeat("-", 80))

	for _, d := range details {
		subject := "General"
		if d.SubjectName.Valid {
			subject = d.SubjectName.String
		}
		fmt.Fprintf(bw, "Date: %s\n", d.Date)
		fmt.Fprintf(bw, "Student: %s (%s)\n", d.StudentName, d.StudentNumber)
		fmt.Fprintf(bw, "Class: %s\n", d.ClassName)
		fmt.Fprintf(bw, "Subject: %s\n", subject)
		fmt.Fprintf(bw, "Status: %s\n", d.Status)
		if d.Notes.Valid && d.Notes.String != "" {
			fmt.Fprintf(bw, "Notes: %s\n", d.Notes.String)
		}
		fmt.Fprintln(bw, strings.Repeat("-", 40))
	}
	return errors.Wrap(bw.Flush(), "writing attendance report")
}
