package exportsvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatText Format = "text"
)

var ErrUnknownFormat = errors.New("format must be one of csv, xlsx, text")

// ParseFormat defaults to csv when s is empty.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatText:
		return f, nil
	case "excel":
		return FormatXLSX, nil
	}
	return "", ErrUnknownFormat
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Filename names an export file, e.g. grades_20240102_150405.csv
func (f Format) Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), f.Extension())
}
