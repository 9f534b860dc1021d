package core

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var (
	academicYearRegex = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

	ErrInvalidAcademicYear = errors.New("academic year must be of the form YYYY/YYYY spanning two consecutive years")
)

// AcademicYear is a school year spanning two calendar years, e.g. 2024/2025.
type AcademicYear struct {
	Start int
	End   int
}

func NewAcademicYear(start int) AcademicYear {
	return AcademicYear{Start: start, End: start + 1}
}

func ParseAcademicYear(s string) (AcademicYear, error) {
	m := academicYearRegex.FindStringSubmatch(CleanString(s))
	if m == nil {
		return AcademicYear{}, ErrInvalidAcademicYear
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if end != start+1 {
		return AcademicYear{}, ErrInvalidAcademicYear
	}
	return AcademicYear{Start: start, End: end}, nil
}

func (ay AcademicYear) IsZero() bool {
	return ay.Start == 0 && ay.End == 0
}

func (ay AcademicYear) String() string {
	if ay.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d/%04d", ay.Start, ay.End)
}

// StartYearBounds returns the half-open [from, to) range of the calendar year the academic year starts in.
func (ay AcademicYear) StartYearBounds() (from, to time.Time) {
	from = time.Date(ay.Start, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

func (ay AcademicYear) MarshalText() ([]byte, error) {
	return []byte(ay.String()), nil
}

func (ay *AcademicYear) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*ay = AcademicYear{}
		return nil
	}
	parsed, err := ParseAcademicYear(string(text))
	if err != nil {
		return err
	}
	*ay = parsed
	return nil
}

// UnmarshalParam binds query and path params.
func (ay *AcademicYear) UnmarshalParam(param string) error {
	return ay.UnmarshalText([]byte(param))
}

func (ay AcademicYear) Value() (driver.Value, error) {
	return ay.String(), nil
}

func (ay *AcademicYear) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ay = AcademicYear{}
		return nil
	case string:
		return ay.UnmarshalText([]byte(v))
	case []byte:
		return ay.UnmarshalText(v)
	}
	return errors.Errorf("cannot scan %T into AcademicYear", src)
}
