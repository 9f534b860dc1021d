package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Attendance is one attendance entry; a null SubjectID means daily (general) attendance.
type Attendance struct {
	ID         int         `json:"id"`
	StudentID  int         `json:"student_id"`
	SubjectID  null.Int    `json:"subject_id"`
	Date       core.Date   `json:"date"`
	Status     Status      `json:"status"`
	Notes      null.String `json:"notes"`
	RecordedBy int         `json:"recorded_by"`
	CreatedAt  time.Time   `json:"created_at"`
}

type NewAttendance struct {
	StudentID  int         `json:"student_id" validate:"required"`
	SubjectID  null.Int    `json:"subject_id"`
	Date       core.Date   `json:"date" validate:"required"`
	Status     Status      `json:"status" validate:"required,oneof=present absent late excused"`
	Notes      null.String `json:"notes"`
	RecordedBy int         `json:"recorded_by" validate:"required"`
}

func (na NewAttendance) attendance(now time.Time) Attendance {
	return Attendance{
		StudentID:  na.StudentID,
		SubjectID:  na.SubjectID,
		Date:       na.Date,
		Status:     na.Status,
		Notes:      na.Notes,
		RecordedBy: na.RecordedBy,
		CreatedAt:  now,
	}
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.Status = Status(core.CleanString(string(na.Status), true /* lower */))
	return validate.Struct(na)
}

type NewAttendances struct {
	Attendances []NewAttendance `json:"attendances" validate:"required,min=1,dive"`
}

func (nas *NewAttendances) Validate(validate *validator.Validate) error {
	for i := range nas.Attendances {
		na := &nas.Attendances[i]
		na.Status = Status(core.CleanString(string(na.Status), true /* lower */))
	}
	return validate.Struct(nas)
}

// ReportFilter selects attendance entries dated within [StartDate, EndDate].
type ReportFilter struct {
	ClassID   int       `query:"class_id"`
	StudentID int       `query:"student_id"`
	SubjectID int       `query:"subject_id"`
	StartDate core.Date `query:"start_date" validate:"required"`
	EndDate   core.Date `query:"end_date" validate:"required"`
}

func (rf *ReportFilter) Validate(validate *validator.Validate) error {
	if err := validate.Struct(rf); err != nil {
		return err
	}
	if rf.EndDate.Before(rf.StartDate.Time) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end_date cannot be before start_date"})
	}
	return nil
}

// Detail is an attendance entry joined with the names it refers to.
type Detail struct {
	Attendance
	StudentName   string      `json:"student_name"`
	StudentNumber string      `json:"student_number"`
	ClassName     string      `json:"class_name"`
	SubjectName   null.String `json:"subject_name"`
}
