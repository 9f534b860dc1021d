package report

import (
	"github.com/shopspring/decimal"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
)

// Student is the identity snapshot a report is built for.
type Student struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	StudentNumber string `json:"student_number"`
	ClassID       int    `json:"class_id"`
	ClassName     string `json:"class_name"`
}

type AttendanceRow struct {
	Status attendance.Status
	Date   core.Date
}

type GradeRow struct {
	SubjectID      int
	SubjectName    string
	SubjectCode    string
	AssignmentType grade.AssignmentType
	Score          decimal.Decimal
	MaxScore       decimal.Decimal
}

type ConfigRow struct {
	ID        int
	SubjectID int
	Weights   grade.Weights
}

type AttendanceSummary struct {
	TotalDays            int `json:"total_days"`
	Present              int `json:"present"`
	Absent               int `json:"absent"`
	Late                 int `json:"late"`
	Excused              int `json:"excused"`
	AttendancePercentage int `json:"attendance_percentage"`
}

type SubjectGradeSummary struct {
	SubjectID          int             `json:"subject_id"`
	SubjectName        string          `json:"subject_name"`
	SubjectCode        string          `json:"subject_code"`
	DailyAverage       decimal.Decimal `json:"daily_average"`
	MidtermAverage     decimal.Decimal `json:"midterm_average"`
	FinalAverage       decimal.Decimal `json:"final_average"`
	WeightedFinalGrade decimal.Decimal `json:"weighted_final_grade"`
}

type StudentReport struct {
	Student             Student               `json:"student"`
	AcademicYear        core.AcademicYear     `json:"academic_year"`
	Attendance          AttendanceSummary     `json:"attendance"`
	Grades              []SubjectGradeSummary `json:"grades"`
	OverallGradeAverage decimal.Decimal       `json:"overall_grade_average"`
}
