package grade

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/smpn3kaledupa/presensi-nilai/core"
)

// AssignmentType is the free-form grading category of a grade entry.
type AssignmentType string

const (
	AssignmentDaily   AssignmentType = "daily"
	AssignmentMidterm AssignmentType = "midterm"
	AssignmentFinal   AssignmentType = "final"
)

// Category is the weighted bucket an AssignmentType falls in.
type Category int

const (
	CategoryOther Category = iota
	CategoryDaily
	CategoryMidterm
	CategoryFinal
)

// Category maps the three weighted assignment types; anything else is CategoryOther.
func (t AssignmentType) Category() Category {
	switch t {
	case AssignmentDaily:
		return CategoryDaily
	case AssignmentMidterm:
		return CategoryMidterm
	case AssignmentFinal:
		return CategoryFinal
	default:
		return CategoryOther
	}
}

var hundred = decimal.NewFromInt(100)

// Weights are the daily, midterm and final shares of a weighted grade, in percent.
type Weights struct {
	Daily   decimal.Decimal `json:"daily_weight"`
	Midterm decimal.Decimal `json:"midterm_weight"`
	Final   decimal.Decimal `json:"final_weight"`
}

// DefaultWeights apply to subjects without a grade configuration.
var DefaultWeights = Weights{
	Daily:   decimal.NewFromInt(40),
	Midterm: decimal.NewFromInt(30),
	Final:   decimal.NewFromInt(30),
}

func (w Weights) Total() decimal.Decimal {
	return w.Daily.Add(w.Midterm).Add(w.Final)
}

// Fractions returns the weights divided by 100.
func (w Weights) Fractions() (daily, midterm, final decimal.Decimal) {
	return w.Daily.Div(hundred), w.Midterm.Div(hundred), w.Final.Div(hundred)
}

type Grade struct {
	ID             int             `json:"id"`
	StudentID      int             `json:"student_id"`
	SubjectID      int             `json:"subject_id"`
	AssignmentType AssignmentType  `json:"assignment_type"`
	AssignmentName string          `json:"assignment_name"`
	Score          decimal.Decimal `json:"score"`
	MaxScore       decimal.Decimal `json:"max_score"`
	Weight         decimal.Decimal `json:"weight"`
	DateRecorded   core.Date       `json:"date_recorded"`
	RecordedBy     int             `json:"recorded_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Percentage is the score normalized to a 0-100 scale by its max score.
func (g Grade) Percentage() decimal.Decimal {
	return g.Score.Mul(hundred).Div(g.MaxScore)
}

// Scores and weights fit NUMERIC(5,2) columns.
type NewGrade struct {
	StudentID      int             `json:"student_id" validate:"required"`
	SubjectID      int             `json:"subject_id" validate:"required"`
	AssignmentType AssignmentType  `json:"assignment_type" validate:"required"`
	AssignmentName string          `json:"assignment_name" validate:"required"`
	Score          decimal.Decimal `json:"score" validate:"gte=0,lte=999.99,decimal2"`
	MaxScore       decimal.Decimal `json:"max_score" validate:"gt=0,lte=999.99,decimal2"`
	Weight         decimal.Decimal `json:"weight" validate:"gte=0,lte=100,decimal2"`
	DateRecorded   core.Date       `json:"date_recorded" validate:"required"`
	RecordedBy     int             `json:"recorded_by" validate:"required"`
}

func (ng NewGrade) grade(now time.Time) Grade {
	return Grade{
		StudentID:      ng.StudentID,
		SubjectID:      ng.SubjectID,
		AssignmentType: ng.AssignmentType,
		AssignmentName: ng.AssignmentName,
		Score:          ng.Score,
		MaxScore:       ng.MaxScore,
		Weight:         ng.Weight,
		DateRecorded:   ng.DateRecorded,
		RecordedBy:     ng.RecordedBy,
		CreatedAt:      now,
	}
}

func (ng *NewGrade) clean() {
	ng.AssignmentType = AssignmentType(core.CleanString(string(ng.AssignmentType)))
	ng.AssignmentName = core.CleanString(ng.AssignmentName)
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.clean()
	return validate.Struct(ng)
}

type NewGrades struct {
	Grades []NewGrade `json:"grades" validate:"required,min=1,dive"`
}

func (ngs *NewGrades) Validate(validate *validator.Validate) error {
	for i := range ngs.Grades {
		ngs.Grades[i].clean()
	}
	return validate.Struct(ngs)
}

// Config is the weighting of one subject for one class and academic year.
type Config struct {
	ID            int               `json:"id"`
	SubjectID     int               `json:"subject_id"`
	ClassID       int               `json:"class_id"`
	DailyWeight   decimal.Decimal   `json:"daily_weight"`
	MidtermWeight decimal.Decimal   `json:"midterm_weight"`
	FinalWeight   decimal.Decimal   `json:"final_weight"`
	AcademicYear  core.AcademicYear `json:"academic_year"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (c Config) Weights() Weights {
	return Weights{Daily: c.DailyWeight, Midterm: c.MidtermWeight, Final: c.FinalWeight}
}

type NewConfig struct {
	SubjectID     int               `json:"subject_id" validate:"required"`
	ClassID       int               `json:"class_id" validate:"required"`
	DailyWeight   decimal.Decimal   `json:"daily_weight" validate:"gte=0,lte=100,decimal2"`
	MidtermWeight decimal.Decimal   `json:"midterm_weight" validate:"gte=0,lte=100,decimal2"`
	FinalWeight   decimal.Decimal   `json:"final_weight" validate:"gte=0,lte=100,decimal2"`
	AcademicYear  core.AcademicYear `json:"academic_year" validate:"required"`
}

func (nc *NewConfig) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}

type ConfigFilter struct {
	SubjectID    int               `query:"subject_id"`
	ClassID      int               `query:"class_id"`
	AcademicYear core.AcademicYear `query:"academic_year"`
}

// ReportFilter selects grades recorded in the starting calendar year of AcademicYear.
type ReportFilter struct {
	ClassID      int               `query:"class_id"`
	StudentID    int               `query:"student_id"`
	SubjectID    int               `query:"subject_id"`
	AcademicYear core.AcademicYear `query:"academic_year" validate:"required"`
}

func (rf *ReportFilter) Validate(validate *validator.Validate) error {
	return validate.Struct(rf)
}

// Detail is a grade joined with the names it refers to.
type Detail struct {
	Grade
	StudentName    string `json:"student_name"`
	StudentNumber  string `json:"student_number"`
	ClassName      string `json:"class_name"`
	SubjectName    string `json:"subject_name"`
	SubjectCode    string `json:"subject_code"`
	RecordedByName string `json:"recorded_by_name"`
}
