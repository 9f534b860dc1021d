package report

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
)

var hundred = decimal.NewFromInt(100)

type (
	Repository interface {
		// GetStudentSnapshot fails with a core.NotFoundError when the student does not exist.
		GetStudentSnapshot(ctx context.Context, studentID int) (Student, error)
		// ListAttendance returns the student's attendance dated within calendar year `year`.
		ListAttendance(ctx context.Context, studentID, year int) ([]AttendanceRow, error)
		// ListGrades returns the student's grades recorded within calendar year `year`, ordered by id.
		ListGrades(ctx context.Context, studentID, year int) ([]GradeRow, error)
		// ListGradeConfigs returns the class configs of the academic year, ordered by id.
		ListGradeConfigs(ctx context.Context, classID int, year core.AcademicYear) ([]ConfigRow, error)
	}

	Service struct {
		repo     Repository
		defaults grade.Weights
	}
)

// NewService returns the report Service; defaults weigh subjects that have no grade configuration.
func NewService(repo Repository, defaults grade.Weights) *Service {
	return &Service{repo: repo, defaults: defaults}
}

// StudentReport aggregates the attendance and grades of a student over the starting calendar year of year.
// The only error condition is an unknown student (or a store failure).
func (svc *Service) StudentReport(ctx context.Context, studentID int, year core.AcademicYear) (StudentReport, error) {
	stu, err := svc.repo.GetStudentSnapshot(ctx, studentID)
	if err != nil {
		return StudentReport{}, err
	}

	atts, err := svc.repo.ListAttendance(ctx, studentID, year.Start)
	if err != nil {
		return StudentReport{}, errors.Wrap(err, "listing attendance")
	}
	grades, err := svc.repo.ListGrades(ctx, studentID, year.Start)
	if err != nil {
		return StudentReport{}, errors.Wrap(err, "listing grades")
	}
	configs, err := svc.repo.ListGradeConfigs(ctx, stu.ClassID, year)
	if err != nil {
		return StudentReport{}, errors.Wrap(err, "listing grade configs")
	}

	subjects := SummarizeGrades(grades, configs, svc.defaults)
	return StudentReport{
		Student:             stu,
		AcademicYear:        year,
		Attendance:          SummarizeAttendance(atts),
		Grades:              subjects,
		OverallGradeAverage: OverallAverage(subjects),
	}, nil
}

// SummarizeAttendance tallies rows per status. The percentage is the present share rounded to a whole percent.
func SummarizeAttendance(rows []AttendanceRow) AttendanceSummary {
	var sum AttendanceSummary
	for _, row := range rows {
		switch row.Status {
		case attendance.StatusPresent:
			sum.Present++
		case attendance.StatusAbsent:
			sum.Absent++
		case attendance.StatusLate:
			sum.Late++
		case attendance.StatusExcused:
			sum.Excused++
		}
	}
	sum.TotalDays = len(rows)
	if sum.TotalDays > 0 {
		pct := decimal.NewFromInt(int64(sum.Present)).Mul(hundred).Div(decimal.NewFromInt(int64(sum.TotalDays)))
		sum.AttendancePercentage = int(pct.Round(0).IntPart())
	}
	return sum
}

type subjectBuckets struct {
	summary               SubjectGradeSummary
	daily, midterm, final []decimal.Decimal
}

// SummarizeGrades groups rows by subject in first-seen order and weighs each subject's category averages.
// The lowest-id config of a subject wins; subjects without one use defaults.
func SummarizeGrades(rows []GradeRow, configs []ConfigRow, defaults grade.Weights) []SubjectGradeSummary {
	weights := make(map[int]grade.Weights, len(configs))
	lowest := make(map[int]int, len(configs))
	for _, conf := range configs {
		if id, ok := lowest[conf.SubjectID]; ok && id <= conf.ID {
			continue
		}
		lowest[conf.SubjectID] = conf.ID
		weights[conf.SubjectID] = conf.Weights
	}

	var order []int
	groups := make(map[int]*subjectBuckets)
	for _, row := range rows {
		grp, ok := groups[row.SubjectID]
		if !ok {
			grp = &subjectBuckets{summary: SubjectGradeSummary{
				SubjectID:   row.SubjectID,
				SubjectName: row.SubjectName,
				SubjectCode: row.SubjectCode,
			}}
			groups[row.SubjectID] = grp
			order = append(order, row.SubjectID)
		}

		pct := row.Score.Mul(hundred).Div(row.MaxScore)
		switch row.AssignmentType.Category() {
		case grade.CategoryDaily:
			grp.daily = append(grp.daily, pct)
		case grade.CategoryMidterm:
			grp.midterm = append(grp.midterm, pct)
		case grade.CategoryFinal:
			grp.final = append(grp.final, pct)
		case grade.CategoryOther:
			// not weighted
		}
	}

	summaries := make([]SubjectGradeSummary, 0, len(order))
	for _, subjectID := range order {
		grp := groups[subjectID]
		w, ok := weights[subjectID]
		if !ok {
			w = defaults
		}
		dailyFrac, midtermFrac, finalFrac := w.Fractions()

		sum := grp.summary
		sum.DailyAverage = average(grp.daily)
		sum.MidtermAverage = average(grp.midterm)
		sum.FinalAverage = average(grp.final)
		sum.WeightedFinalGrade = sum.DailyAverage.Mul(dailyFrac).
			Add(sum.MidtermAverage.Mul(midtermFrac)).
			Add(sum.FinalAverage.Mul(finalFrac)).
			Round(2)
		summaries = append(summaries, sum)
	}
	return summaries
}

// OverallAverage is the mean weighted grade across subjects, 0 without subjects.
func OverallAverage(subjects []SubjectGradeSummary) decimal.Decimal {
	grades := make([]decimal.Decimal, 0, len(subjects))
	for _, s := range subjects {
		grades = append(grades, s.WeightedFinalGrade)
	}
	return average(grades)
}

// average is the mean of values rounded half-up to 2 decimal places, 0 when empty.
func average(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values)))).Round(2)
}
