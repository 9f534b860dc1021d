package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/report"
)

type reportRepository struct {
	db core.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db core.DB) report.Repository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) GetStudentSnapshot(ctx context.Context, studentID int) (report.Student, error) {
	var row struct {
		ID            int    `db:"id"`
		Name          string `db:"name"`
		StudentNumber string `db:"student_number"`
		ClassID       int    `db:"class_id"`
		ClassName     string `db:"class_name"`
	}
	q := `SELECT s.id, u.name, s.student_number, s.class_id, c.name AS class_name
		FROM students s
		JOIN users u ON u.id = s.user_id
		JOIN classes c ON c.id = s.class_id
		WHERE s.id = $1`
	if err := sqlx.GetContext(ctx, repo.db, &row, q, studentID); err != nil {
		return report.Student{}, trapNoRowsErr(err, core.NewNotFoundError("student", studentID))
	}
	return report.Student(row), nil
}

func (repo *reportRepository) ListAttendance(ctx context.Context, studentID, year int) ([]report.AttendanceRow, error) {
	from, to := core.NewAcademicYear(year).StartYearBounds()

	var rows []struct {
		Status string    `db:"status"`
		Date   core.Date `db:"date"`
	}
	q := "SELECT status, date FROM attendances WHERE student_id = $1 AND date >= $2 AND date < $3 ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, studentID, from, to); err != nil {
		return nil, errors.Wrap(err, "selecting attendances")
	}
	atts := make([]report.AttendanceRow, 0, len(rows))
	for _, row := range rows {
		atts = append(atts, report.AttendanceRow{Status: attendance.Status(row.Status), Date: row.Date})
	}
	return atts, nil
}

func (repo *reportRepository) ListGrades(ctx context.Context, studentID, year int) ([]report.GradeRow, error) {
	from, to := core.NewAcademicYear(year).StartYearBounds()

	var rows []struct {
		SubjectID      int             `db:"subject_id"`
		SubjectName    string          `db:"subject_name"`
		SubjectCode    string          `db:"subject_code"`
		AssignmentType string          `db:"assignment_type"`
		Score          decimal.Decimal `db:"score"`
		MaxScore       decimal.Decimal `db:"max_score"`
	}
	q := `SELECT g.subject_id, subj.name AS subject_name, subj.code AS subject_code,
		g.assignment_type, g.score, g.max_score
		FROM grades g JOIN subjects subj ON subj.id = g.subject_id
		WHERE g.student_id = $1 AND g.date_recorded >= $2 AND g.date_recorded < $3
		ORDER BY g.id`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, studentID, from, to); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	grades := make([]report.GradeRow, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, report.GradeRow{
			SubjectID:      row.SubjectID,
			SubjectName:    row.SubjectName,
			SubjectCode:    row.SubjectCode,
			AssignmentType: grade.AssignmentType(row.AssignmentType),
			Score:          row.Score,
			MaxScore:       row.MaxScore,
		})
	}
	return grades, nil
}

func (repo *reportRepository) ListGradeConfigs(ctx context.Context, classID int, year core.AcademicYear) ([]report.ConfigRow, error) {
	var rows []configRow
	q := "SELECT " + configColumns + " FROM grade_configs WHERE class_id = $1 AND academic_year = $2 ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, classID, year); err != nil {
		return nil, errors.Wrap(err, "selecting grade configs")
	}
	configs := make([]report.ConfigRow, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, report.ConfigRow{ID: row.ID, SubjectID: row.SubjectID, Weights: row.config().Weights()})
	}
	return configs, nil
}
