package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
)

const configColumns = "id, subject_id, class_id, daily_weight, midterm_weight, final_weight, academic_year, created_at"

type configRow struct {
	ID            int               `db:"id"`
	SubjectID     int               `db:"subject_id"`
	ClassID       int               `db:"class_id"`
	DailyWeight   decimal.Decimal   `db:"daily_weight"`
	MidtermWeight decimal.Decimal   `db:"midterm_weight"`
	FinalWeight   decimal.Decimal   `db:"final_weight"`
	AcademicYear  core.AcademicYear `db:"academic_year"`
	CreatedAt     time.Time         `db:"created_at"`
}

func (row configRow) config() grade.Config {
	return grade.Config{
		ID:            row.ID,
		SubjectID:     row.SubjectID,
		ClassID:       row.ClassID,
		DailyWeight:   row.DailyWeight,
		MidtermWeight: row.MidtermWeight,
		FinalWeight:   row.FinalWeight,
		AcademicYear:  row.AcademicYear,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

type gradeDetailRow struct {
	ID             int             `db:"id"`
	StudentID      int             `db:"student_id"`
	SubjectID      int             `db:"subject_id"`
	AssignmentType string          `db:"assignment_type"`
	AssignmentName string          `db:"assignment_name"`
	Score          decimal.Decimal `db:"score"`
	MaxScore       decimal.Decimal `db:"max_score"`
	Weight         decimal.Decimal `db:"weight"`
	DateRecorded   core.Date       `db:"date_recorded"`
	RecordedBy     int             `db:"recorded_by"`
	CreatedAt      time.Time       `db:"created_at"`
	StudentName    string          `db:"student_name"`
	StudentNumber  string          `db:"student_number"`
	ClassName      string          `db:"class_name"`
	SubjectName    string          `db:"subject_name"`
	SubjectCode    string          `db:"subject_code"`
	RecordedByName string          `db:"recorded_by_name"`
}

func (row gradeDetailRow) detail() grade.Detail {
	return grade.Detail{
		Grade: grade.Grade{
			ID:             row.ID,
			StudentID:      row.StudentID,
			SubjectID:      row.SubjectID,
			AssignmentType: grade.AssignmentType(row.AssignmentType),
			AssignmentName: row.AssignmentName,
			Score:          row.Score,
			MaxScore:       row.MaxScore,
			Weight:         row.Weight,
			DateRecorded:   row.DateRecorded,
			RecordedBy:     row.RecordedBy,
			CreatedAt:      row.CreatedAt.UTC(),
		},
		StudentName:    row.StudentName,
		StudentNumber:  row.StudentNumber,
		ClassName:      row.ClassName,
		SubjectName:    row.SubjectName,
		SubjectCode:    row.SubjectCode,
		RecordedByName: row.RecordedByName,
	}
}

type gradeRepository struct {
	db core.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db core.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrades(ctx context.Context, grades ...grade.Grade) ([]grade.Grade, error) {
	q := `INSERT INTO grades (student_id, subject_id, assignment_type, assignment_name,
		score, max_score, weight, date_recorded, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	created := make([]grade.Grade, 0, len(grades))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, g := range grades {
			err := sqlx.GetContext(ctx, tx, &g.ID, q,
				g.StudentID, g.SubjectID, string(g.AssignmentType), g.AssignmentName,
				g.Score, g.MaxScore, g.Weight, g.DateRecorded, g.RecordedBy, g.CreatedAt)
			if err != nil {
				return errors.Wrap(trapConstraintErr(err), "inserting grade")
			}
			created = append(created, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *gradeRepository) CreateConfig(ctx context.Context, conf grade.Config) (grade.Config, error) {
	q := `INSERT INTO grade_configs (subject_id, class_id, daily_weight, midterm_weight, final_weight, academic_year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := sqlx.GetContext(ctx, repo.db, &conf.ID, q,
		conf.SubjectID, conf.ClassID, conf.DailyWeight, conf.MidtermWeight, conf.FinalWeight, conf.AcademicYear, conf.CreatedAt)
	if err != nil {
		return grade.Config{}, errors.Wrap(trapConstraintErr(err), "inserting grade config")
	}
	return conf, nil
}

func (repo *gradeRepository) QueryConfigs(ctx context.Context, filter grade.ConfigFilter) ([]grade.Config, error) {
	var w where
	if filter.SubjectID != 0 {
		w.add("subject_id = $%[1]d", filter.SubjectID)
	}
	if filter.ClassID != 0 {
		w.add("class_id = $%[1]d", filter.ClassID)
	}
	if !filter.AcademicYear.IsZero() {
		w.add("academic_year = $%[1]d", filter.AcademicYear)
	}

	var rows []configRow
	q := "SELECT " + configColumns + " FROM grade_configs" + w.String() + " ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting grade configs")
	}
	configs := make([]grade.Config, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, row.config())
	}
	return configs, nil
}

func (repo *gradeRepository) QueryGradeDetails(ctx context.Context, filter grade.ReportFilter) ([]grade.Detail, error) {
	from, to := filter.AcademicYear.StartYearBounds()

	var w where
	w.add("g.date_recorded >= $%[1]d", from)
	w.add("g.date_recorded < $%[1]d", to)
	if filter.ClassID != 0 {
		w.add("s.class_id = $%[1]d", filter.ClassID)
	}
	if filter.StudentID != 0 {
		w.add("g.student_id = $%[1]d", filter.StudentID)
	}
	if filter.SubjectID != 0 {
		w.add("g.subject_id = $%[1]d", filter.SubjectID)
	}

	q := `SELECT g.id, g.student_id, g.subject_id, g.assignment_type, g.assignment_name,
		g.score, g.max_score, g.weight, g.date_recorded, g.recorded_by, g.created_at,
		u.name AS student_name, s.student_number, c.name AS class_name,
		subj.name AS subject_name, subj.code AS subject_code, rec.name AS recorded_by_name
		FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN users u ON u.id = s.user_id
		JOIN classes c ON c.id = s.class_id
		JOIN subjects subj ON subj.id = g.subject_id
		JOIN users rec ON rec.id = g.recorded_by` + w.String() + `
		ORDER BY g.date_recorded, g.id`

	var rows []gradeDetailRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	details := make([]grade.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, nil
}
