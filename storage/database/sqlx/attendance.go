package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
)

type attendanceDetailRow struct {
	ID            int         `db:"id"`
	StudentID     int         `db:"student_id"`
	SubjectID     null.Int    `db:"subject_id"`
	Date          core.Date   `db:"date"`
	Status        string      `db:"status"`
	Notes         null.String `db:"notes"`
	RecordedBy    int         `db:"recorded_by"`
	CreatedAt     time.Time   `db:"created_at"`
	StudentName   string      `db:"student_name"`
	StudentNumber string      `db:"student_number"`
	ClassName     string      `db:"class_name"`
	SubjectName   null.String `db:"subject_name"`
}

func (row attendanceDetailRow) detail() attendance.Detail {
	return attendance.Detail{
		Attendance: attendance.Attendance{
			ID:         row.ID,
			StudentID:  row.StudentID,
			SubjectID:  row.SubjectID,
			Date:       row.Date,
			Status:     attendance.Status(row.Status),
			Notes:      row.Notes,
			RecordedBy: row.RecordedBy,
			CreatedAt:  row.CreatedAt.UTC(),
		},
		StudentName:   row.StudentName,
		StudentNumber: row.StudentNumber,
		ClassName:     row.ClassName,
		SubjectName:   row.SubjectName,
	}
}

type attendanceRepository struct {
	db core.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db core.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendances(ctx context.Context, atts ...attendance.Attendance) ([]attendance.Attendance, error) {
	q := `INSERT INTO attendances (student_id, subject_id, date, status, notes, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	created := make([]attendance.Attendance, 0, len(atts))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, att := range atts {
			err := sqlx.GetContext(ctx, tx, &att.ID, q,
				att.StudentID, att.SubjectID, att.Date, string(att.Status), att.Notes, att.RecordedBy, att.CreatedAt)
			if err != nil {
				return errors.Wrap(trapConstraintErr(err), "inserting attendance")
			}
			created = append(created, att)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *attendanceRepository) QueryAttendanceDetails(ctx context.Context, filter attendance.ReportFilter) ([]attendance.Detail, error) {
	var w where
	w.add("a.date >= $%[1]d", filter.StartDate)
	w.add("a.date <= $%[1]d", filter.EndDate)
	if filter.ClassID != 0 {
		w.add("s.class_id = $%[1]d", filter.ClassID)
	}
	if filter.StudentID != 0 {
		w.add("a.student_id = $%[1]d", filter.StudentID)
	}
	if filter.SubjectID != 0 {
		w.add("a.subject_id = $%[1]d", filter.SubjectID)
	}

	q := `SELECT a.id, a.student_id, a.subject_id, a.date, a.status, a.notes, a.recorded_by, a.created_at,
		u.name AS student_name, s.student_number, c.name AS class_name, subj.name AS subject_name
		FROM attendances a
		JOIN students s ON s.id = a.student_id
		JOIN users u ON u.id = s.user_id
		JOIN classes c ON c.id = s.class_id
		LEFT JOIN subjects subj ON subj.id = a.subject_id` + w.String() + `
		ORDER BY a.date, a.student_id, a.id`

	var rows []attendanceDetailRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendances")
	}
	details := make([]attendance.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, nil
}
