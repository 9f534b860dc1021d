package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// uniqueMessages are the user facing messages of the unique constraints declared by the migrations.
var uniqueMessages = map[string]string{
	"users_email_key":              "a user with this email already exists",
	"subjects_code_key":            "a subject with this code already exists",
	"students_student_number_key":  "a student with this number already exists",
	"students_user_id_key":         "this user is already a student",
	"teachers_employee_number_key": "a teacher with this employee number already exists",
	"teachers_user_id_key":         "this user is already a teacher",
	"parents_user_id_key":          "this user is already a parent",
	"teacher_assignments_unique":   "this teacher is already assigned to the subject and class",
}

func trapNoRowsErr(err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

// trapConstraintErr turns postgres integrity violations into core.ConstraintError.
func trapConstraintErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		msg, ok := uniqueMessages[pqErr.Constraint]
		if !ok {
			msg = pqErr.Message
		}
		return core.NewConstraintError(pqErr.Constraint, msg)
	case foreignKeyViolation:
		return core.NewConstraintError(pqErr.Constraint, pqErr.Detail)
	}
	return err
}

// inTx runs fn in a transaction, committed only when fn succeeds.
func inTx(ctx context.Context, db core.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// selectIn selects into dest the rows of query whose single "IN (?)" clause matches ids.
func selectIn(ctx context.Context, db core.DBExecutor, dest interface{}, query string, ids []int) error {
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, db, dest, db.Rebind(q), args...)
}

// where accumulates AND-ed conditions; each condition formats its placeholder index with %[1]d.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
