package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
)

const notificationColumns = "id, parent_id, student_id, message, type, status, sent_at, created_at"

type notificationRow struct {
	ID        int       `db:"id"`
	ParentID  int       `db:"parent_id"`
	StudentID int       `db:"student_id"`
	Message   string    `db:"message"`
	Type      string    `db:"type"`
	Status    string    `db:"status"`
	SentAt    null.Time `db:"sent_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (row notificationRow) notification() notification.Notification {
	return notification.Notification{
		ID:        row.ID,
		ParentID:  row.ParentID,
		StudentID: row.StudentID,
		Message:   row.Message,
		Type:      notification.Type(row.Type),
		Status:    notification.Status(row.Status),
		SentAt:    row.SentAt,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

type notificationRepository struct {
	db core.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db core.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotifications(ctx context.Context, notifs ...notification.Notification) ([]notification.Notification, error) {
	q := `INSERT INTO notifications (parent_id, student_id, message, type, status, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	created := make([]notification.Notification, 0, len(notifs))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, n := range notifs {
			err := sqlx.GetContext(ctx, tx, &n.ID, q,
				n.ParentID, n.StudentID, n.Message, string(n.Type), string(n.Status), n.SentAt, n.CreatedAt)
			if err != nil {
				return errors.Wrap(trapConstraintErr(err), "inserting notification")
			}
			created = append(created, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	var w where
	if filter.ParentID != 0 {
		w.add("parent_id = $%[1]d", filter.ParentID)
	}
	if filter.StudentID != 0 {
		w.add("student_id = $%[1]d", filter.StudentID)
	}
	if filter.Status != "" {
		w.add("status = $%[1]d", string(filter.Status))
	}

	var rows []notificationRow
	q := "SELECT " + notificationColumns + " FROM notifications" + w.String() + " ORDER BY created_at DESC, id DESC"
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.notification())
	}
	return notifs, nil
}
