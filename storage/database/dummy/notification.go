package dummydb

import (
	"context"
	"sort"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotifications(_ context.Context, notifs ...notification.Notification) ([]notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, n := range notifs {
		if _, ok := repo.db.parents[n.ParentID]; !ok {
			return nil, core.NewNotFoundError("parent", n.ParentID)
		}
		if _, ok := repo.db.students[n.StudentID]; !ok {
			return nil, core.NewNotFoundError("student", n.StudentID)
		}
	}

	created := make([]notification.Notification, 0, len(notifs))
	for _, n := range notifs {
		n := n
		n.ID = repo.db.nextID("notifications")
		repo.db.notifications[n.ID] = &n
		created = append(created, n)
	}
	return created, nil
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, id := range sortedIDs(repo.db.notifications) {
		n := repo.db.notifications[id]
		if filter.ParentID != 0 && n.ParentID != filter.ParentID {
			continue
		}
		if filter.StudentID != 0 && n.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		notifs = append(notifs, *n)
	}

	sort.SliceStable(notifs, func(i, j int) bool {
		if !notifs[i].CreatedAt.Equal(notifs[j].CreatedAt) {
			return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
		}
		return notifs[i].ID > notifs[j].ID
	})
	return notifs, nil
}
