package notification

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
)

type (
	Type   string
	Status string
)

const (
	TypeAttendance Type = "attendance"
	TypeGrade      Type = "grade"
	TypeGeneral    Type = "general"

	// Notifications stay pending until an external sender advances them.
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

type Notification struct {
	ID        int       `json:"id"`
	ParentID  int       `json:"parent_id"`
	StudentID int       `json:"student_id"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	SentAt    null.Time `json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPending returns a pending notification ready to be stored.
func NewPending(parentID, studentID int, typ Type, msg string) Notification {
	return Notification{
		ParentID:  parentID,
		StudentID: studentID,
		Message:   msg,
		Type:      typ,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

type NewNotification struct {
	ParentID  int    `json:"parent_id" validate:"required"`
	StudentID int    `json:"student_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Type      Type   `json:"type" validate:"required,oneof=attendance grade general"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Message = core.CleanString(nn.Message)
	return validate.Struct(nn)
}

type QueryFilter struct {
	ParentID  int    `query:"parent_id"`
	StudentID int    `query:"student_id"`
	Status    Status `query:"status"`
}

type (
	Repository interface {
		CreateNotifications(ctx context.Context, notifs ...Notification) ([]Notification, error)
		// QueryNotifications returns the most recent notifications first.
		QueryNotifications(ctx context.Context, filter QueryFilter) ([]Notification, error)
	}

	// Records resolves the parent and student a notification refers to.
	Records interface {
		GetParentByID(ctx context.Context, id int) (school.Parent, error)
		GetStudentByID(ctx context.Context, id int) (school.Student, error)
	}

	Service struct {
		repo    Repository
		records Records
	}
)

func NewService(repo Repository, records Records) *Service {
	return &Service{repo: repo, records: records}
}

func (svc *Service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	if _, err := svc.records.GetParentByID(ctx, nn.ParentID); err != nil {
		return Notification{}, err
	}
	if _, err := svc.records.GetStudentByID(ctx, nn.StudentID); err != nil {
		return Notification{}, err
	}

	notifs, err := svc.repo.CreateNotifications(ctx, NewPending(nn.ParentID, nn.StudentID, nn.Type, nn.Message))
	if err != nil {
		return Notification{}, err
	}
	return notifs[0], nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, filter)
}
