package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
)

type (
	Repository interface {
		// CreateAttendances stores all entries or none of them.
		CreateAttendances(ctx context.Context, atts ...Attendance) ([]Attendance, error)
		// QueryAttendanceDetails returns entries ordered by date then student id.
		QueryAttendanceDetails(ctx context.Context, filter ReportFilter) ([]Detail, error)
	}

	// Records resolves the students and subjects attendance entries refer to.
	Records interface {
		GetStudentByID(ctx context.Context, id int) (school.Student, error)
		GetStudentsByID(ctx context.Context, ids ...int) ([]school.Student, error)
		GetSubjectByID(ctx context.Context, id int) (school.Subject, error)
		GetSubjectsByID(ctx context.Context, ids ...int) ([]school.Subject, error)
	}

	Notifications interface {
		CreateNotifications(ctx context.Context, notifs ...notification.Notification) ([]notification.Notification, error)
	}

	Service struct {
		repo    Repository
		records Records
		notifs  Notifications
	}
)

func NewService(repo Repository, records Records, notifs Notifications) *Service {
	return &Service{repo: repo, records: records, notifs: notifs}
}

// Record stores one attendance entry and, for an absent student with a parent on file, a pending notification.
// When only the notification fails, the stored entry is returned along with the error.
func (svc *Service) Record(ctx context.Context, na NewAttendance) (Attendance, error) {
	stu, err := svc.records.GetStudentByID(ctx, na.StudentID)
	if err != nil {
		return Attendance{}, err
	}
	subjects := make(map[int]school.Subject, 1)
	if na.SubjectID.Valid {
		subj, err := svc.records.GetSubjectByID(ctx, na.SubjectID.Int)
		if err != nil {
			return Attendance{}, err
		}
		subjects[subj.ID] = subj
	}

	atts, err := svc.repo.CreateAttendances(ctx, na.attendance(time.Now().UTC()))
	if err != nil {
		return Attendance{}, errors.Wrap(err, "inserting attendance")
	}

	students := map[int]school.Student{stu.ID: stu}
	if err = svc.notifyAbsences(ctx, atts, students, subjects); err != nil {
		return atts[0], errors.Wrap(err, "attendance recorded")
	}
	return atts[0], nil
}

// RecordBulk validates every referenced student and subject in one pass before storing anything,
// then stores all entries and notifies the parents of absent students.
// When only the notifications fail, the stored entries are returned along with the error.
func (svc *Service) RecordBulk(ctx context.Context, nas []NewAttendance) ([]Attendance, error) {
	if len(nas) == 0 {
		return []Attendance{}, nil
	}

	studentIDs := make([]int, 0, len(nas))
	subjectIDs := make([]int, 0, len(nas))
	for _, na := range nas {
		studentIDs = append(studentIDs, na.StudentID)
		if na.SubjectID.Valid {
			subjectIDs = append(subjectIDs, na.SubjectID.Int)
		}
	}
	studentIDs = core.UniqueInts(studentIDs)
	subjectIDs = core.UniqueInts(subjectIDs)

	found, err := svc.records.GetStudentsByID(ctx, studentIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	students := make(map[int]school.Student, len(found))
	for _, stu := range found {
		students[stu.ID] = stu
	}
	if invalid := missingIDs(studentIDs, func(id int) bool { _, ok := students[id]; return ok }); len(invalid) > 0 {
		return nil, core.NewValidationError(errors.Errorf("invalid student ids: %s", core.JoinInts(invalid)))
	}

	subjects := make(map[int]school.Subject, len(subjectIDs))
	if len(subjectIDs) > 0 {
		foundSubjs, err := svc.records.GetSubjectsByID(ctx, subjectIDs...)
		if err != nil {
			return nil, errors.Wrap(err, "finding subjects")
		}
		for _, subj := range foundSubjs {
			subjects[subj.ID] = subj
		}
		if invalid := missingIDs(subjectIDs, func(id int) bool { _, ok := subjects[id]; return ok }); len(invalid) > 0 {
			return nil, core.NewValidationError(errors.Errorf("invalid subject ids: %s", core.JoinInts(invalid)))
		}
	}

	now := time.Now().UTC()
	atts := make([]Attendance, 0, len(nas))
	for _, na := range nas {
		atts = append(atts, na.attendance(now))
	}
	atts, err = svc.repo.CreateAttendances(ctx, atts...)
	if err != nil {
		return nil, errors.Wrap(err, "inserting attendances")
	}

	if err = svc.notifyAbsences(ctx, atts, students, subjects); err != nil {
		return atts, errors.Wrap(err, "attendances recorded")
	}
	return atts, nil
}

// notifyAbsences creates one pending notification per absent entry whose student has a parent.
func (svc *Service) notifyAbsences(
	ctx context.Context,
	atts []Attendance,
	students map[int]school.Student,
	subjects map[int]school.Subject,
) error {
	var notifs []notification.Notification
	for _, att := range atts {
		if att.Status != StatusAbsent {
			continue
		}
		stu, ok := students[att.StudentID]
		if !ok || !stu.ParentID.Valid {
			continue
		}
		notifs = append(notifs, notification.NewPending(
			stu.ParentID.Int, stu.ID, notification.TypeAttendance, absenceMessage(att, subjects),
		))
	}
	if len(notifs) == 0 {
		return nil
	}
	if _, err := svc.notifs.CreateNotifications(ctx, notifs...); err != nil {
		return errors.Wrap(err, "creating absence notifications")
	}
	return nil
}

func absenceMessage(att Attendance, subjects map[int]school.Subject) string {
	what := "daily attendance"
	if att.SubjectID.Valid {
		if subj, ok := subjects[att.SubjectID.Int]; ok {
			what = subj.Name + " class"
		} else {
			what = "a subject class"
		}
	}
	return fmt.Sprintf("Your child was marked absent for %s on %s.", what, att.Date)
}

func missingIDs(ids []int, exists func(int) bool) []int {
	var missing []int
	for _, id := range ids {
		if !exists(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// Report returns the attendance entries selected by filter along with student, class and subject names.
func (svc *Service) Report(ctx context.Context, filter ReportFilter) ([]Detail, error) {
	details, err := svc.repo.QueryAttendanceDetails(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance report")
	}
	if details == nil {
		details = []Detail{}
	}
	return details, nil
}
