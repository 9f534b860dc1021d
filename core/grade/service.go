package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

type (
	Repository interface {
		// CreateGrades stores all grades or none of them.
		CreateGrades(ctx context.Context, grades ...Grade) ([]Grade, error)
		CreateConfig(ctx context.Context, conf Config) (Config, error)
		// QueryConfigs returns configs ordered by id.
		QueryConfigs(ctx context.Context, filter ConfigFilter) ([]Config, error)
		// QueryGradeDetails returns grades ordered by date recorded then id.
		QueryGradeDetails(ctx context.Context, filter ReportFilter) ([]Detail, error)
	}

	// Records resolves the students, subjects and classes grades refer to.
	Records interface {
		GetStudentByID(ctx context.Context, id int) (school.Student, error)
		GetStudentsByID(ctx context.Context, ids ...int) ([]school.Student, error)
		GetSubjectByID(ctx context.Context, id int) (school.Subject, error)
		GetSubjectsByID(ctx context.Context, ids ...int) ([]school.Subject, error)
		GetClassByID(ctx context.Context, id int) (school.Class, error)
	}

	// Users resolves the users recording grades.
	Users interface {
		GetUserByID(ctx context.Context, id int) (user.User, error)
		GetUsersByID(ctx context.Context, ids ...int) ([]user.User, error)
	}

	Service struct {
		repo    Repository
		records Records
		users   Users
	}
)

func NewService(repo Repository, records Records, users Users) *Service {
	return &Service{repo: repo, records: records, users: users}
}

// Record stores a grade once its student, subject and recording user are known to exist.
func (svc *Service) Record(ctx context.Context, ng NewGrade) (Grade, error) {
	if _, err := svc.records.GetStudentByID(ctx, ng.StudentID); err != nil {
		return Grade{}, err
	}
	if _, err := svc.records.GetSubjectByID(ctx, ng.SubjectID); err != nil {
		return Grade{}, err
	}
	if _, err := svc.users.GetUserByID(ctx, ng.RecordedBy); err != nil {
		return Grade{}, err
	}

	grades, err := svc.repo.CreateGrades(ctx, ng.grade(time.Now().UTC()))
	if err != nil {
		return Grade{}, errors.Wrap(err, "inserting grade")
	}
	return grades[0], nil
}

// RecordBulk applies the same existence checks as Record, one lookup per entity kind,
// and stores either every grade or none.
func (svc *Service) RecordBulk(ctx context.Context, ngs []NewGrade) ([]Grade, error) {
	if len(ngs) == 0 {
		return []Grade{}, nil
	}

	var studentIDs, subjectIDs, userIDs []int
	for _, ng := range ngs {
		studentIDs = append(studentIDs, ng.StudentID)
		subjectIDs = append(subjectIDs, ng.SubjectID)
		userIDs = append(userIDs, ng.RecordedBy)
	}
	studentIDs, subjectIDs, userIDs = core.UniqueInts(studentIDs), core.UniqueInts(subjectIDs), core.UniqueInts(userIDs)

	students, err := svc.records.GetStudentsByID(ctx, studentIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	subjects, err := svc.records.GetSubjectsByID(ctx, subjectIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "finding subjects")
	}
	users, err := svc.users.GetUsersByID(ctx, userIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "finding users")
	}

	var flds []core.FieldError
	check := func(field, entity string, want []int, found map[int]bool) {
		var missing []int
		for _, id := range want {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			flds = append(flds, core.FieldError{Field: field, Error: "invalid " + entity + " ids: " + core.JoinInts(missing)})
		}
	}
	check("student_id", "student", studentIDs, studentSet(students))
	check("subject_id", "subject", subjectIDs, subjectSet(subjects))
	check("recorded_by", "user", userIDs, userSet(users))
	if len(flds) > 0 {
		return nil, core.NewValidationError(errors.New(flds[0].Error), flds...)
	}

	now := time.Now().UTC()
	grades := make([]Grade, 0, len(ngs))
	for _, ng := range ngs {
		grades = append(grades, ng.grade(now))
	}
	grades, err = svc.repo.CreateGrades(ctx, grades...)
	if err != nil {
		return nil, errors.Wrap(err, "inserting grades")
	}
	return grades, nil
}

// CreateConfig stores the weighting of a subject for a class; weights must add up to exactly 100.
func (svc *Service) CreateConfig(ctx context.Context, nc NewConfig) (Config, error) {
	if _, err := svc.records.GetSubjectByID(ctx, nc.SubjectID); err != nil {
		return Config{}, err
	}
	if _, err := svc.records.GetClassByID(ctx, nc.ClassID); err != nil {
		return Config{}, err
	}

	conf := Config{
		SubjectID:     nc.SubjectID,
		ClassID:       nc.ClassID,
		DailyWeight:   nc.DailyWeight,
		MidtermWeight: nc.MidtermWeight,
		FinalWeight:   nc.FinalWeight,
		AcademicYear:  nc.AcademicYear,
		CreatedAt:     time.Now().UTC(),
	}
	if total := conf.Weights().Total(); !total.Equal(hundred) {
		return Config{}, core.NewValidationError(
			errors.Errorf("grade weights must add up to 100%%, current total: %s%%", total.String()),
		)
	}
	return svc.repo.CreateConfig(ctx, conf)
}

func (svc *Service) QueryConfigs(ctx context.Context, filter ConfigFilter) ([]Config, error) {
	return svc.repo.QueryConfigs(ctx, filter)
}

// Report returns the grades selected by filter along with the names they refer to.
func (svc *Service) Report(ctx context.Context, filter ReportFilter) ([]Detail, error) {
	details, err := svc.repo.QueryGradeDetails(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying grade report")
	}
	if details == nil {
		details = []Detail{}
	}
	return details, nil
}

func studentSet(students []school.Student) map[int]bool {
	set := make(map[int]bool, len(students))
	for _, s := range students {
		set[s.ID] = true
	}
	return set
}

func subjectSet(subjects []school.Subject) map[int]bool {
	set := make(map[int]bool, len(subjects))
	for _, s := range subjects {
		set[s.ID] = true
	}
	return set
}

func userSet(users []user.User) map[int]bool {
	set := make(map[int]bool, len(users))
	for _, u := range users {
		set[u.ID] = true
	}
	return set
}
