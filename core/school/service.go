package school

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		// QueryClasses returns classes ordered by grade level then name.
		QueryClasses(ctx context.Context, filter ClassFilter) ([]Class, error)

		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		// GetSubjectsByID returns the subjects found among ids; unknown ids are skipped.
		GetSubjectsByID(ctx context.Context, ids ...int) ([]Subject, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)

		CreateStudent(ctx context.Context, stu Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByNumber(ctx context.Context, number string) (Student, error)
		// GetStudentsByID returns the students found among ids; unknown ids are skipped.
		GetStudentsByID(ctx context.Context, ids ...int) ([]Student, error)
		QueryStudents(ctx context.Context, filter StudentFilter) ([]Student, error)

		CreateTeacher(ctx context.Context, tchr Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		QueryTeachers(ctx context.Context) ([]Teacher, error)

		CreateParent(ctx context.Context, prnt Parent) (Parent, error)
		GetParentByID(ctx context.Context, id int) (Parent, error)
		GetParentByUserID(ctx context.Context, userID int) (Parent, error)
		QueryParents(ctx context.Context) ([]Parent, error)

		CreateTeacherAssignment(ctx context.Context, asgmt TeacherAssignment) (TeacherAssignment, error)
		QueryTeacherAssignments(ctx context.Context, filter TeacherAssignmentFilter) ([]TeacherAssignment, error)
	}

	// Users is the part of the user service school records depend on.
	Users interface {
		GetByID(ctx context.Context, id int) (user.User, error)
		GetByEmail(ctx context.Context, email string) (user.User, error)
		Create(ctx context.Context, nu user.NewUser) (user.User, error)
	}

	Service struct {
		repo           Repository
		users          Users
		importPassword string
	}
)

// NewService returns a school Service; importPassword is given to accounts created by ImportStudents.
func NewService(repo Repository, users Users, importPassword string) *Service {
	return &Service{repo: repo, users: users, importPassword: importPassword}
}

// userWithRole fetches the user userID, failing with a ValidationError when it does not have role.
func (svc *Service) userWithRole(ctx context.Context, userID int, role string) (user.User, error) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if usr.Role != role {
		msg := fmt.Sprintf("user with id %d does not have the %s role", userID, role)
		return user.User{}, core.NewValidationError(errors.New(msg), core.FieldError{Field: "user_id", Error: msg})
	}
	return usr, nil
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	return svc.repo.CreateClass(ctx, Class{
		Name:         nc.Name,
		GradeLevel:   nc.GradeLevel,
		AcademicYear: nc.AcademicYear,
		CreatedAt:    time.Now().UTC(),
	})
}

func (svc *Service) GetClass(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) QueryClasses(ctx context.Context, filter ClassFilter) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, filter)
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	return svc.repo.CreateSubject(ctx, Subject{Name: ns.Name, Code: ns.Code, CreatedAt: time.Now().UTC()})
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

// Students

// CreateStudent enrolls the student user ns.UserID in class ns.ClassID.
func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if _, err := svc.userWithRole(ctx, ns.UserID, user.RoleStudent); err != nil {
		return Student{}, err
	}
	if _, err := svc.repo.GetClassByID(ctx, ns.ClassID); err != nil {
		return Student{}, err
	}
	if ns.ParentID.Valid {
		if _, err := svc.repo.GetParentByID(ctx, ns.ParentID.Int); err != nil {
			return Student{}, err
		}
	}

	return svc.repo.CreateStudent(ctx, Student{
		UserID:        ns.UserID,
		StudentNumber: ns.StudentNumber,
		ClassID:       ns.ClassID,
		ParentID:      ns.ParentID,
		CreatedAt:     time.Now().UTC(),
	})
}

func (svc *Service) GetStudent(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) QueryStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter)
}

// Teachers

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if _, err := svc.userWithRole(ctx, nt.UserID, user.RoleTeacher); err != nil {
		return Teacher{}, err
	}
	return svc.repo.CreateTeacher(ctx, Teacher{
		UserID:         nt.UserID,
		EmployeeNumber: nt.EmployeeNumber,
		CreatedAt:      time.Now().UTC(),
	})
}

func (svc *Service) QueryTeachers(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx)
}

// Parents

func (svc *Service) CreateParent(ctx context.Context, np NewParent) (Parent, error) {
	if _, err := svc.userWithRole(ctx, np.UserID, user.RoleParent); err != nil {
		return Parent{}, err
	}
	return svc.repo.CreateParent(ctx, Parent{
		UserID:      np.UserID,
		PhoneNumber: np.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) QueryParents(ctx context.Context) ([]Parent, error) {
	return svc.repo.QueryParents(ctx)
}

// Teacher Assignments

func (svc *Service) CreateTeacherAssignment(ctx context.Context, na NewTeacherAssignment) (TeacherAssignment, error) {
	if _, err := svc.repo.GetTeacherByID(ctx, na.TeacherID); err != nil {
		return TeacherAssignment{}, err
	}
	if _, err := svc.repo.GetSubjectByID(ctx, na.SubjectID); err != nil {
		return TeacherAssignment{}, err
	}
	if _, err := svc.repo.GetClassByID(ctx, na.ClassID); err != nil {
		return TeacherAssignment{}, err
	}

	return svc.repo.CreateTeacherAssignment(ctx, TeacherAssignment{
		TeacherID:    na.TeacherID,
		SubjectID:    na.SubjectID,
		ClassID:      na.ClassID,
		AcademicYear: na.AcademicYear,
		CreatedAt:    time.Now().UTC(),
	})
}

func (svc *Service) QueryTeacherAssignments(ctx context.Context, filter TeacherAssignmentFilter) ([]TeacherAssignment, error) {
	return svc.repo.QueryTeacherAssignments(ctx, filter)
}
