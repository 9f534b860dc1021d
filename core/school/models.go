package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
)

// Junior high grade levels.
const (
	MinGradeLevel = 7
	MaxGradeLevel = 9
)

type Class struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	GradeLevel   int               `json:"grade_level"`
	AcademicYear core.AcademicYear `json:"academic_year"`
	CreatedAt    time.Time         `json:"created_at"`
}

type NewClass struct {
	Name         string            `json:"name" validate:"required"`
	GradeLevel   int               `json:"grade_level" validate:"required,min=7,max=9"`
	AcademicYear core.AcademicYear `json:"academic_year" validate:"required"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type ClassFilter struct {
	AcademicYear core.AcademicYear `query:"academic_year"`
	GradeLevel   int               `query:"grade_level"`
}

type Subject struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type NewSubject struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	return validate.Struct(ns)
}

// Student is a student record along with the name and email of its user and its class name.
type Student struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	StudentNumber string    `json:"student_number"`
	ClassID       int       `json:"class_id"`
	ParentID      null.Int  `json:"parent_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ClassName     string    `json:"class_name"`
	CreatedAt     time.Time `json:"created_at"`
}

type NewStudent struct {
	UserID        int      `json:"user_id" validate:"required"`
	StudentNumber string   `json:"student_number" validate:"required"`
	ClassID       int      `json:"class_id" validate:"required"`
	ParentID      null.Int `json:"parent_id"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
	return validate.Struct(ns)
}

type StudentFilter struct {
	ClassID  int `query:"class_id"`
	ParentID int `query:"parent_id"`
}

type Teacher struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	EmployeeNumber string    `json:"employee_number"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
}

type NewTeacher struct {
	UserID         int    `json:"user_id" validate:"required"`
	EmployeeNumber string `json:"employee_number" validate:"required"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.EmployeeNumber = core.CleanString(nt.EmployeeNumber)
	return validate.Struct(nt)
}

type Parent struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewParent struct {
	UserID      int    `json:"user_id" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

func (np *NewParent) Validate(validate *validator.Validate) error {
	np.PhoneNumber = core.CleanString(np.PhoneNumber)
	return validate.Struct(np)
}

type TeacherAssignment struct {
	ID           int               `json:"id"`
	TeacherID    int               `json:"teacher_id"`
	SubjectID    int               `json:"subject_id"`
	ClassID      int               `json:"class_id"`
	AcademicYear core.AcademicYear `json:"academic_year"`
	CreatedAt    time.Time         `json:"created_at"`
}

type NewTeacherAssignment struct {
	TeacherID    int               `json:"teacher_id" validate:"required"`
	SubjectID    int               `json:"subject_id" validate:"required"`
	ClassID      int               `json:"class_id" validate:"required"`
	AcademicYear core.AcademicYear `json:"academic_year" validate:"required"`
}

func (na *NewTeacherAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

type TeacherAssignmentFilter struct {
	TeacherID    int               `query:"teacher_id"`
	ClassID      int               `query:"class_id"`
	AcademicYear core.AcademicYear `query:"academic_year"`
}

// ImportStudents is a batch of students to enroll in one class.
type ImportStudents struct {
	ClassID  int             `json:"class_id" validate:"required"`
	Students []ImportStudent `json:"students" validate:"required,min=1,dive"`
}

type ImportStudent struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	StudentNumber string `json:"student_number" validate:"required"`
	ParentName    string `json:"parent_name"`
	ParentEmail   string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone   string `json:"parent_phone"`
}

func (is *ImportStudents) Validate(validate *validator.Validate) error {
	for i := range is.Students {
		s := &is.Students[i]
		s.Name = core.CleanString(s.Name)
		s.Email = core.CleanString(s.Email, true /* lower */)
		s.StudentNumber = core.CleanString(s.StudentNumber)
		s.ParentName = core.CleanString(s.ParentName)
		s.ParentEmail = core.CleanString(s.ParentEmail, true /* lower */)
		s.ParentPhone = core.CleanString(s.ParentPhone)
	}
	return validate.Struct(is)
}

type ImportResult struct {
	Imported int       `json:"imported"`
	Students []Student `json:"students"`
}
