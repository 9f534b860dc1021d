package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
)

const (
	classColumns   = "id, name, grade_level, academic_year, created_at"
	subjectColumns = "id, name, code, created_at"

	studentSelect = `SELECT s.id, s.user_id, s.student_number, s.class_id, s.parent_id, s.created_at,
		u.name, u.email, c.name AS class_name
		FROM students s
		JOIN users u ON u.id = s.user_id
		JOIN classes c ON c.id = s.class_id`

	teacherSelect = `SELECT t.id, t.user_id, t.employee_number, t.created_at, u.name, u.email
		FROM teachers t JOIN users u ON u.id = t.user_id`

	parentSelect = `SELECT p.id, p.user_id, p.phone_number, p.created_at, u.name, u.email
		FROM parents p JOIN users u ON u.id = p.user_id`

	assignmentColumns = "id, teacher_id, subject_id, class_id, academic_year, created_at"
)

type classRow struct {
	ID           int               `db:"id"`
	Name         string            `db:"name"`
	GradeLevel   int               `db:"grade_level"`
	AcademicYear core.AcademicYear `db:"academic_year"`
	CreatedAt    time.Time         `db:"created_at"`
}

func (row classRow) class() school.Class {
	return school.Class{
		ID:           row.ID,
		Name:         row.Name,
		GradeLevel:   row.GradeLevel,
		AcademicYear: row.AcademicYear,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

type subjectRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
}

func (row subjectRow) subject() school.Subject {
	return school.Subject{ID: row.ID, Name: row.Name, Code: row.Code, CreatedAt: row.CreatedAt.UTC()}
}

type studentRow struct {
	ID            int       `db:"id"`
	UserID        int       `db:"user_id"`
	StudentNumber string    `db:"student_number"`
	ClassID       int       `db:"class_id"`
	ParentID      null.Int  `db:"parent_id"`
	CreatedAt     time.Time `db:"created_at"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	ClassName     string    `db:"class_name"`
}

func (row studentRow) student() school.Student {
	return school.Student{
		ID:            row.ID,
		UserID:        row.UserID,
		StudentNumber: row.StudentNumber,
		ClassID:       row.ClassID,
		ParentID:      row.ParentID,
		Name:          row.Name,
		Email:         row.Email,
		ClassName:     row.ClassName,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func studentsFromRows(rows []studentRow) []school.Student {
	students := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students
}

type teacherRow struct {
	ID             int       `db:"id"`
	UserID         int       `db:"user_id"`
	EmployeeNumber string    `db:"employee_number"`
	CreatedAt      time.Time `db:"created_at"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
}

func (row teacherRow) teacher() school.Teacher {
	return school.Teacher{
		ID:             row.ID,
		UserID:         row.UserID,
		EmployeeNumber: row.EmployeeNumber,
		Name:           row.Name,
		Email:          row.Email,
		CreatedAt:      row.CreatedAt.UTC(),
	}
}

type parentRow struct {
	ID          int       `db:"id"`
	UserID      int       `db:"user_id"`
	PhoneNumber string    `db:"phone_number"`
	CreatedAt   time.Time `db:"created_at"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
}

func (row parentRow) parent() school.Parent {
	return school.Parent{
		ID:          row.ID,
		UserID:      row.UserID,
		PhoneNumber: row.PhoneNumber,
		Name:        row.Name,
		Email:       row.Email,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

type assignmentRow struct {
	ID           int               `db:"id"`
	TeacherID    int               `db:"teacher_id"`
	SubjectID    int               `db:"subject_id"`
	ClassID      int               `db:"class_id"`
	AcademicYear core.AcademicYear `db:"academic_year"`
	CreatedAt    time.Time         `db:"created_at"`
}

func (row assignmentRow) assignment() school.TeacherAssignment {
	return school.TeacherAssignment{
		ID:           row.ID,
		TeacherID:    row.TeacherID,
		SubjectID:    row.SubjectID,
		ClassID:      row.ClassID,
		AcademicYear: row.AcademicYear,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

type schoolRepository struct {
	db core.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db core.DB) school.Repository {
	return &schoolRepository{db: db}
}

// Classes

func (repo *schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	q := "INSERT INTO classes (name, grade_level, academic_year, created_at) VALUES ($1, $2, $3, $4) RETURNING id"
	if err := sqlx.GetContext(ctx, repo.db, &cls.ID, q, cls.Name, cls.GradeLevel, cls.AcademicYear, cls.CreatedAt); err != nil {
		return school.Class{}, errors.Wrap(trapConstraintErr(err), "inserting class")
	}
	return cls, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, id int) (school.Class, error) {
	var row classRow
	if err := sqlx.GetContext(ctx, repo.db, &row, "SELECT "+classColumns+" FROM classes WHERE id = $1", id); err != nil {
		return school.Class{}, trapNoRowsErr(err, core.NewNotFoundError("class", id))
	}
	return row.class(), nil
}

func (repo *schoolRepository) QueryClasses(ctx context.Context, filter school.ClassFilter) ([]school.Class, error) {
	var w where
	if !filter.AcademicYear.IsZero() {
		w.add("academic_year = $%[1]d", filter.AcademicYear)
	}
	if filter.GradeLevel != 0 {
		w.add("grade_level = $%[1]d", filter.GradeLevel)
	}

	var rows []classRow
	q := "SELECT " + classColumns + " FROM classes" + w.String() + " ORDER BY grade_level, name, id"
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	classes := make([]school.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.class())
	}
	return classes, nil
}

// Subjects

func (repo *schoolRepository) CreateSubject(ctx context.Context, subj school.Subject) (school.Subject, error) {
	q := "INSERT INTO subjects (name, code, created_at) VALUES ($1, $2, $3) RETURNING id"
	if err := sqlx.GetContext(ctx, repo.db, &subj.ID, q, subj.Name, subj.Code, subj.CreatedAt); err != nil {
		return school.Subject{}, errors.Wrap(trapConstraintErr(err), "inserting subject")
	}
	return subj, nil
}

func (repo *schoolRepository) GetSubjectByID(ctx context.Context, id int) (school.Subject, error) {
	var row subjectRow
	if err := sqlx.GetContext(ctx, repo.db, &row, "SELECT "+subjectColumns+" FROM subjects WHERE id = $1", id); err != nil {
		return school.Subject{}, trapNoRowsErr(err, core.NewNotFoundError("subject", id))
	}
	return row.subject(), nil
}

func (repo *schoolRepository) GetSubjectsByID(ctx context.Context, ids ...int) ([]school.Subject, error) {
	if len(ids) == 0 {
		return []school.Subject{}, nil
	}
	var rows []subjectRow
	q := "SELECT " + subjectColumns + " FROM subjects WHERE id IN (?) ORDER BY id"
	if err := selectIn(ctx, repo.db, &rows, q, core.UniqueInts(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjectsFromRows(rows), nil
}

func (repo *schoolRepository) QuerySubjects(ctx context.Context) ([]school.Subject, error) {
	var rows []subjectRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, "SELECT "+subjectColumns+" FROM subjects ORDER BY name, id"); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjectsFromRows(rows), nil
}

func subjectsFromRows(rows []subjectRow) []school.Subject {
	subjects := make([]school.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.subject())
	}
	return subjects
}

// Students

func (repo *schoolRepository) CreateStudent(ctx context.Context, stu school.Student) (school.Student, error) {
	q := `INSERT INTO students (user_id, student_number, class_id, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	if err := sqlx.GetContext(ctx, repo.db, &id, q, stu.UserID, stu.StudentNumber, stu.ClassID, stu.ParentID, stu.CreatedAt); err != nil {
		return school.Student{}, errors.Wrap(trapConstraintErr(err), "inserting student")
	}
	return repo.GetStudentByID(ctx, id)
}

func (repo *schoolRepository) GetStudentByID(ctx context.Context, id int) (school.Student, error) {
	var row studentRow
	if err := sqlx.GetContext(ctx, repo.db, &row, studentSelect+" WHERE s.id = $1", id); err != nil {
		return school.Student{}, trapNoRowsErr(err, core.NewNotFoundError("student", id))
	}
	return row.student(), nil
}

func (repo *schoolRepository) GetStudentByNumber(ctx context.Context, number string) (school.Student, error) {
	var row studentRow
	if err := sqlx.GetContext(ctx, repo.db, &row, studentSelect+" WHERE s.student_number = $1", number); err != nil {
		return school.Student{}, trapNoRowsErr(err, core.NewNotFoundError("student", nil))
	}
	return row.student(), nil
}

func (repo *schoolRepository) GetStudentsByID(ctx context.Context, ids ...int) ([]school.Student, error) {
	if len(ids) == 0 {
		return []school.Student{}, nil
	}
	var rows []studentRow
	if err := selectIn(ctx, repo.db, &rows, studentSelect+" WHERE s.id IN (?) ORDER BY s.id", core.UniqueInts(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return studentsFromRows(rows), nil
}

func (repo *schoolRepository) QueryStudents(ctx context.Context, filter school.StudentFilter) ([]school.Student, error) {
	var w where
	if filter.ClassID != 0 {
		w.add("s.class_id = $%[1]d", filter.ClassID)
	}
	if filter.ParentID != 0 {
		w.add("s.parent_id = $%[1]d", filter.ParentID)
	}

	var rows []studentRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, studentSelect+w.String()+" ORDER BY u.name, s.id", w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return studentsFromRows(rows), nil
}

// Teachers

func (repo *schoolRepository) CreateTeacher(ctx context.Context, tchr school.Teacher) (school.Teacher, error) {
	q := "INSERT INTO teachers (user_id, employee_number, created_at) VALUES ($1, $2, $3) RETURNING id"
	var id int
	if err := sqlx.GetContext(ctx, repo.db, &id, q, tchr.UserID, tchr.EmployeeNumber, tchr.CreatedAt); err != nil {
		return school.Teacher{}, errors.Wrap(trapConstraintErr(err), "inserting teacher")
	}
	return repo.GetTeacherByID(ctx, id)
}

func (repo *schoolRepository) GetTeacherByID(ctx context.Context, id int) (school.Teacher, error) {
	var row teacherRow
	if err := sqlx.GetContext(ctx, repo.db, &row, teacherSelect+" WHERE t.id = $1", id); err != nil {
		return school.Teacher{}, trapNoRowsErr(err, core.NewNotFoundError("teacher", id))
	}
	return row.teacher(), nil
}

func (repo *schoolRepository) QueryTeachers(ctx context.Context) ([]school.Teacher, error) {
	var rows []teacherRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, teacherSelect+" ORDER BY u.name, t.id"); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	teachers := make([]school.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.teacher())
	}
	return teachers, nil
}

// Parents

func (repo *schoolRepository) CreateParent(ctx context.Context, prnt school.Parent) (school.Parent, error) {
	q := "INSERT INTO parents (user_id, phone_number, created_at) VALUES ($1, $2, $3) RETURNING id"
	var id int
	if err := sqlx.GetContext(ctx, repo.db, &id, q, prnt.UserID, prnt.PhoneNumber, prnt.CreatedAt); err != nil {
		return school.Parent{}, errors.Wrap(trapConstraintErr(err), "inserting parent")
	}
	return repo.GetParentByID(ctx, id)
}

func (repo *schoolRepository) GetParentByID(ctx context.Context, id int) (school.Parent, error) {
	var row parentRow
	if err := sqlx.GetContext(ctx, repo.db, &row, parentSelect+" WHERE p.id = $1", id); err != nil {
		return school.Parent{}, trapNoRowsErr(err, core.NewNotFoundError("parent", id))
	}
	return row.parent(), nil
}

func (repo *schoolRepository) GetParentByUserID(ctx context.Context, userID int) (school.Parent, error) {
	var row parentRow
	if err := sqlx.GetContext(ctx, repo.db, &row, parentSelect+" WHERE p.user_id = $1", userID); err != nil {
		return school.Parent{}, trapNoRowsErr(err, core.NewNotFoundError("parent", nil))
	}
	return row.parent(), nil
}

func (repo *schoolRepository) QueryParents(ctx context.Context) ([]school.Parent, error) {
	var rows []parentRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, parentSelect+" ORDER BY u.name, p.id"); err != nil {
		return nil, errors.Wrap(err, "selecting parents")
	}
	parents := make([]school.Parent, 0, len(rows))
	for _, row := range rows {
		parents = append(parents, row.parent())
	}
	return parents, nil
}

// Teacher Assignments

func (repo *schoolRepository) CreateTeacherAssignment(ctx context.Context, asgmt school.TeacherAssignment) (school.TeacherAssignment, error) {
	q := `INSERT INTO teacher_assignments (teacher_id, subject_id, class_id, academic_year, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := sqlx.GetContext(ctx, repo.db, &asgmt.ID, q,
		asgmt.TeacherID, asgmt.SubjectID, asgmt.ClassID, asgmt.AcademicYear, asgmt.CreatedAt)
	if err != nil {
		return school.TeacherAssignment{}, errors.Wrap(trapConstraintErr(err), "inserting teacher assignment")
	}
	return asgmt, nil
}

func (repo *schoolRepository) QueryTeacherAssignments(ctx context.Context, filter school.TeacherAssignmentFilter) ([]school.TeacherAssignment, error) {
	var w where
	if filter.TeacherID != 0 {
		w.add("teacher_id = $%[1]d", filter.TeacherID)
	}
	if filter.ClassID != 0 {
		w.add("class_id = $%[1]d", filter.ClassID)
	}
	if !filter.AcademicYear.IsZero() {
		w.add("academic_year = $%[1]d", filter.AcademicYear)
	}

	var rows []assignmentRow
	q := "SELECT " + assignmentColumns + " FROM teacher_assignments" + w.String() + " ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting teacher assignments")
	}
	asgmts := make([]school.TeacherAssignment, 0, len(rows))
	for _, row := range rows {
		asgmts = append(asgmts, row.assignment())
	}
	return asgmts, nil
}
