package dummydb

import (
	"context"
	"sort"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

// Classes

func (repo *schoolRepository) CreateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls.ID = repo.db.nextID("classes")
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) GetClassByID(_ context.Context, id int) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return school.Class{}, core.NewNotFoundError("class", id)
}

func (repo *schoolRepository) QueryClasses(_ context.Context, filter school.ClassFilter) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]school.Class, 0, len(repo.db.classes))
	for _, id := range sortedIDs(repo.db.classes) {
		cls := repo.db.classes[id]
		if !filter.AcademicYear.IsZero() && cls.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.GradeLevel != 0 && cls.GradeLevel != filter.GradeLevel {
			continue
		}
		classes = append(classes, *cls)
	}
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].GradeLevel != classes[j].GradeLevel {
			return classes[i].GradeLevel < classes[j].GradeLevel
		}
		return classes[i].Name < classes[j].Name
	})
	return classes, nil
}

// Subjects

func (repo *schoolRepository) CreateSubject(_ context.Context, subj school.Subject) (school.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.subjects {
		if s.Code == subj.Code {
			return school.Subject{}, core.NewConstraintError("subjects_code_key", "a subject with this code already exists")
		}
	}
	subj.ID = repo.db.nextID("subjects")
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *schoolRepository) GetSubjectByID(_ context.Context, id int) (school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if subj, ok := repo.db.subjects[id]; ok {
		return *subj, nil
	}
	return school.Subject{}, core.NewNotFoundError("subject", id)
}

func (repo *schoolRepository) GetSubjectsByID(_ context.Context, ids ...int) ([]school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]school.Subject, 0, len(ids))
	for _, id := range core.UniqueInts(ids) {
		if subj, ok := repo.db.subjects[id]; ok {
			subjects = append(subjects, *subj)
		}
	}
	return subjects, nil
}

func (repo *schoolRepository) QuerySubjects(_ context.Context) ([]school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.subjects))
	for _, id := range sortedIDs(repo.db.subjects) {
		subjects = append(subjects, *repo.db.subjects[id])
	}
	sort.SliceStable(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

// Students

// studentDetail joins the stored student with its user and class. Callers hold the lock.
func (db *DB) studentDetail(stu *school.Student) school.Student {
	res := *stu
	if usr, ok := db.users[stu.UserID]; ok {
		res.Name = usr.Name
		res.Email = usr.Email
	}
	if cls, ok := db.classes[stu.ClassID]; ok {
		res.ClassName = cls.Name
	}
	return res
}

func (repo *schoolRepository) CreateStudent(_ context.Context, stu school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.students {
		if s.StudentNumber == stu.StudentNumber {
			return school.Student{}, core.NewConstraintError("students_student_number_key", "a student with this number already exists")
		}
		if s.UserID == stu.UserID {
			return school.Student{}, core.NewConstraintError("students_user_id_key", "this user is already a student")
		}
	}
	stu.ID = repo.db.nextID("students")
	repo.db.students[stu.ID] = &stu
	return repo.db.studentDetail(&stu), nil
}

func (repo *schoolRepository) GetStudentByID(_ context.Context, id int) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if stu, ok := repo.db.students[id]; ok {
		return repo.db.studentDetail(stu), nil
	}
	return school.Student{}, core.NewNotFoundError("student", id)
}

func (repo *schoolRepository) GetStudentByNumber(_ context.Context, number string) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, stu := range repo.db.students {
		if stu.StudentNumber == number {
			return repo.db.studentDetail(stu), nil
		}
	}
	return school.Student{}, core.NewNotFoundError("student", nil)
}

func (repo *schoolRepository) GetStudentsByID(_ context.Context, ids ...int) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, 0, len(ids))
	for _, id := range core.UniqueInts(ids) {
		if stu, ok := repo.db.students[id]; ok {
			students = append(students, repo.db.studentDetail(stu))
		}
	}
	return students, nil
}

func (repo *schoolRepository) QueryStudents(_ context.Context, filter school.StudentFilter) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, 0)
	for _, id := range sortedIDs(repo.db.students) {
		stu := repo.db.students[id]
		if filter.ClassID != 0 && stu.ClassID != filter.ClassID {
			continue
		}
		if filter.ParentID != 0 && (!stu.ParentID.Valid || stu.ParentID.Int != filter.ParentID) {
			continue
		}
		students = append(students, repo.db.studentDetail(stu))
	}
	sort.SliceStable(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

// Teachers

func (repo *schoolRepository) teacher(tchr *school.Teacher) school.Teacher {
	res := *tchr
	if usr, ok := repo.db.users[tchr.UserID]; ok {
		res.Name = usr.Name
		res.Email = usr.Email
	}
	return res
}

func (repo *schoolRepository) CreateTeacher(_ context.Context, tchr school.Teacher) (school.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, t := range repo.db.teachers {
		if t.EmployeeNumber == tchr.EmployeeNumber {
			return school.Teacher{}, core.NewConstraintError("teachers_employee_number_key", "a teacher with this employee number already exists")
		}
		if t.UserID == tchr.UserID {
			return school.Teacher{}, core.NewConstraintError("teachers_user_id_key", "this user is already a teacher")
		}
	}
	tchr.ID = repo.db.nextID("teachers")
	repo.db.teachers[tchr.ID] = &tchr
	return repo.teacher(&tchr), nil
}

func (repo *schoolRepository) GetTeacherByID(_ context.Context, id int) (school.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tchr, ok := repo.db.teachers[id]; ok {
		return repo.teacher(tchr), nil
	}
	return school.Teacher{}, core.NewNotFoundError("teacher", id)
}

func (repo *schoolRepository) QueryTeachers(_ context.Context) ([]school.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]school.Teacher, 0, len(repo.db.teachers))
	for _, id := range sortedIDs(repo.db.teachers) {
		teachers = append(teachers, repo.teacher(repo.db.teachers[id]))
	}
	sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })
	return teachers, nil
}

// Parents

func (repo *schoolRepository) parent(prnt *school.Parent) school.Parent {
	res := *prnt
	if usr, ok := repo.db.users[prnt.UserID]; ok {
		res.Name = usr.Name
		res.Email = usr.Email
	}
	return res
}

func (repo *schoolRepository) CreateParent(_ context.Context, prnt school.Parent) (school.Parent, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, p := range repo.db.parents {
		if p.UserID == prnt.UserID {
			return school.Parent{}, core.NewConstraintError("parents_user_id_key", "this user is already a parent")
		}
	}
	prnt.ID = repo.db.nextID("parents")
	repo.db.parents[prnt.ID] = &prnt
	return repo.parent(&prnt), nil
}

func (repo *schoolRepository) GetParentByID(_ context.Context, id int) (school.Parent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prnt, ok := repo.db.parents[id]; ok {
		return repo.parent(prnt), nil
	}
	return school.Parent{}, core.NewNotFoundError("parent", id)
}

func (repo *schoolRepository) GetParentByUserID(_ context.Context, userID int) (school.Parent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prnt := range repo.db.parents {
		if prnt.UserID == userID {
			return repo.parent(prnt), nil
		}
	}
	return school.Parent{}, core.NewNotFoundError("parent", nil)
}

func (repo *schoolRepository) QueryParents(_ context.Context) ([]school.Parent, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	parents := make([]school.Parent, 0, len(repo.db.parents))
	for _, id := range sortedIDs(repo.db.parents) {
		parents = append(parents, repo.parent(repo.db.parents[id]))
	}
	sort.SliceStable(parents, func(i, j int) bool { return parents[i].Name < parents[j].Name })
	return parents, nil
}

// Teacher Assignments

func (repo *schoolRepository) CreateTeacherAssignment(_ context.Context, asgmt school.TeacherAssignment) (school.TeacherAssignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, a := range repo.db.assignments {
		if a.TeacherID == asgmt.TeacherID && a.SubjectID == asgmt.SubjectID &&
			a.ClassID == asgmt.ClassID && a.AcademicYear == asgmt.AcademicYear {
			return school.TeacherAssignment{}, core.NewConstraintError(
				"teacher_assignments_unique", "this teacher is already assigned to the subject and class",
			)
		}
	}
	asgmt.ID = repo.db.nextID("teacher_assignments")
	repo.db.assignments[asgmt.ID] = &asgmt
	return asgmt, nil
}

func (repo *schoolRepository) QueryTeacherAssignments(_ context.Context, filter school.TeacherAssignmentFilter) ([]school.TeacherAssignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgmts := make([]school.TeacherAssignment, 0)
	for _, id := range sortedIDs(repo.db.assignments) {
		a := repo.db.assignments[id]
		if filter.TeacherID != 0 && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ClassID != 0 && a.ClassID != filter.ClassID {
			continue
		}
		if !filter.AcademicYear.IsZero() && a.AcademicYear != filter.AcademicYear {
			continue
		}
		asgmts = append(asgmts, *a)
	}
	return asgmts, nil
}
