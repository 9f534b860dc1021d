package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

var ay2023 = core.NewAcademicYear(2023)

type fixture struct {
	db      *DB
	users   user.Repository
	school  school.Repository
	atts    attendance.Repository
	grades  grade.Repository
	notifs  notification.Repository
	teacher user.User
	class   school.Class
	math    school.Subject
	english school.Subject
	alice   school.Student
	bob     school.Student
	parent  school.Parent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := Open()
	f := &fixture{
		db:     db,
		users:  NewUserRepository(db),
		school: NewSchoolRepository(db),
		atts:   NewAttendanceRepository(db),
		grades: NewGradeRepository(db),
		notifs: NewNotificationRepository(db),
	}

	mustUser := func(name, email, role string) user.User {
		usr, err := f.users.CreateUser(ctx, user.User{Name: name, Email: email, Role: role})
		require.NoError(t, err)
		return usr
	}
	var err error
	f.teacher = mustUser("Teacher", "teacher@school.id", user.RoleTeacher)
	f.class, err = f.school.CreateClass(ctx, school.Class{Name: "7A", GradeLevel: 7, AcademicYear: ay2023})
	require.NoError(t, err)
	f.math, err = f.school.CreateSubject(ctx, school.Subject{Name: "Mathematics", Code: "MTK"})
	require.NoError(t, err)
	f.english, err = f.school.CreateSubject(ctx, school.Subject{Name: "English", Code: "ENG"})
	require.NoError(t, err)
	f.parent, err = f.school.CreateParent(ctx, school.Parent{UserID: mustUser("Mother", "mother@mail.id", user.RoleParent).ID})
	require.NoError(t, err)
	f.alice, err = f.school.CreateStudent(ctx, school.Student{
		UserID: mustUser("Alice", "alice@school.id", user.RoleStudent).ID, StudentNumber: "S001",
		ClassID: f.class.ID, ParentID: null.IntFrom(f.parent.ID),
	})
	require.NoError(t, err)
	f.bob, err = f.school.CreateStudent(ctx, school.Student{
		UserID: mustUser("Bob", "bob@school.id", user.RoleStudent).ID, StudentNumber: "S002", ClassID: f.class.ID,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) grade(studentID, subjectID int, typ grade.AssignmentType, score int64, date core.Date) grade.Grade {
	return grade.Grade{
		StudentID:      studentID,
		SubjectID:      subjectID,
		AssignmentType: typ,
		AssignmentName: string(typ),
		Score:          decimal.NewFromInt(score),
		MaxScore:       decimal.NewFromInt(100),
		DateRecorded:   date,
		RecordedBy:     f.teacher.ID,
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.CreateUser(ctx, user.User{Name: "Other", Email: "alice@school.id", Role: user.RoleAdmin})
	assert.True(t, core.IsConstraint(err))

	_, err = f.users.GetUserByEmail(ctx, "nobody@school.id")
	assert.True(t, core.IsNotFound(err))

	_, err = f.users.GetUserByID(ctx, 999)
	assert.EqualError(t, err, "user with id 999 not found")

	found, err := f.users.GetUsersByID(ctx, f.teacher.ID, 999, f.teacher.ID)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	users, err := f.users.QueryUsers(ctx, user.QueryFilter{Search: "SCHOOL.ID", Roles: []string{user.RoleStudent}},
		[]core.DBOrdering{{Field: "name", Ascending: false}})
	require.NoError(t, err)
	if assert.Len(t, users, 2) {
		assert.Equal(t, "Bob", users[0].Name)
		assert.Equal(t, "Alice", users[1].Name)
	}
}

func TestSchoolRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.school.CreateClass(ctx, school.Class{Name: "9A", GradeLevel: 9, AcademicYear: ay2023})
	require.NoError(t, err)
	_, err = f.school.CreateClass(ctx, school.Class{Name: "7B", GradeLevel: 7, AcademicYear: core.NewAcademicYear(2024)})
	require.NoError(t, err)

	classes, err := f.school.QueryClasses(ctx, school.ClassFilter{})
	require.NoError(t, err)
	var names []string
	for _, c := range classes {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"7A", "7B", "9A"}, names)

	classes, err = f.school.QueryClasses(ctx, school.ClassFilter{AcademicYear: ay2023})
	require.NoError(t, err)
	assert.Len(t, classes, 2)

	_, err = f.school.CreateSubject(ctx, school.Subject{Name: "Maths again", Code: "MTK"})
	assert.True(t, core.IsConstraint(err))

	_, err = f.school.CreateStudent(ctx, school.Student{UserID: f.teacher.ID, StudentNumber: "S001", ClassID: f.class.ID})
	assert.EqualError(t, err, "a student with this number already exists")

	assert.Equal(t, "Alice", f.alice.Name)
	assert.Equal(t, "alice@school.id", f.alice.Email)
	assert.Equal(t, "7A", f.alice.ClassName)

	byNumber, err := f.school.GetStudentByNumber(ctx, "S002")
	require.NoError(t, err)
	assert.Equal(t, f.bob, byNumber)

	children, err := f.school.QueryStudents(ctx, school.StudentFilter{ParentID: f.parent.ID})
	require.NoError(t, err)
	assert.Equal(t, []school.Student{f.alice}, children)

	prnt, err := f.school.GetParentByUserID(ctx, f.parent.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Mother", prnt.Name)

	_, err = f.school.GetParentByUserID(ctx, f.teacher.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestAttendanceRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	jan2, jan3 := core.NewDate(2024, time.January, 2), core.NewDate(2024, time.January, 3)
	_, err := f.atts.CreateAttendances(ctx,
		attendance.Attendance{StudentID: f.bob.ID, Date: jan3, Status: attendance.StatusPresent, RecordedBy: f.teacher.ID},
		attendance.Attendance{StudentID: f.alice.ID, Date: jan3, Status: attendance.StatusAbsent, RecordedBy: f.teacher.ID},
		attendance.Attendance{
			StudentID: f.bob.ID, SubjectID: null.IntFrom(f.math.ID), Date: jan2,
			Status: attendance.StatusLate, RecordedBy: f.teacher.ID,
		},
	)
	require.NoError(t, err)

	t.Run("all or nothing", func(t *testing.T) {
		_, err := f.atts.CreateAttendances(ctx,
			attendance.Attendance{StudentID: f.bob.ID, Date: jan2, Status: attendance.StatusPresent},
			attendance.Attendance{StudentID: 999, Date: jan2, Status: attendance.StatusPresent},
		)
		assert.True(t, core.IsNotFound(err))

		all, err := f.atts.QueryAttendanceDetails(ctx, attendance.ReportFilter{StartDate: jan2, EndDate: jan3})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("ordered by date then student", func(t *testing.T) {
		details, err := f.atts.QueryAttendanceDetails(ctx, attendance.ReportFilter{StartDate: jan2, EndDate: jan3})
		require.NoError(t, err)
		require.Len(t, details, 3)
		assert.Equal(t, "Bob", details[0].StudentName)
		assert.Equal(t, null.StringFrom("Mathematics"), details[0].SubjectName)
		assert.Equal(t, "Alice", details[1].StudentName)
		assert.False(t, details[1].SubjectName.Valid)
		assert.Equal(t, "Bob", details[2].StudentName)
		assert.Equal(t, "7A", details[2].ClassName)
	})

	t.Run("filters", func(t *testing.T) {
		details, err := f.atts.QueryAttendanceDetails(ctx, attendance.ReportFilter{StartDate: jan3, EndDate: jan3})
		require.NoError(t, err)
		assert.Len(t, details, 2)

		details, err = f.atts.QueryAttendanceDetails(ctx, attendance.ReportFilter{SubjectID: f.math.ID, StartDate: jan2, EndDate: jan3})
		require.NoError(t, err)
		assert.Len(t, details, 1)

		details, err = f.atts.QueryAttendanceDetails(ctx, attendance.ReportFilter{ClassID: 999, StartDate: jan2, EndDate: jan3})
		require.NoError(t, err)
		assert.Empty(t, details)
	})
}

func TestGradeRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.grades.CreateGrades(ctx,
		f.grade(f.alice.ID, f.math.ID, grade.AssignmentFinal, 90, core.NewDate(2023, time.December, 31)),
		f.grade(f.alice.ID, f.math.ID, grade.AssignmentDaily, 80, core.NewDate(2023, time.March, 1)),
		f.grade(f.alice.ID, f.math.ID, grade.AssignmentDaily, 70, core.NewDate(2024, time.January, 1)),
	)
	require.NoError(t, err)

	_, err = f.grades.CreateGrades(ctx, f.grade(f.bob.ID, 999, grade.AssignmentDaily, 10, core.NewDate(2023, time.May, 5)))
	assert.True(t, core.IsNotFound(err))

	details, err := f.grades.QueryGradeDetails(ctx, grade.ReportFilter{AcademicYear: ay2023})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "2023-03-01", details[0].DateRecorded.String())
	assert.Equal(t, "2023-12-31", details[1].DateRecorded.String())
	assert.Equal(t, "MTK", details[0].SubjectCode)
	assert.Equal(t, "Teacher", details[0].RecordedByName)
	assert.Equal(t, "S001", details[0].StudentNumber)

	c1, err := f.grades.CreateConfig(ctx, grade.Config{SubjectID: f.math.ID, ClassID: f.class.ID, AcademicYear: ay2023})
	require.NoError(t, err)
	_, err = f.grades.CreateConfig(ctx, grade.Config{SubjectID: f.english.ID, ClassID: f.class.ID, AcademicYear: ay2023})
	require.NoError(t, err)

	configs, err := f.grades.QueryConfigs(ctx, grade.ConfigFilter{SubjectID: f.math.ID})
	require.NoError(t, err)
	assert.Equal(t, []grade.Config{c1}, configs)
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	older := notification.NewPending(f.parent.ID, f.alice.ID, notification.TypeGeneral, "older")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := notification.NewPending(f.parent.ID, f.alice.ID, notification.TypeGeneral, "newer")
	_, err := f.notifs.CreateNotifications(ctx, older, newer)
	require.NoError(t, err)

	_, err = f.notifs.CreateNotifications(ctx, notification.NewPending(999, f.alice.ID, notification.TypeGeneral, "lost"))
	assert.True(t, core.IsNotFound(err))

	notifs, err := f.notifs.QueryNotifications(ctx, notification.QueryFilter{ParentID: f.parent.ID})
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	assert.Equal(t, "newer", notifs[0].Message)
	assert.Equal(t, "older", notifs[1].Message)

	notifs, err = f.notifs.QueryNotifications(ctx, notification.QueryFilter{Status: notification.StatusSent})
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestReportRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewReportRepository(f.db)

	_, err := f.atts.CreateAttendances(ctx,
		attendance.Attendance{StudentID: f.alice.ID, Date: core.NewDate(2023, time.December, 31), Status: attendance.StatusPresent},
		attendance.Attendance{StudentID: f.alice.ID, Date: core.NewDate(2024, time.January, 1), Status: attendance.StatusAbsent},
		attendance.Attendance{StudentID: f.bob.ID, Date: core.NewDate(2023, time.June, 1), Status: attendance.StatusLate},
	)
	require.NoError(t, err)
	_, err = f.grades.CreateGrades(ctx,
		f.grade(f.alice.ID, f.english.ID, grade.AssignmentMidterm, 75, core.NewDate(2023, time.January, 1)),
		f.grade(f.alice.ID, f.english.ID, grade.AssignmentFinal, 60, core.NewDate(2024, time.February, 1)),
	)
	require.NoError(t, err)
	_, err = f.grades.CreateConfig(ctx, grade.Config{
		SubjectID: f.english.ID, ClassID: f.class.ID, AcademicYear: ay2023,
		DailyWeight: decimal.NewFromInt(50), MidtermWeight: decimal.NewFromInt(25), FinalWeight: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	_, err = f.grades.CreateConfig(ctx, grade.Config{SubjectID: f.english.ID, ClassID: f.class.ID, AcademicYear: core.NewAcademicYear(2024)})
	require.NoError(t, err)

	stu, err := repo.GetStudentSnapshot(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stu.Name)
	assert.Equal(t, "7A", stu.ClassName)

	_, err = repo.GetStudentSnapshot(ctx, 999)
	assert.EqualError(t, err, "student with id 999 not found")

	atts, err := repo.ListAttendance(ctx, f.alice.ID, 2023)
	require.NoError(t, err)
	if assert.Len(t, atts, 1) {
		assert.Equal(t, attendance.StatusPresent, atts[0].Status)
	}

	grades, err := repo.ListGrades(ctx, f.alice.ID, 2023)
	require.NoError(t, err)
	if assert.Len(t, grades, 1) {
		assert.Equal(t, "English", grades[0].SubjectName)
		assert.True(t, decimal.NewFromInt(75).Equal(grades[0].Score))
	}

	configs, err := repo.ListGradeConfigs(ctx, f.class.ID, ay2023)
	require.NoError(t, err)
	if assert.Len(t, configs, 1) {
		assert.True(t, decimal.NewFromInt(50).Equal(configs[0].Weights.Daily))
	}
}
