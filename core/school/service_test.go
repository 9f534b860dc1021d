package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	dummydb "github.com/smpn3kaledupa/presensi-nilai/storage/database/dummy"
	testutil "github.com/smpn3kaledupa/presensi-nilai/tests"
)

type fixture struct {
	svc     *school.Service
	repo    school.Repository
	usrRepo user.Repository
	cls     school.Class
}

func setup(t *testing.T) fixture {
	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	repo := dummydb.NewSchoolRepository(db)
	return fixture{
		svc:     school.NewService(repo, user.NewService(usrRepo), "temp123"),
		repo:    repo,
		usrRepo: usrRepo,
		cls:     testutil.CreateClass(t, repo, "7A", 7, core.NewAcademicYear(2024)),
	}
}

func TestService_CreateStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	stuUsr := testutil.CreateUser(t, f.usrRepo, "Alice", "alice@school.id", "", user.RoleStudent)
	teacher := testutil.CreateUser(t, f.usrRepo, "Guru", "guru@school.id", "", user.RoleTeacher)

	tests := []struct {
		name    string
		ns      school.NewStudent
		wantErr string
	}{
		{
			name:    "unknown user",
			ns:      school.NewStudent{UserID: 999, StudentNumber: "S001", ClassID: f.cls.ID},
			wantErr: "user with id 999 not found",
		},
		{
			name:    "not a student",
			ns:      school.NewStudent{UserID: teacher.ID, StudentNumber: "S001", ClassID: f.cls.ID},
			wantErr: "user with id 2 does not have the student role",
		},
		{
			name:    "unknown class",
			ns:      school.NewStudent{UserID: stuUsr.ID, StudentNumber: "S001", ClassID: 999},
			wantErr: "class with id 999 not found",
		},
		{
			name:    "unknown parent",
			ns:      school.NewStudent{UserID: stuUsr.ID, StudentNumber: "S001", ClassID: f.cls.ID, ParentID: null.IntFrom(999)},
			wantErr: "parent with id 999 not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateStudent(ctx, tt.ns)
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	stu, err := f.svc.CreateStudent(ctx, school.NewStudent{UserID: stuUsr.ID, StudentNumber: "S001", ClassID: f.cls.ID})
	require.NoError(t, err)
	assert.Equal(t, "Alice", stu.Name)
	assert.Equal(t, "7A", stu.ClassName)
	assert.False(t, stu.ParentID.Valid)
}

func TestService_ImportStudents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// an existing parent account is reused
	momUsr := testutil.CreateUser(t, f.usrRepo, "Ibu Rina", "rina@mail.id", "", user.RoleParent)
	mom := testutil.CreateParent(t, f.repo, momUsr, "0811")

	res, err := f.svc.ImportStudents(ctx, school.ImportStudents{
		ClassID: f.cls.ID,
		Students: []school.ImportStudent{
			{Name: "Dewi", Email: "dewi@school.id", StudentNumber: "S001", ParentEmail: "pak.budi@mail.id", ParentPhone: "0812"},
			{Name: "Eko", Email: "eko@school.id", StudentNumber: "S002", ParentName: "Budi", ParentEmail: "pak.budi@mail.id"},
			{Name: "Fajar", Email: "fajar@school.id", StudentNumber: "S003", ParentEmail: "rina@mail.id"},
			{Name: "Gita", Email: "gita@school.id", StudentNumber: "S004"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Imported)
	require.Len(t, res.Students, 4)

	dewi, eko, fajar, gita := res.Students[0], res.Students[1], res.Students[2], res.Students[3]
	require.True(t, dewi.ParentID.Valid)
	assert.Equal(t, dewi.ParentID, eko.ParentID, "siblings share one parent")
	assert.Equal(t, null.IntFrom(mom.ID), fajar.ParentID)
	assert.False(t, gita.ParentID.Valid)

	prnt, err := f.repo.GetParentByID(ctx, dewi.ParentID.Int)
	require.NoError(t, err)
	assert.Equal(t, "Parent of Dewi", prnt.Name)
	assert.Equal(t, "0812", prnt.PhoneNumber)

	usr, err := f.usrRepo.GetUserByEmail(ctx, "dewi@school.id")
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.NoError(t, usr.CheckPassword("temp123"))

	parents, err := f.repo.QueryParents(ctx)
	require.NoError(t, err)
	assert.Len(t, parents, 2)
}

func TestService_ImportStudents_errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.usrRepo, "Guru", "guru@school.id", "", user.RoleTeacher)

	tests := []struct {
		name         string
		data         school.ImportStudents
		wantErr      string
		wantImported int
	}{
		{
			name:    "unknown class",
			data:    school.ImportStudents{ClassID: 999, Students: []school.ImportStudent{{Name: "A", Email: "a@school.id", StudentNumber: "A1"}}},
			wantErr: "class with id 999 not found",
		},
		{
			name: "parent email owned by a non parent",
			data: school.ImportStudents{ClassID: f.cls.ID, Students: []school.ImportStudent{
				{Name: "Hadi", Email: "hadi@school.id", StudentNumber: "H1", ParentEmail: "guru@school.id"},
			}},
			wantErr: "failed to import student Hadi: user with email guru@school.id is not a parent",
		},
		{
			name: "stops at the first failure",
			data: school.ImportStudents{ClassID: f.cls.ID, Students: []school.ImportStudent{
				{Name: "Indah", Email: "indah@school.id", StudentNumber: "I1"},
				{Name: "Joko", Email: "indah@school.id", StudentNumber: "J1"},
				{Name: "Kiki", Email: "kiki@school.id", StudentNumber: "K1"},
			}},
			wantErr:      "failed to import student Joko: user with email indah@school.id already exists",
			wantImported: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.ImportStudents(ctx, tt.data)
			require.EqualError(t, err, tt.wantErr)
			assert.True(t, core.IsValidation(err) || core.IsNotFound(err))
			assert.Equal(t, tt.wantImported, res.Imported)
		})
	}

	// earlier rows are kept
	_, err := f.repo.GetStudentByNumber(ctx, "I1")
	assert.NoError(t, err)
	_, err = f.repo.GetStudentByNumber(ctx, "K1")
	assert.True(t, core.IsNotFound(err))
}

func TestService_CreateTeacherAssignment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tchr := testutil.CreateTeacher(t, f.repo, testutil.CreateUser(t, f.usrRepo, "Guru", "guru@school.id", "", user.RoleTeacher), "T01")
	subj := testutil.CreateSubject(t, f.repo, "Matematika", "MTK")
	year := core.NewAcademicYear(2024)

	tests := []struct {
		name    string
		na      school.NewTeacherAssignment
		wantErr string
	}{
		{name: "unknown teacher", na: school.NewTeacherAssignment{TeacherID: 9, SubjectID: subj.ID, ClassID: f.cls.ID, AcademicYear: year}, wantErr: "teacher with id 9 not found"},
		{name: "unknown subject", na: school.NewTeacherAssignment{TeacherID: tchr.ID, SubjectID: 9, ClassID: f.cls.ID, AcademicYear: year}, wantErr: "subject with id 9 not found"},
		{name: "unknown class", na: school.NewTeacherAssignment{TeacherID: tchr.ID, SubjectID: subj.ID, ClassID: 9, AcademicYear: year}, wantErr: "class with id 9 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateTeacherAssignment(ctx, tt.na)
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	asgmt, err := f.svc.CreateTeacherAssignment(ctx, school.NewTeacherAssignment{
		TeacherID: tchr.ID, SubjectID: subj.ID, ClassID: f.cls.ID, AcademicYear: year,
	})
	require.NoError(t, err)

	found, err := f.svc.QueryTeacherAssignments(ctx, school.TeacherAssignmentFilter{TeacherID: tchr.ID})
	require.NoError(t, err)
	assert.Equal(t, []school.TeacherAssignment{asgmt}, found)
}
