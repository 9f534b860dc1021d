package grade_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	dummydb "github.com/smpn3kaledupa/presensi-nilai/storage/database/dummy"
	testutil "github.com/smpn3kaledupa/presensi-nilai/tests"
)

type fixture struct {
	svc      *grade.Service
	recorder user.User
	cls      school.Class
	subj     school.Subject
	stu      school.Student
}

func setup(t *testing.T) fixture {
	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	schoolRepo := dummydb.NewSchoolRepository(db)

	var f fixture
	f.svc = grade.NewService(dummydb.NewGradeRepository(db), schoolRepo, usrRepo)
	f.recorder = testutil.CreateUser(t, usrRepo, "Guru", "guru@school.id", "", user.RoleTeacher)
	f.cls = testutil.CreateClass(t, schoolRepo, "8B", 8, core.NewAcademicYear(2024))
	f.subj = testutil.CreateSubject(t, schoolRepo, "Matematika", "MTK")
	f.stu = testutil.CreateStudent(t, schoolRepo, testutil.CreateUser(t, usrRepo, "Alice", "alice@school.id", "", user.RoleStudent), "S001", f.cls, nil)
	return f
}

func (f fixture) newGrade(studentID, subjectID, recordedBy int) grade.NewGrade {
	return grade.NewGrade{
		StudentID:      studentID,
		SubjectID:      subjectID,
		AssignmentType: grade.AssignmentDaily,
		AssignmentName: "Quiz",
		Score:          decimal.NewFromInt(75),
		MaxScore:       decimal.NewFromInt(100),
		DateRecorded:   core.NewDate(2024, time.August, 12),
		RecordedBy:     recordedBy,
	}
}

func TestService_Record(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		ng      grade.NewGrade
		wantErr string
	}{
		{name: "unknown student", ng: f.newGrade(9, f.subj.ID, f.recorder.ID), wantErr: "student with id 9 not found"},
		{name: "unknown subject", ng: f.newGrade(f.stu.ID, 9, f.recorder.ID), wantErr: "subject with id 9 not found"},
		{name: "unknown recorder", ng: f.newGrade(f.stu.ID, f.subj.ID, 9), wantErr: "user with id 9 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Record(ctx, tt.ng)
			assert.EqualError(t, err, tt.wantErr)
			assert.True(t, core.IsNotFound(err))
		})
	}

	grd, err := f.svc.Record(ctx, f.newGrade(f.stu.ID, f.subj.ID, f.recorder.ID))
	require.NoError(t, err)
	assert.NotZero(t, grd.ID)
	assert.Equal(t, "75", grd.Percentage().String())

	t.Run("decimals kept exactly", func(t *testing.T) {
		ng := f.newGrade(f.stu.ID, f.subj.ID, f.recorder.ID)
		ng.Score = decimal.RequireFromString("87.33")
		ng.MaxScore = decimal.RequireFromString("90.5")
		ng.Weight = decimal.RequireFromString("7.25")

		created, err := f.svc.Record(ctx, ng)
		require.NoError(t, err)

		details, err := f.svc.Report(ctx, grade.ReportFilter{AcademicYear: core.NewAcademicYear(2024), StudentID: f.stu.ID})
		require.NoError(t, err)
		var stored grade.Grade
		for _, d := range details {
			if d.ID == created.ID {
				stored = d.Grade
			}
		}
		require.Equal(t, created.ID, stored.ID)
		assert.True(t, stored.Score.Equal(decimal.RequireFromString("87.33")), stored.Score.String())
		assert.True(t, stored.MaxScore.Equal(decimal.RequireFromString("90.5")), stored.MaxScore.String())
		assert.True(t, stored.Weight.Equal(decimal.RequireFromString("7.25")), stored.Weight.String())
	})
}

func TestService_RecordBulk(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grades, err := f.svc.RecordBulk(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, grades)

	_, err = f.svc.RecordBulk(ctx, []grade.NewGrade{
		f.newGrade(f.stu.ID, f.subj.ID, f.recorder.ID),
		f.newGrade(31, f.subj.ID, f.recorder.ID),
		f.newGrade(30, f.subj.ID, 77),
	})
	require.Error(t, err)
	assert.EqualError(t, err, "invalid student ids: 30, 31")

	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, []core.FieldError{
		{Field: "student_id", Error: "invalid student ids: 30, 31"},
		{Field: "recorded_by", Error: "invalid user ids: 77"},
	}, vErr.Fields)

	// nothing is stored when one entry is invalid
	details, err := f.svc.Report(ctx, grade.ReportFilter{AcademicYear: core.NewAcademicYear(2024)})
	require.NoError(t, err)
	assert.Empty(t, details)

	grades, err = f.svc.RecordBulk(ctx, []grade.NewGrade{
		f.newGrade(f.stu.ID, f.subj.ID, f.recorder.ID),
		f.newGrade(f.stu.ID, f.subj.ID, f.recorder.ID),
	})
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.NotEqual(t, grades[0].ID, grades[1].ID)

	details, err = f.svc.Report(ctx, grade.ReportFilter{AcademicYear: core.NewAcademicYear(2024), StudentID: f.stu.ID})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Alice", details[0].StudentName)
	assert.Equal(t, "8B", details[0].ClassName)
	assert.Equal(t, "Guru", details[0].RecordedByName)
}

func TestService_CreateConfig(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	year := core.NewAcademicYear(2024)

	newConfig := func(daily, midterm, final string) grade.NewConfig {
		return grade.NewConfig{
			SubjectID:     f.subj.ID,
			ClassID:       f.cls.ID,
			DailyWeight:   decimal.RequireFromString(daily),
			MidtermWeight: decimal.RequireFromString(midterm),
			FinalWeight:   decimal.RequireFromString(final),
			AcademicYear:  year,
		}
	}

	tests := []struct {
		name    string
		nc      grade.NewConfig
		wantErr string
	}{
		{name: "below 100", nc: newConfig("40", "30", "29.5"), wantErr: "grade weights must add up to 100%, current total: 99.5%"},
		{name: "above 100", nc: newConfig("50", "50", "1"), wantErr: "grade weights must add up to 100%, current total: 101%"},
		{name: "unknown subject", nc: grade.NewConfig{SubjectID: 5, ClassID: f.cls.ID, AcademicYear: year}, wantErr: "subject with id 5 not found"},
		{name: "unknown class", nc: grade.NewConfig{SubjectID: f.subj.ID, ClassID: 5, AcademicYear: year}, wantErr: "class with id 5 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateConfig(ctx, tt.nc)
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	conf, err := f.svc.CreateConfig(ctx, newConfig("33.4", "33.3", "33.3"))
	require.NoError(t, err)
	assert.True(t, conf.Weights().Total().Equal(decimal.NewFromInt(100)))

	configs, err := f.svc.QueryConfigs(ctx, grade.ConfigFilter{ClassID: f.cls.ID, AcademicYear: year})
	require.NoError(t, err)
	assert.Equal(t, []grade.Config{conf}, configs)

	configs, err = f.svc.QueryConfigs(ctx, grade.ConfigFilter{AcademicYear: core.NewAcademicYear(2025)})
	require.NoError(t, err)
	assert.Empty(t, configs)
}
