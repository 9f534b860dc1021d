package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd, role string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo school.Repository, name string, gradeLevel int, year core.AcademicYear) school.Class {
	cls, err := repo.CreateClass(context.Background(), school.Class{
		Name:         name,
		GradeLevel:   gradeLevel,
		AcademicYear: year,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateSubject(t *testing.T, repo school.Repository, name, code string) school.Subject {
	subj, err := repo.CreateSubject(context.Background(), school.Subject{Name: name, Code: code, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateParent(t *testing.T, repo school.Repository, usr user.User, phone string) school.Parent {
	prnt, err := repo.CreateParent(context.Background(), school.Parent{
		UserID:      usr.ID,
		PhoneNumber: phone,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateParent() failed: %v", err)
	}
	return prnt
}

// CreateStudent enrolls usr in cls; parent may be nil.
func CreateStudent(t *testing.T, repo school.Repository, usr user.User, number string, cls school.Class, parent *school.Parent) school.Student {
	var parentID null.Int
	if parent != nil {
		parentID = null.IntFrom(parent.ID)
	}
	stu, err := repo.CreateStudent(context.Background(), school.Student{
		UserID:        usr.ID,
		StudentNumber: number,
		ClassID:       cls.ID,
		ParentID:      parentID,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreateTeacher(t *testing.T, repo school.Repository, usr user.User, employeeNumber string) school.Teacher {
	tchr, err := repo.CreateTeacher(context.Background(), school.Teacher{
		UserID:         usr.ID,
		EmployeeNumber: employeeNumber,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}
