package school

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

// ImportStudents enrolls students one by one into data.ClassID, creating their user accounts and,
// when a parent email is given, reusing or creating the parent.
// The first failing student aborts the import; students imported before it are kept.
func (svc *Service) ImportStudents(ctx context.Context, data ImportStudents) (ImportResult, error) {
	result := ImportResult{Students: make([]Student, 0, len(data.Students))}

	if _, err := svc.repo.GetClassByID(ctx, data.ClassID); err != nil {
		return result, err
	}

	for _, is := range data.Students {
		stu, err := svc.importStudent(ctx, data.ClassID, is)
		if err != nil {
			switch cause := errors.Cause(err); {
			case core.IsValidation(cause), core.IsConstraint(cause), core.IsNotFound(cause):
				return result, core.NewValidationError(errors.Errorf("failed to import student %s: %v", is.Name, cause))
			default:
				return result, errors.Wrapf(err, "importing student %s", is.Name)
			}
		}
		result.Students = append(result.Students, stu)
		result.Imported++
	}
	return result, nil
}

func (svc *Service) importStudent(ctx context.Context, classID int, is ImportStudent) (Student, error) {
	if _, err := svc.repo.GetStudentByNumber(ctx, is.StudentNumber); err == nil {
		return Student{}, core.NewValidationError(errors.Errorf("student with number %s already exists", is.StudentNumber))
	} else if !core.IsNotFound(err) {
		return Student{}, errors.Wrap(err, "checking student number")
	}

	if _, err := svc.users.GetByEmail(ctx, is.Email); err == nil {
		return Student{}, core.NewValidationError(errors.Errorf("user with email %s already exists", is.Email))
	} else if !core.IsNotFound(err) {
		return Student{}, errors.Wrap(err, "checking student email")
	}

	var parentID null.Int
	if is.ParentEmail != "" {
		prnt, err := svc.importParent(ctx, is)
		if err != nil {
			return Student{}, err
		}
		parentID = null.IntFrom(prnt.ID)
	}

	usr, err := svc.users.Create(ctx, user.NewUser{
		Email:    is.Email,
		Password: svc.importPassword,
		Name:     is.Name,
		Role:     user.RoleStudent,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student user")
	}

	return svc.repo.CreateStudent(ctx, Student{
		UserID:        usr.ID,
		StudentNumber: is.StudentNumber,
		ClassID:       classID,
		ParentID:      parentID,
		CreatedAt:     time.Now().UTC(),
	})
}

// importParent returns the parent owning is.ParentEmail, creating the user and parent records when missing.
func (svc *Service) importParent(ctx context.Context, is ImportStudent) (Parent, error) {
	usr, err := svc.users.GetByEmail(ctx, is.ParentEmail)
	switch {
	case err == nil:
		if usr.Role != user.RoleParent {
			return Parent{}, core.NewValidationError(errors.Errorf("user with email %s is not a parent", is.ParentEmail))
		}
		prnt, err := svc.repo.GetParentByUserID(ctx, usr.ID)
		if err == nil {
			return prnt, nil
		}
		if !core.IsNotFound(err) {
			return Parent{}, errors.Wrap(err, "finding parent")
		}
	case core.IsNotFound(err):
		name := is.ParentName
		if name == "" {
			name = "Parent of " + is.Name
		}
		usr, err = svc.users.Create(ctx, user.NewUser{
			Email:    is.ParentEmail,
			Password: svc.importPassword,
			Name:     name,
			Role:     user.RoleParent,
		})
		if err != nil {
			return Parent{}, errors.Wrap(err, "creating parent user")
		}
	default:
		return Parent{}, errors.Wrap(err, "finding parent user")
	}

	return svc.repo.CreateParent(ctx, Parent{
		UserID:      usr.ID,
		PhoneNumber: is.ParentPhone,
		CreatedAt:   time.Now().UTC(),
	})
}
