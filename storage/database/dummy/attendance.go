package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendances(_ context.Context, atts ...attendance.Attendance) ([]attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// foreign keys are checked before anything is written
	for _, att := range atts {
		if _, ok := repo.db.students[att.StudentID]; !ok {
			return nil, core.NewNotFoundError("student", att.StudentID)
		}
		if att.SubjectID.Valid {
			if _, ok := repo.db.subjects[att.SubjectID.Int]; !ok {
				return nil, core.NewNotFoundError("subject", att.SubjectID.Int)
			}
		}
	}

	created := make([]attendance.Attendance, 0, len(atts))
	for _, att := range atts {
		att := att
		att.ID = repo.db.nextID("attendances")
		repo.db.attendances[att.ID] = &att
		created = append(created, att)
	}
	return created, nil
}

func (repo *attendanceRepository) QueryAttendanceDetails(_ context.Context, filter attendance.ReportFilter) ([]attendance.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	details := make([]attendance.Detail, 0)
	for _, id := range sortedIDs(repo.db.attendances) {
		att := repo.db.attendances[id]
		if att.Date.Before(filter.StartDate.Time) || att.Date.After(filter.EndDate.Time) {
			continue
		}
		if filter.StudentID != 0 && att.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != 0 && (!att.SubjectID.Valid || att.SubjectID.Int != filter.SubjectID) {
			continue
		}
		stored, ok := repo.db.students[att.StudentID]
		if !ok {
			continue
		}
		if filter.ClassID != 0 && stored.ClassID != filter.ClassID {
			continue
		}

		stu := repo.db.studentDetail(stored)
		det := attendance.Detail{
			Attendance:    *att,
			StudentName:   stu.Name,
			StudentNumber: stu.StudentNumber,
			ClassName:     stu.ClassName,
		}
		if att.SubjectID.Valid {
			if subj, ok := repo.db.subjects[att.SubjectID.Int]; ok {
				det.SubjectName = null.StringFrom(subj.Name)
			}
		}
		details = append(details, det)
	}

	sort.SliceStable(details, func(i, j int) bool {
		if !details[i].Date.Equal(details[j].Date.Time) {
			return details[i].Date.Before(details[j].Date.Time)
		}
		return details[i].StudentID < details[j].StudentID
	})
	return details, nil
}
