package dummydb

import (
	"context"
	"sort"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrades(_ context.Context, grades ...grade.Grade) ([]grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, g := range grades {
		if _, ok := repo.db.students[g.StudentID]; !ok {
			return nil, core.NewNotFoundError("student", g.StudentID)
		}
		if _, ok := repo.db.subjects[g.SubjectID]; !ok {
			return nil, core.NewNotFoundError("subject", g.SubjectID)
		}
		if _, ok := repo.db.users[g.RecordedBy]; !ok {
			return nil, core.NewNotFoundError("user", g.RecordedBy)
		}
	}

	created := make([]grade.Grade, 0, len(grades))
	for _, g := range grades {
		g := g
		g.ID = repo.db.nextID("grades")
		repo.db.grades[g.ID] = &g
		created = append(created, g)
	}
	return created, nil
}

func (repo *gradeRepository) CreateConfig(_ context.Context, conf grade.Config) (grade.Config, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	conf.ID = repo.db.nextID("grade_configs")
	repo.db.gradeConfigs[conf.ID] = &conf
	return conf, nil
}

func (repo *gradeRepository) QueryConfigs(_ context.Context, filter grade.ConfigFilter) ([]grade.Config, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	configs := make([]grade.Config, 0)
	for _, id := range sortedIDs(repo.db.gradeConfigs) {
		conf := repo.db.gradeConfigs[id]
		if filter.SubjectID != 0 && conf.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ClassID != 0 && conf.ClassID != filter.ClassID {
			continue
		}
		if !filter.AcademicYear.IsZero() && conf.AcademicYear != filter.AcademicYear {
			continue
		}
		configs = append(configs, *conf)
	}
	return configs, nil
}

func (repo *gradeRepository) QueryGradeDetails(_ context.Context, filter grade.ReportFilter) ([]grade.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	details := make([]grade.Detail, 0)
	for _, id := range sortedIDs(repo.db.grades) {
		g := repo.db.grades[id]
		if g.DateRecorded.Year() != filter.AcademicYear.Start {
			continue
		}
		if filter.StudentID != 0 && g.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != 0 && g.SubjectID != filter.SubjectID {
			continue
		}
		stored, ok := repo.db.students[g.StudentID]
		if !ok {
			continue
		}
		if filter.ClassID != 0 && stored.ClassID != filter.ClassID {
			continue
		}

		stu := repo.db.studentDetail(stored)
		det := grade.Detail{
			Grade:         *g,
			StudentName:   stu.Name,
			StudentNumber: stu.StudentNumber,
			ClassName:     stu.ClassName,
		}
		if subj, ok := repo.db.subjects[g.SubjectID]; ok {
			det.SubjectName = subj.Name
			det.SubjectCode = subj.Code
		}
		if usr, ok := repo.db.users[g.RecordedBy]; ok {
			det.RecordedByName = usr.Name
		}
		details = append(details, det)
	}

	sort.SliceStable(details, func(i, j int) bool {
		if !details[i].DateRecorded.Equal(details[j].DateRecorded.Time) {
			return details[i].DateRecorded.Before(details[j].DateRecorded.Time)
		}
		return details[i].ID < details[j].ID
	})
	return details, nil
}
