package dummydb

import (
	"context"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) GetStudentSnapshot(_ context.Context, studentID int) (report.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	stored, ok := repo.db.students[studentID]
	if !ok {
		return report.Student{}, core.NewNotFoundError("student", studentID)
	}
	stu := repo.db.studentDetail(stored)
	return report.Student{
		ID:            stu.ID,
		Name:          stu.Name,
		StudentNumber: stu.StudentNumber,
		ClassID:       stu.ClassID,
		ClassName:     stu.ClassName,
	}, nil
}

func (repo *reportRepository) ListAttendance(_ context.Context, studentID, year int) ([]report.AttendanceRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]report.AttendanceRow, 0)
	for _, id := range sortedIDs(repo.db.attendances) {
		att := repo.db.attendances[id]
		if att.StudentID != studentID || att.Date.Year() != year {
			continue
		}
		rows = append(rows, report.AttendanceRow{Status: att.Status, Date: att.Date})
	}
	return rows, nil
}

func (repo *reportRepository) ListGrades(_ context.Context, studentID, year int) ([]report.GradeRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]report.GradeRow, 0)
	for _, id := range sortedIDs(repo.db.grades) {
		g := repo.db.grades[id]
		if g.StudentID != studentID || g.DateRecorded.Year() != year {
			continue
		}
		row := report.GradeRow{
			SubjectID:      g.SubjectID,
			AssignmentType: g.AssignmentType,
			Score:          g.Score,
			MaxScore:       g.MaxScore,
		}
		if subj, ok := repo.db.subjects[g.SubjectID]; ok {
			row.SubjectName = subj.Name
			row.SubjectCode = subj.Code
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (repo *reportRepository) ListGradeConfigs(_ context.Context, classID int, year core.AcademicYear) ([]report.ConfigRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]report.ConfigRow, 0)
	for _, id := range sortedIDs(repo.db.gradeConfigs) {
		conf := repo.db.gradeConfigs[id]
		if conf.ClassID != classID || conf.AcademicYear != year {
			continue
		}
		rows = append(rows, report.ConfigRow{ID: conf.ID, SubjectID: conf.SubjectID, Weights: conf.Weights()})
	}
	return rows, nil
}
