package dummydb

import (
	"sort"
	"sync"

	"github.com/smpn3kaledupa/presensi-nilai/core/attendance"
	"github.com/smpn3kaledupa/presensi-nilai/core/grade"
	"github.com/smpn3kaledupa/presensi-nilai/core/notification"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

// DB is an in-memory record store. One lock guards every table so joins see a consistent state.
type DB struct {
	sync.RWMutex

	seq map[string]int

	users         map[int]*user.User
	classes       map[int]*school.Class
	subjects      map[int]*school.Subject
	students      map[int]*school.Student
	teachers      map[int]*school.Teacher
	parents       map[int]*school.Parent
	assignments   map[int]*school.TeacherAssignment
	attendances   map[int]*attendance.Attendance
	grades        map[int]*grade.Grade
	gradeConfigs  map[int]*grade.Config
	notifications map[int]*notification.Notification
}

func Open() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// Reset empties every table and restarts id sequences.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()

	db.seq = make(map[string]int)
	db.users = make(map[int]*user.User)
	db.classes = make(map[int]*school.Class)
	db.subjects = make(map[int]*school.Subject)
	db.students = make(map[int]*school.Student)
	db.teachers = make(map[int]*school.Teacher)
	db.parents = make(map[int]*school.Parent)
	db.assignments = make(map[int]*school.TeacherAssignment)
	db.attendances = make(map[int]*attendance.Attendance)
	db.grades = make(map[int]*grade.Grade)
	db.gradeConfigs = make(map[int]*grade.Config)
	db.notifications = make(map[int]*notification.Notification)
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}

// sortedIDs returns the primary keys of table in insertion order.
func sortedIDs[T any](table map[int]*T) []int {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
