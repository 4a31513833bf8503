package filter

import (
	"slices"
	"strings"
	"time"

	"schooldash/internal/model"
	"schooldash/internal/roster"
)

// Predicate reports whether an item matches one criterion.
type Predicate[T any] func(T) bool

// All combines predicates with logical AND. Nil predicates are ignored, so an
// empty set matches everything.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(v T) bool {
		for _, p := range active {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Apply returns the items matching p in their original order. The result is
// a new slice even when nothing is filtered out.
func Apply[T any](items []T, p Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p == nil || p(it) {
			out = append(out, it)
		}
	}
	return out
}

// Contains reports whether query is a case-insensitive substring of any
// field. A blank query matches.
func Contains(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// SameDay compares the calendar day of a and b, ignoring time of day. Both
// are read in UTC.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StudentCriteria narrows the student list. Zero fields are no constraint.
type StudentCriteria struct {
	Search     string              `form:"search" json:"search"`
	Status     model.StudentStatus `form:"status" json:"status"`
	GradeLevel string              `form:"grade_level" json:"grade_level"`
	Subject    string              `form:"subject" json:"subject"`
}

// Predicate builds the AND of the active criteria. Grade level and subject
// are resolved through r.
func (c StudentCriteria) Predicate(r *roster.Roster) Predicate[model.Student] {
	var preds []Predicate[model.Student]
	if strings.TrimSpace(c.Search) != "" {
		preds = append(preds, func(s model.Student) bool {
			return Contains(c.Search, s.FirstName, s.LastName, s.Email, s.StudentCode)
		})
	}
	if c.Status != "" {
		preds = append(preds, func(s model.Student) bool { return s.Status == c.Status })
	}
	if c.GradeLevel != "" {
		preds = append(preds, func(s model.Student) bool { return r.GradeLevelOfStudent(s) == c.GradeLevel })
	}
	if c.Subject != "" {
		preds = append(preds, func(s model.Student) bool {
			return slices.ContainsFunc(r.ClassesOfStudent(s), func(cl model.ClassSection) bool {
				return cl.Subject == c.Subject
			})
		})
	}
	return All(preds...)
}

// ActiveFilters counts the exact-match criteria in use. Search is not
// counted.
func (c StudentCriteria) ActiveFilters() int {
	n := 0
	for _, v := range []string{string(c.Status), c.GradeLevel, c.Subject} {
		if v != "" {
			n++
		}
	}
	return n
}

// Students filters students by c.
func Students(students []model.Student, r *roster.Roster, c StudentCriteria) []model.Student {
	return Apply(students, c.Predicate(r))
}

// GradeCriteria narrows the grade list.
type GradeCriteria struct {
	Search    string `form:"search" json:"search"`
	ClassID   int    `form:"class_id" json:"class_id"`
	StudentID int    `form:"student_id" json:"student_id"`
	Category  string `form:"category" json:"category"`
}

// Predicate builds the AND of the active criteria. Search covers the
// resolved student name and the assignment name.
func (c GradeCriteria) Predicate(r *roster.Roster) Predicate[model.Grade] {
	var preds []Predicate[model.Grade]
	if strings.TrimSpace(c.Search) != "" {
		preds = append(preds, func(g model.Grade) bool {
			name := ""
			if s, ok := r.Student(g.StudentID); ok {
				name = s.FullName()
			}
			return Contains(c.Search, name, g.AssignmentName)
		})
	}
	if c.ClassID != 0 {
		preds = append(preds, func(g model.Grade) bool { return g.ClassID == c.ClassID })
	}
	if c.StudentID != 0 {
		preds = append(preds, func(g model.Grade) bool { return g.StudentID == c.StudentID })
	}
	if c.Category != "" {
		preds = append(preds, func(g model.Grade) bool { return strings.EqualFold(g.Category, c.Category) })
	}
	return All(preds...)
}

// Grades filters grades by c.
func Grades(grades []model.Grade, r *roster.Roster, c GradeCriteria) []model.Grade {
	return Apply(grades, c.Predicate(r))
}

// AttendanceCriteria narrows attendance records. From and To bound an
// inclusive range of calendar days.
type AttendanceCriteria struct {
	ClassID   int
	StudentID int
	Status    model.AttendanceStatus
	Day       time.Time
	From      time.Time
	To        time.Time
}

// Predicate builds the AND of the active criteria.
func (c AttendanceCriteria) Predicate() Predicate[model.AttendanceRecord] {
	var preds []Predicate[model.AttendanceRecord]
	if c.ClassID != 0 {
		preds = append(preds, func(a model.AttendanceRecord) bool { return a.ClassID == c.ClassID })
	}
	if c.StudentID != 0 {
		preds = append(preds, func(a model.AttendanceRecord) bool { return a.StudentID == c.StudentID })
	}
	if c.Status != "" {
		preds = append(preds, func(a model.AttendanceRecord) bool { return a.Status == c.Status })
	}
	if !c.Day.IsZero() {
		preds = append(preds, func(a model.AttendanceRecord) bool { return SameDay(a.Date, c.Day) })
	}
	if !c.From.IsZero() {
		from := Day(c.From)
		preds = append(preds, func(a model.AttendanceRecord) bool { return !Day(a.Date).Before(from) })
	}
	if !c.To.IsZero() {
		to := Day(c.To)
		preds = append(preds, func(a model.AttendanceRecord) bool { return !Day(a.Date).After(to) })
	}
	return All(preds...)
}

// Attendance filters records by c.
func Attendance(records []model.AttendanceRecord, c AttendanceCriteria) []model.AttendanceRecord {
	return Apply(records, c.Predicate())
}

// FindAttendance returns the first record for student and class on the
// calendar day of day.
func FindAttendance(records []model.AttendanceRecord, studentID, classID int, day time.Time) (model.AttendanceRecord, bool) {
	for _, a := range records {
		if a.StudentID == studentID && a.ClassID == classID && SameDay(a.Date, day) {
			return a, true
		}
	}
	return model.AttendanceRecord{}, false
}
