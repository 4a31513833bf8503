package roster

import (
	"slices"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"schooldash/internal/model"
)

// Grade levels inferred from the subjects a student takes.
const (
	Elementary   = "Elementary"
	MiddleSchool = "Middle School"
	HighSchool   = "High School"
)

// Fallback display names for references that do not resolve.
const (
	UnknownStudent = "Unknown Student"
	UnknownClass   = "Unknown Class"
)

// Roster joins students, classes and grades by id. Joins are best effort: a
// reference that does not resolve is skipped and counted, never an error.
type Roster struct {
	students []model.Student
	classes  []model.ClassSection
	grades   []model.Grade

	studentByID map[int]int
	classByID   map[int]int

	dropped atomic.Int64
	counter prometheus.Counter
}

// New indexes the collections. The slices are read, never modified.
func New(students []model.Student, classes []model.ClassSection, grades []model.Grade) *Roster {
	r := &Roster{
		students:    students,
		classes:     classes,
		grades:      grades,
		studentByID: make(map[int]int, len(students)),
		classByID:   make(map[int]int, len(classes)),
	}
	for i, s := range students {
		if _, dup := r.studentByID[s.ID]; !dup {
			r.studentByID[s.ID] = i
		}
	}
	for i, c := range classes {
		if _, dup := r.classByID[c.ID]; !dup {
			r.classByID[c.ID] = i
		}
	}
	return r
}

// NewDroppedCounter registers the counter that mirrors Dropped across rosters.
func NewDroppedCounter(reg prometheus.Registerer) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schooldash_roster_dropped_references_total",
		Help: "References to students or classes that could not be resolved.",
	})
	if reg != nil {
		reg.MustRegister(c)
	}
	return c
}

// WithCounter reports every dropped reference to c as well.
func (r *Roster) WithCounter(c prometheus.Counter) *Roster {
	r.counter = c
	return r
}

// Dropped is the number of unresolvable references skipped so far.
func (r *Roster) Dropped() int {
	return int(r.dropped.Load())
}

func (r *Roster) drop() {
	r.dropped.Add(1)
	if r.counter != nil {
		r.counter.Inc()
	}
}

// Students returns the indexed students.
func (r *Roster) Students() []model.Student { return r.students }

// Classes returns the indexed classes.
func (r *Roster) Classes() []model.ClassSection { return r.classes }

// Grades returns the indexed grades.
func (r *Roster) Grades() []model.Grade { return r.grades }

// Student looks up a student by id.
func (r *Roster) Student(id int) (model.Student, bool) {
	i, ok := r.studentByID[id]
	if !ok {
		return model.Student{}, false
	}
	return r.students[i], true
}

// Class looks up a class by id.
func (r *Roster) Class(id int) (model.ClassSection, bool) {
	i, ok := r.classByID[id]
	if !ok {
		return model.ClassSection{}, false
	}
	return r.classes[i], true
}

// ClassesForStudent resolves the student's classIds in their stored order.
// Unknown students yield an empty result.
func (r *Roster) ClassesForStudent(studentID int) []model.ClassSection {
	s, ok := r.Student(studentID)
	if !ok {
		return []model.ClassSection{}
	}
	return r.classesOf(s)
}

func (r *Roster) classesOf(s model.Student) []model.ClassSection {
	out := make([]model.ClassSection, 0, len(s.ClassIDs))
	for _, id := range s.ClassIDs {
		c, ok := r.Class(id)
		if !ok {
			r.drop()
			continue
		}
		out = append(out, c)
	}
	return out
}

// StudentsForClass returns the students whose classIds contain classID, in
// store order.
func (r *Roster) StudentsForClass(classID int) []model.Student {
	out := []model.Student{}
	for _, s := range r.students {
		if slices.Contains(s.ClassIDs, classID) {
			out = append(out, s)
		}
	}
	return out
}

// StudentsByIDs resolves ids in order. Unknown ids are skipped and counted.
func (r *Roster) StudentsByIDs(ids []int) []model.Student {
	out := make([]model.Student, 0, len(ids))
	for _, id := range ids {
		s, ok := r.Student(id)
		if !ok {
			r.drop()
			continue
		}
		out = append(out, s)
	}
	return out
}

// GradesFor returns grades of studentID in classID.
func (r *Roster) GradesFor(studentID, classID int) []model.Grade {
	out := []model.Grade{}
	for _, g := range r.grades {
		if g.StudentID == studentID && g.ClassID == classID {
			out = append(out, g)
		}
	}
	return out
}

// GradeLevel infers the grade level of a student from their classes. It is
// computed on every call.
func (r *Roster) GradeLevel(studentID int) string {
	return GradeLevelOf(r.ClassesForStudent(studentID))
}

// GradeLevelOfStudent is GradeLevel for a student value that may not be
// indexed yet.
func (r *Roster) GradeLevelOfStudent(s model.Student) string {
	return GradeLevelOf(r.classesOf(s))
}

// ClassesOfStudent is ClassesForStudent for a student value.
func (r *Roster) ClassesOfStudent(s model.Student) []model.ClassSection {
	return r.classesOf(s)
}

// GradeLevelOf maps a set of classes to a grade level: Mathematics together
// with Science is High School, otherwise History or English is Middle
// School, otherwise Elementary.
func GradeLevelOf(classes []model.ClassSection) string {
	var math, science, history, english bool
	for _, c := range classes {
		switch c.Subject {
		case "Mathematics":
			math = true
		case "Science":
			science = true
		case "History":
			history = true
		case "English":
			english = true
		}
	}
	switch {
	case math && science:
		return HighSchool
	case history || english:
		return MiddleSchool
	default:
		return Elementary
	}
}

// StudentName is the display name for id, or UnknownStudent.
func (r *Roster) StudentName(id int) string {
	s, ok := r.Student(id)
	if !ok {
		r.drop()
		return UnknownStudent
	}
	return s.FullName()
}

// ClassName is the class name for id, or UnknownClass.
func (r *Roster) ClassName(id int) string {
	c, ok := r.Class(id)
	if !ok {
		r.drop()
		return UnknownClass
	}
	return c.Name
}
