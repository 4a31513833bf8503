package view

import (
	"slices"
	"strings"
	"time"

	"schooldash/internal/model"
	"schooldash/internal/report"
	"schooldash/internal/roster"
)

// DateLayout is the display format for dates.
const DateLayout = "Jan 02, 2006"

// UnknownName is the student fallback used by the recent grades feed.
const UnknownName = "Unknown"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// GradeVariant maps a percentage to a status variant.
func GradeVariant(p float64) string {
	switch {
	case p >= 90:
		return "success"
	case p >= 80:
		return "info"
	case p >= 70:
		return "warning"
	default:
		return "error"
	}
}

// SubjectColor maps a subject to its badge color.
func SubjectColor(subject string) string {
	switch subject {
	case "Mathematics":
		return "primary"
	case "English":
		return "success"
	case "Science":
		return "info"
	case "History":
		return "warning"
	case "PE":
		return "error"
	default:
		return "default"
	}
}

// AttendanceVariant maps an attendance status to a status variant. An empty
// status is "default".
func AttendanceVariant(s model.AttendanceStatus) string {
	switch s {
	case model.Present:
		return "success"
	case model.Absent:
		return "error"
	case model.Late:
		return "warning"
	default:
		return "default"
	}
}

// GradeRow is a grade ready for display.
type GradeRow struct {
	model.Grade
	StudentName   string `json:"student_name"`
	ClassName     string `json:"class_name"`
	Percentage    int    `json:"percentage"`
	Letter        string `json:"letter"`
	Variant       string `json:"variant"`
	FormattedDate string `json:"formatted_date"`
}

// NewGradeRow projects g. The letter and variant follow the rounded
// percentage shown to the user.
func NewGradeRow(r *roster.Roster, g model.Grade) GradeRow {
	pct := report.Round(g.Percentage())
	return GradeRow{
		Grade:         g,
		StudentName:   r.StudentName(g.StudentID),
		ClassName:     r.ClassName(g.ClassID),
		Percentage:    pct,
		Letter:        report.Letter(float64(pct)),
		Variant:       GradeVariant(float64(pct)),
		FormattedDate: formatDate(g.Date),
	}
}

// GradeRows projects grades in order.
func GradeRows(r *roster.Roster, grades []model.Grade) []GradeRow {
	out := make([]GradeRow, len(grades))
	for i, g := range grades {
		out[i] = NewGradeRow(r, g)
	}
	return out
}

// RecentGrades returns the n newest grades, newest first. Unresolved students
// are shown as UnknownName.
func RecentGrades(r *roster.Roster, grades []model.Grade, n int) []GradeRow {
	sorted := report.SortBy(grades, func(a, b model.Grade) int { return a.Date.Compare(b.Date) }, true)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	out := GradeRows(r, sorted)
	for i := range out {
		if _, ok := r.Student(out[i].StudentID); !ok {
			out[i].StudentName = UnknownName
		}
	}
	return out
}

// StudentRow is a student ready for display.
type StudentRow struct {
	model.Student
	FullName      string   `json:"full_name"`
	GradeLevel    string   `json:"grade_level"`
	ClassNames    []string `json:"class_names"`
	EnrolledOn    string   `json:"enrolled_on"`
	StatusVariant string   `json:"status_variant"`
}

// NewStudentRow projects s.
func NewStudentRow(r *roster.Roster, s model.Student) StudentRow {
	classes := r.ClassesOfStudent(s)
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	s.ClassIDs = slices.Clone(s.ClassIDs)
	return StudentRow{
		Student:       s,
		FullName:      s.FullName(),
		GradeLevel:    roster.GradeLevelOf(classes),
		ClassNames:    names,
		EnrolledOn:    formatDate(s.EnrollmentDate),
		StatusVariant: StatusVariant(s.Status),
	}
}

// StudentRows projects students in order.
func StudentRows(r *roster.Roster, students []model.Student) []StudentRow {
	out := make([]StudentRow, len(students))
	for i, s := range students {
		out[i] = NewStudentRow(r, s)
	}
	return out
}

// StatusVariant maps a student status to a status variant.
func StatusVariant(s model.StudentStatus) string {
	switch s {
	case model.StatusActive:
		return "success"
	case model.StatusPending:
		return "warning"
	case model.StatusInactive:
		return "error"
	default:
		return "default"
	}
}

// PreviewSize is the number of student names shown on a class card.
const PreviewSize = 3

// ClassCard is a class ready for display.
type ClassCard struct {
	model.ClassSection
	Color        string   `json:"color"`
	ScheduleLine string   `json:"schedule_line"`
	StudentCount int      `json:"student_count"`
	Preview      []string `json:"preview"`
	MoreStudents int      `json:"more_students"`
}

// ScheduleLine renders a schedule as "Mon, Wed • 09:00 • R1".
func ScheduleLine(s model.Schedule) string {
	if len(s.Days) == 0 && s.Time == "" && s.Room == "" {
		return "No schedule"
	}
	return strings.Join(s.Days, ", ") + " • " + s.Time + " • " + s.Room
}

// NewClassCard projects c. The preview lists up to PreviewSize resolved
// student names from the class roster.
func NewClassCard(r *roster.Roster, c model.ClassSection) ClassCard {
	preview := []string{}
	for _, s := range r.StudentsByIDs(c.StudentIDs) {
		if len(preview) == PreviewSize {
			break
		}
		preview = append(preview, s.FullName())
	}
	c.StudentIDs = slices.Clone(c.StudentIDs)
	c.Schedule.Days = slices.Clone(c.Schedule.Days)
	return ClassCard{
		ClassSection: c,
		Color:        SubjectColor(c.Subject),
		ScheduleLine: ScheduleLine(c.Schedule),
		StudentCount: len(c.StudentIDs),
		Preview:      preview,
		MoreStudents: max(len(c.StudentIDs)-PreviewSize, 0),
	}
}

// ClassCards projects classes in order.
func ClassCards(r *roster.Roster, classes []model.ClassSection) []ClassCard {
	out := make([]ClassCard, len(classes))
	for i, c := range classes {
		out[i] = NewClassCard(r, c)
	}
	return out
}
