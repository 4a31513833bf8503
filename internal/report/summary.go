package report

import (
	"time"

	"schooldash/internal/model"
	"schooldash/internal/roster"
)

// BandCount is one slice of a grade distribution.
type BandCount struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

// Distribution counts grades per coarse band. Every band is present, in
// A to F order, even when empty.
func Distribution(grades []model.Grade) []BandCount {
	counts := make(map[string]int, len(Bands))
	for _, g := range grades {
		counts[Band(g.Percentage())]++
	}
	out := make([]BandCount, len(Bands))
	for i, b := range Bands {
		out[i] = BandCount{Band: b, Count: counts[b]}
	}
	return out
}

// Overview holds the headline numbers of the school.
type Overview struct {
	TotalStudents   int `json:"total_students"`
	ActiveStudents  int `json:"active_students"`
	PendingStudents int `json:"pending_students"`
	TotalClasses    int `json:"total_classes"`
	TotalGrades     int `json:"total_grades"`
	AverageGrade    int `json:"average_grade"`
	AttendanceRate  int `json:"attendance_rate"`
}

// NewOverview reduces the four collections to an Overview.
func NewOverview(students []model.Student, classes []model.ClassSection, grades []model.Grade, records []model.AttendanceRecord) Overview {
	return Overview{
		TotalStudents:   len(students),
		ActiveStudents:  CountStatus(students, model.StatusActive),
		PendingStudents: CountStatus(students, model.StatusPending),
		TotalClasses:    len(classes),
		TotalGrades:     len(grades),
		AverageGrade:    GradeAverage(grades),
		AttendanceRate:  AttendanceRate(records),
	}
}

// CountStatus counts the students in status.
func CountStatus(students []model.Student, status model.StudentStatus) int {
	n := 0
	for _, s := range students {
		if s.Status == status {
			n++
		}
	}
	return n
}

// ClassPerformance is the grade average of one class.
type ClassPerformance struct {
	ClassID      int    `json:"class_id"`
	Name         string `json:"name"`
	Subject      string `json:"subject"`
	Average      int    `json:"average"`
	StudentCount int    `json:"student_count"`
}

// ClassPerformances computes per-class averages in class order. The student
// count is the size of the class's own roster list.
func ClassPerformances(classes []model.ClassSection, grades []model.Grade) []ClassPerformance {
	out := make([]ClassPerformance, 0, len(classes))
	for _, c := range classes {
		var own []model.Grade
		for _, g := range grades {
			if g.ClassID == c.ID {
				own = append(own, g)
			}
		}
		out = append(out, ClassPerformance{
			ClassID:      c.ID,
			Name:         c.Name,
			Subject:      c.Subject,
			Average:      GradeAverage(own),
			StudentCount: len(c.StudentIDs),
		})
	}
	return out
}

// StudentSummary is the grade and attendance standing of one student.
type StudentSummary struct {
	StudentID       int                 `json:"student_id"`
	Name            string              `json:"name"`
	Status          model.StudentStatus `json:"status"`
	Classes         []string            `json:"classes"`
	AverageGrade    int                 `json:"average_grade"`
	AttendanceRate  int                 `json:"attendance_rate"`
	GradeCount      int                 `json:"grade_count"`
	AttendanceCount int                 `json:"attendance_count"`
}

// StudentSummaries computes one summary per student in roster order.
func StudentSummaries(r *roster.Roster, records []model.AttendanceRecord) []StudentSummary {
	gradesBy := map[int][]model.Grade{}
	for _, g := range r.Grades() {
		gradesBy[g.StudentID] = append(gradesBy[g.StudentID], g)
	}
	recordsBy := map[int][]model.AttendanceRecord{}
	for _, a := range records {
		recordsBy[a.StudentID] = append(recordsBy[a.StudentID], a)
	}
	out := make([]StudentSummary, 0, len(r.Students()))
	for _, s := range r.Students() {
		names := []string{}
		for _, c := range r.ClassesOfStudent(s) {
			names = append(names, c.Name)
		}
		out = append(out, StudentSummary{
			StudentID:       s.ID,
			Name:            s.FullName(),
			Status:          s.Status,
			Classes:         names,
			AverageGrade:    GradeAverage(gradesBy[s.ID]),
			AttendanceRate:  AttendanceRate(recordsBy[s.ID]),
			GradeCount:      len(gradesBy[s.ID]),
			AttendanceCount: len(recordsBy[s.ID]),
		})
	}
	return out
}

// Attendance tallies the records of a class.
type Attendance struct {
	TotalStudents int `json:"total_students"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Late          int `json:"late"`
	TotalRecords  int `json:"total_records"`
	Rate          int `json:"rate"`
}

// AttendanceStats tallies records by status for a class of rosterSize
// students.
func AttendanceStats(records []model.AttendanceRecord, rosterSize int) Attendance {
	a := Attendance{TotalStudents: rosterSize, TotalRecords: len(records)}
	for _, r := range records {
		switch r.Status {
		case model.Present:
			a.Present++
		case model.Absent:
			a.Absent++
		case model.Late:
			a.Late++
		}
	}
	a.Rate = AttendanceRate(records)
	return a
}

// MonthRate is the attendance rate of one calendar month.
type MonthRate struct {
	Month   string `json:"month"`
	Label   string `json:"label"`
	Rate    int    `json:"rate"`
	Records int    `json:"records"`
}

// MonthlyTrend buckets records by calendar month and returns the last months
// buckets ending at the month of end, oldest first. Months without records
// have a zero rate.
func MonthlyTrend(records []model.AttendanceRecord, end time.Time, months int) []MonthRate {
	if months <= 0 {
		return []MonthRate{}
	}
	byMonth := map[string][]model.AttendanceRecord{}
	for _, a := range records {
		key := a.Date.UTC().Format("2006-01")
		byMonth[key] = append(byMonth[key], a)
	}
	last := time.Date(end.UTC().Year(), end.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthRate, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := last.AddDate(0, -i, 0)
		bucket := byMonth[m.Format("2006-01")]
		out = append(out, MonthRate{
			Month:   m.Format("2006-01"),
			Label:   m.Format("Jan"),
			Rate:    AttendanceRate(bucket),
			Records: len(bucket),
		})
	}
	return out
}

// SubjectCount is the number of distinct non-empty subjects.
func SubjectCount(classes []model.ClassSection) int {
	seen := map[string]struct{}{}
	for _, c := range classes {
		if c.Subject != "" {
			seen[c.Subject] = struct{}{}
		}
	}
	return len(seen)
}

// Categories lists the distinct grade categories in first-seen order.
func Categories(grades []model.Grade) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, g := range grades {
		if _, ok := seen[g.Category]; ok || g.Category == "" {
			continue
		}
		seen[g.Category] = struct{}{}
		out = append(out, g.Category)
	}
	return out
}

// HighAchieverShare is the points ratio from which a grade counts as a high
// achievement.
const HighAchieverShare = 0.9

// HighAchievers counts grades scoring at least HighAchieverShare of their
// max points. Grades without positive max points never count.
func HighAchievers(grades []model.Grade) int {
	n := 0
	for _, g := range grades {
		if g.MaxPoints > 0 && g.Points/g.MaxPoints >= HighAchieverShare {
			n++
		}
	}
	return n
}

// AverageClassSize is the rounded mean length of the classes' student lists,
// 0 when there are no classes.
func AverageClassSize(classes []model.ClassSection) int {
	if len(classes) == 0 {
		return 0
	}
	total := 0
	for _, c := range classes {
		total += len(c.StudentIDs)
	}
	return Round(float64(total) / float64(len(classes)))
}
