package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schooldash/internal/model"
	"schooldash/internal/roster"
)

func school() *roster.Roster {
	students := []model.Student{
		{ID: 1, FirstName: "Ana", LastName: "Lee", Status: model.StatusActive, ClassIDs: []int{1, 2},
			EnrollmentDate: time.Date(2023, 9, 4, 15, 0, 0, 0, time.UTC)},
		{ID: 2, FirstName: "Bo", LastName: "Kim", Status: model.StatusPending, ClassIDs: []int{1}},
	}
	classes := []model.ClassSection{
		{ID: 1, Name: "Algebra", Subject: "Mathematics", StudentIDs: []int{1, 2},
			Schedule: model.Schedule{Days: []string{"Mon", "Wed"}, Time: "09:00", Room: "R1"}},
		{ID: 2, Name: "Biology", Subject: "Science", StudentIDs: []int{1}},
	}
	return roster.New(students, classes, nil)
}

func TestGradeRow(t *testing.T) {
	row := NewGradeRow(school(), model.Grade{
		ID: 5, StudentID: 1, ClassID: 2, Points: 87, MaxPoints: 100,
		Date: time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, "Ana Lee", row.StudentName)
	require.Equal(t, "Biology", row.ClassName)
	require.Equal(t, 87, row.Percentage)
	require.Equal(t, "B+", row.Letter)
	require.Equal(t, "info", row.Variant)
	require.Equal(t, "Oct 03, 2024", row.FormattedDate)
}

func TestGradeRowUsesRoundedPercentage(t *testing.T) {
	row := NewGradeRow(school(), model.Grade{StudentID: 7, ClassID: 9, Points: 89.6, MaxPoints: 100})
	require.Equal(t, 90, row.Percentage)
	require.Equal(t, "A-", row.Letter)
	require.Equal(t, "success", row.Variant)
	require.Equal(t, roster.UnknownStudent, row.StudentName)
	require.Equal(t, roster.UnknownClass, row.ClassName)
}

func TestRecentGradesNewestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 10, d, 0, 0, 0, 0, time.UTC) }
	grades := []model.Grade{
		{ID: 1, StudentID: 1, ClassID: 1, MaxPoints: 10, Date: day(1)},
		{ID: 2, StudentID: 9, ClassID: 1, MaxPoints: 10, Date: day(5)},
		{ID: 3, StudentID: 2, ClassID: 4, MaxPoints: 10, Date: day(3)},
	}
	got := RecentGrades(school(), grades, 2)
	require.Len(t, got, 2)
	require.Equal(t, 2, got[0].ID)
	require.Equal(t, UnknownName, got[0].StudentName)
	require.Equal(t, 3, got[1].ID)
	require.Equal(t, roster.UnknownClass, got[1].ClassName)
	require.Equal(t, 1, grades[0].ID, "input untouched")
}

func TestStudentRow(t *testing.T) {
	r := school()
	s, _ := r.Student(1)
	row := NewStudentRow(r, s)
	require.Equal(t, "Ana Lee", row.FullName)
	require.Equal(t, roster.HighSchool, row.GradeLevel)
	require.Equal(t, []string{"Algebra", "Biology"}, row.ClassNames)
	require.Equal(t, "Sep 04, 2023", row.EnrolledOn)
	require.Equal(t, "success", row.StatusVariant)

	row.ClassIDs[0] = 99
	require.Equal(t, 1, s.ClassIDs[0])
}

func TestClassCard(t *testing.T) {
	r := school()
	c, _ := r.Class(1)
	card := NewClassCard(r, c)
	require.Equal(t, "primary", card.Color)
	require.Equal(t, "Mon, Wed • 09:00 • R1", card.ScheduleLine)
	require.Equal(t, 2, card.StudentCount)
	require.Equal(t, []string{"Ana Lee", "Bo Kim"}, card.Preview)
	require.Zero(t, card.MoreStudents)

	big := NewClassCard(r, model.ClassSection{ID: 3, Subject: "Art", StudentIDs: []int{1, 2, 1, 2, 1}})
	require.Equal(t, "default", big.Color)
	require.Equal(t, "No schedule", big.ScheduleLine)
	require.Len(t, big.Preview, PreviewSize)
	require.Equal(t, 2, big.MoreStudents)
}

func TestSubjectColors(t *testing.T) {
	require.Equal(t, "success", SubjectColor("English"))
	require.Equal(t, "info", SubjectColor("Science"))
	require.Equal(t, "warning", SubjectColor("History"))
	require.Equal(t, "error", SubjectColor("PE"))
}
