package roster

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"schooldash/internal/model"
)

func sample() *Roster {
	students := []model.Student{
		{ID: 1, FirstName: "Ana", LastName: "Lee", ClassIDs: []int{1, 2}},
		{ID: 2, FirstName: "Bo", LastName: "Kim", ClassIDs: []int{3, 99}},
		{ID: 3, FirstName: "Cy", LastName: "Ng", ClassIDs: []int{}},
	}
	classes := []model.ClassSection{
		{ID: 1, Name: "Algebra", Subject: "Mathematics"},
		{ID: 2, Name: "Biology", Subject: "Science"},
		{ID: 3, Name: "Poetry", Subject: "English"},
	}
	grades := []model.Grade{
		{ID: 1, StudentID: 1, ClassID: 1, Points: 90, MaxPoints: 100},
		{ID: 2, StudentID: 1, ClassID: 2, Points: 80, MaxPoints: 100},
		{ID: 3, StudentID: 1, ClassID: 1, Points: 70, MaxPoints: 100},
	}
	return New(students, classes, grades)
}

func TestGradeLevelFromSubjects(t *testing.T) {
	r := sample()
	require.Equal(t, HighSchool, r.GradeLevel(1))
	require.Equal(t, MiddleSchool, r.GradeLevel(2))
	require.Equal(t, Elementary, r.GradeLevel(3))
	require.Equal(t, Elementary, r.GradeLevel(42))
}

func TestGradeLevelOfIsTotal(t *testing.T) {
	cases := []struct {
		subjects []string
		want     string
	}{
		{nil, Elementary},
		{[]string{"Mathematics"}, Elementary},
		{[]string{"Science", "Mathematics"}, HighSchool},
		{[]string{"Mathematics", "History"}, MiddleSchool},
		{[]string{"PE", "English"}, MiddleSchool},
		{[]string{"Mathematics", "Science", "History"}, HighSchool},
	}
	for _, tc := range cases {
		classes := make([]model.ClassSection, len(tc.subjects))
		for i, s := range tc.subjects {
			classes[i] = model.ClassSection{ID: i + 1, Subject: s}
		}
		require.Equal(t, tc.want, GradeLevelOf(classes), "%v", tc.subjects)
		require.Equal(t, GradeLevelOf(classes), GradeLevelOf(classes))
	}
}

func TestClassesForStudentSkipsUnknownIDs(t *testing.T) {
	r := sample()
	got := r.ClassesForStudent(2)
	require.Len(t, got, 1)
	require.Equal(t, "Poetry", got[0].Name)
	require.Equal(t, 1, r.Dropped())

	require.Empty(t, r.ClassesForStudent(404))
}

func TestClassesForStudentKeepsOrder(t *testing.T) {
	r := New(
		[]model.Student{{ID: 1, ClassIDs: []int{2, 1}}},
		[]model.ClassSection{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		nil,
	)
	got := r.ClassesForStudent(1)
	require.Equal(t, "B", got[0].Name)
	require.Equal(t, "A", got[1].Name)
}

func TestStudentsForClass(t *testing.T) {
	r := sample()
	got := r.StudentsForClass(1)
	require.Len(t, got, 1)
	require.Equal(t, "Ana", got[0].FirstName)
	require.Empty(t, r.StudentsForClass(5))
}

func TestGradesFor(t *testing.T) {
	r := sample()
	require.Len(t, r.GradesFor(1, 1), 2)
	require.Len(t, r.GradesFor(1, 2), 1)
	require.Empty(t, r.GradesFor(2, 1))
}

func TestNameFallbacksCountDrops(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := NewDroppedCounter(reg)
	r := sample().WithCounter(counter)

	require.Equal(t, "Ana Lee", r.StudentName(1))
	require.Equal(t, UnknownStudent, r.StudentName(9))
	require.Equal(t, "Algebra", r.ClassName(1))
	require.Equal(t, UnknownClass, r.ClassName(9))

	require.Equal(t, 2, r.Dropped())
	require.Equal(t, float64(2), testutil.ToFloat64(counter))
}

func TestStudentsByIDs(t *testing.T) {
	r := sample()
	got := r.StudentsByIDs([]int{3, 8, 1})
	require.Len(t, got, 2)
	require.Equal(t, 3, got[0].ID)
	require.Equal(t, 1, got[1].ID)
	require.Equal(t, 1, r.Dropped())
}
