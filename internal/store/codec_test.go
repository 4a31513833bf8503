package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schooldash/internal/model"
)

func TestStudentCodecRoundTrip(t *testing.T) {
	s := model.Student{
		ID: 4, FirstName: "Ana", LastName: "Lee", Email: "ana@school.edu", Phone: "555",
		Status: model.StatusPending, Department: "Science",
		EnrollmentDate: time.Date(2024, 8, 26, 8, 0, 0, 0, time.UTC),
		StudentCode:    "STU-1", ClassIDs: []int{2, 1},
		ParentContact: model.ParentContact{Name: "Grace", Email: "g@mail.com", Phone: "556"},
	}
	rec := studentCodec.Encode(s)
	require.Equal(t, "Ana Lee", rec["Name"])
	require.Equal(t, "2,1", rec["class_ids_c"])
	require.Equal(t, "g@mail.com", rec["parent_contact_email_c"])

	back, err := studentCodec.Decode(rec)
	require.NoError(t, err)
	require.Equal(t, s, back)
}

func TestClassCodecRoundTrip(t *testing.T) {
	c := model.ClassSection{
		ID: 1, Name: "Algebra", Subject: "Mathematics", Semester: "Fall",
		StudentIDs: []int{1, 3},
		Schedule:   model.Schedule{Days: []string{"Mon", "Wed"}, Time: "09:00", Room: "M-1"},
	}
	rec := classCodec.Encode(c)
	require.Equal(t, "Mon,Wed", rec["schedule_days_c"])
	back, err := classCodec.Decode(rec)
	require.NoError(t, err)
	require.Equal(t, c, back)
}

func TestGradeCodecDecodesReferenceObjects(t *testing.T) {
	raw := `{"Id": 9, "assignment_name_c": "Quiz", "points_c": 8.5, "max_points_c": 10,
		"date_c": "2024-09-13T15:00:00Z",
		"student_id_c": {"Id": 3, "Name": "Priya Patel"}, "class_id_c": 2}`
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	g, err := gradeCodec.Decode(rec)
	require.NoError(t, err)
	require.Equal(t, 9, g.ID)
	require.Equal(t, 3, g.StudentID)
	require.Equal(t, 2, g.ClassID)
	require.Equal(t, 8.5, g.Points)
	require.True(t, g.Date.Equal(time.Date(2024, 9, 13, 15, 0, 0, 0, time.UTC)))
}

func TestAttendanceCodecRoundTrip(t *testing.T) {
	a := model.AttendanceRecord{ID: 2, StudentID: 1, ClassID: 3,
		Date: time.Date(2024, 10, 7, 9, 0, 0, 0, time.UTC), Status: model.Late, Notes: "bus"}
	back, err := attendanceCodec.Decode(attendanceCodec.Encode(a))
	require.NoError(t, err)
	require.Equal(t, a, back)
}

func TestCodecRejectsWrongTypes(t *testing.T) {
	_, err := gradeCodec.Decode(Record{"points_c": true})
	require.Error(t, err)
	_, err = gradeCodec.Decode(Record{"Id": 1.5})
	require.Error(t, err)
}

func TestCodecMissingFieldsAreZero(t *testing.T) {
	s, err := studentCodec.Decode(Record{"Id": 1})
	require.NoError(t, err)
	require.Equal(t, 1, s.ID)
	require.Empty(t, s.FirstName)
	require.Equal(t, []int{}, s.ClassIDs)
	require.True(t, s.EnrollmentDate.IsZero())
}
