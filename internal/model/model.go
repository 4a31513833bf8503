package model

import "time"

// StudentStatus is the enrollment state of a student.
type StudentStatus string

const (
	StatusActive   StudentStatus = "active"
	StatusInactive StudentStatus = "inactive"
	StatusPending  StudentStatus = "pending"
)

// AttendanceStatus is the outcome recorded for a student on a class day.
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
)

// ParentContact holds optional guardian details.
type ParentContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Student represents an enrolled student.
type Student struct {
	ID             int           `json:"id"`
	FirstName      string        `json:"first_name" validate:"required"`
	LastName       string        `json:"last_name" validate:"required"`
	Email          string        `json:"email" validate:"required,basicemail"`
	Phone          string        `json:"phone"`
	Status         StudentStatus `json:"status" validate:"oneof=active inactive pending"`
	Department     string        `json:"department"`
	EnrollmentDate time.Time     `json:"enrollment_date"`
	StudentCode    string        `json:"student_code"`
	ClassIDs       []int         `json:"class_ids"`
	ParentContact  ParentContact `json:"parent_contact"`
}

// FullName is the "first last" display name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Schedule describes when and where a class meets.
type Schedule struct {
	Days []string `json:"days"`
	Time string   `json:"time"`
	Room string   `json:"room"`
}

// ClassSection is a class taught in a semester.
type ClassSection struct {
	ID         int      `json:"id"`
	Name       string   `json:"name" validate:"required"`
	Subject    string   `json:"subject"`
	Semester   string   `json:"semester"`
	StudentIDs []int    `json:"student_ids"`
	Schedule   Schedule `json:"schedule"`
}

// Grade is a scored assignment for a student in a class.
type Grade struct {
	ID             int       `json:"id"`
	StudentID      int       `json:"student_id" validate:"gt=0"`
	ClassID        int       `json:"class_id" validate:"gt=0"`
	AssignmentName string    `json:"assignment_name"`
	Category       string    `json:"category"`
	Points         float64   `json:"points" validate:"gte=0"`
	MaxPoints      float64   `json:"max_points" validate:"gt=0"`
	Date           time.Time `json:"date"`
}

// Percentage is points over max points scaled to 100. It is always derived,
// and 0 when MaxPoints is not positive.
func (g Grade) Percentage() float64 {
	if g.MaxPoints <= 0 {
		return 0
	}
	return g.Points / g.MaxPoints * 100
}

// AttendanceRecord is a single attendance mark. Date is meaningful to the
// calendar day only.
type AttendanceRecord struct {
	ID        int              `json:"id"`
	StudentID int              `json:"student_id" validate:"gt=0"`
	ClassID   int              `json:"class_id" validate:"gt=0"`
	Date      time.Time        `json:"date"`
	Status    AttendanceStatus `json:"status" validate:"oneof=present absent late"`
	Notes     string           `json:"notes"`
}
