package school

import (
	"schooldash/internal/model"
	"schooldash/internal/roster"
)

// Subjects offered by the school, in display order.
var Subjects = []string{"Mathematics", "English", "Science", "History", "PE"}

// GradeLevels in display order.
var GradeLevels = []string{roster.Elementary, roster.MiddleSchool, roster.HighSchool}

// StudentStatuses in display order.
var StudentStatuses = []model.StudentStatus{model.StatusActive, model.StatusInactive, model.StatusPending}

// AttendanceStatuses in display order.
var AttendanceStatuses = []model.AttendanceStatus{model.Present, model.Absent, model.Late}
