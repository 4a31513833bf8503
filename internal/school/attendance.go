package school

import (
	"context"
	"fmt"
	"time"

	"schooldash/internal/filter"
	"schooldash/internal/model"
	"schooldash/internal/report"
	"schooldash/internal/store"
	"schooldash/internal/view"
)

// AttendanceWeek is one class week with the class totals.
type AttendanceWeek struct {
	Week  view.Week         `json:"week"`
	Stats report.Attendance `json:"stats"`
}

// AttendanceWeek builds the grid for classID over the week containing day.
// Stats cover every record of the class, not only this week.
func (s *Service) AttendanceWeek(ctx context.Context, classID int, day time.Time) (AttendanceWeek, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return AttendanceWeek{}, err
	}
	c, ok := snap.Roster.Class(classID)
	if !ok {
		return AttendanceWeek{}, &store.NotFoundError{Entity: store.ClassKind.Name, ID: classID}
	}
	records := filter.Attendance(snap.Attendance, filter.AttendanceCriteria{ClassID: classID})
	w := view.WeekGrid(snap.Roster, c, records, day)
	return AttendanceWeek{
		Week:  w,
		Stats: report.AttendanceStats(records, len(w.Rows)),
	}, nil
}

// MarkAttendance sets the status of studentID in classID on the calendar day
// of day. An existing record for that day is updated; otherwise one is
// created. created reports which happened.
func (s *Service) MarkAttendance(ctx context.Context, studentID, classID int, day time.Time, status model.AttendanceStatus) (rec model.AttendanceRecord, created bool, err error) {
	records, err := s.Stores.Attendance.List(ctx)
	if err != nil {
		return rec, false, err
	}
	if existing, ok := filter.FindAttendance(records, studentID, classID, day); ok {
		existing.Status = status
		rec, err = s.Stores.Attendance.Update(ctx, existing.ID, existing)
		if err != nil {
			return rec, false, fmt.Errorf("mark attendance: %w", err)
		}
		return rec, false, nil
	}
	rec, err = s.Stores.Attendance.Create(ctx, model.AttendanceRecord{
		StudentID: studentID,
		ClassID:   classID,
		Date:      filter.Day(day),
		Status:    status,
	})
	if err != nil {
		return rec, false, fmt.Errorf("mark attendance: %w", err)
	}
	return rec, true, nil
}
