package view

import (
	"time"

	"schooldash/internal/filter"
	"schooldash/internal/model"
	"schooldash/internal/roster"
)

// WeekStart returns the Monday of the week containing t, at midnight UTC.
func WeekStart(t time.Time) time.Time {
	d := filter.Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekDays lists the seven days of the week containing t, Monday first.
func WeekDays(t time.Time) []time.Time {
	start := WeekStart(t)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// DayHeader labels one column of the week grid.
type DayHeader struct {
	Date    time.Time `json:"date"`
	Weekday string    `json:"weekday"`
	Label   string    `json:"label"`
}

// Cell is one student's mark on one day. RecordID is 0 when unmarked.
type Cell struct {
	RecordID int                    `json:"record_id"`
	Status   model.AttendanceStatus `json:"status"`
	Variant  string                 `json:"variant"`
}

// WeekRow is one student's week.
type WeekRow struct {
	StudentID   int    `json:"student_id"`
	StudentName string `json:"student_name"`
	StudentCode string `json:"student_code"`
	Cells       []Cell `json:"cells"`
}

// Week is the attendance grid of one class for one week.
type Week struct {
	ClassID   int         `json:"class_id"`
	ClassName string      `json:"class_name"`
	Start     time.Time   `json:"start"`
	Days      []DayHeader `json:"days"`
	Rows      []WeekRow   `json:"rows"`
}

// WeekGrid builds the grid for class c around day. Rows follow the class
// roster order; cells hold the record found for that calendar day, if any.
func WeekGrid(r *roster.Roster, c model.ClassSection, records []model.AttendanceRecord, day time.Time) Week {
	days := WeekDays(day)
	w := Week{
		ClassID:   c.ID,
		ClassName: c.Name,
		Start:     days[0],
		Days:      make([]DayHeader, len(days)),
		Rows:      []WeekRow{},
	}
	for i, d := range days {
		w.Days[i] = DayHeader{Date: d, Weekday: d.Format("Mon"), Label: d.Format("Jan 02")}
	}
	for _, s := range r.StudentsByIDs(c.StudentIDs) {
		row := WeekRow{StudentID: s.ID, StudentName: s.FullName(), StudentCode: s.StudentCode, Cells: make([]Cell, len(days))}
		for i, d := range days {
			cell := Cell{Variant: AttendanceVariant("")}
			if rec, ok := filter.FindAttendance(records, s.ID, c.ID, d); ok {
				cell = Cell{RecordID: rec.ID, Status: rec.Status, Variant: AttendanceVariant(rec.Status)}
			}
			row.Cells[i] = cell
		}
		w.Rows = append(w.Rows, row)
	}
	return w
}
