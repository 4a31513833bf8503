package audit

import (
	"context"
	"slices"
	"time"

	"schooldash/internal/model"
	"schooldash/internal/store"
)

// Finding kinds.
const (
	// Missing is a reference to an id that does not exist.
	Missing = "missing"
	// OneSided is a membership listed on only one side of the student/class pair.
	OneSided = "one_sided"
)

// Finding is one dangling or inconsistent reference.
type Finding struct {
	Kind   string `json:"kind"`
	Entity string `json:"entity"`
	ID     int    `json:"id"`
	Field  string `json:"field"`
	Ref    int    `json:"ref"`
}

// Report is the result of one scan.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Findings    []Finding `json:"findings"`
}

// Clean reports whether the scan found nothing.
func (r Report) Clean() bool { return len(r.Findings) == 0 }

// Scan checks every cross-entity reference. Deletes never cascade, so this
// is where orphans become visible.
func Scan(students []model.Student, classes []model.ClassSection, grades []model.Grade, records []model.AttendanceRecord, now time.Time) Report {
	studentByID := make(map[int]model.Student, len(students))
	for _, s := range students {
		studentByID[s.ID] = s
	}
	classByID := make(map[int]model.ClassSection, len(classes))
	for _, c := range classes {
		classByID[c.ID] = c
	}
	r := Report{GeneratedAt: now.UTC(), Findings: []Finding{}}
	add := func(kind, entity string, id int, field string, ref int) {
		r.Findings = append(r.Findings, Finding{Kind: kind, Entity: entity, ID: id, Field: field, Ref: ref})
	}

	for _, s := range students {
		for _, cid := range s.ClassIDs {
			c, ok := classByID[cid]
			switch {
			case !ok:
				add(Missing, store.StudentKind.Name, s.ID, "class_ids", cid)
			case !slices.Contains(c.StudentIDs, s.ID):
				add(OneSided, store.StudentKind.Name, s.ID, "class_ids", cid)
			}
		}
	}
	for _, c := range classes {
		for _, sid := range c.StudentIDs {
			s, ok := studentByID[sid]
			switch {
			case !ok:
				add(Missing, store.ClassKind.Name, c.ID, "student_ids", sid)
			case !slices.Contains(s.ClassIDs, c.ID):
				add(OneSided, store.ClassKind.Name, c.ID, "student_ids", sid)
			}
		}
	}
	for _, g := range grades {
		if _, ok := studentByID[g.StudentID]; !ok {
			add(Missing, store.GradeKind.Name, g.ID, "student_id", g.StudentID)
		}
		if _, ok := classByID[g.ClassID]; !ok {
			add(Missing, store.GradeKind.Name, g.ID, "class_id", g.ClassID)
		}
	}
	for _, a := range records {
		if _, ok := studentByID[a.StudentID]; !ok {
			add(Missing, store.AttendanceKind.Name, a.ID, "student_id", a.StudentID)
		}
		if _, ok := classByID[a.ClassID]; !ok {
			add(Missing, store.AttendanceKind.Name, a.ID, "class_id", a.ClassID)
		}
	}
	return r
}

// Key is where the latest report is kept in Redis.
const Key = "schooldash:audit:latest"

// Sink persists reports.
type Sink interface {
	Save(ctx context.Context, r Report) error
	Latest(ctx context.Context) (Report, bool, error)
}

// RedisSink keeps the latest report as JSON under Key.
type RedisSink struct {
	Redis *store.Redis
	TTL   time.Duration
}

// Save overwrites the stored report.
func (s RedisSink) Save(ctx context.Context, r Report) error {
	return s.Redis.PutJSON(ctx, Key, r, s.TTL)
}

// Latest loads the stored report.
func (s RedisSink) Latest(ctx context.Context) (Report, bool, error) {
	var r Report
	ok, err := s.Redis.GetJSON(ctx, Key, &r)
	return r, ok, err
}
