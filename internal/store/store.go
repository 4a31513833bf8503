package store

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"schooldash/internal/model"
)

// EntityStore is the fetch/mutate contract shared by every backing store.
type EntityStore[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id int, draft T) (T, error)
	Delete(ctx context.Context, id int) (bool, error)
	CreateBatch(ctx context.Context, drafts []T) (BatchResult[T], error)
	UpdateBatch(ctx context.Context, items []T) (BatchResult[T], error)
}

// Stores groups one store per entity. It is built once at startup and passed
// to whoever needs it.
type Stores struct {
	Students   EntityStore[model.Student]
	Classes    EntityStore[model.ClassSection]
	Grades     EntityStore[model.Grade]
	Attendance EntityStore[model.AttendanceRecord]
}

// Kind describes how a backing store handles one entity type.
type Kind[T any] struct {
	Name  string
	Table string
	Codec Codec[T]

	ID    func(T) int
	SetID func(*T, int)
	// Prepare fills defaults on a draft. prev is the stored record on update
	// and nil on create.
	Prepare func(draft *T, prev *T, now time.Time)
	Clone   func(T) T
}

func (k Kind[T]) prepare(draft T, prev *T, now time.Time) (T, error) {
	out := k.Clone(draft)
	if k.Prepare != nil {
		k.Prepare(&out, prev, now)
	}
	if err := validateStruct(k.Name, out); err != nil {
		return out, err
	}
	return out, nil
}

func (k Kind[T]) notFound(id int) error {
	return &NotFoundError{Entity: k.Name, ID: id}
}

// StudentKind is the Student entity descriptor.
var StudentKind = Kind[model.Student]{
	Name:  "student",
	Table: "student_c",
	Codec: studentCodec,
	ID:    func(s model.Student) int { return s.ID },
	SetID: func(s *model.Student, id int) { s.ID = id },
	Prepare: func(s *model.Student, prev *model.Student, now time.Time) {
		if s.Status == "" {
			s.Status = model.StatusActive
		}
		if s.EnrollmentDate.IsZero() {
			s.EnrollmentDate = now.UTC()
			if prev != nil {
				s.EnrollmentDate = prev.EnrollmentDate
			}
		}
		if s.StudentCode == "" {
			s.StudentCode = "STU-" + strconv.FormatInt(now.UnixMilli(), 10)
			if prev != nil {
				s.StudentCode = prev.StudentCode
			}
		}
		if s.ClassIDs == nil {
			s.ClassIDs = []int{}
		}
	},
	Clone: func(s model.Student) model.Student {
		s.ClassIDs = slices.Clone(s.ClassIDs)
		return s
	},
}

// ClassKind is the ClassSection entity descriptor.
var ClassKind = Kind[model.ClassSection]{
	Name:  "class",
	Table: "class_c",
	Codec: classCodec,
	ID:    func(c model.ClassSection) int { return c.ID },
	SetID: func(c *model.ClassSection, id int) { c.ID = id },
	Prepare: func(c *model.ClassSection, _ *model.ClassSection, _ time.Time) {
		if c.StudentIDs == nil {
			c.StudentIDs = []int{}
		}
		if c.Schedule.Days == nil {
			c.Schedule.Days = []string{}
		}
	},
	Clone: func(c model.ClassSection) model.ClassSection {
		c.StudentIDs = slices.Clone(c.StudentIDs)
		c.Schedule.Days = slices.Clone(c.Schedule.Days)
		return c
	},
}

// GradeKind is the Grade entity descriptor.
var GradeKind = Kind[model.Grade]{
	Name:  "grade",
	Table: "grade_c",
	Codec: gradeCodec,
	ID:    func(g model.Grade) int { return g.ID },
	SetID: func(g *model.Grade, id int) { g.ID = id },
	Prepare: func(g *model.Grade, prev *model.Grade, now time.Time) {
		if g.Date.IsZero() {
			g.Date = now.UTC()
			if prev != nil {
				g.Date = prev.Date
			}
		}
	},
	Clone: func(g model.Grade) model.Grade { return g },
}

// AttendanceKind is the AttendanceRecord entity descriptor.
var AttendanceKind = Kind[model.AttendanceRecord]{
	Name:  "attendance",
	Table: "attendance_c",
	Codec: attendanceCodec,
	ID:    func(a model.AttendanceRecord) int { return a.ID },
	SetID: func(a *model.AttendanceRecord, id int) { a.ID = id },
	Prepare: func(a *model.AttendanceRecord, prev *model.AttendanceRecord, now time.Time) {
		if a.Status == "" {
			a.Status = model.Present
		}
		if a.Date.IsZero() {
			a.Date = now.UTC()
			if prev != nil {
				a.Date = prev.Date
			}
		}
	},
	Clone: func(a model.AttendanceRecord) model.AttendanceRecord { return a },
}

func nextID[T any](k Kind[T], items []T) int {
	highest := 0
	for _, it := range items {
		highest = max(highest, k.ID(it))
	}
	return highest + 1
}

func failureFor(index, id int, err error) BatchFailure {
	return BatchFailure{Index: index, ID: id, Message: err.Error()}
}

// runBatch applies fn to each item and collects per-item results.
func runBatch[T any](ctx context.Context, k Kind[T], items []T, fn func(context.Context, T) (T, error)) (BatchResult[T], error) {
	res := BatchResult[T]{Succeeded: []T{}, Failed: []BatchFailure{}}
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s batch: %w", k.Name, err)
		}
		out, err := fn(ctx, it)
		if err != nil {
			res.Failed = append(res.Failed, failureFor(i, k.ID(it), err))
			continue
		}
		res.Succeeded = append(res.Succeeded, out)
	}
	return res, batchError(k.Name, res)
}
