package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"schooldash/internal/model"
)

// Record is an entity in wire shape: backend field name to value.
type Record map[string]any

type columnType int

const (
	intColumn columnType = iota
	floatColumn
	textColumn
)

// Field maps one wire field to and from the in-memory shape. Encode-only
// fields (nil Decode) are derived on write and ignored on read.
type Field[T any] struct {
	Wire   string
	Type   columnType
	Encode func(T) any
	Decode func(*T, any) error
}

// Codec is the bidirectional mapping table for one entity.
type Codec[T any] struct {
	Fields []Field[T]
}

// Encode flattens v into wire shape.
func (c Codec[T]) Encode(v T) Record {
	rec := make(Record, len(c.Fields))
	for _, f := range c.Fields {
		rec[f.Wire] = f.Encode(v)
	}
	return rec
}

// Decode rebuilds an entity from wire shape. Missing fields decode as zero
// values.
func (c Codec[T]) Decode(rec Record) (T, error) {
	var out T
	for _, f := range c.Fields {
		if f.Decode == nil {
			continue
		}
		if err := f.Decode(&out, rec[f.Wire]); err != nil {
			return out, fmt.Errorf("field %s: %w", f.Wire, err)
		}
	}
	return out, nil
}

// Columns lists the wire names in table order.
func (c Codec[T]) Columns() []string {
	cols := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = f.Wire
	}
	return cols
}

func textField[T any](wire string, get func(T) string, set func(*T, string)) Field[T] {
	return Field[T]{
		Wire:   wire,
		Type:   textColumn,
		Encode: func(v T) any { return get(v) },
		Decode: func(v *T, raw any) error {
			s, err := asString(raw)
			if err != nil {
				return err
			}
			set(v, s)
			return nil
		},
	}
}

func intField[T any](wire string, get func(T) int, set func(*T, int)) Field[T] {
	return Field[T]{
		Wire:   wire,
		Type:   intColumn,
		Encode: func(v T) any { return get(v) },
		Decode: func(v *T, raw any) error {
			n, err := asInt(raw)
			if err != nil {
				return err
			}
			set(v, n)
			return nil
		},
	}
}

func floatField[T any](wire string, get func(T) float64, set func(*T, float64)) Field[T] {
	return Field[T]{
		Wire:   wire,
		Type:   floatColumn,
		Encode: func(v T) any { return get(v) },
		Decode: func(v *T, raw any) error {
			f, err := asFloat(raw)
			if err != nil {
				return err
			}
			set(v, f)
			return nil
		},
	}
}

func timeField[T any](wire string, get func(T) time.Time, set func(*T, time.Time)) Field[T] {
	return Field[T]{
		Wire: wire,
		Type: textColumn,
		Encode: func(v T) any {
			t := get(v)
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(time.RFC3339Nano)
		},
		Decode: func(v *T, raw any) error {
			t, err := asTime(raw)
			if err != nil {
				return err
			}
			set(v, t)
			return nil
		},
	}
}

func idListField[T any](wire string, get func(T) []int, set func(*T, []int)) Field[T] {
	return Field[T]{
		Wire:   wire,
		Type:   textColumn,
		Encode: func(v T) any { return FormatIDList(get(v)) },
		Decode: func(v *T, raw any) error {
			s, err := asString(raw)
			if err != nil {
				return err
			}
			set(v, ParseIDList(s))
			return nil
		},
	}
}

// refField decodes a foreign key that the backend may expand into a
// {"Id": n, "Name": s} lookup object.
func refField[T any](wire string, get func(T) int, set func(*T, int)) Field[T] {
	f := intField(wire, get, set)
	f.Decode = func(v *T, raw any) error {
		if obj, ok := raw.(map[string]any); ok {
			raw = obj["Id"]
		}
		n, err := asInt(raw)
		if err != nil {
			return err
		}
		set(v, n)
		return nil
	}
	return f
}

var studentCodec = Codec[model.Student]{Fields: []Field[model.Student]{
	intField("Id", func(s model.Student) int { return s.ID }, func(s *model.Student, v int) { s.ID = v }),
	{Wire: "Name", Type: textColumn, Encode: func(s model.Student) any { return s.FullName() }},
	textField("first_name_c", func(s model.Student) string { return s.FirstName }, func(s *model.Student, v string) { s.FirstName = v }),
	textField("last_name_c", func(s model.Student) string { return s.LastName }, func(s *model.Student, v string) { s.LastName = v }),
	textField("student_id_c", func(s model.Student) string { return s.StudentCode }, func(s *model.Student, v string) { s.StudentCode = v }),
	textField("email_c", func(s model.Student) string { return s.Email }, func(s *model.Student, v string) { s.Email = v }),
	textField("phone_c", func(s model.Student) string { return s.Phone }, func(s *model.Student, v string) { s.Phone = v }),
	timeField("enrollment_date_c", func(s model.Student) time.Time { return s.EnrollmentDate }, func(s *model.Student, v time.Time) { s.EnrollmentDate = v }),
	textField("status_c", func(s model.Student) string { return string(s.Status) }, func(s *model.Student, v string) { s.Status = model.StudentStatus(v) }),
	textField("department_c", func(s model.Student) string { return s.Department }, func(s *model.Student, v string) { s.Department = v }),
	idListField("class_ids_c", func(s model.Student) []int { return s.ClassIDs }, func(s *model.Student, v []int) { s.ClassIDs = v }),
	textField("parent_contact_name_c", func(s model.Student) string { return s.ParentContact.Name }, func(s *model.Student, v string) { s.ParentContact.Name = v }),
	textField("parent_contact_email_c", func(s model.Student) string { return s.ParentContact.Email }, func(s *model.Student, v string) { s.ParentContact.Email = v }),
	textField("parent_contact_phone_c", func(s model.Student) string { return s.ParentContact.Phone }, func(s *model.Student, v string) { s.ParentContact.Phone = v }),
}}

var classCodec = Codec[model.ClassSection]{Fields: []Field[model.ClassSection]{
	intField("Id", func(c model.ClassSection) int { return c.ID }, func(c *model.ClassSection, v int) { c.ID = v }),
	{Wire: "Name", Type: textColumn, Encode: func(c model.ClassSection) any { return c.Name }},
	textField("name_c", func(c model.ClassSection) string { return c.Name }, func(c *model.ClassSection, v string) { c.Name = v }),
	textField("subject_c", func(c model.ClassSection) string { return c.Subject }, func(c *model.ClassSection, v string) { c.Subject = v }),
	textField("semester_c", func(c model.ClassSection) string { return c.Semester }, func(c *model.ClassSection, v string) { c.Semester = v }),
	idListField("student_ids_c", func(c model.ClassSection) []int { return c.StudentIDs }, func(c *model.ClassSection, v []int) { c.StudentIDs = v }),
	textField("schedule_days_c",
		func(c model.ClassSection) string { return FormatDays(c.Schedule.Days) },
		func(c *model.ClassSection, v string) { c.Schedule.Days = ParseDays(v) }),
	textField("schedule_time_c", func(c model.ClassSection) string { return c.Schedule.Time }, func(c *model.ClassSection, v string) { c.Schedule.Time = v }),
	textField("schedule_room_c", func(c model.ClassSection) string { return c.Schedule.Room }, func(c *model.ClassSection, v string) { c.Schedule.Room = v }),
}}

var gradeCodec = Codec[model.Grade]{Fields: []Field[model.Grade]{
	intField("Id", func(g model.Grade) int { return g.ID }, func(g *model.Grade, v int) { g.ID = v }),
	{Wire: "Name", Type: textColumn, Encode: func(g model.Grade) any { return g.AssignmentName }},
	textField("assignment_name_c", func(g model.Grade) string { return g.AssignmentName }, func(g *model.Grade, v string) { g.AssignmentName = v }),
	textField("category_c", func(g model.Grade) string { return g.Category }, func(g *model.Grade, v string) { g.Category = v }),
	floatField("points_c", func(g model.Grade) float64 { return g.Points }, func(g *model.Grade, v float64) { g.Points = v }),
	floatField("max_points_c", func(g model.Grade) float64 { return g.MaxPoints }, func(g *model.Grade, v float64) { g.MaxPoints = v }),
	timeField("date_c", func(g model.Grade) time.Time { return g.Date }, func(g *model.Grade, v time.Time) { g.Date = v }),
	refField("student_id_c", func(g model.Grade) int { return g.StudentID }, func(g *model.Grade, v int) { g.StudentID = v }),
	refField("class_id_c", func(g model.Grade) int { return g.ClassID }, func(g *model.Grade, v int) { g.ClassID = v }),
}}

var attendanceCodec = Codec[model.AttendanceRecord]{Fields: []Field[model.AttendanceRecord]{
	intField("Id", func(a model.AttendanceRecord) int { return a.ID }, func(a *model.AttendanceRecord, v int) { a.ID = v }),
	refField("student_id_c", func(a model.AttendanceRecord) int { return a.StudentID }, func(a *model.AttendanceRecord, v int) { a.StudentID = v }),
	refField("class_id_c", func(a model.AttendanceRecord) int { return a.ClassID }, func(a *model.AttendanceRecord, v int) { a.ClassID = v }),
	timeField("date_c", func(a model.AttendanceRecord) time.Time { return a.Date }, func(a *model.AttendanceRecord, v time.Time) { a.Date = v }),
	textField("status_c", func(a model.AttendanceRecord) string { return string(a.Status) }, func(a *model.AttendanceRecord, v string) { a.Status = model.AttendanceStatus(v) }),
	textField("notes_c", func(a model.AttendanceRecord) string { return a.Notes }, func(a *model.AttendanceRecord, v string) { a.Notes = v }),
}}

func asString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("unexpected %T", raw)
	}
}

func asFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	case []byte:
		return asFloat(string(v))
	default:
		return 0, fmt.Errorf("unexpected %T", raw)
	}
}

func asInt(raw any) (int, error) {
	f, err := asFloat(raw)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integer %v", f)
	}
	return int(f), nil
}

func asTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return asTime(string(v))
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected %T", raw)
	}
}
