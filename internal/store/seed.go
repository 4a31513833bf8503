package store

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"schooldash/internal/model"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// Fixtures is the static starter data set.
type Fixtures struct {
	Students   []model.Student
	Classes    []model.ClassSection
	Grades     []model.Grade
	Attendance []model.AttendanceRecord
}

// LoadFixtures decodes the embedded fixture files.
func LoadFixtures() (Fixtures, error) {
	var fx Fixtures
	files := []struct {
		name string
		dst  any
	}{
		{"fixtures/students.json", &fx.Students},
		{"fixtures/classes.json", &fx.Classes},
		{"fixtures/grades.json", &fx.Grades},
		{"fixtures/attendance.json", &fx.Attendance},
	}
	for _, f := range files {
		raw, err := fixtureFS.ReadFile(f.name)
		if err != nil {
			return fx, err
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return fx, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return fx, nil
}

// Seed loads the fixtures into every store that is still empty. It returns
// the number of records created.
func Seed(ctx context.Context, s Stores) (int, error) {
	fx, err := LoadFixtures()
	if err != nil {
		return 0, err
	}
	total := 0
	steps := []func() (int, error){
		func() (int, error) { return seedOne(ctx, StudentKind, s.Students, fx.Students) },
		func() (int, error) { return seedOne(ctx, ClassKind, s.Classes, fx.Classes) },
		func() (int, error) { return seedOne(ctx, GradeKind, s.Grades, fx.Grades) },
		func() (int, error) { return seedOne(ctx, AttendanceKind, s.Attendance, fx.Attendance) },
	}
	for _, step := range steps {
		n, err := step()
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// seedOne relies on ids being assigned sequentially from 1 so fixture
// cross-references stay valid.
func seedOne[T any](ctx context.Context, k Kind[T], s EntityStore[T], items []T) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", k.Name, err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, it := range items {
		created, err := s.Create(ctx, it)
		if err != nil {
			return i, fmt.Errorf("seed %s #%d: %w", k.Name, i, err)
		}
		if want := k.ID(it); want != 0 && k.ID(created) != want {
			return i + 1, fmt.Errorf("seed %s: got id %d, fixture expects %d", k.Name, k.ID(created), want)
		}
	}
	return len(items), nil
}
