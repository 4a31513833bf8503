package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"schooldash/internal/model"
)

// DefaultStudentSort is the initial student ordering.
const DefaultStudentSort = "last_name"

// ErrUnknownField is returned for a sort field that is not sortable.
var ErrUnknownField = errors.New("unknown sort field")

// SortState is the current sort field and direction of a table.
type SortState struct {
	Field string `form:"sort" json:"field"`
	Desc  bool   `form:"desc" json:"desc"`
}

// Toggle flips the direction when field is already selected and otherwise
// selects field ascending.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		return SortState{Field: field, Desc: !s.Desc}
	}
	return SortState{Field: field}
}

// SortBy returns a stably sorted copy of items. Descending order is the exact
// reverse of ascending order, ties included.
func SortBy[T any](items []T, compare func(a, b T) int, desc bool) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, compare)
	if desc {
		slices.Reverse(out)
	}
	return out
}

// Fold compares strings case-insensitively.
func Fold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// StudentSortFields are the sortable student columns.
var StudentSortFields = map[string]func(a, b model.Student) int{
	"last_name":       func(a, b model.Student) int { return Fold(a.LastName, b.LastName) },
	"first_name":      func(a, b model.Student) int { return Fold(a.FirstName, b.FirstName) },
	"email":           func(a, b model.Student) int { return Fold(a.Email, b.Email) },
	"student_code":    func(a, b model.Student) int { return Fold(a.StudentCode, b.StudentCode) },
	"status":          func(a, b model.Student) int { return Fold(string(a.Status), string(b.Status)) },
	"department":      func(a, b model.Student) int { return Fold(a.Department, b.Department) },
	"enrollment_date": func(a, b model.Student) int { return a.EnrollmentDate.Compare(b.EnrollmentDate) },
}

// SortStudents orders students by state. An empty field means
// DefaultStudentSort.
func SortStudents(students []model.Student, state SortState) ([]model.Student, error) {
	field := state.Field
	if field == "" {
		field = DefaultStudentSort
	}
	compare, ok := StudentSortFields[field]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return SortBy(students, compare, state.Desc), nil
}
