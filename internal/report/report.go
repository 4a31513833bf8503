package report

import (
	"math"

	"schooldash/internal/model"
)

// Round rounds half away from zero for the non-negative values reports deal
// in, so 86.5 becomes 87.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Rate is the rounded percentage of items matching pred, 0 for no items.
func Rate[T any](items []T, pred func(T) bool) int {
	if len(items) == 0 {
		return 0
	}
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return Round(100 * float64(n) / float64(len(items)))
}

// Average is the rounded mean percentage of points over maxPoints. Items with
// a non-positive maximum count as 0. Empty input is 0.
func Average[T any](items []T, points, maxPoints func(T) float64) int {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, it := range items {
		if m := maxPoints(it); m > 0 {
			sum += 100 * points(it) / m
		}
	}
	return Round(sum / float64(len(items)))
}

// GradeAverage is Average over grades.
func GradeAverage(grades []model.Grade) int {
	return Average(grades,
		func(g model.Grade) float64 { return g.Points },
		func(g model.Grade) float64 { return g.MaxPoints })
}

// Present reports whether a record counts toward the attendance rate.
func Present(a model.AttendanceRecord) bool {
	return a.Status == model.Present
}

// AttendanceRate is the share of present records.
func AttendanceRate(records []model.AttendanceRecord) int {
	return Rate(records, Present)
}

// Letter is the twelve step letter grade for a percentage.
func Letter(p float64) string {
	switch {
	case p >= 97:
		return "A+"
	case p >= 93:
		return "A"
	case p >= 90:
		return "A-"
	case p >= 87:
		return "B+"
	case p >= 83:
		return "B"
	case p >= 80:
		return "B-"
	case p >= 77:
		return "C+"
	case p >= 73:
		return "C"
	case p >= 70:
		return "C-"
	case p >= 67:
		return "D+"
	case p >= 65:
		return "D"
	default:
		return "F"
	}
}

// Bands lists the coarse distribution bands in display order.
var Bands = []string{"A", "B", "C", "D", "F"}

// Band is the coarse five step category used by distributions. It is not
// derived from Letter; the D/F boundary differs.
func Band(p float64) string {
	switch {
	case p >= 90:
		return "A"
	case p >= 80:
		return "B"
	case p >= 70:
		return "C"
	case p >= 60:
		return "D"
	default:
		return "F"
	}
}
