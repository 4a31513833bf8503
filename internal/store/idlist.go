package store

import (
	"strconv"
	"strings"
)

// FormatIDList joins ids with commas in their given order.
func FormatIDList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// ParseIDList splits a comma separated id list. Blank or non-numeric items
// are dropped; order is preserved.
func ParseIDList(s string) []int {
	ids := []int{}
	if strings.TrimSpace(s) == "" {
		return ids
	}
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// FormatDays joins weekday labels with commas.
func FormatDays(days []string) string {
	return strings.Join(days, ",")
}

// ParseDays reverses FormatDays, trimming each label and dropping blanks.
func ParseDays(s string) []string {
	days := []string{}
	for _, part := range strings.Split(s, ",") {
		if d := strings.TrimSpace(part); d != "" {
			days = append(days, d)
		}
	}
	return days
}
