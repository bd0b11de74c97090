package schedule

import (
	"sort"
	"strings"
)

// AssessmentWindow is the display label and date range of the end-of-term
// assessment period, derived from the academic calendar.
type AssessmentWindow struct {
	Label     string `json:"label"`
	DateRange string `json:"date_range"`
}

// ResolveAssessmentWindow scans the calendar for the semester's end-of-term
// assessment events: "akhir semester" entries for Ganjil, "akhir tahun" for
// Genap. With no matches the range is empty; with one match it is that
// single date; otherwise "first sampai last".
func ResolveAssessmentWindow(exceptions []CalendarException, sem Semester) AssessmentWindow {
	keyword := "akhir semester"
	label := "SUMATIF AKHIR SEMESTER"
	if sem == SemesterGenap {
		keyword = "akhir tahun"
		label = "SUMATIF AKHIR TAHUN"
	}

	var matches []CalendarException
	for _, e := range exceptions {
		if strings.Contains(strings.ToLower(e.Description), keyword) {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })

	w := AssessmentWindow{Label: label}
	switch len(matches) {
	case 0:
	case 1:
		w.DateRange = FormatDate(matches[0].Date)
	default:
		w.DateRange = FormatDate(matches[0].Date) + " sampai " + FormatDate(matches[len(matches)-1].Date)
	}
	return w
}
