package schedule

import (
	"fmt"
	"time"
)

// Semester identifies which half of the academic year a program covers.
type Semester string

const (
	SemesterGanjil Semester = "ganjil" // July–December
	SemesterGenap  Semester = "genap"  // January–June
)

// Grid dimensions for the printed semester program: 6 months x 5 weeks.
const (
	GridMonths = 6
	GridWeeks  = 5
)

// Window is the six-month date range of one semester of an academic year.
// StartYear is the year the academic year begins in, e.g. 2025 for 2025/2026.
type Window struct {
	StartYear int
	Semester  Semester
}

func (w Window) Start() time.Time {
	if w.Semester == SemesterGenap {
		return time.Date(w.StartYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(w.StartYear, time.July, 1, 0, 0, 0, 0, time.UTC)
}

func (w Window) End() time.Time {
	if w.Semester == SemesterGenap {
		return time.Date(w.StartYear+1, time.June, 30, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(w.StartYear, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func (w Window) Label() string {
	return fmt.Sprintf("%d/%d %s", w.StartYear, w.StartYear+1, w.Semester)
}

// SlotKey addresses one cell of the semester grid. Month is the 1-based
// offset from the first month of the window (1..6), Week the 1-based
// week-of-month (1..5).
type SlotKey struct {
	Month int `json:"month"`
	Week  int `json:"week"`
}

// Bucketize maps a date to its grid cell. The second return is false when
// the date falls outside the window or in a sixth week of a month; such
// dates are not scheduled.
func Bucketize(date time.Time, w Window) (SlotKey, bool) {
	if date.Before(w.Start()) || date.After(w.End()) {
		return SlotKey{}, false
	}
	monthOffset := (int(date.Month()) - int(w.Start().Month()) + 12) % 12
	week := (date.Day()-1)/7 + 1
	if monthOffset >= GridMonths || week > GridWeeks {
		return SlotKey{}, false
	}
	return SlotKey{Month: monthOffset + 1, Week: week}, true
}

// SlotGrid is the fixed 30-cell activation grid persisted per sub-topic.
type SlotGrid [GridMonths][GridWeeks]bool

func (g *SlotGrid) Set(k SlotKey) {
	if k.Month >= 1 && k.Month <= GridMonths && k.Week >= 1 && k.Week <= GridWeeks {
		g[k.Month-1][k.Week-1] = true
	}
}

func (g SlotGrid) Active(k SlotKey) bool {
	if k.Month < 1 || k.Month > GridMonths || k.Week < 1 || k.Week > GridWeeks {
		return false
	}
	return g[k.Month-1][k.Week-1]
}

// Keys returns the active cells in row-major order.
func (g SlotGrid) Keys() []SlotKey {
	var keys []SlotKey
	for m := 0; m < GridMonths; m++ {
		for wk := 0; wk < GridWeeks; wk++ {
			if g[m][wk] {
				keys = append(keys, SlotKey{Month: m + 1, Week: wk + 1})
			}
		}
	}
	return keys
}
