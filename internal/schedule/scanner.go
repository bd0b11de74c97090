package schedule

import "time"

// CalendarException is a date that is not an ordinary teaching day.
type CalendarException struct {
	Date        time.Time
	Description string
	Category    string
}

// WeeklyUnits maps each weekday to the subject's scheduled instructional
// units on that day. Indexed by time.Weekday; Sunday is never taught and
// its entry is ignored.
type WeeklyUnits [7]int

// Empty reports whether no instructional weekday has units.
func (u WeeklyUnits) Empty() bool {
	for d := time.Monday; d <= time.Saturday; d++ {
		if u[d] > 0 {
			return false
		}
	}
	return true
}

// TeachingSession is one calendar day on which the subject is taught.
type TeachingSession struct {
	Date  time.Time
	Units int
	Slot  SlotKey
}

// Scan walks every day of the window and emits the chronologically ordered
// teaching sessions: weekday has units, not a Sunday, not an exception date.
// An empty result is valid — the subject is simply not scheduled that
// semester.
func Scan(w Window, weekly WeeklyUnits, exceptions []CalendarException) []TeachingSession {
	skip := make(map[string]bool, len(exceptions))
	for _, e := range exceptions {
		skip[dayKey(e.Date)] = true
	}

	var sessions []TeachingSession
	for d := w.Start(); !d.After(w.End()); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}
		units := weekly[d.Weekday()]
		if units <= 0 {
			continue
		}
		if skip[dayKey(d)] {
			continue
		}
		slot, ok := Bucketize(d, w)
		if !ok {
			continue
		}
		sessions = append(sessions, TeachingSession{Date: d, Units: units, Slot: slot})
	}
	return sessions
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
