package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScan_SkipsSundaysZeroDaysAndExceptions(t *testing.T) {
	w := Window{StartYear: 2025, Semester: SemesterGanjil}
	var weekly WeeklyUnits
	weekly[time.Monday] = 2
	weekly[time.Wednesday] = 3

	exceptions := []CalendarException{
		{Date: date(2025, time.July, 7), Description: "Libur nasional", Category: "holiday"},
	}

	sessions := Scan(w, weekly, exceptions)
	if len(sessions) == 0 {
		t.Fatal("expected sessions for a scheduled subject")
	}

	for _, s := range sessions {
		if s.Date.Weekday() == time.Sunday {
			t.Errorf("session emitted on Sunday: %s", s.Date)
		}
		if weekly[s.Date.Weekday()] == 0 {
			t.Errorf("session emitted on zero-unit weekday: %s", s.Date)
		}
		if s.Date.Equal(date(2025, time.July, 7)) {
			t.Errorf("session emitted on exception date")
		}
		if s.Units != weekly[s.Date.Weekday()] {
			t.Errorf("session units %d, want %d", s.Units, weekly[s.Date.Weekday()])
		}
	}
}

func TestScan_TwoMondaysInJanuary(t *testing.T) {
	// Genap semester of 2024/2025 starts Jan 1 2025; the first two Mondays
	// are Jan 6 and Jan 13.
	w := Window{StartYear: 2024, Semester: SemesterGenap}
	var weekly WeeklyUnits
	weekly[time.Monday] = 2

	sessions := Scan(w, weekly, nil)
	if len(sessions) < 2 {
		t.Fatalf("expected at least 2 sessions, got %d", len(sessions))
	}
	if !sessions[0].Date.Equal(date(2025, time.January, 6)) {
		t.Errorf("first session %s, want 2025-01-06", sessions[0].Date)
	}
	if !sessions[1].Date.Equal(date(2025, time.January, 13)) {
		t.Errorf("second session %s, want 2025-01-13", sessions[1].Date)
	}
}

func TestScan_EmptyWeeklyPattern(t *testing.T) {
	w := Window{StartYear: 2025, Semester: SemesterGanjil}
	var weekly WeeklyUnits

	if !weekly.Empty() {
		t.Error("zero pattern should report Empty")
	}

	sessions := Scan(w, weekly, nil)
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
}

func TestScan_ChronologicalOrder(t *testing.T) {
	w := Window{StartYear: 2025, Semester: SemesterGanjil}
	var weekly WeeklyUnits
	weekly[time.Tuesday] = 1
	weekly[time.Friday] = 2

	sessions := Scan(w, weekly, nil)
	for i := 1; i < len(sessions); i++ {
		if !sessions[i-1].Date.Before(sessions[i].Date) {
			t.Fatalf("sessions out of order at %d: %s then %s", i, sessions[i-1].Date, sessions[i].Date)
		}
	}
}

func TestBucketize(t *testing.T) {
	ganjil := Window{StartYear: 2025, Semester: SemesterGanjil}
	genap := Window{StartYear: 2024, Semester: SemesterGenap}

	tests := []struct {
		name string
		date time.Time
		w    Window
		want SlotKey
		ok   bool
	}{
		{"First day of Ganjil", date(2025, time.July, 1), ganjil, SlotKey{1, 1}, true},
		{"Second week", date(2025, time.July, 8), ganjil, SlotKey{1, 2}, true},
		{"Fifth week kept", date(2025, time.July, 29), ganjil, SlotKey{1, 5}, true},
		{"December is month 6", date(2025, time.December, 3), ganjil, SlotKey{6, 1}, true},
		{"Genap June is month 6", date(2025, time.June, 15), genap, SlotKey{6, 3}, true},
		{"Before window", date(2025, time.June, 30), ganjil, SlotKey{}, false},
		{"After window", date(2026, time.January, 1), ganjil, SlotKey{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Bucketize(tt.date, tt.w)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Bucketize(%s) = %v,%v want %v,%v", tt.date, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBucketize_RangeInvariant(t *testing.T) {
	w := Window{StartYear: 2025, Semester: SemesterGanjil}
	for d := w.Start(); !d.After(w.End()); d = d.AddDate(0, 0, 1) {
		slot, ok := Bucketize(d, w)
		if !ok {
			continue
		}
		if slot.Month < 1 || slot.Month > GridMonths || slot.Week < 1 || slot.Week > GridWeeks {
			t.Fatalf("slot out of range for %s: %v", d, slot)
		}
	}
}

func TestSlotGrid(t *testing.T) {
	var g SlotGrid
	g.Set(SlotKey{Month: 2, Week: 3})
	g.Set(SlotKey{Month: 7, Week: 1}) // out of range, ignored

	if !g.Active(SlotKey{Month: 2, Week: 3}) {
		t.Error("cell 2/3 should be active")
	}
	if keys := g.Keys(); len(keys) != 1 || keys[0] != (SlotKey{Month: 2, Week: 3}) {
		t.Errorf("unexpected keys: %v", keys)
	}
}
