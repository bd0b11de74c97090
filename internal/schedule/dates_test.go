package schedule

import (
	"testing"
	"time"
)

func TestNormalizeAndSortDates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Already sorted", "14-07-2025, 21-07-2025", "14-07-2025, 21-07-2025"},
		{"Out of order", "21-07-2025, 14-07-2025", "14-07-2025, 21-07-2025"},
		{"Whitespace and empties", " 21-07-2025 ,, 14-07-2025 ", "14-07-2025, 21-07-2025"},
		{"Empty input", "", ""},
		{"Single date", "05-08-2025", "05-08-2025"},
		{"Malformed kept", "bukan tanggal, 21-07-2025, 14-07-2025", "bukan tanggal, 14-07-2025, 21-07-2025"},
		{"All malformed", "abc, def", "abc, def"},
		{"Cross-year order", "03-01-2026, 28-12-2025", "28-12-2025, 03-01-2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAndSortDates(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAndSortDates_Idempotent(t *testing.T) {
	inputs := []string{
		"21-07-2025, 14-07-2025",
		"x, 21-07-2025, y, 14-07-2025",
		"",
		"garbage only",
		"05-08-2025, 05-08-2025, 01-08-2025",
	}
	for _, in := range inputs {
		once := NormalizeAndSortDates(in)
		twice := NormalizeAndSortDates(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestFormatDates(t *testing.T) {
	got := FormatDates([]time.Time{
		date(2025, time.July, 21),
		date(2025, time.July, 14),
	})
	if got != "14-07-2025, 21-07-2025" {
		t.Errorf("got %q", got)
	}

	if FormatDates(nil) != "" {
		t.Error("empty list should format as empty string")
	}
}

func TestResolveAssessmentWindow(t *testing.T) {
	exceptions := []CalendarException{
		{Date: date(2025, time.December, 12), Description: "Sumatif akhir semester hari 3", Category: "assessment"},
		{Date: date(2025, time.December, 10), Description: "Sumatif akhir semester hari 1", Category: "assessment"},
		{Date: date(2025, time.August, 17), Description: "Hari Kemerdekaan", Category: "holiday"},
	}

	t.Run("Ganjil range", func(t *testing.T) {
		w := ResolveAssessmentWindow(exceptions, SemesterGanjil)
		if w.Label != "SUMATIF AKHIR SEMESTER" {
			t.Errorf("label = %q", w.Label)
		}
		if w.DateRange != "10-12-2025 sampai 12-12-2025" {
			t.Errorf("range = %q", w.DateRange)
		}
	})

	t.Run("Single match", func(t *testing.T) {
		w := ResolveAssessmentWindow(exceptions[:1], SemesterGanjil)
		if w.DateRange != "12-12-2025" {
			t.Errorf("range = %q", w.DateRange)
		}
	})

	t.Run("No keyword match", func(t *testing.T) {
		w := ResolveAssessmentWindow(exceptions, SemesterGenap)
		if w.DateRange != "" {
			t.Errorf("range = %q, want empty", w.DateRange)
		}
		if w.Label != "SUMATIF AKHIR TAHUN" {
			t.Errorf("label = %q", w.Label)
		}
	})
}
