package schedule

import (
	"errors"
	"testing"
	"time"
)

func sessionsOn(days ...time.Time) []TeachingSession {
	w := Window{StartYear: 2024, Semester: SemesterGenap}
	out := make([]TeachingSession, len(days))
	for i, d := range days {
		slot, _ := Bucketize(d, w)
		out[i] = TeachingSession{Date: d, Units: 2, Slot: slot}
	}
	return out
}

func TestMatch_TwoMondayScenario(t *testing.T) {
	// Two sessions of 2 units each; two sub-topics needing 2 units each.
	sessions := sessionsOn(date(2025, time.January, 6), date(2025, time.January, 13))
	topics := []Topic{{
		ID:   "t1",
		Name: "Bilangan",
		SubTopics: []SubTopic{
			{ID: "s1", Name: "Membilang sampai 100", TargetUnits: 2},
			{ID: "s2", Name: "Nilai tempat", TargetUnits: 2, Summative: true},
		},
	}}

	res := Match(topics, sessions)
	if len(res.Assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(res.Assignments))
	}
	if len(res.Assignments[0].Dates) != 1 || !res.Assignments[0].Dates[0].Equal(date(2025, time.January, 6)) {
		t.Errorf("sub-topic 1 dates = %v, want [2025-01-06]", res.Assignments[0].Dates)
	}
	if len(res.Assignments[1].Dates) != 1 || !res.Assignments[1].Dates[0].Equal(date(2025, time.January, 13)) {
		t.Errorf("sub-topic 2 dates = %v, want [2025-01-13]", res.Assignments[1].Dates)
	}
	if res.Unfilled != 0 {
		t.Errorf("unfilled = %d, want 0", res.Unfilled)
	}
}

func TestMatch_SessionNeverSplit(t *testing.T) {
	// Sub-topic needs 1 unit but the session carries 2: the session still
	// closes it whole and the next session starts the next sub-topic fresh.
	sessions := sessionsOn(date(2025, time.January, 6), date(2025, time.January, 13))
	topics := []Topic{{
		ID: "t1",
		SubTopics: []SubTopic{
			{ID: "s1", TargetUnits: 1},
			{ID: "s2", TargetUnits: 2, Summative: true},
		},
	}}

	res := Match(topics, sessions)
	if len(res.Assignments[0].Dates) != 1 {
		t.Fatalf("sub-topic 1 should consume exactly one session, got %d", len(res.Assignments[0].Dates))
	}
	if len(res.Assignments[1].Dates) != 1 || !res.Assignments[1].Dates[0].Equal(date(2025, time.January, 13)) {
		t.Errorf("sub-topic 2 dates = %v, want [2025-01-13]", res.Assignments[1].Dates)
	}
}

func TestMatch_ZeroTargetSkipped(t *testing.T) {
	sessions := sessionsOn(date(2025, time.January, 6))
	topics := []Topic{{
		ID: "t1",
		SubTopics: []SubTopic{
			{ID: "s1", TargetUnits: 0},
			{ID: "s2", TargetUnits: 2, Summative: true},
		},
	}}

	res := Match(topics, sessions)
	if len(res.Assignments[0].Dates) != 0 {
		t.Errorf("zero-target sub-topic consumed sessions: %v", res.Assignments[0].Dates)
	}
	if len(res.Assignments[1].Dates) != 1 {
		t.Errorf("sub-topic 2 should receive the session")
	}
}

func TestMatch_InsufficientSessions(t *testing.T) {
	sessions := sessionsOn(date(2025, time.January, 6))
	topics := []Topic{{
		ID: "t1",
		SubTopics: []SubTopic{
			{ID: "s1", TargetUnits: 2},
			{ID: "s2", TargetUnits: 2},
			{ID: "s3", TargetUnits: 2, Summative: true},
		},
	}}

	res := Match(topics, sessions)
	if res.Unfilled != 2 {
		t.Errorf("unfilled = %d, want 2", res.Unfilled)
	}
	for _, a := range res.Assignments[1:] {
		if len(a.Dates) != 0 {
			t.Errorf("trailing sub-topic %s should be empty", a.SubTopicID)
		}
	}
}

func TestMatch_PartialTrailingSubTopicUnfilled(t *testing.T) {
	// The last sub-topic gets one session of its four units before the
	// calendar runs out: partially served still counts as unfilled.
	sessions := sessionsOn(date(2025, time.January, 6), date(2025, time.January, 13))
	topics := []Topic{{
		ID: "t1",
		SubTopics: []SubTopic{
			{ID: "s1", TargetUnits: 2},
			{ID: "s2", TargetUnits: 4, Summative: true},
		},
	}}

	res := Match(topics, sessions)
	if len(res.Assignments[1].Dates) != 1 {
		t.Fatalf("sub-topic 2 dates = %v, want one session", res.Assignments[1].Dates)
	}
	if res.Assignments[1].Units != 2 {
		t.Errorf("sub-topic 2 units = %d, want 2", res.Assignments[1].Units)
	}
	if res.Unfilled != 1 {
		t.Errorf("unfilled = %d, want 1", res.Unfilled)
	}
}

func TestMatch_NoDoubleBookingAndOrder(t *testing.T) {
	w := Window{StartYear: 2025, Semester: SemesterGanjil}
	var weekly WeeklyUnits
	weekly[time.Monday] = 2
	weekly[time.Thursday] = 1
	sessions := Scan(w, weekly, nil)

	topics := []Topic{
		{ID: "t1", SubTopics: []SubTopic{
			{ID: "a1", TargetUnits: 6},
			{ID: "a2", TargetUnits: 4},
			{ID: "a3", TargetUnits: 2, Summative: true},
		}},
		{ID: "t2", SubTopics: []SubTopic{
			{ID: "b1", TargetUnits: 8},
			{ID: "b2", TargetUnits: 2, Summative: true},
		}},
	}

	res := Match(topics, sessions)

	seen := make(map[string]string)
	var prevLast time.Time
	for _, a := range res.Assignments {
		for _, d := range a.Dates {
			key := d.Format("2006-01-02")
			if owner, dup := seen[key]; dup {
				t.Fatalf("date %s assigned to both %s and %s", key, owner, a.SubTopicID)
			}
			seen[key] = a.SubTopicID
			if d.Before(prevLast) {
				t.Fatalf("sub-topic %s received %s before an earlier sub-topic's session", a.SubTopicID, key)
			}
		}
		if n := len(a.Dates); n > 0 {
			prevLast = a.Dates[n-1]
		}
	}
	if res.Unfilled != 0 {
		t.Errorf("a full semester should satisfy 22 units, unfilled = %d", res.Unfilled)
	}
}

func TestEnsureSummative(t *testing.T) {
	t.Run("Appended when missing", func(t *testing.T) {
		topic := EnsureSummative(Topic{ID: "t1", SubTopics: []SubTopic{{ID: "s1", TargetUnits: 4}}})
		last := topic.SubTopics[len(topic.SubTopics)-1]
		if !last.Summative || last.TargetUnits != SummativeUnits {
			t.Errorf("expected trailing summative check, got %+v", last)
		}
	})

	t.Run("Kept when present", func(t *testing.T) {
		topic := EnsureSummative(Topic{ID: "t1", SubTopics: []SubTopic{
			{ID: "s1", TargetUnits: 4},
			{ID: "s2", TargetUnits: 1, Summative: true},
		}})
		if len(topic.SubTopics) != 2 {
			t.Errorf("summative check duplicated: %d sub-topics", len(topic.SubTopics))
		}
	})
}

func TestValidateAllocations(t *testing.T) {
	ok := []Topic{{ID: "t1", Name: "Bilangan", TotalUnits: 6, SubTopics: []SubTopic{
		{TargetUnits: 4}, {TargetUnits: 2, Summative: true},
	}}}
	if err := ValidateAllocations(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := []Topic{{ID: "t1", Name: "Bilangan", TotalUnits: 10, SubTopics: []SubTopic{
		{TargetUnits: 4}, {TargetUnits: 2, Summative: true},
	}}}
	err := ValidateAllocations(bad)
	if err == nil {
		t.Fatal("expected allocation mismatch")
	}
	var mismatch *AllocationMismatchError
	if !errors.As(err, &mismatch) || mismatch.SumUnits != 6 {
		t.Errorf("unexpected error: %v", err)
	}
}
