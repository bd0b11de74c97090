package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/prosemku/backend/internal/schedule"
)

func testSessions() []schedule.TeachingSession {
	w := schedule.Window{StartYear: 2025, Semester: schedule.SemesterGanjil}
	days := []time.Time{
		time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC),
	}
	out := make([]schedule.TeachingSession, len(days))
	for i, d := range days {
		slot, _ := schedule.Bucketize(d, w)
		out[i] = schedule.TeachingSession{Date: d, Units: 2, Slot: slot}
	}
	return out
}

func testTopics() []schedule.Topic {
	return []schedule.Topic{{
		ID:   "t1",
		Name: "Bilangan",
		SubTopics: []schedule.SubTopic{
			{ID: "s1", Name: "Membilang", TargetUnits: 2},
			{ID: "s2", Name: "Sumatif Lingkup Materi", TargetUnits: 2, Summative: true},
		},
	}}
}

func TestBuildSchedulePrompt(t *testing.T) {
	prompt := BuildSchedulePrompt(
		schedule.Window{StartYear: 2025, Semester: schedule.SemesterGanjil},
		testSessions(), testTopics(),
	)

	for _, want := range []string{"d1: 14-07-2025, 2 JP, b1_m2", "s1: Membilang (2 JP)", "JSON"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestParseSuggestions(t *testing.T) {
	raw := "```json\n{\"s1\": {\"final_units\": 2, \"session_ids\": [\"d1\"], \"date_text\": \"14-07-2025\"}}\n```"
	got, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["s1"].FinalUnits != 2 || got["s1"].SessionIDs[0] != "d1" {
		t.Errorf("unexpected suggestion: %+v", got["s1"])
	}

	if _, err := ParseSuggestions("bukan json"); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateSuggestions(t *testing.T) {
	topics := testTopics()
	sessions := testSessions()

	tests := []struct {
		name    string
		input   map[string]Suggestion
		wantErr bool
	}{
		{"Valid", map[string]Suggestion{
			"s1": {FinalUnits: 2, SessionIDs: []string{"d1"}},
			"s2": {FinalUnits: 2, SessionIDs: []string{"d2"}},
		}, false},
		{"Double booking", map[string]Suggestion{
			"s1": {SessionIDs: []string{"d1"}},
			"s2": {SessionIDs: []string{"d1"}},
		}, true},
		{"Unknown session", map[string]Suggestion{
			"s1": {SessionIDs: []string{"d99"}},
		}, true},
		{"Unknown sub-topic", map[string]Suggestion{
			"zzz": {SessionIDs: []string{"d1"}},
		}, true},
		{"Out of order", map[string]Suggestion{
			"s1": {SessionIDs: []string{"d2"}},
			"s2": {SessionIDs: []string{"d1"}},
		}, true},
		{"Partial is fine", map[string]Suggestion{
			"s1": {SessionIDs: []string{"d1"}},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSuggestions(tt.input, topics, sessions)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
