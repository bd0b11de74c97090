package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prosemku/backend/internal/schedule"
)

// Suggestion is the model's proposed allocation for one sub-topic. It
// mirrors the matcher's output and is only used after validation.
type Suggestion struct {
	FinalUnits int      `json:"final_units"`
	SessionIDs []string `json:"session_ids"`
	DateText   string   `json:"date_text"`
}

// SessionID labels the i-th teaching session in a prompt.
func SessionID(i int) string {
	return fmt.Sprintf("d%d", i+1)
}

// BuildSchedulePrompt embeds the computed session list and the topic plan
// into a prompt asking for a JSON allocation keyed by sub-topic id.
func BuildSchedulePrompt(w schedule.Window, sessions []schedule.TeachingSession, topics []schedule.Topic) string {
	var sb strings.Builder
	sb.WriteString("Anda membantu menyusun program semester SD.\n")
	fmt.Fprintf(&sb, "Semester: %s\n\n", w.Label())

	sb.WriteString("Hari efektif (id, tanggal, jam pelajaran, bulan/minggu):\n")
	for i, s := range sessions {
		fmt.Fprintf(&sb, "- %s: %s, %d JP, b%d_m%d\n",
			SessionID(i), schedule.FormatDate(s.Date), s.Units, s.Slot.Month, s.Slot.Week)
	}

	sb.WriteString("\nMateri dan lingkup materi (id, nama, alokasi JP):\n")
	for _, t := range topics {
		t = schedule.EnsureSummative(t)
		fmt.Fprintf(&sb, "%s: %s (%d JP)\n", t.ID, t.Name, t.TotalUnits)
		for _, st := range t.SubTopics {
			fmt.Fprintf(&sb, "  - %s: %s (%d JP)\n", st.ID, st.Name, st.TargetUnits)
		}
	}

	sb.WriteString("\nBagikan hari efektif secara berurutan ke setiap lingkup materi ")
	sb.WriteString("sampai alokasinya terpenuhi. Satu hari hanya boleh dipakai satu ")
	sb.WriteString("lingkup materi. Balas hanya dengan JSON berbentuk:\n")
	sb.WriteString(`{"<subtopic_id>": {"final_units": 0, "session_ids": ["d1"], "date_text": "14-07-2025"}}`)
	sb.WriteString("\n")
	return sb.String()
}

// ParseSuggestions decodes the model's JSON reply, tolerating a markdown
// code fence around it.
func ParseSuggestions(raw string) (map[string]Suggestion, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var out map[string]Suggestion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parsing suggestions: %w", err)
	}
	return out, nil
}

// ValidateSuggestions checks a suggestion set against the scheduling
// invariants: every sub-topic and session id must exist, no session may be
// booked twice, and sub-topics must receive sessions in plan order. Any
// violation rejects the whole set; the caller falls back to the matcher.
func ValidateSuggestions(suggestions map[string]Suggestion, topics []schedule.Topic, sessions []schedule.TeachingSession) error {
	sessionIndex := make(map[string]int, len(sessions))
	for i := range sessions {
		sessionIndex[SessionID(i)] = i
	}

	var order []string
	for _, t := range topics {
		t = schedule.EnsureSummative(t)
		for _, st := range t.SubTopics {
			order = append(order, st.ID)
		}
	}
	known := make(map[string]bool, len(order))
	for _, id := range order {
		known[id] = true
	}

	for id := range suggestions {
		if !known[id] {
			return fmt.Errorf("suggestion for unknown sub-topic %q", id)
		}
	}

	used := make(map[string]string)
	prevMax := -1
	for _, subID := range order {
		sg, ok := suggestions[subID]
		if !ok {
			continue
		}
		for _, sid := range sg.SessionIDs {
			idx, ok := sessionIndex[sid]
			if !ok {
				return fmt.Errorf("sub-topic %q references unknown session %q", subID, sid)
			}
			if owner, dup := used[sid]; dup {
				return fmt.Errorf("session %q booked by both %q and %q", sid, owner, subID)
			}
			used[sid] = subID
			if idx < prevMax {
				return fmt.Errorf("sub-topic %q received session %q out of order", subID, sid)
			}
		}
		for _, sid := range sg.SessionIDs {
			if idx := sessionIndex[sid]; idx > prevMax {
				prevMax = idx
			}
		}
	}
	return nil
}
