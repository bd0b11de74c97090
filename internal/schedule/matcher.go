package schedule

import (
	"fmt"
	"time"
)

// SummativeUnits is the fixed allocation of the mandatory end-of-topic
// summative check ("Sumatif Lingkup Materi").
const SummativeUnits = 2

// SubTopic is a gradeable slice of a Topic with its own target allocation.
type SubTopic struct {
	ID          string
	Name        string
	TargetUnits int
	Summative   bool
}

// Topic is a curriculum unit ("Materi") spanning ordered sub-topics plus a
// mandatory summative check as its last entry.
type Topic struct {
	ID         string
	Name       string
	TotalUnits int
	SubTopics  []SubTopic
}

// EnsureSummative appends the summative-check sub-topic when the author did
// not write one. Every Topic's sub-topic list ends with exactly one
// summative entry.
func EnsureSummative(t Topic) Topic {
	n := len(t.SubTopics)
	if n > 0 && t.SubTopics[n-1].Summative {
		return t
	}
	out := t
	out.SubTopics = make([]SubTopic, n, n+1)
	copy(out.SubTopics, t.SubTopics)
	out.SubTopics = append(out.SubTopics, SubTopic{
		ID:          t.ID + "-sumatif",
		Name:        "Sumatif Lingkup Materi",
		TargetUnits: SummativeUnits,
		Summative:   true,
	})
	return out
}

// AllocationMismatchError reports a topic whose declared total does not
// equal the sum of its sub-topic targets. Detected, never auto-corrected.
type AllocationMismatchError struct {
	TopicID    string
	TopicName  string
	TotalUnits int
	SumUnits   int
}

func (e *AllocationMismatchError) Error() string {
	return fmt.Sprintf("topic %q declares %d units but sub-topics sum to %d",
		e.TopicName, e.TotalUnits, e.SumUnits)
}

// ValidateAllocations checks every topic's total against the sum of its
// sub-topic targets.
func ValidateAllocations(topics []Topic) error {
	for _, t := range topics {
		sum := 0
		for _, st := range t.SubTopics {
			sum += st.TargetUnits
		}
		if t.TotalUnits != 0 && sum != t.TotalUnits {
			return &AllocationMismatchError{
				TopicID:    t.ID,
				TopicName:  t.Name,
				TotalUnits: t.TotalUnits,
				SumUnits:   sum,
			}
		}
	}
	return nil
}

// Assignment records which sessions one sub-topic consumed.
type Assignment struct {
	TopicID    string
	SubTopicID string
	Dates      []time.Time
	Grid       SlotGrid
	Units      int
	NotesText  string
}

// MatchResult is the outcome of one scheduling run.
type MatchResult struct {
	Assignments []Assignment
	// Unfilled counts sub-topics with a positive target whose allocated
	// units fall short of it because the calendar ran out. A sub-topic
	// that received some sessions but not enough counts. Reported, not
	// fatal.
	Unfilled int
}

// Match greedily assigns the ordered session list to the ordered sub-topics
// of the ordered topics, in a single forward pass. A session is always
// consumed whole by the sub-topic it is assigned to: when a sub-topic's
// remaining need is smaller than the session's units, the session still
// closes that sub-topic and the excess does not carry over. Zero-target
// sub-topics consume nothing.
func Match(topics []Topic, sessions []TeachingSession) MatchResult {
	type flat struct {
		topicID string
		sub     SubTopic
	}
	var subs []flat
	for _, t := range topics {
		t = EnsureSummative(t)
		for _, st := range t.SubTopics {
			subs = append(subs, flat{topicID: t.ID, sub: st})
		}
	}

	result := MatchResult{Assignments: make([]Assignment, len(subs))}
	for i, f := range subs {
		result.Assignments[i] = Assignment{TopicID: f.topicID, SubTopicID: f.sub.ID}
	}

	cursor := 0
	advance := func() {
		cursor++
		for cursor < len(subs) && subs[cursor].sub.TargetUnits <= 0 {
			cursor++
		}
	}
	if len(subs) > 0 && subs[0].sub.TargetUnits <= 0 {
		advance()
	}

	need := 0
	if cursor < len(subs) {
		need = subs[cursor].sub.TargetUnits
	}

	for _, s := range sessions {
		if cursor >= len(subs) {
			break
		}
		a := &result.Assignments[cursor]
		a.Dates = append(a.Dates, s.Date)
		a.Grid.Set(s.Slot)
		a.Units += s.Units

		need -= s.Units
		if need <= 0 {
			advance()
			if cursor < len(subs) {
				need = subs[cursor].sub.TargetUnits
			}
		}
	}

	for i := range result.Assignments {
		a := &result.Assignments[i]
		a.NotesText = FormatDates(a.Dates)
		if subs[i].sub.TargetUnits > 0 && a.Units < subs[i].sub.TargetUnits {
			result.Unfilled++
		}
	}
	return result
}
