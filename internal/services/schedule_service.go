package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/ai"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/schedule"
	"gorm.io/gorm"
)

var (
	ErrNoTopics         = errors.New("no topics planned for this scope")
	ErrNoWeeklySchedule = errors.New("no weekly schedule for this subject")
)

// ScheduleService runs the semester-program scheduler: scan the calendar,
// match sessions to the curriculum plan, optionally ask the AI layer for a
// suggestion, and persist the per-sub-topic assignments.
type ScheduleService struct {
	db       *gorm.DB
	provider ai.Provider
}

func NewScheduleService(db *gorm.DB, provider ai.Provider) *ScheduleService {
	return &ScheduleService{db: db, provider: provider}
}

// RunInput scopes one scheduling run.
type RunInput struct {
	SchoolID uuid.UUID
	ClassID  uuid.UUID
	Subject  string
	Year     int
	Semester schedule.Semester
	RunBy    uuid.UUID
	UseAI    bool
}

// Run executes a full scheduling run and overwrites any prior assignments
// for the same scope. Insufficient sessions are reported in the run
// summary, not treated as an error.
func (s *ScheduleService) Run(ctx context.Context, in RunInput) (*models.ScheduleRun, []models.SubTopicAssignment, error) {
	weekly, err := s.loadWeeklyUnits(in)
	if err != nil {
		return nil, nil, err
	}

	exceptions, err := s.loadExceptions(in.SchoolID, in.Year)
	if err != nil {
		return nil, nil, err
	}

	topics, topicModels, pendingSubTopics, err := s.loadTopics(in)
	if err != nil {
		return nil, nil, err
	}
	if err := schedule.ValidateAllocations(topics); err != nil {
		return nil, nil, err
	}

	window := schedule.Window{StartYear: in.Year, Semester: in.Semester}
	sessions := schedule.Scan(window, weekly, exceptions)
	result := schedule.Match(topics, sessions)

	source := "matcher"
	aiError := ""
	if in.UseAI && s.provider != nil && len(sessions) > 0 {
		if merged, err := s.applySuggestions(ctx, window, sessions, topics, result); err != nil {
			// The deterministic result stands; the AI outcome is only noted.
			aiError = err.Error()
			log.Printf("AI suggestion rejected: %v", err)
		} else {
			result = merged
			source = "ai"
		}
	}

	assignments := s.toAssignments(in, topicModels, result, source)

	run := &models.ScheduleRun{
		SchoolID: in.SchoolID,
		ClassID:  in.ClassID,
		Subject:  in.Subject,
		Year:     in.Year,
		Semester: string(in.Semester),
		Status:   "completed",
		RunBy:    in.RunBy,
		Summary: models.JSONB{
			"sessions":       len(sessions),
			"sub_topics":     len(result.Assignments),
			"unfilled":       result.Unfilled,
			"source":         source,
			"ai_error":       aiError,
			"semester_label": window.Label(),
		},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range pendingSubTopics {
			if err := tx.Create(&pendingSubTopics[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("school_id = ? AND year = ? AND semester = ? AND topic_id IN (?)",
			in.SchoolID, in.Year, string(in.Semester), topicIDs(topicModels)).
			Delete(&models.SubTopicAssignment{}).Error; err != nil {
			return err
		}
		for i := range assignments {
			if err := tx.Create(&assignments[i]).Error; err != nil {
				return err
			}
		}
		now := time.Now()
		run.FinishedAt = &now
		return tx.Create(run).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return run, assignments, nil
}

// AssessmentWindow derives the end-of-term assessment label for the scope's
// calendar.
func (s *ScheduleService) AssessmentWindow(schoolID uuid.UUID, year int, sem schedule.Semester) (schedule.AssessmentWindow, error) {
	exceptions, err := s.loadExceptions(schoolID, year)
	if err != nil {
		return schedule.AssessmentWindow{}, err
	}
	return schedule.ResolveAssessmentWindow(exceptions, sem), nil
}

func (s *ScheduleService) loadWeeklyUnits(in RunInput) (schedule.WeeklyUnits, error) {
	var ws models.WeeklySchedule
	err := s.db.Where("school_id = ? AND class_id = ? AND subject = ? AND year = ?",
		in.SchoolID, in.ClassID, in.Subject, in.Year).
		First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return schedule.WeeklyUnits{}, ErrNoWeeklySchedule
	}
	if err != nil {
		return schedule.WeeklyUnits{}, err
	}

	var weekly schedule.WeeklyUnits
	weekly[time.Monday] = ws.Monday
	weekly[time.Tuesday] = ws.Tuesday
	weekly[time.Wednesday] = ws.Wednesday
	weekly[time.Thursday] = ws.Thursday
	weekly[time.Friday] = ws.Friday
	weekly[time.Saturday] = ws.Saturday
	return weekly, nil
}

func (s *ScheduleService) loadExceptions(schoolID uuid.UUID, year int) ([]schedule.CalendarException, error) {
	var events []models.CalendarEvent
	if err := s.db.Where("school_id = ? AND year = ?", schoolID, year).
		Order("date").Find(&events).Error; err != nil {
		return nil, err
	}

	out := make([]schedule.CalendarException, len(events))
	for i, e := range events {
		out[i] = schedule.CalendarException{
			Date:        e.Date,
			Description: e.Description,
			Category:    e.Category,
		}
	}
	return out, nil
}

func (s *ScheduleService) loadTopics(in RunInput) ([]schedule.Topic, []models.Topic, []models.SubTopic, error) {
	var topicModels []models.Topic
	err := s.db.Preload("SubTopics", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("school_id = ? AND class_id = ? AND subject = ? AND year = ? AND semester = ?",
			in.SchoolID, in.ClassID, in.Subject, in.Year, string(in.Semester)).
		Order("position").
		Find(&topicModels).Error
	if err != nil {
		return nil, nil, nil, err
	}
	if len(topicModels) == 0 {
		return nil, nil, nil, ErrNoTopics
	}

	// Every topic ends with exactly one summative check; materialize the
	// row when the author left it out so its assignment can be persisted.
	// Rows are only staged here and created inside the run transaction, so
	// a failed run leaves the curriculum untouched.
	var pending []models.SubTopic
	for i := range topicModels {
		tm := &topicModels[i]
		n := len(tm.SubTopics)
		if n > 0 && tm.SubTopics[n-1].IsSummative {
			continue
		}
		summative := models.SubTopic{
			TopicID:     tm.ID,
			Name:        "Sumatif Lingkup Materi",
			TargetUnits: schedule.SummativeUnits,
			IsSummative: true,
			Position:    n + 1,
		}
		summative.ID = uuid.New()
		pending = append(pending, summative)
		tm.SubTopics = append(tm.SubTopics, summative)
	}

	topics := make([]schedule.Topic, len(topicModels))
	for i, tm := range topicModels {
		t := schedule.Topic{
			ID:         tm.ID.String(),
			Name:       tm.Name,
			TotalUnits: tm.TotalUnits,
		}
		for _, st := range tm.SubTopics {
			t.SubTopics = append(t.SubTopics, schedule.SubTopic{
				ID:          st.ID.String(),
				Name:        st.Name,
				TargetUnits: st.TargetUnits,
				Summative:   st.IsSummative,
			})
		}
		topics[i] = t
	}
	return topics, topicModels, pending, nil
}

// applySuggestions asks the AI provider for an allocation and accepts it
// only when it survives invariant validation. Suggested unit counts and
// date lists replace the matcher's, on a per-sub-topic basis.
func (s *ScheduleService) applySuggestions(ctx context.Context, w schedule.Window, sessions []schedule.TeachingSession, topics []schedule.Topic, base schedule.MatchResult) (schedule.MatchResult, error) {
	prompt := ai.BuildSchedulePrompt(w, sessions, topics)
	raw, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return base, err
	}

	suggestions, err := ai.ParseSuggestions(raw)
	if err != nil {
		return base, err
	}
	if err := ai.ValidateSuggestions(suggestions, topics, sessions); err != nil {
		return base, err
	}

	sessionByID := make(map[string]schedule.TeachingSession, len(sessions))
	for i, sess := range sessions {
		sessionByID[ai.SessionID(i)] = sess
	}

	merged := base
	merged.Assignments = make([]schedule.Assignment, len(base.Assignments))
	copy(merged.Assignments, base.Assignments)
	for i, a := range merged.Assignments {
		sg, ok := suggestions[a.SubTopicID]
		if !ok {
			continue
		}
		a.Dates = nil
		a.Grid = schedule.SlotGrid{}
		a.Units = 0
		for _, sid := range sg.SessionIDs {
			sess := sessionByID[sid]
			a.Dates = append(a.Dates, sess.Date)
			a.Grid.Set(sess.Slot)
			a.Units += sess.Units
		}
		a.NotesText = schedule.NormalizeAndSortDates(sg.DateText)
		if a.NotesText == "" {
			a.NotesText = schedule.FormatDates(a.Dates)
		}
		merged.Assignments[i] = a
	}
	return merged, nil
}

func (s *ScheduleService) toAssignments(in RunInput, topicModels []models.Topic, result schedule.MatchResult, source string) []models.SubTopicAssignment {
	subTopicTopic := make(map[string]uuid.UUID)
	for _, tm := range topicModels {
		for _, st := range tm.SubTopics {
			subTopicTopic[st.ID.String()] = tm.ID
		}
	}

	var out []models.SubTopicAssignment
	for _, a := range result.Assignments {
		subID, err := uuid.Parse(a.SubTopicID)
		if err != nil {
			// Only rows backed by a stored sub-topic are persisted.
			continue
		}
		out = append(out, models.SubTopicAssignment{
			SchoolID:   in.SchoolID,
			TopicID:    subTopicTopic[a.SubTopicID],
			SubTopicID: subID,
			Year:       in.Year,
			Semester:   string(in.Semester),
			Units:      a.Units,
			SlotGrid:   gridJSON(a.Grid),
			NotesText:  a.NotesText,
			Source:     source,
		})
	}
	return out
}

func gridJSON(g schedule.SlotGrid) models.JSONB {
	active := make([]interface{}, 0)
	for _, k := range g.Keys() {
		active = append(active, map[string]interface{}{"month": k.Month, "week": k.Week})
	}
	return models.JSONB{"active": active}
}

func topicIDs(topics []models.Topic) []uuid.UUID {
	ids := make([]uuid.UUID, len(topics))
	for i, t := range topics {
		ids[i] = t.ID
	}
	return ids
}
