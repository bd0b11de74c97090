package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/schedule"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.School{},
		&models.Class{},
		&models.WeeklySchedule{},
		&models.CalendarEvent{},
		&models.Topic{},
		&models.SubTopic{},
		&models.SubTopicAssignment{},
		&models.ScheduleRun{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type testScope struct {
	school models.School
	class  models.Class
	topic  models.Topic
}

// seedScope sets up one school with a class, a Monday-only weekly schedule
// and a single topic whose sub-topics leave room for the summative check.
func seedScope(t *testing.T, db *gorm.DB, name string, totalUnits int) testScope {
	t.Helper()

	school := models.School{Name: name}
	if err := db.Create(&school).Error; err != nil {
		t.Fatalf("seed school: %v", err)
	}
	class := models.Class{SchoolID: school.ID, Name: "Kelas 4", Grade: 4, Year: 2025}
	if err := db.Create(&class).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}
	ws := models.WeeklySchedule{
		SchoolID: school.ID,
		ClassID:  class.ID,
		Subject:  "Matematika",
		Year:     2025,
		Monday:   2,
	}
	if err := db.Create(&ws).Error; err != nil {
		t.Fatalf("seed weekly schedule: %v", err)
	}
	topic := models.Topic{
		SchoolID:   school.ID,
		ClassID:    class.ID,
		Subject:    "Matematika",
		Year:       2025,
		Semester:   string(schedule.SemesterGanjil),
		Name:       "Bilangan",
		TotalUnits: totalUnits,
		Position:   1,
	}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	sub := models.SubTopic{TopicID: topic.ID, Name: "Bilangan cacah", TargetUnits: 4, Position: 1}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("seed sub-topic: %v", err)
	}
	return testScope{school: school, class: class, topic: topic}
}

func runInput(sc testScope) RunInput {
	return RunInput{
		SchoolID: sc.school.ID,
		ClassID:  sc.class.ID,
		Subject:  "Matematika",
		Year:     2025,
		Semester: schedule.SemesterGanjil,
		RunBy:    uuid.New(),
	}
}

func TestRun_PersistsAssignmentsAndSummative(t *testing.T) {
	db := openTestDB(t)
	// 4 authored units plus the 2-unit summative check.
	sc := seedScope(t, db, "SD Negeri 1", 6)
	svc := NewScheduleService(db, nil)

	run, assignments, err := svc.Run(context.Background(), runInput(sc))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Status != "completed" || run.FinishedAt == nil {
		t.Errorf("run not finalized: status=%q finished_at=%v", run.Status, run.FinishedAt)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}

	var summatives int64
	db.Model(&models.SubTopic{}).
		Where("topic_id = ? AND is_summative = ?", sc.topic.ID, true).
		Count(&summatives)
	if summatives != 1 {
		t.Errorf("expected 1 materialized summative sub-topic, got %d", summatives)
	}
}

func TestRun_ScopedToSchool(t *testing.T) {
	db := openTestDB(t)
	schoolA := seedScope(t, db, "SD Negeri 1", 6)
	schoolB := seedScope(t, db, "SD Negeri 2", 6)
	svc := NewScheduleService(db, nil)

	if _, _, err := svc.Run(context.Background(), runInput(schoolB)); err != nil {
		t.Fatalf("run for second school: %v", err)
	}
	var before int64
	db.Model(&models.SubTopicAssignment{}).Where("school_id = ?", schoolB.school.ID).Count(&before)
	if before == 0 {
		t.Fatal("second school should have assignments before the cross-school attempt")
	}

	// A run scoped to the first school but naming the second school's class
	// must find nothing of the second school's data.
	in := runInput(schoolA)
	in.ClassID = schoolB.class.ID
	_, _, err := svc.Run(context.Background(), in)
	if !errors.Is(err, ErrNoWeeklySchedule) {
		t.Fatalf("expected ErrNoWeeklySchedule, got %v", err)
	}

	var after int64
	db.Model(&models.SubTopicAssignment{}).Where("school_id = ?", schoolB.school.ID).Count(&after)
	if after != before {
		t.Errorf("second school's assignments changed: %d -> %d", before, after)
	}
}

func TestRun_AllocationMismatchLeavesCurriculumUntouched(t *testing.T) {
	db := openTestDB(t)
	// TotalUnits disagrees with the 4+2 sub-topic sum, so the run fails
	// after the summative row has been staged.
	sc := seedScope(t, db, "SD Negeri 1", 10)
	svc := NewScheduleService(db, nil)

	_, _, err := svc.Run(context.Background(), runInput(sc))
	var mismatch *schedule.AllocationMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected allocation mismatch, got %v", err)
	}

	var summatives int64
	db.Model(&models.SubTopic{}).
		Where("topic_id = ? AND is_summative = ?", sc.topic.ID, true).
		Count(&summatives)
	if summatives != 0 {
		t.Errorf("failed run persisted %d summative sub-topic rows", summatives)
	}
	var runs int64
	db.Model(&models.ScheduleRun{}).Count(&runs)
	if runs != 0 {
		t.Errorf("failed run persisted %d run records", runs)
	}
}
