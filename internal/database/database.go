package database

import (
	"fmt"
	"log"

	"github.com/prosemku/backend/internal/config"
	"github.com/prosemku/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	log.Printf("Attempting database connection with DSN: %s", maskPassword(cfg.Database.DSN))

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func maskPassword(dsn string) string {
	// Simple password masking for logging
	if len(dsn) > 20 {
		return dsn[:20] + "...***..."
	}
	return "***"
}

func Migrate(db *gorm.DB) error {
	log.Println("Running migrations...")

	err := db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.Class{},
		&models.Student{},
		&models.CalendarEvent{},
		&models.WeeklySchedule{},
		&models.Topic{},
		&models.SubTopic{},
		&models.SubTopicAssignment{},
		&models.ScheduleRun{},
		&models.AuditLog{},
		&models.RefreshToken{},
	)
	if err != nil {
		return err
	}

	// Add performance indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_students_school ON students(school_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_calendar_events_date ON calendar_events(date)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_topics_scope ON topics(class_id, subject, year, semester)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sub_topics_topic ON sub_topics(topic_id, position)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_assignments_topic ON sub_topic_assignments(topic_id)")

	return nil
}
