package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/schedule"
	"gorm.io/gorm"
)

type CalendarService struct {
	db *gorm.DB
}

func NewCalendarService(db *gorm.DB) *CalendarService {
	return &CalendarService{db: db}
}

// nationalHoliday is a fixed-date holiday observed every academic year.
// Movable holidays (Idul Fitri, Waisak, ...) shift yearly and are entered
// per school through the calendar endpoints.
type nationalHoliday struct {
	month time.Month
	day   int
	name  string
}

var fixedHolidays = []nationalHoliday{
	{time.August, 17, "Hari Kemerdekaan RI"},
	{time.December, 25, "Hari Raya Natal"},
	{time.January, 1, "Tahun Baru Masehi"},
	{time.May, 1, "Hari Buruh Internasional"},
	{time.June, 1, "Hari Lahir Pancasila"},
}

// SeedNationalHolidays inserts the fixed national holidays of one academic
// year for a school, skipping dates that already have an event.
func (s *CalendarService) SeedNationalHolidays(schoolID uuid.UUID, startYear int) (int, error) {
	ganjil := schedule.Window{StartYear: startYear, Semester: schedule.SemesterGanjil}
	genap := schedule.Window{StartYear: startYear, Semester: schedule.SemesterGenap}

	created := 0
	for _, h := range fixedHolidays {
		year := startYear
		if h.month < time.July {
			year = startYear + 1
		}
		date := time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC)
		if date.Before(ganjil.Start()) || date.After(genap.End()) {
			continue
		}

		var count int64
		s.db.Model(&models.CalendarEvent{}).
			Where("school_id = ? AND date = ?", schoolID, date).
			Count(&count)
		if count > 0 {
			continue
		}

		event := models.CalendarEvent{
			SchoolID:    schoolID,
			Date:        date,
			Description: h.name,
			Category:    "holiday",
			Year:        startYear,
		}
		if err := s.db.Create(&event).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// EventsForYear lists a school's calendar for one academic year in date
// order.
func (s *CalendarService) EventsForYear(schoolID uuid.UUID, startYear int) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := s.db.Where("school_id = ? AND year = ?", schoolID, startYear).
		Order("date").Find(&events).Error
	return events, err
}
