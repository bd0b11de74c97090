package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"gorm.io/gorm"
)

type SchoolSetupService struct {
	db                    *gorm.DB
	subjectService        *StandardSubjectService
	calendarService       *CalendarService
	userAssignmentService *UserAssignmentService
}

func NewSchoolSetupService(db *gorm.DB) *SchoolSetupService {
	return &SchoolSetupService{
		db:                    db,
		subjectService:        NewStandardSubjectService(db),
		calendarService:       NewCalendarService(db),
		userAssignmentService: NewUserAssignmentService(db),
	}
}

// SetupSchool provisions a fresh school: one class per grade, a blank
// weekly schedule for every standard subject, and the national holiday
// calendar for the academic year. Safe to call again; existing rows are
// kept.
func (s *SchoolSetupService) SetupSchool(school *models.School, startYear int) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		classes, err := s.createClasses(tx, school.ID, startYear)
		if err != nil {
			return fmt.Errorf("failed to create classes: %w", err)
		}
		for _, class := range classes {
			if err := s.subjectService.CreateWeeklySchedules(tx, school.ID, class, startYear); err != nil {
				return fmt.Errorf("failed to create weekly schedules: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := s.calendarService.SeedNationalHolidays(school.ID, startYear); err != nil {
		return fmt.Errorf("failed to seed holidays: %w", err)
	}

	var admins int64
	s.db.Model(&models.User{}).Where("school_id = ? AND role = 'school_admin'", school.ID).Count(&admins)
	if admins == 0 {
		if _, err := s.userAssignmentService.CreateSchoolAdmin(school.ID, school.Name); err != nil {
			return fmt.Errorf("failed to create school admin: %w", err)
		}
	}
	return nil
}

// createClasses makes one rombongan belajar per grade 1..6.
func (s *SchoolSetupService) createClasses(tx *gorm.DB, schoolID uuid.UUID, startYear int) ([]models.Class, error) {
	var classes []models.Class
	for grade := 1; grade <= 6; grade++ {
		var class models.Class
		err := tx.Where("school_id = ? AND grade = ? AND year = ?", schoolID, grade, startYear).First(&class).Error
		if err == nil {
			classes = append(classes, class)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		class = models.Class{
			SchoolID: schoolID,
			Name:     fmt.Sprintf("Kelas %d", grade),
			Grade:    grade,
			Year:     startYear,
		}
		if err := tx.Create(&class).Error; err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}
