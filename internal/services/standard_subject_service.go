package services

import (
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"gorm.io/gorm"
)

// StandardSubject is one Kurikulum Merdeka subject and the grades it is
// taught in.
type StandardSubject struct {
	Name     string
	MinGrade int
	MaxGrade int
}

// standardSubjects is the SD (elementary) subject catalog. Mulok (local
// content) varies by region and is left for schools to add themselves.
var standardSubjects = []StandardSubject{
	{Name: "Pendidikan Agama dan Budi Pekerti", MinGrade: 1, MaxGrade: 6},
	{Name: "Pendidikan Pancasila", MinGrade: 1, MaxGrade: 6},
	{Name: "Bahasa Indonesia", MinGrade: 1, MaxGrade: 6},
	{Name: "Matematika", MinGrade: 1, MaxGrade: 6},
	{Name: "IPAS", MinGrade: 3, MaxGrade: 6},
	{Name: "Seni Budaya", MinGrade: 1, MaxGrade: 6},
	{Name: "PJOK", MinGrade: 1, MaxGrade: 6},
	{Name: "Bahasa Inggris", MinGrade: 1, MaxGrade: 6},
}

type StandardSubjectService struct {
	db *gorm.DB
}

func NewStandardSubjectService(db *gorm.DB) *StandardSubjectService {
	return &StandardSubjectService{db: db}
}

// SubjectsForGrade returns the standard subjects taught in one grade.
func (s *StandardSubjectService) SubjectsForGrade(grade int) []string {
	var names []string
	for _, subject := range standardSubjects {
		if grade >= subject.MinGrade && grade <= subject.MaxGrade {
			names = append(names, subject.Name)
		}
	}
	return names
}

// CreateWeeklySchedules creates a blank weekly schedule row for every
// standard subject of the class's grade. Teachers fill in the per-day
// session counts afterward. Existing rows are left alone.
func (s *StandardSubjectService) CreateWeeklySchedules(tx *gorm.DB, schoolID uuid.UUID, class models.Class, year int) error {
	for _, subject := range s.SubjectsForGrade(class.Grade) {
		var existing models.WeeklySchedule
		err := tx.Where("class_id = ? AND subject = ? AND year = ?", class.ID, subject, year).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		schedule := models.WeeklySchedule{
			SchoolID: schoolID,
			ClassID:  class.ID,
			Subject:  subject,
			Year:     year,
		}
		if err := tx.Create(&schedule).Error; err != nil {
			return err
		}
	}
	return nil
}
