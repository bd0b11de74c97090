package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/services"
	"gorm.io/gorm"
)

type SchoolHandler struct {
	db           *gorm.DB
	setupService *services.SchoolSetupService
	auditService *services.AuditService
}

func NewSchoolHandler(db *gorm.DB) *SchoolHandler {
	return &SchoolHandler{
		db:           db,
		setupService: services.NewSchoolSetupService(db),
		auditService: services.NewAuditService(db),
	}
}

func (h *SchoolHandler) List(c *gin.Context) {
	var schools []models.School
	if err := h.db.Order("name").Find(&schools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schools)
}

func (h *SchoolHandler) Create(c *gin.Context) {
	var school models.School
	if err := c.ShouldBindJSON(&school); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if school.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.db.Create(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if userID, exists := c.Get("user_id"); exists {
		h.auditService.Log(userID.(uuid.UUID), "CREATE", "school", school.ID, nil, models.JSONB{"name": school.Name}, c.ClientIP())
	}

	// Provision default classes and the national holiday calendar so a
	// fresh school can run the scheduler immediately.
	if err := h.setupService.SetupSchool(&school, academicStartYear(time.Now())); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to setup school: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, school)
}

func (h *SchoolHandler) Get(c *gin.Context) {
	var school models.School
	if err := h.db.First(&school, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}
	c.JSON(http.StatusOK, school)
}

func (h *SchoolHandler) Update(c *gin.Context) {
	var school models.School
	if err := h.db.First(&school, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	var updateData models.School
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	school.Name = updateData.Name
	school.NPSN = updateData.NPSN
	school.Address = updateData.Address
	school.Province = updateData.Province
	school.Regency = updateData.Regency
	school.ContactEmail = updateData.ContactEmail
	school.Phone = updateData.Phone
	school.LogoURL = updateData.LogoURL
	school.PrincipalName = updateData.PrincipalName
	school.PrincipalNIP = updateData.PrincipalNIP
	school.Config = updateData.Config

	if err := h.db.Save(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, school)
}

// SetupSchool provisions default classes and holidays for an existing school.
func (h *SchoolHandler) SetupSchool(c *gin.Context) {
	var school models.School
	if err := h.db.First(&school, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	if err := h.setupService.SetupSchool(&school, academicStartYear(time.Now())); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to setup school: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "School setup completed"})
}

func (h *SchoolHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	var school models.School
	if err := h.db.First(&school, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	// Cascade delete in dependency order.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("school_id = ?", id).Delete(&models.SubTopicAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM sub_topics WHERE topic_id IN (SELECT id FROM topics WHERE school_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.Topic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.ScheduleRun{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.WeeklySchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.CalendarEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.Student{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.Class{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ? AND role != 'system_admin'", id).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&school).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete school: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "School and all related data deleted"})
}

func (h *SchoolHandler) GetStats(c *gin.Context) {
	type Stats struct {
		TotalSchools  int64            `json:"total_schools"`
		TotalUsers    int64            `json:"total_users"`
		TotalStudents int64            `json:"total_students"`
		PendingUsers  int64            `json:"pending_users"`
		UsersByRole   map[string]int64 `json:"users_by_role"`
		RunsBySchool  []struct {
			SchoolName string `json:"school_name"`
			RunCount   int64  `json:"run_count"`
		} `json:"runs_by_school"`
	}

	stats := Stats{UsersByRole: make(map[string]int64)}

	var userRoleResults []struct {
		Role  string
		Count int64
	}
	h.db.Model(&models.User{}).Select("role, COUNT(*) as count").Group("role").Scan(&userRoleResults)
	for _, result := range userRoleResults {
		stats.UsersByRole[result.Role] = result.Count
	}

	h.db.Model(&models.School{}).
		Select("schools.name as school_name, COUNT(schedule_runs.id) as run_count").
		Joins("LEFT JOIN schedule_runs ON schools.id = schedule_runs.school_id").
		Group("schools.id, schools.name").
		Scan(&stats.RunsBySchool)

	h.db.Model(&models.School{}).Count(&stats.TotalSchools)
	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.Student{}).Count(&stats.TotalStudents)
	h.db.Model(&models.User{}).Where("is_approved = ?", false).Count(&stats.PendingUsers)

	c.JSON(http.StatusOK, stats)
}

// academicStartYear maps a wall-clock date to the academic year it falls
// in. July onward belongs to the year that just started.
func academicStartYear(now time.Time) int {
	if now.Month() >= time.July {
		return now.Year()
	}
	return now.Year() - 1
}
