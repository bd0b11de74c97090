package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"gorm.io/gorm"
)

type TimetableHandler struct {
	db *gorm.DB
}

func NewTimetableHandler(db *gorm.DB) *TimetableHandler {
	return &TimetableHandler{db: db}
}

func (h *TimetableHandler) List(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var schedules []models.WeeklySchedule
	query := h.db.Preload("Class").Where("school_id = ?", schoolID)
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if year, _ := strconv.Atoi(c.Query("year")); year > 0 {
		query = query.Where("year = ?", year)
	}

	if err := query.Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// Upsert creates or replaces the weekly pattern for one class/subject/year.
// All-zero weekdays are allowed: the subject simply has no sessions that
// semester.
func (h *TimetableHandler) Upsert(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var req struct {
		ClassID   string `json:"class_id" binding:"required"`
		Subject   string `json:"subject" binding:"required"`
		Year      int    `json:"year" binding:"required"`
		Monday    int    `json:"monday" binding:"min=0"`
		Tuesday   int    `json:"tuesday" binding:"min=0"`
		Wednesday int    `json:"wednesday" binding:"min=0"`
		Thursday  int    `json:"thursday" binding:"min=0"`
		Friday    int    `json:"friday" binding:"min=0"`
		Saturday  int    `json:"saturday" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class_id"})
		return
	}

	var class models.Class
	if err := h.db.Where("id = ? AND school_id = ?", classID, schoolID).First(&class).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Class not found or access denied"})
		return
	}

	var ws models.WeeklySchedule
	err = h.db.Where("class_id = ? AND subject = ? AND year = ?", classID, req.Subject, req.Year).
		First(&ws).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ws.SchoolID = schoolID
	ws.ClassID = classID
	ws.Subject = req.Subject
	ws.Year = req.Year
	ws.Monday = req.Monday
	ws.Tuesday = req.Tuesday
	ws.Wednesday = req.Wednesday
	ws.Thursday = req.Thursday
	ws.Friday = req.Friday
	ws.Saturday = req.Saturday

	if err := h.db.Save(&ws).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *TimetableHandler) Delete(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).
		Delete(&models.WeeklySchedule{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}
