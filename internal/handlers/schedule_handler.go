package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/schedule"
	"github.com/prosemku/backend/internal/services"
	"gorm.io/gorm"
)

type ScheduleHandler struct {
	db  *gorm.DB
	svc *services.ScheduleService
}

func NewScheduleHandler(db *gorm.DB, svc *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{db: db, svc: svc}
}

type runRequest struct {
	ClassID  string `json:"class_id" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	Year     int    `json:"year" binding:"required"`
	Semester string `json:"semester" binding:"required,oneof=ganjil genap"`
	UseAI    bool   `json:"use_ai"`
}

// Run executes a scheduling run for one class/subject/semester scope and
// returns the run record plus the fresh assignments.
// @Summary Run the semester scheduler
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body runRequest true "Run scope"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /schedule/run [post]
func (h *ScheduleHandler) Run(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var req runRequest
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

	userID, _ := c.Get("user_id")
	runBy, _ := userID.(uuid.UUID)

	run, assignments, err := h.svc.Run(c.Request.Context(), services.RunInput{
		SchoolID: schoolID,
		ClassID:  classID,
		Subject:  req.Subject,
		Year:     req.Year,
		Semester: schedule.Semester(req.Semester),
		RunBy:    runBy,
		UseAI:    req.UseAI,
	})
	if err != nil {
		var mismatch *schedule.AllocationMismatchError
		switch {
		case errors.As(err, &mismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": mismatch.Error()})
		case errors.Is(err, services.ErrNoTopics), errors.Is(err, services.ErrNoWeeklySchedule):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "assignments": assignments})
}

// Assignments returns the stored assignments for a scope, grouped under
// their topics in curriculum order.
func (h *ScheduleHandler) Assignments(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	year, _ := strconv.Atoi(c.Query("year"))
	semester := c.Query("semester")
	if year == 0 || semester == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and semester are required"})
		return
	}

	query := h.db.Preload("SubTopic").
		Where("sub_topic_assignments.school_id = ? AND sub_topic_assignments.year = ? AND sub_topic_assignments.semester = ?", schoolID, year, semester).
		Joins("JOIN topics ON topics.id = sub_topic_assignments.topic_id").
		Order("topics.position, sub_topic_assignments.created_at")
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("topics.class_id = ?", classID)
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("topics.subject = ?", subject)
	}

	var assignments []models.SubTopicAssignment
	if err := query.Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assignments)
}

type assignmentEditRequest struct {
	Units     *int             `json:"units"`
	NotesText *string          `json:"notes_text"`
	Slots     []map[string]int `json:"slots"`
}

// UpdateAssignment lets a teacher hand-correct one assignment after a run:
// toggle grid cells, adjust units, or rewrite the date notes. Notes go
// through the normalizer so hand-typed lists come back sorted and clean.
func (h *ScheduleHandler) UpdateAssignment(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var assignment models.SubTopicAssignment
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&assignment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	var req assignmentEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Units != nil {
		assignment.Units = *req.Units
	}
	if req.NotesText != nil {
		assignment.NotesText = schedule.NormalizeAndSortDates(*req.NotesText)
	}
	if req.Slots != nil {
		var grid schedule.SlotGrid
		for _, slot := range req.Slots {
			key := schedule.SlotKey{Month: slot["month"], Week: slot["week"]}
			if key.Month < 1 || key.Month > schedule.GridMonths || key.Week < 1 || key.Week > schedule.GridWeeks {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Slot out of range"})
				return
			}
			grid.Set(key)
		}
		active := make([]map[string]int, 0, len(req.Slots))
		for _, key := range grid.Keys() {
			active = append(active, map[string]int{"month": key.Month, "week": key.Week})
		}
		assignment.SlotGrid = models.JSONB{"active": active}
	}
	assignment.Source = "manual"

	if err := h.db.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// Runs lists past scheduling runs for the tenant, newest first.
func (h *ScheduleHandler) Runs(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	query := h.db.Where("school_id = ?", schoolID).Order("created_at DESC").Limit(50)
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	var runs []models.ScheduleRun
	if err := query.Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// AssessmentWindow returns the end-of-semester assessment window resolved
// from the calendar, e.g. "10-12-2025 sampai 12-12-2025".
func (h *ScheduleHandler) AssessmentWindow(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	year, _ := strconv.Atoi(c.Query("year"))
	semester := schedule.Semester(c.Query("semester"))
	if year == 0 || (semester != schedule.SemesterGanjil && semester != schedule.SemesterGenap) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and semester are required"})
		return
	}

	window, err := h.svc.AssessmentWindow(schoolID, year, semester)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, window)
}
