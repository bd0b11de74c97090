package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/schedule"
	"github.com/prosemku/backend/internal/services"
	"gorm.io/gorm"
)

var calendarCategories = map[string]bool{
	"holiday":    true,
	"assessment": true,
	"other":      true,
}

type CalendarHandler struct {
	db              *gorm.DB
	calendarService *services.CalendarService
}

func NewCalendarHandler(db *gorm.DB) *CalendarHandler {
	return &CalendarHandler{db: db, calendarService: services.NewCalendarService(db)}
}

func (h *CalendarHandler) List(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))
	if year == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year query parameter required"})
		return
	}

	events, err := h.calendarService.EventsForYear(schoolID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *CalendarHandler) Create(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var req struct {
		Date        string `json:"date" binding:"required"`
		Description string `json:"description" binding:"required"`
		Category    string `json:"category" binding:"required"`
		Year        int    `json:"year" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !calendarCategories[req.Category] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category must be holiday, assessment or other"})
		return
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be dd-mm-yyyy"})
		return
	}

	event := models.CalendarEvent{
		SchoolID:    schoolID,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
		Year:        req.Year,
	}
	if err := h.db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *CalendarHandler) Update(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var event models.CalendarEvent
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&event).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var req struct {
		Date        string `json:"date"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Date != "" {
		date, err := schedule.ParseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be dd-mm-yyyy"})
			return
		}
		event.Date = date
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.Category != "" {
		if !calendarCategories[req.Category] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category must be holiday, assessment or other"})
			return
		}
		event.Category = req.Category
	}

	if err := h.db.Save(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) Delete(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).
		Delete(&models.CalendarEvent{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// SeedHolidays inserts the fixed national holidays for one academic year.
func (h *CalendarHandler) SeedHolidays(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))
	if year == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year query parameter required"})
		return
	}

	created, err := h.calendarService.SeedNationalHolidays(schoolID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// tenantSchoolID pulls the tenant school from the context set by the
// middleware, writing the error response itself on failure.
func tenantSchoolID(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.GetString("tenant_school_id")
	if idStr == "" {
		idStr = c.Query("school_id") // system admin picks the school explicitly
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "School scope required"})
		return uuid.Nil, false
	}
	return id, true
}
