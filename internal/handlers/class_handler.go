package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"gorm.io/gorm"
)

type ClassHandler struct {
	db *gorm.DB
}

func NewClassHandler(db *gorm.DB) *ClassHandler {
	return &ClassHandler{db: db}
}

func (h *ClassHandler) List(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	query := h.db.Preload("Teacher").Where("school_id = ?", schoolID).Order("grade, name")
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}
	if grade := c.Query("grade"); grade != "" {
		query = query.Where("grade = ?", grade)
	}

	var classes []models.Class
	if err := query.Find(&classes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, classes)
}

type classRequest struct {
	Name      string `json:"name" binding:"required"`
	Grade     int    `json:"grade" binding:"required,min=1,max=6"`
	Year      int    `json:"year" binding:"required"`
	TeacherID string `json:"teacher_id"`
}

func (h *ClassHandler) Create(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class := models.Class{
		SchoolID: schoolID,
		Name:     req.Name,
		Grade:    req.Grade,
		Year:     req.Year,
	}
	if req.TeacherID != "" {
		teacherID, ok := parseTeacherID(c, h.db, schoolID, req.TeacherID)
		if !ok {
			return
		}
		class.TeacherID = &teacherID
	}

	if err := h.db.Create(&class).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *ClassHandler) Get(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	var class models.Class
	if err := h.db.Preload("Teacher").Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *ClassHandler) Update(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	var class models.Class
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	var req struct {
		Name      string  `json:"name"`
		Grade     *int    `json:"grade"`
		Year      *int    `json:"year"`
		TeacherID *string `json:"teacher_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		class.Name = req.Name
	}
	if req.Grade != nil {
		class.Grade = *req.Grade
	}
	if req.Year != nil {
		class.Year = *req.Year
	}
	if req.TeacherID != nil {
		if *req.TeacherID == "" {
			class.TeacherID = nil
		} else {
			teacherID, ok := parseTeacherID(c, h.db, schoolID, *req.TeacherID)
			if !ok {
				return
			}
			class.TeacherID = &teacherID
		}
	}

	if err := h.db.Save(&class).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, class)
}

// parseTeacherID resolves a teacher reference and checks the teacher
// belongs to the tenant school. Writes the error response on failure.
func parseTeacherID(c *gin.Context, db *gorm.DB, schoolID uuid.UUID, raw string) (uuid.UUID, bool) {
	teacherID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher_id"})
		return uuid.Nil, false
	}
	var teacher models.User
	if err := db.Where("id = ? AND school_id = ?", teacherID, schoolID).First(&teacher).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return uuid.Nil, false
	}
	return teacherID, true
}

func (h *ClassHandler) GetStudents(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	var students []models.Student
	if err := h.db.Where("class_id = ? AND school_id = ?", c.Param("id"), schoolID).
		Order("full_name").
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}
