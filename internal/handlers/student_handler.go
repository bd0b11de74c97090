package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"gorm.io/gorm"
)

type StudentHandler struct {
	db *gorm.DB
}

func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{db: db}
}

func (h *StudentHandler) List(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	query := h.db.Preload("Class").Where("school_id = ?", schoolID).Order("full_name")
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if nisn := c.Query("nisn"); nisn != "" {
		query = query.Where("nisn = ?", nisn)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}

type studentRequest struct {
	NISN     string `json:"nisn" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Gender   string `json:"gender" binding:"omitempty,oneof=L P"`
	ClassID  string `json:"class_id"`
}

func (h *StudentHandler) Create(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := models.Student{
		SchoolID: schoolID,
		NISN:     req.NISN,
		FullName: req.FullName,
		Gender:   req.Gender,
	}
	if req.ClassID != "" {
		classID, ok := h.resolveClass(c, schoolID, req.ClassID)
		if !ok {
			return
		}
		student.ClassID = &classID
	}

	if err := h.db.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (h *StudentHandler) Get(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	var student models.Student
	if err := h.db.Preload("Class").Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&student).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Update(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	var student models.Student
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&student).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var req struct {
		NISN     string  `json:"nisn"`
		FullName string  `json:"full_name"`
		Gender   string  `json:"gender"`
		ClassID  *string `json:"class_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NISN != "" {
		student.NISN = req.NISN
	}
	if req.FullName != "" {
		student.FullName = req.FullName
	}
	if req.Gender != "" {
		student.Gender = req.Gender
	}
	if req.ClassID != nil {
		if *req.ClassID == "" {
			student.ClassID = nil
		} else {
			classID, ok := h.resolveClass(c, schoolID, *req.ClassID)
			if !ok {
				return
			}
			student.ClassID = &classID
		}
	}

	if err := h.db.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Delete(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).Delete(&models.Student{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

func (h *StudentHandler) resolveClass(c *gin.Context, schoolID uuid.UUID, raw string) (uuid.UUID, bool) {
	classID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class_id"})
		return uuid.Nil, false
	}
	var class models.Class
	if err := h.db.Where("id = ? AND school_id = ?", classID, schoolID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return uuid.Nil, false
	}
	return classID, true
}
