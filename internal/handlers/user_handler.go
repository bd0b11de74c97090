package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/services"
	"gorm.io/gorm"
)

type UserHandler struct {
	db           *gorm.DB
	authService  *services.AuthService
	auditService *services.AuditService
}

func NewUserHandler(db *gorm.DB, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		db:           db,
		authService:  authService,
		auditService: services.NewAuditService(db),
	}
}

func (h *UserHandler) List(c *gin.Context) {
	query := h.db.Preload("School").Order("full_name")
	if schoolID := c.Query("school_id"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Pending lists teacher accounts waiting for approval.
func (h *UserHandler) Pending(c *gin.Context) {
	query := h.db.Preload("School").Where("is_approved = ?", false).Order("created_at")
	if schoolID := c.Query("school_id"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Approve lets an admin activate a self-registered teacher account.
func (h *UserHandler) Approve(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	if err := h.authService.Approve(userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if actorID, exists := c.Get("user_id"); exists {
		h.auditService.Log(actorID.(uuid.UUID), "APPROVE", "user", userID, nil, nil, c.ClientIP())
	}

	c.JSON(http.StatusOK, gin.H{"message": "User approved"})
}

func (h *UserHandler) Create(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		FullName string `json:"full_name" binding:"required"`
		NIP      string `json:"nip"`
		Role     string `json:"role" binding:"required,oneof=system_admin school_admin teacher"`
		SchoolID string `json:"school_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != "system_admin" && req.SchoolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "School assignment required for non-system admin users"})
		return
	}

	// Admin-created users skip the approval queue.
	user := &models.User{
		Email:      req.Email,
		FullName:   req.FullName,
		NIP:        req.NIP,
		Role:       req.Role,
		IsActive:   true,
		IsApproved: true,
	}
	if req.Role != "system_admin" {
		schoolID, err := uuid.Parse(req.SchoolID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid school_id"})
			return
		}
		user.SchoolID = &schoolID
	}

	if err := h.authService.CreateUser(user, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if actorID, exists := c.Get("user_id"); exists {
		h.auditService.Log(actorID.(uuid.UUID), "CREATE", "user", user.ID, nil, models.JSONB{"name": user.FullName, "role": user.Role}, c.ClientIP())
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	var user models.User
	if err := h.db.Preload("School").First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		NIP      string `json:"nip"`
		Role     string `json:"role"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.NIP != "" {
		user.NIP = req.NIP
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if actorID, exists := c.Get("user_id"); exists {
		h.auditService.Log(actorID.(uuid.UUID), "UPDATE", "user", user.ID, nil, models.JSONB{"name": user.FullName}, c.ClientIP())
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if actorID, exists := c.Get("user_id"); exists {
		h.auditService.Log(actorID.(uuid.UUID), "DELETE", "user", user.ID, models.JSONB{"name": user.FullName}, nil, c.ClientIP())
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
