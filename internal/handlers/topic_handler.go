package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/schedule"
	"gorm.io/gorm"
)

type TopicHandler struct {
	db *gorm.DB
}

func NewTopicHandler(db *gorm.DB) *TopicHandler {
	return &TopicHandler{db: db}
}

func (h *TopicHandler) List(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	query := h.db.Preload("SubTopics", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("school_id = ?", schoolID).
		Order("position")
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if year, _ := strconv.Atoi(c.Query("year")); year > 0 {
		query = query.Where("year = ?", year)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}

	var topics []models.Topic
	if err := query.Find(&topics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, topics)
}

type subTopicRequest struct {
	Name        string `json:"name" binding:"required"`
	TargetUnits int    `json:"target_units" binding:"min=0"`
	IsSummative bool   `json:"is_summative"`
}

type topicRequest struct {
	ClassID    string            `json:"class_id" binding:"required"`
	Subject    string            `json:"subject" binding:"required"`
	Year       int               `json:"year" binding:"required"`
	Semester   string            `json:"semester" binding:"required,oneof=ganjil genap"`
	Name       string            `json:"name" binding:"required"`
	TotalUnits int               `json:"total_units" binding:"min=0"`
	Position   int               `json:"position"`
	SubTopics  []subTopicRequest `json:"sub_topics" binding:"required,min=1"`
}

func (h *TopicHandler) Create(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}

	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class_id"})
		return
	}

	topic := models.Topic{
		SchoolID:   schoolID,
		ClassID:    classID,
		Subject:    req.Subject,
		Year:       req.Year,
		Semester:   req.Semester,
		Name:       req.Name,
		TotalUnits: req.TotalUnits,
		Position:   req.Position,
	}
	for i, st := range req.SubTopics {
		topic.SubTopics = append(topic.SubTopics, models.SubTopic{
			Name:        st.Name,
			TargetUnits: st.TargetUnits,
			IsSummative: st.IsSummative,
			Position:    i + 1,
		})
	}

	// The declared total must match the authored sub-topics plus the
	// implicit summative check that scheduling adds.
	if err := validateTopicTotal(&topic); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Create(&topic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *TopicHandler) Get(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	var topic models.Topic
	if err := h.db.Preload("SubTopics", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("id = ? AND school_id = ?", c.Param("id"), schoolID).
		First(&topic).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) Update(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	var topic models.Topic
	if err := h.db.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&topic).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}

	var req struct {
		Name       string `json:"name"`
		TotalUnits *int   `json:"total_units"`
		Position   *int   `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		topic.Name = req.Name
	}
	if req.TotalUnits != nil {
		topic.TotalUnits = *req.TotalUnits
	}
	if req.Position != nil {
		topic.Position = *req.Position
	}

	if err := h.db.Save(&topic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) Delete(c *gin.Context) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var topic models.Topic
		if err := tx.Where("id = ? AND school_id = ?", c.Param("id"), schoolID).First(&topic).Error; err != nil {
			return err
		}
		if err := tx.Where("topic_id = ?", topic.ID).Delete(&models.SubTopicAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("topic_id = ?", topic.ID).Delete(&models.SubTopic{}).Error; err != nil {
			return err
		}
		return tx.Delete(&topic).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Topic deleted"})
}

func validateTopicTotal(topic *models.Topic) error {
	t := schedule.Topic{
		ID:         "new",
		Name:       topic.Name,
		TotalUnits: topic.TotalUnits,
	}
	for _, st := range topic.SubTopics {
		t.SubTopics = append(t.SubTopics, schedule.SubTopic{
			ID:          st.Name,
			Name:        st.Name,
			TargetUnits: st.TargetUnits,
			Summative:   st.IsSummative,
		})
	}
	return schedule.ValidateAllocations([]schedule.Topic{schedule.EnsureSummative(t)})
}
