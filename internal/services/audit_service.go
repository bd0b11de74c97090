package services

import (
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/models"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Log(userID uuid.UUID, action, resourceType string, resourceID uuid.UUID, before, after models.JSONB, ip string) error {
	log := &models.AuditLog{
		ActorUserID:  userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Before:       before,
		After:        after,
		IP:           ip,
	}
	return s.db.Create(log).Error
}

// ActivityEntry is an audit row joined with its actor.
type ActivityEntry struct {
	models.AuditLog
	UserName   string `json:"user_name"`
	SchoolName string `json:"school_name,omitempty"`
}

func (s *AuditService) Recent(limit int) ([]ActivityEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var entries []ActivityEntry
	err := s.db.Table("audit_logs").
		Select("audit_logs.*, users.full_name as user_name, schools.name as school_name").
		Joins("LEFT JOIN users ON audit_logs.actor_user_id = users.id").
		Joins("LEFT JOIN schools ON users.school_id = schools.id").
		Order("audit_logs.timestamp DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}
