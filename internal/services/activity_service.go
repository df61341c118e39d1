package services

import (
	"log"

	"github.com/school-diary/backend/internal/models"
	"gorm.io/gorm"
)

// ActivityService appends to the activity feed. Logging is best effort and
// must never fail the workflow that triggered it.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Log records an action attributed to an actor label such as "Admin" or a
// school short name. Errors are logged and swallowed.
func (s *ActivityService) Log(action, actor string) {
	entry := &models.Activity{
		Action: action,
		Actor:  actor,
	}
	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("activity log write failed: %v", err)
	}
}

// Recent returns the newest entries, most recent first.
func (s *ActivityService) Recent(limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.Activity
	err := s.db.Order("time DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
