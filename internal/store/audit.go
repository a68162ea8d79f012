package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"inspectroom/internal/models"
)

const auditPageSize = 200

type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record appends an audit entry. Empty ids are stored as NULL.
func (s *AuditStore) Record(ctx context.Context, userID, reportID, action string, metadata any) error {
	entry := models.AuditLog{Action: action, Metadata: models.MustJSONB(metadata)}
	if userID != "" {
		entry.UserID = &userID
	}
	if reportID != "" {
		entry.ReportID = &reportID
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record audit %s: %w", action, err)
	}
	return nil
}

// Recent returns the newest entries, optionally limited to one user.
func (s *AuditStore) Recent(ctx context.Context, userID string) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var logs []models.AuditLog
	if err := q.Order("created_at desc, id desc").Limit(auditPageSize).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return logs, nil
}
