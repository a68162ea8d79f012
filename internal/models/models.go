package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// InspectionRecord is the canonical stored copy of an inspection report.
// Body holds the full aggregate; the other columns are kept for listing.
type InspectionRecord struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	ScheduledByID string    `gorm:"size:36;index;not null" json:"scheduled_by_id"`
	IsComplete    bool      `gorm:"not null;default:false" json:"is_complete"`
	FinalStatus   *string   `json:"final_status,omitempty"`
	Body          JSONB     `gorm:"type:jsonb" json:"body"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r *InspectionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *string   `gorm:"size:64;index" json:"user_id,omitempty"`
	ReportID  *string   `gorm:"size:36;index" json:"report_id,omitempty"`
	Action    string    `gorm:"not null" json:"action"`
	Metadata  JSONB     `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// Session backs an issued JWT so that logout can revoke it.
type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"size:64;index;not null" json:"user_id"`
	Role      string     `gorm:"not null" json:"role"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &InspectionRecord{}, &AuditLog{}, &Session{}}
}
