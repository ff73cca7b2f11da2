package models

import "time"

// WorkLog is a single dated, hour-valued record of work against a project
// and category. Hours travel and persist as a decimal string with at most
// two fraction digits; arithmetic on them never goes through float64, and
// the column stays textual so the stored literal survives round trips on
// any backend. Work logs are hard-deleted, unlike the soft-deleted
// reference entities.
type WorkLog struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	UserID     uint64    `gorm:"not null;index" json:"user_id"`
	Date       time.Time `gorm:"type:date;not null;index" json:"date"`
	Hours      string    `gorm:"type:varchar(6);not null" json:"hours"`
	ProjectID  uint64    `gorm:"not null;index" json:"project_id"`
	CategoryID uint64    `gorm:"not null;index" json:"category_id"`
	Details    string    `gorm:"type:varchar(1000)" json:"details"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	User     User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project  Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Category WorkCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
