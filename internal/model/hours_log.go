package model

import "time"

// HoursLog is append-only. Nothing in the code base updates or deletes rows.
type HoursLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_hours_logs_user" json:"user_id"`
	ProjectID   uint      `gorm:"not null;index:idx_hours_logs_project" json:"project_id"`
	Hours       float64   `gorm:"not null" json:"hours"`
	Note        string    `gorm:"type:text" json:"note"`
	AwardedByID uint      `gorm:"not null" json:"awarded_by_id"`
	CreatedAt   time.Time `gorm:"index:idx_hours_logs_created_at" json:"created_at"`

	User      *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AwardedBy *User    `gorm:"foreignKey:AwardedByID" json:"awarded_by,omitempty"`
}

func (HoursLog) TableName() string { return "hours_logs" }
