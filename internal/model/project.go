package model

import "time"

const (
	ProjectUpcoming  = "upcoming"
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectUpcoming, ProjectActive, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string     `gorm:"type:varchar(191);not null;uniqueIndex:uk_projects_slug" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	Image       string     `gorm:"type:varchar(512)" json:"image"`
	Location    string     `gorm:"type:varchar(255)" json:"location"`
	StartDate   *time.Time `gorm:"index:idx_projects_start_date" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      string     `gorm:"type:varchar(16);not null;default:upcoming;index:idx_projects_status" json:"status"`
	CategoryID  *uint      `gorm:"index:idx_projects_category" json:"category_id"`
	CreatedByID uint       `gorm:"index:idx_projects_created_by" json:"created_by_id"`
	CreatedAt   time.Time  `gorm:"index:idx_projects_created_at" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Category     *Category            `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Participants []ProjectParticipant `gorm:"foreignKey:ProjectID" json:"participants,omitempty"`

	VolunteerCount int64 `gorm:"-" json:"volunteer_count"`
}

func (Project) TableName() string { return "projects" }
