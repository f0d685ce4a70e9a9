package model

import "time"

const (
	ParticipantRegistered = "registered"
	ParticipantInvited    = "invited"
	ParticipantConfirmed  = "confirmed"
	ParticipantRejected   = "rejected"
	ParticipantCompleted  = "completed"
)

type ProjectParticipant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;uniqueIndex:uk_participant_project_user" json:"project_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uk_participant_project_user;index:idx_participants_user" json:"user_id"`
	Status      string    `gorm:"type:varchar(16);not null;default:registered;index:idx_participants_status" json:"status"`
	Hours       float64   `gorm:"not null;default:0" json:"hours"`
	InvitedByID *uint     `json:"invited_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (ProjectParticipant) TableName() string { return "project_participants" }
