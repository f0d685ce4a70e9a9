package model

import "time"

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

type ProjectInvitation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;index:idx_invitations_project_user,priority:1" json:"project_id"`
	UserID      uint      `gorm:"not null;index:idx_invitations_project_user,priority:2;index:idx_invitations_user" json:"user_id"`
	InvitedByID uint      `gorm:"not null" json:"invited_by_id"`
	Status      string    `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Message     string    `gorm:"type:text" json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User      *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	InvitedBy *User    `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
}

func (ProjectInvitation) TableName() string { return "project_invitations" }
