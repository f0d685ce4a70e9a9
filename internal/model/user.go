package model

import (
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleVolunteer = "volunteer"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// HoursPerLevel is the number of volunteer hours between two levels.
const HoursPerLevel = 100

type User struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	Name           string                      `gorm:"type:varchar(128);not null" json:"name"`
	Email          string                      `gorm:"type:varchar(191);not null;uniqueIndex:uk_users_email" json:"email"`
	PasswordHash   string                      `gorm:"type:varchar(128);not null" json:"-"`
	Role           string                      `gorm:"type:varchar(16);not null;default:volunteer;index:idx_users_role" json:"role"`
	Avatar         string                      `gorm:"type:varchar(512)" json:"avatar"`
	Bio            string                      `gorm:"type:text" json:"bio"`
	Location       string                      `gorm:"type:varchar(255)" json:"location"`
	Interests      datatypes.JSONSlice[string] `json:"interests"`
	Hours          float64                     `gorm:"not null;default:0" json:"hours"`
	Level          int                         `gorm:"not null;default:1" json:"level"`
	Points         int                         `gorm:"not null;default:0" json:"points"`
	ResetTokenHash string                      `gorm:"type:varchar(64);index:idx_users_reset_token" json:"-"`
	ResetExpiresAt *time.Time                  `json:"-"`
	LastLoginAt    *time.Time                  `json:"last_login_at"`
	CreatedAt      time.Time                   `gorm:"index:idx_users_created_at" json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	DeletedAt      gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// LevelForHours is 1 for the first HoursPerLevel hours and grows by one
// for every HoursPerLevel after that.
func LevelForHours(hours float64) int {
	if hours < 0 {
		return 1
	}
	return int(hours/HoursPerLevel) + 1
}

// LevelProgress is the percentage of the way from the current level to the next.
func (u *User) LevelProgress() float64 {
	level := u.Level
	if level < 1 {
		level = 1
	}
	floor := float64((level - 1) * HoursPerLevel)
	p := (u.Hours - floor) / HoursPerLevel * 100
	return math.Max(0, math.Min(100, math.Round(p)))
}

type UserBrief struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Role:   u.Role,
	}
}
