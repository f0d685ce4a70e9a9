package model

import "time"

type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"type:varchar(64)" json:"icon"`
	Color       string    `gorm:"type:varchar(32)" json:"color"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Achievement) TableName() string { return "achievements" }

type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:uk_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:uk_user_achievement;index:idx_user_achievements_achievement" json:"achievement_id"`
	AwardedByID   uint      `json:"awarded_by_id"`
	Points        int       `gorm:"not null;default:0" json:"points"`
	AwardedAt     time.Time `gorm:"autoCreateTime;index:idx_user_achievements_awarded_at" json:"awarded_at"`

	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Achievement *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (UserAchievement) TableName() string { return "user_achievements" }
