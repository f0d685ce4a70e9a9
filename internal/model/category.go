package model

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(191);not null;uniqueIndex:uk_categories_slug" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"type:varchar(32)" json:"color"`
	Icon        string    `gorm:"type:varchar(64)" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	ProjectCount int64 `gorm:"-" json:"project_count"`
}

func (Category) TableName() string { return "categories" }
