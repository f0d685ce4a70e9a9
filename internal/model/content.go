package model

import "time"

const (
	KindNews  = "news"
	KindStory = "story"
)

// Article backs both news items and volunteer stories; Kind tells them apart.
type Article struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Kind        string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_articles_kind_slug,priority:1;index:idx_articles_kind_published,priority:1" json:"kind"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string    `gorm:"type:varchar(191);not null;uniqueIndex:uk_articles_kind_slug,priority:2" json:"slug"`
	Excerpt     string    `gorm:"type:text" json:"excerpt"`
	Content     string    `gorm:"type:text" json:"content"`
	Image       string    `gorm:"type:varchar(512)" json:"image"`
	Featured    bool      `gorm:"not null;default:false" json:"featured"`
	AuthorID    uint      `json:"author_id"`
	PublishedAt time.Time `gorm:"index:idx_articles_kind_published,priority:2" json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Article) TableName() string { return "articles" }
