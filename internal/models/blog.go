package models

import (
	"time"

	"gorm.io/gorm"
)

// Theme is the visual theme a blog post is rendered with.
type Theme string

const (
	ThemeLight   Theme = "light"
	ThemeDark    Theme = "dark"
	ThemeVincent Theme = "vincent"
)

// Valid reports whether t is one of the supported themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeVincent:
		return true
	}
	return false
}

// Blog represents a single blog post. The author reference is set at creation
// and never changes; Share only moves via the atomic increment in the
// repository.
type Blog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"not null" json:"description"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Theme       Theme          `gorm:"not null;default:light" json:"theme"`
	AuthorID    uint           `gorm:"not null" json:"author_id"`
	Author      User           `gorm:"foreignKey:AuthorID" json:"author"`
	Share       int            `gorm:"not null;default:0" json:"share"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
