package model

import "time"

// Bookmark is a (user, lesson) pair, unique per pair
type Bookmark struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	LessonID  uint      `gorm:"primaryKey" json:"lesson_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Lesson Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"lesson,omitempty"`
}
