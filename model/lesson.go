package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Difficulty is the declared level of a lesson
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Lesson is a unit of catalog content. An unpublished lesson authored by a
// regular user is the draft behind an upload awaiting moderation.
type Lesson struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null" json:"title"`
	Slug            string         `gorm:"type:varchar(160);uniqueIndex;not null" json:"slug"`
	Description     string         `gorm:"type:text" json:"description"`
	Content         string         `gorm:"type:text" json:"content,omitempty"`
	Published       bool           `gorm:"default:false;index" json:"published"`
	Difficulty      Difficulty     `gorm:"type:varchar(20);default:'beginner'" json:"difficulty"`
	Views           int64          `gorm:"default:0;not null" json:"views"`
	Tags            datatypes.JSON `json:"tags,omitempty"`
	SEOTitle        string         `gorm:"type:varchar(60)" json:"seo_title,omitempty"`
	MetaDescription string         `gorm:"type:varchar(160)" json:"meta_description,omitempty"`
	AuthorID        uint           `gorm:"not null;index" json:"author_id"`
	SubjectID       *uint          `gorm:"index:idx_lesson_subject_created" json:"subject_id,omitempty"`
	CreatedAt       time.Time      `gorm:"index:idx_lesson_subject_created" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Relationships
	Author  User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Subject *Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:SET NULL" json:"subject,omitempty"`
}

// TagList decodes the stored JSON tag array
func (l *Lesson) TagList() []string {
	if len(l.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(l.Tags, &tags); err != nil {
		return nil
	}
	return tags
}

// SetTags encodes tags into the JSON column
func (l *Lesson) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	l.Tags = datatypes.JSON(raw)
}
