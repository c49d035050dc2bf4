package model

import (
	"time"
)

// UploadStatus is the moderation state of an upload
type UploadStatus string

const (
	UploadStatusPending  UploadStatus = "pending"
	UploadStatusApproved UploadStatus = "approved"
	UploadStatusRejected UploadStatus = "rejected"
)

// Terminal reports whether no further transition is allowed
func (s UploadStatus) Terminal() bool {
	return s == UploadStatusApproved || s == UploadStatusRejected
}

// Upload is a user-submitted candidate lesson awaiting moderation.
// Status only moves forward: pending -> approved | rejected.
type Upload struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      UploadStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Reason      *string      `gorm:"type:text" json:"reason"`
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	SubjectID   uint         `gorm:"not null;index" json:"subject_id"`
	LessonID    *uint        `gorm:"index" json:"lesson_id,omitempty"`
	FileName    string       `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	FileKey     string       `gorm:"type:varchar(500)" json:"file_key,omitempty"`
	FileURL     string       `gorm:"type:text" json:"file_url,omitempty"`
	DecidedBy   *uint        `json:"decided_by,omitempty"`
	DecidedAt   *time.Time   `json:"decided_at,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Lesson  *Lesson  `gorm:"foreignKey:LessonID;constraint:OnDelete:SET NULL" json:"lesson,omitempty"`
}
