package model

import (
	"time"
)

// Roles are the sole authorization axis
const (
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is a known role
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `gorm:"type:varchar(20);default:'student';index" json:"role"`
	TokenVersion int       `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	Bookmarks []Bookmark `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Uploads   []Upload   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
