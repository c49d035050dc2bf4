package model

import (
	"time"
)

// University is the root of the catalog hierarchy
type University struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	City      string    `gorm:"type:varchar(120)" json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Faculties []Faculty `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"faculties,omitempty"`
}

// Faculty belongs to a University. Slugs are unique per university.
type Faculty struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UniversityID uint      `gorm:"not null;uniqueIndex:idx_faculty_university_slug" json:"university_id"`
	Name         string    `gorm:"not null" json:"name"`
	Slug         string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_faculty_university_slug" json:"slug"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	University University `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"-"`
	Programs   []Program  `gorm:"foreignKey:FacultyID;constraint:OnDelete:CASCADE" json:"programs,omitempty"`
}

// Program is a degree program inside a Faculty. Slugs are unique per faculty.
type Program struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FacultyID uint      `gorm:"not null;uniqueIndex:idx_program_faculty_slug" json:"faculty_id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_program_faculty_slug" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Faculty   Faculty    `gorm:"foreignKey:FacultyID;constraint:OnDelete:CASCADE" json:"-"`
	Semesters []Semester `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"semesters,omitempty"`
}

// Semester is an ordered term of a Program. Name ("S1") and Order are each
// unique within the program.
type Semester struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProgramID uint      `gorm:"not null;uniqueIndex:idx_semester_program_order;uniqueIndex:idx_semester_program_name" json:"program_id"`
	Name      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_semester_program_name" json:"name"`
	Order     int       `gorm:"column:sort_order;not null;uniqueIndex:idx_semester_program_order" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Program  Program   `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"-"`
	Subjects []Subject `gorm:"foreignKey:SemesterID;constraint:OnDelete:SET NULL" json:"subjects,omitempty"`
}

// Subject groups lessons. It may live outside the hierarchy (nil SemesterID).
type Subject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SemesterID  *uint     `gorm:"index" json:"semester_id,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"type:varchar(20)" json:"color"`
	Icon        string    `gorm:"type:varchar(50)" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Semester *Semester `gorm:"foreignKey:SemesterID;constraint:OnDelete:SET NULL" json:"semester,omitempty"`
	Lessons  []Lesson  `gorm:"foreignKey:SubjectID;constraint:OnDelete:SET NULL" json:"lessons,omitempty"`
}
