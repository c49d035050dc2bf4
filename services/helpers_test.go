package services

import (
	"testing"
	"time"

	"github.com/sahilchouksey/scholarhub/database"
	"github.com/sahilchouksey/scholarhub/model"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email, Role: role, PasswordHash: "x"}
	mustCreate(t, db, u)
	return u
}

func createSubject(t *testing.T, db *gorm.DB, slug string, semesterID *uint) *model.Subject {
	t.Helper()
	s := &model.Subject{Name: slug, Slug: slug, SemesterID: semesterID}
	mustCreate(t, db, s)
	return s
}

// createLesson inserts a lesson with an explicit creation time so ordering
// tests do not depend on clock resolution.
func createLesson(t *testing.T, db *gorm.DB, slug string, subjectID *uint, authorID uint, published bool, createdAt time.Time) *model.Lesson {
	t.Helper()
	l := &model.Lesson{
		Title:      slug,
		Slug:       slug,
		Published:  published,
		Difficulty: model.DifficultyBeginner,
		AuthorID:   authorID,
		SubjectID:  subjectID,
		CreatedAt:  createdAt,
	}
	mustCreate(t, db, l)
	return l
}

func uintPtr(v uint) *uint { return &v }

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}
