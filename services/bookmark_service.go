package services

import (
	"context"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkService keeps one bookmark per (user, lesson)
type BookmarkService struct {
	db *gorm.DB
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

// Add bookmarks a published lesson. Adding twice is a no-op.
func (s *BookmarkService) Add(ctx context.Context, userID, lessonID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Lesson{}).
		Where("id = ? AND published = ?", lessonID, true).
		Count(&count).Error
	if err != nil {
		return apperr.Upstream("find lesson", err)
	}
	if count == 0 {
		return apperr.NotFound("lesson")
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Bookmark{UserID: userID, LessonID: lessonID}).Error
	if err != nil {
		return apperr.Upstream("create bookmark", err)
	}
	return nil
}

// IsBookmarked reports whether the user has bookmarked the lesson
func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, lessonID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Upstream("find bookmark", err)
	}
	return count > 0, nil
}

// Remove deletes a bookmark
func (s *BookmarkService) Remove(ctx context.Context, userID, lessonID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&model.Bookmark{})
	if res.Error != nil {
		return apperr.Upstream("delete bookmark", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("bookmark")
	}
	return nil
}

// List returns the user's bookmarks with their lessons, newest first
func (s *BookmarkService) List(ctx context.Context, userID uint) ([]model.Bookmark, error) {
	bookmarks := []model.Bookmark{}
	err := s.db.WithContext(ctx).
		Preload("Lesson", func(db *gorm.DB) *gorm.DB { return db.Omit("content") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, apperr.Upstream("list bookmarks", err)
	}
	return bookmarks, nil
}
