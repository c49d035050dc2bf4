package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/auth"
	"gorm.io/gorm"
)

const (
	rejectedDraftRetention = 30 * 24 * time.Hour
	cronLogRetention       = 90 * 24 * time.Hour
)

// CleanupRevokedTokens removes blacklist entries whose tokens have expired
func (m *CronManager) CleanupRevokedTokens(ctx context.Context) (string, error) {
	removed, err := auth.NewBlacklistService(m.db).CleanupExpiredTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("cleanup token blacklist: %w", err)
	}
	return fmt.Sprintf("removed %d expired tokens", removed), nil
}

// CleanupOldData deletes the unpublished drafts of uploads rejected more than
// 30 days ago and trims cron logs older than 90 days. The upload rows stay.
func (m *CronManager) CleanupOldData(ctx context.Context) (string, error) {
	var drafts int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lessonIDs []uint
		err := tx.Model(&model.Upload{}).
			Where("status = ? AND decided_at < ? AND lesson_id IS NOT NULL", model.UploadStatusRejected, time.Now().Add(-rejectedDraftRetention)).
			Pluck("lesson_id", &lessonIDs).Error
		if err != nil {
			return fmt.Errorf("find rejected drafts: %w", err)
		}
		if len(lessonIDs) == 0 {
			return nil
		}

		if err := tx.Model(&model.Upload{}).Where("lesson_id IN ?", lessonIDs).Update("lesson_id", nil).Error; err != nil {
			return fmt.Errorf("unlink rejected drafts: %w", err)
		}
		res := tx.Where("id IN ? AND published = ?", lessonIDs, false).Delete(&model.Lesson{})
		if res.Error != nil {
			return fmt.Errorf("delete rejected drafts: %w", res.Error)
		}
		drafts = res.RowsAffected
		return nil
	})
	if err != nil {
		return "", err
	}

	res := m.db.WithContext(ctx).Where("created_at < ?", time.Now().Add(-cronLogRetention)).Delete(&model.CronJobLog{})
	if res.Error != nil {
		return "", fmt.Errorf("cleanup cron logs: %w", res.Error)
	}

	return fmt.Sprintf("removed %d rejected drafts, %d cron logs", drafts, res.RowsAffected), nil
}

// WarmAdminStats recomputes the dashboard counts into the cache
func (m *CronManager) WarmAdminStats(ctx context.Context) (string, error) {
	stats, err := m.admin.RefreshStats(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("users=%d lessons=%d subjects=%d pending=%d",
		stats.UserCount, stats.PublishedLessonCount, stats.SubjectCount, stats.PendingUploadCount), nil
}
