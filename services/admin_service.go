package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"github.com/sahilchouksey/scholarhub/utils/cache"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/sahilchouksey/scholarhub/utils/query"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

// AdminService backs the admin console: dashboard counts, paginated
// directories and user management
type AdminService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *logger.Logger
}

// NewAdminService creates a new admin service. cache may be nil.
func NewAdminService(db *gorm.DB, c cache.Cache, log *logger.Logger) *AdminService {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminService{db: db, cache: c, log: log}
}

// Stats are four independent point-in-time counts. They are taken
// concurrently and may disagree with each other under concurrent writes.
type Stats struct {
	UserCount            int64 `json:"user_count"`
	PublishedLessonCount int64 `json:"published_lesson_count"`
	SubjectCount         int64 `json:"subject_count"`
	PendingUploadCount   int64 `json:"pending_upload_count"`
}

// Stats returns the dashboard counts, served from cache for up to 30s
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		var cached Stats
		err := cache.GetJSON(ctx, s.cache, statsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.log.Warn("stats cache read failed", "error", err)
		}
	}
	return s.RefreshStats(ctx)
}

// RefreshStats recomputes the counts and stores them in the cache
func (s *AdminService) RefreshStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&model.User{}).Count(&stats.UserCount).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&model.Lesson{}).
			Where("published = ?", true).
			Count(&stats.PublishedLessonCount).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&model.Subject{}).Count(&stats.SubjectCount).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&model.Upload{}).
			Where("status = ?", model.UploadStatusPending).
			Count(&stats.PendingUploadCount).Error
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Upstream("count admin stats", err)
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, statsCacheKey, stats, statsCacheTTL); err != nil {
			s.log.Warn("stats cache write failed", "error", err)
		}
	}
	return &stats, nil
}

// InvalidateStats drops the cached counts after a write that changes them
func (s *AdminService) InvalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.log.Warn("stats cache invalidation failed", "error", err)
	}
}

// ListUsers pages through users, searching name and email
func (s *AdminService) ListUsers(ctx context.Context, p query.Params) ([]model.User, int64, error) {
	p.Normalize()
	q := s.db.WithContext(ctx).Model(&model.User{})

	if p.Role != "" {
		if !model.ValidRole(p.Role) {
			return nil, 0, apperr.Validation("role", "role must be one of: student, teacher, moderator, admin")
		}
		q = q.Where("role = ?", p.Role)
	}
	if p.Search != "" {
		like := query.Like(p.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", like, like)
	}

	users := []model.User{}
	total, err := page(q, p, "created_at DESC, id DESC", &users)
	if err != nil {
		return nil, 0, apperr.Upstream("list users", err)
	}
	return users, total, nil
}

// ListModerators is ListUsers restricted to the moderator role
func (s *AdminService) ListModerators(ctx context.Context, p query.Params) ([]model.User, int64, error) {
	p.Role = model.RoleModerator
	return s.ListUsers(ctx, p)
}

// ListLessons pages through all lessons, drafts included
func (s *AdminService) ListLessons(ctx context.Context, p query.Params) ([]model.Lesson, int64, error) {
	p.Normalize()
	q := s.db.WithContext(ctx).Model(&model.Lesson{}).Omit("content")

	if p.Published != "" {
		published, err := strconv.ParseBool(p.Published)
		if err != nil {
			return nil, 0, apperr.Validation("published", "published must be true or false")
		}
		q = q.Where("published = ?", published)
	}
	if p.Search != "" {
		like := query.Like(p.Search)
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", like, like)
	}

	lessons := []model.Lesson{}
	total, err := page(q, p, "created_at DESC, id DESC", &lessons)
	if err != nil {
		return nil, 0, apperr.Upstream("list lessons", err)
	}
	return lessons, total, nil
}

// SubjectRow is a subject with its lesson count
type SubjectRow struct {
	model.Subject
	LessonCount int64 `json:"lesson_count"`
}

// ListSubjects pages through subjects, searching name and description
func (s *AdminService) ListSubjects(ctx context.Context, p query.Params) ([]SubjectRow, int64, error) {
	p.Normalize()
	q := s.db.WithContext(ctx).Model(&model.Subject{})

	if p.Search != "" {
		like := query.Like(p.Search)
		q = q.Where("(LOWER(subjects.name) LIKE ? ESCAPE '\\' OR LOWER(subjects.description) LIKE ? ESCAPE '\\')", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Upstream("count subjects", err)
	}

	rows := []SubjectRow{}
	err := q.Select("subjects.*, (SELECT COUNT(*) FROM lessons WHERE lessons.subject_id = subjects.id) AS lesson_count").
		Order("subjects.name ASC").
		Scopes(query.Paginate(p)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperr.Upstream("list subjects", err)
	}
	return rows, total, nil
}

// ListUploads pages through uploads with their uploader and subject
func (s *AdminService) ListUploads(ctx context.Context, p query.Params) ([]model.Upload, int64, error) {
	p.Normalize()
	q := s.db.WithContext(ctx).Model(&model.Upload{})

	if p.Status != "" {
		status := model.UploadStatus(p.Status)
		if status != model.UploadStatusPending && !status.Terminal() {
			return nil, 0, apperr.Validation("status", "status must be one of: pending, approved, rejected")
		}
		q = q.Where("status = ?", status)
	}
	if p.Search != "" {
		like := query.Like(p.Search)
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", like, like)
	}

	uploads := []model.Upload{}
	total, err := page(q, p, "created_at DESC, id DESC", &uploads, "User", "Subject")
	if err != nil {
		return nil, 0, apperr.Upstream("list uploads", err)
	}
	return uploads, total, nil
}

// ListAuditLogs pages through the admin audit trail, newest first
func (s *AdminService) ListAuditLogs(ctx context.Context, p query.Params) ([]model.AdminAuditLog, int64, error) {
	p.Normalize()
	q := s.db.WithContext(ctx).Model(&model.AdminAuditLog{})

	if p.Action != "" {
		q = q.Where("action = ?", p.Action)
	}
	if p.Resource != "" {
		q = q.Where("resource = ?", p.Resource)
	}

	logs := []model.AdminAuditLog{}
	total, err := page(q, p, "created_at DESC, id DESC", &logs, "Admin")
	if err != nil {
		return nil, 0, apperr.Upstream("list audit logs", err)
	}
	return logs, total, nil
}

// UpdateUserInput changes a user's role or name
type UpdateUserInput struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=100"`
	Role *string `json:"role" validate:"omitempty,oneof=student teacher moderator admin"`
}

// UpdateUser applies in and returns the user before and after the change.
// An admin may not change their own role and the last admin keeps theirs.
// A role change bumps the token
// version so outstanding tokens stop carrying the old role.
func (s *AdminService) UpdateUser(ctx context.Context, actor Actor, userID uint, in UpdateUserInput) (before, after *model.User, err error) {
	if err := validate.Check(in); err != nil {
		return nil, nil, err
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "user", "find user")
	}
	original := user

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil && *in.Role != user.Role {
		if userID == actor.UserID {
			return nil, nil, apperr.Forbidden("you cannot change your own role")
		}
		if user.Role == model.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, userID); err != nil {
				return nil, nil, err
			}
		}
		updates["role"] = *in.Role
		updates["token_version"] = gorm.Expr("token_version + ?", 1)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, nil, apperr.FromDB(err, "user", "update user")
		}
		if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
			return nil, nil, apperr.FromDB(err, "user", "reload user")
		}
	}
	return &original, &user, nil
}

// DeleteUser removes a user and returns the deleted row. An admin may not
// delete their own account, and the last admin cannot be deleted.
func (s *AdminService) DeleteUser(ctx context.Context, actor Actor, userID uint) (*model.User, error) {
	if userID == actor.UserID {
		return nil, apperr.Forbidden("you cannot delete your own account")
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, apperr.FromDB(err, "user", "find user")
	}
	if user.Role == model.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, userID); err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Delete(&user).Error; err != nil {
		return nil, apperr.Upstream("delete user", err)
	}
	s.InvalidateStats(ctx)
	return &user, nil
}

// ensureAnotherAdmin refuses to remove the admin role from the only admin
func (s *AdminService) ensureAnotherAdmin(ctx context.Context, userID uint) error {
	var others int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ? AND id <> ?", model.RoleAdmin, userID).
		Count(&others).Error
	if err != nil {
		return apperr.Upstream("count admins", err)
	}
	if others == 0 {
		return apperr.InvalidState(model.RoleAdmin, "the last admin cannot be demoted or deleted")
	}
	return nil
}

// page counts the filtered rows, then loads one page of them into dest
func page(q *gorm.DB, p query.Params, order string, dest interface{}, preloads ...string) (int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	for _, rel := range preloads {
		q = q.Preload(rel)
	}
	if err := q.Order(order).Scopes(query.Paginate(p)).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
