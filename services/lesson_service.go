package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/sahilchouksey/scholarhub/utils/query"
	"gorm.io/gorm"
)

// Lesson list orderings
const (
	SortRecent  = "recent"
	SortPopular = "popular"
	SortViews   = "views"
)

// LessonService lists, reads and edits lessons
type LessonService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewLessonService creates a new lesson service
func NewLessonService(db *gorm.DB, log *logger.Logger) *LessonService {
	if log == nil {
		log = logger.Nop()
	}
	return &LessonService{db: db, log: log}
}

// LessonFilter narrows the public lesson list
type LessonFilter struct {
	Search    string
	SubjectID *uint
	Sort      string
}

// List returns published lessons matching the filter. Search is a
// case-insensitive substring test OR-ed over title, description and content.
func (s *LessonService) List(ctx context.Context, f LessonFilter) ([]model.Lesson, error) {
	q := s.db.WithContext(ctx).Model(&model.Lesson{}).
		Omit("content").
		Where("published = ?", true)

	if f.SubjectID != nil {
		q = q.Where("subject_id = ?", *f.SubjectID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := query.Like(search)
		q = q.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(content) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}

	switch f.Sort {
	case "", SortRecent:
		q = q.Order("created_at DESC").Order("id DESC")
	case SortPopular, SortViews:
		q = q.Order("views DESC").Order("created_at DESC").Order("id DESC")
	default:
		return nil, apperr.Validation("sort", "sort must be one of: recent, popular, views")
	}

	lessons := []model.Lesson{}
	if err := q.Find(&lessons).Error; err != nil {
		return nil, apperr.Upstream("list lessons", err)
	}
	return lessons, nil
}

// LessonDetail is a published lesson with its neighbours in the subject
type LessonDetail struct {
	model.Lesson
	Tags     []string       `json:"tags"`
	Previous *LessonSummary `json:"previous"`
	Next     *LessonSummary `json:"next"`
	// Bookmarked is set only for signed-in readers
	Bookmarked *bool `json:"bookmarked,omitempty"`
}

// GetBySlug returns a published lesson and counts the read with an atomic
// increment. Views are not deduplicated per reader.
func (s *LessonService) GetBySlug(ctx context.Context, slug string) (*LessonDetail, error) {
	var lesson model.Lesson
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("slug = ? AND published = ?", slug, true).
		First(&lesson).Error
	if err != nil {
		return nil, apperr.FromDB(err, "lesson", "find lesson")
	}

	err = s.db.WithContext(ctx).Model(&model.Lesson{}).
		Where("id = ?", lesson.ID).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return nil, apperr.Upstream("increment lesson views", err)
	}
	lesson.Views++

	adj, err := s.adjacentTo(ctx, &lesson)
	if err != nil {
		return nil, err
	}

	return &LessonDetail{
		Lesson:   lesson,
		Tags:     lesson.TagList(),
		Previous: adj.Previous,
		Next:     adj.Next,
	}, nil
}

// Adjacent holds the neighbours of a lesson within its subject
type Adjacent struct {
	Previous *LessonSummary `json:"previous"`
	Next     *LessonSummary `json:"next"`
}

// Adjacent returns the published siblings immediately before and after the
// lesson, ordered by (created_at, id). Two indexed single-row lookups
// replace scanning the subject.
func (s *LessonService) Adjacent(ctx context.Context, lessonID uint) (*Adjacent, error) {
	var lesson model.Lesson
	err := s.db.WithContext(ctx).Where("id = ? AND published = ?", lessonID, true).First(&lesson).Error
	if err != nil {
		return nil, apperr.FromDB(err, "lesson", "find lesson")
	}
	return s.adjacentTo(ctx, &lesson)
}

func (s *LessonService) adjacentTo(ctx context.Context, lesson *model.Lesson) (*Adjacent, error) {
	if lesson.SubjectID == nil {
		s.log.Warn("lesson has no subject, adjacent navigation unavailable", "lesson_id", lesson.ID)
		return &Adjacent{}, nil
	}

	siblings := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Lesson{}).
			Select("id, title, slug, difficulty, views").
			Where("subject_id = ? AND published = ? AND id <> ?", *lesson.SubjectID, true, lesson.ID)
	}

	var prev []LessonSummary
	err := siblings().
		Where("(created_at < ? OR (created_at = ? AND id < ?))", lesson.CreatedAt, lesson.CreatedAt, lesson.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(1).
		Scan(&prev).Error
	if err != nil {
		return nil, apperr.Upstream("find previous lesson", err)
	}

	var next []LessonSummary
	err = siblings().
		Where("(created_at > ? OR (created_at = ? AND id > ?))", lesson.CreatedAt, lesson.CreatedAt, lesson.ID).
		Order("created_at ASC").Order("id ASC").
		Limit(1).
		Scan(&next).Error
	if err != nil {
		return nil, apperr.Upstream("find next lesson", err)
	}

	adj := &Adjacent{}
	if len(prev) == 1 {
		adj.Previous = &prev[0]
	}
	if len(next) == 1 {
		adj.Next = &next[0]
	}
	return adj, nil
}

// LessonInput creates a lesson or, through UpdateLessonInput, edits one
type LessonInput struct {
	Title           string   `json:"title" validate:"required,min=3,max=200"`
	Slug            string   `json:"slug" validate:"omitempty,max=160"`
	Description     string   `json:"description" validate:"max=2000"`
	Content         string   `json:"content"`
	Difficulty      string   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	SubjectID       *uint    `json:"subject_id"`
	Tags            []string `json:"tags" validate:"max=20"`
	SEOTitle        string   `json:"seo_title" validate:"max=60"`
	MetaDescription string   `json:"meta_description" validate:"max=160"`
}

// Create adds a published lesson authored by the actor. Missing SEO fields
// are filled with ExtractSeoHints over the content.
func (s *LessonService) Create(ctx context.Context, actor Actor, in LessonInput) (*model.Lesson, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	if err := s.checkSubject(ctx, in.SubjectID); err != nil {
		return nil, err
	}

	slug, err := pickSlug(in.Slug, in.Title, lessonSlugLength)
	if err != nil {
		return nil, err
	}
	difficulty := model.Difficulty(in.Difficulty)
	if difficulty == "" {
		difficulty = model.DifficultyBeginner
	}

	lesson := &model.Lesson{
		Title:           strings.TrimSpace(in.Title),
		Slug:            slug,
		Description:     in.Description,
		Content:         in.Content,
		Published:       true,
		Difficulty:      difficulty,
		AuthorID:        actor.UserID,
		SubjectID:       in.SubjectID,
		SEOTitle:        in.SEOTitle,
		MetaDescription: in.MetaDescription,
	}
	applySeoDefaults(lesson, in.Tags)

	if err := s.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return nil, apperr.FromDB(err, "lesson slug", "create lesson")
	}
	return lesson, nil
}

// UpdateLessonInput carries the fields to change; nil means unchanged
type UpdateLessonInput struct {
	Title           *string   `json:"title" validate:"omitempty,min=3,max=200"`
	Description     *string   `json:"description" validate:"omitempty,max=2000"`
	Content         *string   `json:"content"`
	Difficulty      *string   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	SubjectID       *uint     `json:"subject_id"`
	Tags            *[]string `json:"tags"`
	SEOTitle        *string   `json:"seo_title" validate:"omitempty,max=60"`
	MetaDescription *string   `json:"meta_description" validate:"omitempty,max=160"`
	Published       *bool     `json:"published"`
}

// Update edits a lesson. Teachers may only edit their own lessons, and
// never a lesson created from an upload.
func (s *LessonService) Update(ctx context.Context, actor Actor, id uint, in UpdateLessonInput) (*model.Lesson, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}

	lesson, err := s.ownedLesson(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubject(ctx, in.SubjectID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.Difficulty != nil {
		updates["difficulty"] = *in.Difficulty
	}
	if in.SubjectID != nil {
		updates["subject_id"] = *in.SubjectID
	}
	if in.Tags != nil {
		lesson.SetTags(*in.Tags)
		updates["tags"] = lesson.Tags
	}
	if in.SEOTitle != nil {
		updates["seo_title"] = *in.SEOTitle
	}
	if in.MetaDescription != nil {
		updates["meta_description"] = *in.MetaDescription
	}
	if in.Published != nil {
		updates["published"] = *in.Published
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(lesson).Updates(updates).Error; err != nil {
			return nil, apperr.FromDB(err, "lesson", "update lesson")
		}
	}

	if err := s.db.WithContext(ctx).First(lesson, id).Error; err != nil {
		return nil, apperr.FromDB(err, "lesson", "reload lesson")
	}
	return lesson, nil
}

// Delete removes a lesson. Teachers may only delete their own lessons.
func (s *LessonService) Delete(ctx context.Context, actor Actor, id uint) error {
	lesson, err := s.ownedLesson(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(lesson).Error; err != nil {
		return apperr.Upstream("delete lesson", err)
	}
	return nil
}

func (s *LessonService) ownedLesson(ctx context.Context, actor Actor, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := s.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, apperr.FromDB(err, "lesson", "find lesson")
	}
	if !actor.CanManage(lesson.AuthorID) {
		return nil, apperr.Forbidden("you can only manage your own lessons")
	}
	if actor.IsAdmin() {
		return &lesson, nil
	}

	// Drafts behind an upload are published only through moderation
	var linked int64
	if err := s.db.WithContext(ctx).Model(&model.Upload{}).Where("lesson_id = ?", lesson.ID).Count(&linked).Error; err != nil {
		return nil, apperr.Upstream("find linked uploads", err)
	}
	if linked > 0 {
		return nil, apperr.Forbidden("this lesson belongs to an upload and is managed by moderators")
	}
	return &lesson, nil
}

func (s *LessonService) checkSubject(ctx context.Context, subjectID *uint) error {
	if subjectID == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Subject{}).Where("id = ?", *subjectID).Count(&count).Error; err != nil {
		return apperr.Upstream("find subject", err)
	}
	if count == 0 {
		return apperr.NotFound("subject")
	}
	return nil
}

func applySeoDefaults(lesson *model.Lesson, tags []string) {
	source := lesson.Content
	if strings.TrimSpace(source) == "" {
		source = lesson.Title + " " + lesson.Description
	}
	hints := ExtractSeoHints(source)

	if len(tags) == 0 {
		tags = hints.Tags
	}
	lesson.SetTags(tags)
	if lesson.SEOTitle == "" {
		lesson.SEOTitle = truncateRunes(lesson.Title, seoTitleLength)
	}
	if lesson.MetaDescription == "" {
		lesson.MetaDescription = hints.MetaDescription
	}
}

// uniqueSlug appends a short random suffix so drafts never collide
func uniqueSlug(title string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	base := clipSlug(Slugify(title), lessonSlugLength-len(suffix)-1)
	if base == "" {
		base = "lesson"
	}
	return base + "-" + suffix
}
