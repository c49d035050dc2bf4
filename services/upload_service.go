package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/services/digitalocean"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"gorm.io/gorm"
)

// DefaultRejectionReason is stored when a rejection carries no reason
const DefaultRejectionReason = "No reason provided"

// FileStore keeps the original bytes of uploaded documents.
// *digitalocean.SpacesClient satisfies it.
type FileStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// UploadService runs the submission and moderation workflow:
// pending -> approved | rejected, each upload decided exactly once.
type UploadService struct {
	db        *gorm.DB
	log       *logger.Logger
	files     FileStore
	extractor *TextExtractor
	seo       *SEOService
}

// NewUploadService creates a new upload service. files may be nil, in which
// case attached documents are only extracted, not stored.
func NewUploadService(db *gorm.DB, log *logger.Logger, files FileStore, extractor *TextExtractor, seo *SEOService) *UploadService {
	if log == nil {
		log = logger.Nop()
	}
	if extractor == nil {
		extractor = NewTextExtractor(log)
	}
	if seo == nil {
		seo = NewSEOService(nil, log)
	}
	return &UploadService{db: db, log: log, files: files, extractor: extractor, seo: seo}
}

// Attachment is a document sent with a submission
type Attachment struct {
	Name string
	Data []byte
}

// SubmitInput is what an authenticated user sends to propose a lesson
type SubmitInput struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=2000"`
	SubjectID   uint        `json:"subject_id" validate:"required"`
	Content     string      `json:"content"`
	File        *Attachment `json:"-"`
}

// Submit records a pending upload. When text is available, from Content or
// the attached file, a draft lesson is created with it and linked so that
// approval can publish it.
func (s *UploadService) Submit(ctx context.Context, userID uint, in SubmitInput) (*model.Upload, error) {
	if userID == 0 {
		return nil, apperr.Unauthenticated("sign in to submit an upload")
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Check(in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Subject{}).Where("id = ?", in.SubjectID).Count(&count).Error; err != nil {
		return nil, apperr.Upstream("find subject", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("subject")
	}

	upload := &model.Upload{
		Title:       in.Title,
		Description: in.Description,
		Status:      model.UploadStatusPending,
		UserID:      userID,
		SubjectID:   in.SubjectID,
	}

	body := strings.TrimSpace(in.Content)
	if in.File != nil {
		extracted, err := s.extractor.ExtractText(in.File.Name, in.File.Data)
		if err != nil {
			return nil, err
		}
		if body == "" {
			body = extracted
		}
		upload.FileName = in.File.Name

		if s.files != nil {
			key := digitalocean.GenerateKey(fmt.Sprintf("uploads/%d", userID), in.File.Name)
			url, err := s.files.UploadBytes(ctx, key, in.File.Data, digitalocean.GetContentType(in.File.Name))
			if err != nil {
				return nil, apperr.Upstream("store upload file", err)
			}
			upload.FileKey = key
			upload.FileURL = url
		}
	}

	var draft *model.Lesson
	if body != "" {
		hints := s.seo.Suggest(ctx, body)
		draft = &model.Lesson{
			Title:           in.Title,
			Slug:            uniqueSlug(in.Title),
			Description:     in.Description,
			Content:         body,
			Published:       false,
			Difficulty:      model.DifficultyBeginner,
			AuthorID:        userID,
			SubjectID:       &in.SubjectID,
			SEOTitle:        hints.SEOTitle,
			MetaDescription: hints.MetaDescription,
		}
		draft.SetTags(hints.Tags)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if draft != nil {
			if err := tx.Create(draft).Error; err != nil {
				return err
			}
			upload.LessonID = &draft.ID
		}
		return tx.Create(upload).Error
	})
	if err != nil {
		s.discardFile(upload.FileKey)
		return nil, apperr.FromDB(err, "upload", "create upload")
	}

	s.log.Info("upload submitted", "upload_id", upload.ID, "user_id", userID, "subject_id", in.SubjectID, "draft_lesson", upload.LessonID != nil)
	return upload, nil
}

// ModerateInput is an admin decision on a pending upload
type ModerateInput struct {
	Status model.UploadStatus `json:"status" validate:"required,oneof=approved rejected"`
	Reason *string            `json:"reason"`
}

// Moderate decides a pending upload exactly once. The status flip is a
// conditional update on status = 'pending', so of two racing decisions only
// one changes the row and the other gets an InvalidStateError naming the
// status that won.
func (s *UploadService) Moderate(ctx context.Context, adminID, uploadID uint, in ModerateInput) (*model.Upload, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}

	reason := ""
	if in.Reason != nil {
		reason = *in.Reason
	}
	if in.Status == model.UploadStatusRejected && strings.TrimSpace(reason) == "" {
		reason = DefaultRejectionReason
	}

	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Upload{}).
			Where("id = ? AND status = ?", uploadID, model.UploadStatusPending).
			Updates(map[string]interface{}{
				"status":     in.Status,
				"reason":     reason,
				"decided_by": adminID,
				"decided_at": now,
			})
		if res.Error != nil {
			return apperr.Upstream("update upload status", res.Error)
		}

		if res.RowsAffected == 0 {
			var current model.Upload
			if err := tx.Select("id", "status").First(&current, uploadID).Error; err != nil {
				return apperr.FromDB(err, "upload", "find upload")
			}
			return apperr.InvalidState(string(current.Status), "upload already "+string(current.Status))
		}

		if in.Status != model.UploadStatusApproved {
			return nil
		}

		var decided model.Upload
		if err := tx.Select("id", "lesson_id").First(&decided, uploadID).Error; err != nil {
			return apperr.FromDB(err, "upload", "find upload")
		}
		if decided.LessonID == nil {
			// Nothing to publish; the upload stays approved without a lesson.
			s.log.Warn("approved upload has no linked lesson", "upload_id", uploadID)
			return nil
		}
		if err := tx.Model(&model.Lesson{}).Where("id = ?", *decided.LessonID).Update("published", true).Error; err != nil {
			return apperr.Upstream("publish lesson", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("upload moderated", "upload_id", uploadID, "status", in.Status, "admin_id", adminID)
	return s.find(ctx, uploadID)
}

// Remove hard-deletes an upload together with its unpublished draft lesson
// and returns the deleted row for the audit trail. The stored file is
// removed best effort.
func (s *UploadService) Remove(ctx context.Context, uploadID uint) (*model.Upload, error) {
	var upload model.Upload
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&upload, uploadID).Error; err != nil {
			return apperr.FromDB(err, "upload", "find upload")
		}
		if err := tx.Delete(&model.Upload{}, upload.ID).Error; err != nil {
			return apperr.Upstream("delete upload", err)
		}
		if upload.LessonID != nil {
			err := tx.Where("id = ? AND published = ?", *upload.LessonID, false).Delete(&model.Lesson{}).Error
			if err != nil {
				return apperr.Upstream("delete draft lesson", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.discardFile(upload.FileKey)
	s.log.Info("upload removed", "upload_id", uploadID)
	return &upload, nil
}

// Get returns an upload to its owner or to an admin
func (s *UploadService) Get(ctx context.Context, actor Actor, uploadID uint) (*model.Upload, error) {
	upload, err := s.find(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(upload.UserID) {
		// Not revealing that the id exists.
		return nil, apperr.NotFound("upload")
	}
	return upload, nil
}

// ListMine returns the caller's uploads, newest first
func (s *UploadService) ListMine(ctx context.Context, userID uint) ([]model.Upload, error) {
	uploads := []model.Upload{}
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&uploads).Error
	if err != nil {
		return nil, apperr.Upstream("list uploads", err)
	}
	return uploads, nil
}

func (s *UploadService) find(ctx context.Context, uploadID uint) (*model.Upload, error) {
	var upload model.Upload
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Preload("Lesson").
		First(&upload, uploadID).Error
	if err != nil {
		return nil, apperr.FromDB(err, "upload", "find upload")
	}
	return &upload, nil
}

func (s *UploadService) discardFile(key string) {
	if key == "" || s.files == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.files.DeleteFile(ctx, key); err != nil {
		s.log.Warn("failed to delete stored upload file", "key", key, "error", err)
	}
}
