package services

import (
	"context"
	"strings"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"gorm.io/gorm"
)

// SubjectService manages subjects. Slugs are globally unique and a subject
// may sit outside the catalog hierarchy.
type SubjectService struct {
	db *gorm.DB
}

// NewSubjectService creates a new subject service
func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{db: db}
}

// SubjectInput creates a subject
type SubjectInput struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Slug        string `json:"slug" validate:"omitempty,max=120"`
	SemesterID  *uint  `json:"semester_id"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"omitempty,max=20"`
	Icon        string `json:"icon" validate:"omitempty,max=50"`
}

// UpdateSubjectInput carries the fields to change; nil means unchanged
type UpdateSubjectInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	SemesterID  *uint   `json:"semester_id"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Color       *string `json:"color" validate:"omitempty,max=20"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
}

// List returns every subject, optionally only those of one semester
func (s *SubjectService) List(ctx context.Context, semesterID *uint) ([]model.Subject, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if semesterID != nil {
		q = q.Where("semester_id = ?", *semesterID)
	}
	subjects := []model.Subject{}
	if err := q.Find(&subjects).Error; err != nil {
		return nil, apperr.Upstream("list subjects", err)
	}
	return subjects, nil
}

// GetBySlug returns one subject
func (s *SubjectService) GetBySlug(ctx context.Context, slug string) (*model.Subject, error) {
	var subject model.Subject
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&subject).Error; err != nil {
		return nil, apperr.FromDB(err, "subject", "find subject")
	}
	return &subject, nil
}

// Create adds a subject, deriving the slug from the name when omitted
func (s *SubjectService) Create(ctx context.Context, in SubjectInput) (*model.Subject, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	if err := s.checkSemester(ctx, in.SemesterID); err != nil {
		return nil, err
	}
	slug, err := pickSlug(in.Slug, in.Name, catalogSlugLength)
	if err != nil {
		return nil, err
	}

	subject := &model.Subject{
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		SemesterID:  in.SemesterID,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
	}
	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		return nil, apperr.FromDB(err, "subject slug", "create subject")
	}
	return subject, nil
}

// Update edits a subject. The slug is stable once created.
func (s *SubjectService) Update(ctx context.Context, id uint, in UpdateSubjectInput) (*model.Subject, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}

	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, apperr.FromDB(err, "subject", "find subject")
	}
	if err := s.checkSemester(ctx, in.SemesterID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.SemesterID != nil {
		updates["semester_id"] = *in.SemesterID
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Color != nil {
		updates["color"] = *in.Color
	}
	if in.Icon != nil {
		updates["icon"] = *in.Icon
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&subject).Updates(updates).Error; err != nil {
			return nil, apperr.Upstream("update subject", err)
		}
	}

	if err := s.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, apperr.FromDB(err, "subject", "reload subject")
	}
	return &subject, nil
}

// Delete removes a subject. Its lessons are detached, not deleted; pending
// uploads keep pointing at it and are refused.
func (s *SubjectService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subject model.Subject
		if err := tx.First(&subject, id).Error; err != nil {
			return apperr.FromDB(err, "subject", "find subject")
		}

		var pending int64
		err := tx.Model(&model.Upload{}).
			Where("subject_id = ? AND status = ?", id, model.UploadStatusPending).
			Count(&pending).Error
		if err != nil {
			return apperr.Upstream("count pending uploads", err)
		}
		if pending > 0 {
			return apperr.InvalidState("has_pending_uploads", "subject has pending uploads; moderate them first")
		}

		if err := tx.Model(&model.Lesson{}).Where("subject_id = ?", id).Update("subject_id", nil).Error; err != nil {
			return apperr.Upstream("detach lessons", err)
		}
		if err := tx.Delete(&subject).Error; err != nil {
			return apperr.Upstream("delete subject", err)
		}
		return nil
	})
}

func (s *SubjectService) checkSemester(ctx context.Context, semesterID *uint) error {
	if semesterID == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Semester{}).Where("id = ?", *semesterID).Count(&count).Error; err != nil {
		return apperr.Upstream("find semester", err)
	}
	if count == 0 {
		return apperr.NotFound("semester")
	}
	return nil
}
