package services

import (
	"context"
	"strings"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"github.com/sahilchouksey/scholarhub/utils/validation"
	"gorm.io/gorm"
)

var validate = validation.NewValidator()

// CatalogService resolves the University → Faculty → Program → Semester →
// Subject chain. Every lookup is scoped to the already resolved parent, and
// each level returns only its immediate children as summaries.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ChildSummary is the shallow view of a child node
type ChildSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug,omitempty"`
	Order      int    `gorm:"column:sort_order" json:"order,omitempty"`
	ChildCount int64  `json:"child_count"`
}

// LessonSummary is a published lesson as listed under its subject
type LessonSummary struct {
	ID         uint             `json:"id"`
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	Difficulty model.Difficulty `json:"difficulty"`
	Views      int64            `json:"views"`
}

type UniversityView struct {
	University model.University `json:"university"`
	Faculties  []ChildSummary   `json:"faculties"`
}

type FacultyView struct {
	University ChildSummary   `json:"university"`
	Faculty    model.Faculty  `json:"faculty"`
	Programs   []ChildSummary `json:"programs"`
}

type ProgramView struct {
	Faculty   ChildSummary   `json:"faculty"`
	Program   model.Program  `json:"program"`
	Semesters []ChildSummary `json:"semesters"`
}

type SemesterView struct {
	Program  ChildSummary   `json:"program"`
	Semester model.Semester `json:"semester"`
	Subjects []ChildSummary `json:"subjects"`
}

type SubjectView struct {
	Semester ChildSummary    `json:"semester"`
	Subject  model.Subject   `json:"subject"`
	Lessons  []LessonSummary `json:"lessons"`
}

// ListUniversities returns every university with its faculty count
func (s *CatalogService) ListUniversities(ctx context.Context) ([]ChildSummary, error) {
	var out []ChildSummary
	err := s.db.WithContext(ctx).Model(&model.University{}).
		Select("universities.id, universities.name, universities.slug, " +
			"(SELECT COUNT(*) FROM faculties WHERE faculties.university_id = universities.id) AS child_count").
		Order("universities.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Upstream("list universities", err)
	}
	return nonNil(out), nil
}

// ResolveUniversity returns the university and its faculties
func (s *CatalogService) ResolveUniversity(ctx context.Context, uniSlug string) (*UniversityView, error) {
	uni, err := s.findUniversity(ctx, uniSlug)
	if err != nil {
		return nil, err
	}

	var faculties []ChildSummary
	err = s.db.WithContext(ctx).Model(&model.Faculty{}).
		Select("faculties.id, faculties.name, faculties.slug, "+
			"(SELECT COUNT(*) FROM programs WHERE programs.faculty_id = faculties.id) AS child_count").
		Where("faculties.university_id = ?", uni.ID).
		Order("faculties.name ASC").
		Scan(&faculties).Error
	if err != nil {
		return nil, apperr.Upstream("list faculties", err)
	}

	return &UniversityView{University: *uni, Faculties: nonNil(faculties)}, nil
}

// ResolveFaculty returns the faculty under uniSlug and its programs
func (s *CatalogService) ResolveFaculty(ctx context.Context, uniSlug, facSlug string) (*FacultyView, error) {
	uni, err := s.findUniversity(ctx, uniSlug)
	if err != nil {
		return nil, err
	}
	fac, err := s.findFaculty(ctx, uni.ID, facSlug)
	if err != nil {
		return nil, err
	}

	var programs []ChildSummary
	err = s.db.WithContext(ctx).Model(&model.Program{}).
		Select("programs.id, programs.name, programs.slug, "+
			"(SELECT COUNT(*) FROM semesters WHERE semesters.program_id = programs.id) AS child_count").
		Where("programs.faculty_id = ?", fac.ID).
		Order("programs.name ASC").
		Scan(&programs).Error
	if err != nil {
		return nil, apperr.Upstream("list programs", err)
	}

	return &FacultyView{
		University: ChildSummary{ID: uni.ID, Name: uni.Name, Slug: uni.Slug},
		Faculty:    *fac,
		Programs:   nonNil(programs),
	}, nil
}

// ResolveProgram returns the program under the given faculty and its
// semesters in display order
func (s *CatalogService) ResolveProgram(ctx context.Context, uniSlug, facSlug, progSlug string) (*ProgramView, error) {
	uni, err := s.findUniversity(ctx, uniSlug)
	if err != nil {
		return nil, err
	}
	fac, err := s.findFaculty(ctx, uni.ID, facSlug)
	if err != nil {
		return nil, err
	}
	prog, err := s.findProgram(ctx, fac.ID, progSlug)
	if err != nil {
		return nil, err
	}

	semesters, err := s.semesterSummaries(ctx, prog.ID)
	if err != nil {
		return nil, err
	}

	return &ProgramView{
		Faculty:   ChildSummary{ID: fac.ID, Name: fac.Name, Slug: fac.Slug},
		Program:   *prog,
		Semesters: semesters,
	}, nil
}

// ResolveSemester returns the semester named by semSegment ("s-1" → "S1")
// and its subjects
func (s *CatalogService) ResolveSemester(ctx context.Context, uniSlug, facSlug, progSlug, semSegment string) (*SemesterView, error) {
	prog, sem, err := s.resolveSemesterChain(ctx, uniSlug, facSlug, progSlug, semSegment)
	if err != nil {
		return nil, err
	}

	subjects, err := s.subjectSummaries(ctx, sem.ID)
	if err != nil {
		return nil, err
	}

	return &SemesterView{
		Program:  ChildSummary{ID: prog.ID, Name: prog.Name, Slug: prog.Slug},
		Semester: *sem,
		Subjects: subjects,
	}, nil
}

// ResolveSubject returns the subject under the semester and its published
// lessons, oldest first
func (s *CatalogService) ResolveSubject(ctx context.Context, uniSlug, facSlug, progSlug, semSegment, subjSlug string) (*SubjectView, error) {
	_, sem, err := s.resolveSemesterChain(ctx, uniSlug, facSlug, progSlug, semSegment)
	if err != nil {
		return nil, err
	}

	var subject model.Subject
	err = s.db.WithContext(ctx).
		Where("semester_id = ? AND slug = ?", sem.ID, subjSlug).
		First(&subject).Error
	if err != nil {
		return nil, apperr.FromDB(err, "subject", "find subject")
	}

	var lessons []LessonSummary
	err = s.db.WithContext(ctx).Model(&model.Lesson{}).
		Select("id, title, slug, difficulty, views").
		Where("subject_id = ? AND published = ?", subject.ID, true).
		Order("created_at ASC, id ASC").
		Scan(&lessons).Error
	if err != nil {
		return nil, apperr.Upstream("list subject lessons", err)
	}
	if lessons == nil {
		lessons = []LessonSummary{}
	}

	return &SubjectView{
		Semester: ChildSummary{ID: sem.ID, Name: sem.Name, Order: sem.Order},
		Subject:  subject,
		Lessons:  lessons,
	}, nil
}

func (s *CatalogService) resolveSemesterChain(ctx context.Context, uniSlug, facSlug, progSlug, semSegment string) (*model.Program, *model.Semester, error) {
	uni, err := s.findUniversity(ctx, uniSlug)
	if err != nil {
		return nil, nil, err
	}
	fac, err := s.findFaculty(ctx, uni.ID, facSlug)
	if err != nil {
		return nil, nil, err
	}
	prog, err := s.findProgram(ctx, fac.ID, progSlug)
	if err != nil {
		return nil, nil, err
	}

	var sem model.Semester
	err = s.db.WithContext(ctx).
		Where("program_id = ? AND name = ?", prog.ID, NormalizeSemesterName(semSegment)).
		First(&sem).Error
	if err != nil {
		return nil, nil, apperr.FromDB(err, "semester", "find semester")
	}
	return prog, &sem, nil
}

func (s *CatalogService) semesterSummaries(ctx context.Context, programID uint) ([]ChildSummary, error) {
	var out []ChildSummary
	err := s.db.WithContext(ctx).Model(&model.Semester{}).
		Select("semesters.id, semesters.name, semesters.sort_order, "+
			"(SELECT COUNT(*) FROM subjects WHERE subjects.semester_id = semesters.id) AS child_count").
		Where("semesters.program_id = ?", programID).
		Order("semesters.sort_order ASC").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Upstream("list semesters", err)
	}
	return nonNil(out), nil
}

func (s *CatalogService) subjectSummaries(ctx context.Context, semesterID uint) ([]ChildSummary, error) {
	var out []ChildSummary
	err := s.db.WithContext(ctx).Model(&model.Subject{}).
		Select("subjects.id, subjects.name, subjects.slug, "+
			"(SELECT COUNT(*) FROM lessons WHERE lessons.subject_id = subjects.id AND lessons.published = ?) AS child_count", true).
		Where("subjects.semester_id = ?", semesterID).
		Order("subjects.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Upstream("list subjects", err)
	}
	return nonNil(out), nil
}

func (s *CatalogService) findUniversity(ctx context.Context, slug string) (*model.University, error) {
	var uni model.University
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&uni).Error; err != nil {
		return nil, apperr.FromDB(err, "university", "find university")
	}
	return &uni, nil
}

func (s *CatalogService) findFaculty(ctx context.Context, universityID uint, slug string) (*model.Faculty, error) {
	var fac model.Faculty
	err := s.db.WithContext(ctx).
		Where("university_id = ? AND slug = ?", universityID, slug).
		First(&fac).Error
	if err != nil {
		return nil, apperr.FromDB(err, "faculty", "find faculty")
	}
	return &fac, nil
}

func (s *CatalogService) findProgram(ctx context.Context, facultyID uint, slug string) (*model.Program, error) {
	var prog model.Program
	err := s.db.WithContext(ctx).
		Where("faculty_id = ? AND slug = ?", facultyID, slug).
		First(&prog).Error
	if err != nil {
		return nil, apperr.FromDB(err, "program", "find program")
	}
	return &prog, nil
}

// CreateUniversityInput is the admin payload for a new university
type CreateUniversityInput struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
	Slug string `json:"slug" validate:"omitempty,max=120"`
	City string `json:"city" validate:"max=120"`
}

type CreateFacultyInput struct {
	UniversityID uint   `json:"university_id" validate:"required"`
	Name         string `json:"name" validate:"required,min=2,max=200"`
	Slug         string `json:"slug" validate:"omitempty,max=120"`
}

type CreateProgramInput struct {
	FacultyID uint   `json:"faculty_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=2,max=200"`
	Slug      string `json:"slug" validate:"omitempty,max=120"`
}

type CreateSemesterInput struct {
	ProgramID uint   `json:"program_id" validate:"required"`
	Name      string `json:"name" validate:"required,max=20"`
	Order     int    `json:"order" validate:"required,gte=1"`
}

// CreateUniversity adds a university. The slug defaults to the slugified name.
func (s *CatalogService) CreateUniversity(ctx context.Context, in CreateUniversityInput) (*model.University, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	slug, err := pickSlug(in.Slug, in.Name, catalogSlugLength)
	if err != nil {
		return nil, err
	}

	uni := &model.University{Name: strings.TrimSpace(in.Name), Slug: slug, City: strings.TrimSpace(in.City)}
	if err := s.db.WithContext(ctx).Create(uni).Error; err != nil {
		return nil, apperr.FromDB(err, "university slug", "create university")
	}
	return uni, nil
}

// CreateFaculty adds a faculty; the slug must be unique within the university
func (s *CatalogService) CreateFaculty(ctx context.Context, in CreateFacultyInput) (*model.Faculty, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, &model.University{}, in.UniversityID, "university"); err != nil {
		return nil, err
	}
	slug, err := pickSlug(in.Slug, in.Name, catalogSlugLength)
	if err != nil {
		return nil, err
	}

	fac := &model.Faculty{UniversityID: in.UniversityID, Name: strings.TrimSpace(in.Name), Slug: slug}
	if err := s.db.WithContext(ctx).Create(fac).Error; err != nil {
		return nil, apperr.FromDB(err, "faculty slug", "create faculty")
	}
	return fac, nil
}

// CreateProgram adds a program; the slug must be unique within the faculty
func (s *CatalogService) CreateProgram(ctx context.Context, in CreateProgramInput) (*model.Program, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, &model.Faculty{}, in.FacultyID, "faculty"); err != nil {
		return nil, err
	}
	slug, err := pickSlug(in.Slug, in.Name, catalogSlugLength)
	if err != nil {
		return nil, err
	}

	prog := &model.Program{FacultyID: in.FacultyID, Name: strings.TrimSpace(in.Name), Slug: slug}
	if err := s.db.WithContext(ctx).Create(prog).Error; err != nil {
		return nil, apperr.FromDB(err, "program slug", "create program")
	}
	return prog, nil
}

// CreateSemester adds a semester. The name is stored normalized and both
// name and order must be unique within the program.
func (s *CatalogService) CreateSemester(ctx context.Context, in CreateSemesterInput) (*model.Semester, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, &model.Program{}, in.ProgramID, "program"); err != nil {
		return nil, err
	}
	name := NormalizeSemesterName(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "name is required")
	}

	sem := &model.Semester{ProgramID: in.ProgramID, Name: name, Order: in.Order}
	if err := s.db.WithContext(ctx).Create(sem).Error; err != nil {
		return nil, apperr.FromDB(err, "semester name or order", "create semester")
	}
	return sem, nil
}

func (s *CatalogService) mustExist(ctx context.Context, dest interface{}, id uint, resource string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(dest).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Upstream("find "+resource, err)
	}
	if count == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

// pickSlug slugifies the explicit slug, or the name when none is given,
// clipped to maxLen runes.
func pickSlug(explicit, name string, maxLen int) (string, error) {
	slug := clipSlug(Slugify(explicit), maxLen)
	if slug == "" {
		slug = clipSlug(Slugify(name), maxLen)
	}
	if slug == "" {
		return "", apperr.Validation("slug", "slug could not be derived from name")
	}
	return slug, nil
}

func nonNil(in []ChildSummary) []ChildSummary {
	if in == nil {
		return []ChildSummary{}
	}
	return in
}
