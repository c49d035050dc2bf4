package database

import (
	"errors"
	"fmt"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"gorm.io/gorm"
)

// Seeder fills an empty database with an admin and a small demo catalog.
// Every step is keyed on slugs or email, so running it twice changes nothing.
type Seeder struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{db: db, log: log}
}

type seedSubject struct {
	name, slug, color, icon string
	lessons                 []seedLesson
}

type seedLesson struct {
	title, slug, description, content string
	difficulty                        model.Difficulty
}

var demoSemesters = []struct {
	name     string
	order    int
	subjects []seedSubject
}{
	{
		name:  "S1",
		order: 1,
		subjects: []seedSubject{
			{
				name: "Programming Fundamentals", slug: "programming-fundamentals", color: "#2563eb", icon: "code",
				lessons: []seedLesson{
					{"Variables and Types", "variables-and-types", "Naming values and the types they carry.", "A variable binds a name to a value. Its type decides which operations are allowed.", model.DifficultyBeginner},
					{"Control Flow", "control-flow", "Branches and loops.", "Programs choose between paths with conditionals and repeat work with loops.", model.DifficultyBeginner},
				},
			},
			{
				name: "Discrete Mathematics", slug: "discrete-mathematics", color: "#16a34a", icon: "sigma",
				lessons: []seedLesson{
					{"Sets and Relations", "sets-and-relations", "The vocabulary of discrete structures.", "A set is an unordered collection of distinct elements. A relation is a set of ordered pairs.", model.DifficultyIntermediate},
				},
			},
		},
	},
	{
		name:  "S2",
		order: 2,
		subjects: []seedSubject{
			{
				name: "Data Structures", slug: "data-structures", color: "#dc2626", icon: "layers",
				lessons: []seedLesson{
					{"Arrays and Linked Lists", "arrays-and-linked-lists", "Contiguous and linked storage.", "Arrays give constant time indexing. Linked lists give constant time insertion at a known node.", model.DifficultyIntermediate},
					{"Binary Search Trees", "binary-search-trees", "Ordered trees for fast lookup.", "Each node keeps smaller keys on the left and larger keys on the right.", model.DifficultyAdvanced},
				},
			},
		},
	},
}

// SeedAll runs all seed functions in foreign key order
func (s *Seeder) SeedAll(adminEmail, adminPassword string) error {
	s.log.Info("starting database seeding")

	admin, err := s.SeedAdminUser(adminEmail, adminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	subjects, err := s.SeedCatalog()
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	if admin == nil {
		s.log.Warn("no admin user, skipping demo lessons")
	} else if err := s.SeedLessons(admin.ID, subjects); err != nil {
		return fmt.Errorf("failed to seed lessons: %w", err)
	}

	s.log.Info("database seeding completed")
	return nil
}

// SeedAdminUser creates the admin account. It returns the existing admin when
// one is already present and nil when no credentials are configured.
func (s *Seeder) SeedAdminUser(email, password string) (*model.User, error) {
	var existing model.User
	err := s.db.Where("role = ?", model.RoleAdmin).Order("id").First(&existing).Error
	if err == nil {
		s.log.Info("admin user already exists, skipping", "email", existing.Email)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if email == "" || password == "" {
		s.log.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil, nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleAdmin,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return nil, err
	}

	s.log.Info("created admin user", "email", admin.Email)
	return admin, nil
}

// SeedCatalog creates the demo university down to its subjects and returns
// the subjects keyed by slug.
func (s *Seeder) SeedCatalog() (map[string]*model.Subject, error) {
	subjects := make(map[string]*model.Subject)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		uni := model.University{Slug: "demo-university"}
		if err := tx.Where(uni).Attrs(model.University{Name: "Demo University", City: "Bhopal"}).FirstOrCreate(&uni).Error; err != nil {
			return err
		}

		fac := model.Faculty{UniversityID: uni.ID, Slug: "engineering"}
		if err := tx.Where(fac).Attrs(model.Faculty{Name: "Faculty of Engineering"}).FirstOrCreate(&fac).Error; err != nil {
			return err
		}

		prog := model.Program{FacultyID: fac.ID, Slug: "btech-cse"}
		if err := tx.Where(prog).Attrs(model.Program{Name: "B.Tech Computer Science"}).FirstOrCreate(&prog).Error; err != nil {
			return err
		}

		for _, sem := range demoSemesters {
			semester := model.Semester{ProgramID: prog.ID, Name: sem.name}
			if err := tx.Where(semester).Attrs(model.Semester{Order: sem.order}).FirstOrCreate(&semester).Error; err != nil {
				return err
			}

			for _, subj := range sem.subjects {
				subject := model.Subject{Slug: subj.slug}
				attrs := model.Subject{Name: subj.name, SemesterID: &semester.ID, Color: subj.color, Icon: subj.icon}
				if err := tx.Where(subject).Attrs(attrs).FirstOrCreate(&subject).Error; err != nil {
					return err
				}
				subjects[subj.slug] = &subject
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("seeded catalog", "subjects", len(subjects))
	return subjects, nil
}

// SeedLessons creates the published demo lessons for the seeded subjects
func (s *Seeder) SeedLessons(authorID uint, subjects map[string]*model.Subject) error {
	created := 0
	for _, sem := range demoSemesters {
		for _, subj := range sem.subjects {
			subject, ok := subjects[subj.slug]
			if !ok {
				continue
			}
			for _, l := range subj.lessons {
				lesson := model.Lesson{Slug: l.slug}
				attrs := model.Lesson{
					Title:       l.title,
					Description: l.description,
					Content:     l.content,
					Published:   true,
					Difficulty:  l.difficulty,
					AuthorID:    authorID,
					SubjectID:   &subject.ID,
				}
				res := s.db.Where(lesson).Attrs(attrs).FirstOrCreate(&lesson)
				if res.Error != nil {
					return res.Error
				}
				created += int(res.RowsAffected)
			}
		}
	}

	s.log.Info("seeded lessons", "created", created)
	return nil
}

// RunSeeds is the entry point used by cmd/seed
func RunSeeds(db *gorm.DB, log *logger.Logger, adminEmail, adminPassword string) error {
	return NewSeeder(db, log).SeedAll(adminEmail, adminPassword)
}
