package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
)

func seedCatalog(t *testing.T, svc *CatalogService) (uni *model.University, sci, arts *model.Faculty) {
	t.Helper()
	ctx := context.Background()

	uni, err := svc.CreateUniversity(ctx, CreateUniversityInput{Name: "State University", City: "Springfield"})
	if err != nil {
		t.Fatalf("create university: %v", err)
	}
	sci, err = svc.CreateFaculty(ctx, CreateFacultyInput{UniversityID: uni.ID, Name: "Science"})
	if err != nil {
		t.Fatalf("create faculty: %v", err)
	}
	arts, err = svc.CreateFaculty(ctx, CreateFacultyInput{UniversityID: uni.ID, Name: "Arts"})
	if err != nil {
		t.Fatalf("create faculty: %v", err)
	}
	return uni, sci, arts
}

func TestResolveProgramIsParentScoped(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newTestDB(t))
	_, sci, arts := seedCatalog(t, svc)

	sciProg, err := svc.CreateProgram(ctx, CreateProgramInput{FacultyID: sci.ID, Name: "Foundations", Slug: "foundations"})
	if err != nil {
		t.Fatalf("create program: %v", err)
	}
	artsProg, err := svc.CreateProgram(ctx, CreateProgramInput{FacultyID: arts.ID, Name: "Foundations of Art", Slug: "foundations"})
	if err != nil {
		t.Fatalf("same slug under another faculty must be allowed: %v", err)
	}

	got, err := svc.ResolveProgram(ctx, "state-university", "arts", "foundations")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Program.ID != artsProg.ID {
		t.Fatalf("resolved program %d, want %d (arts), not %d", got.Program.ID, artsProg.ID, sciProg.ID)
	}
	if got.Faculty.Slug != "arts" {
		t.Fatalf("faculty summary = %+v", got.Faculty)
	}

	got, err = svc.ResolveProgram(ctx, "state-university", "science", "foundations")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Program.ID != sciProg.ID {
		t.Fatalf("resolved program %d, want %d", got.Program.ID, sciProg.ID)
	}
}

func TestResolveUnknownSlugUnderParent(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newTestDB(t))
	_, sci, _ := seedCatalog(t, svc)

	if _, err := svc.CreateProgram(ctx, CreateProgramInput{FacultyID: sci.ID, Name: "Physics"}); err != nil {
		t.Fatalf("create program: %v", err)
	}

	_, err := svc.ResolveProgram(ctx, "state-university", "arts", "physics")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "program" {
		t.Fatalf("expected program NotFoundError, got %v", err)
	}

	_, err = svc.ResolveUniversity(ctx, "nowhere")
	if !errors.As(err, &nf) || nf.Resource != "university" {
		t.Fatalf("expected university NotFoundError, got %v", err)
	}
}

func TestResolveLevelsEmbedImmediateChildren(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewCatalogService(db)
	_, sci, _ := seedCatalog(t, svc)

	prog, err := svc.CreateProgram(ctx, CreateProgramInput{FacultyID: sci.ID, Name: "Computer Science"})
	if err != nil {
		t.Fatalf("create program: %v", err)
	}
	s2, err := svc.CreateSemester(ctx, CreateSemesterInput{ProgramID: prog.ID, Name: "s-2", Order: 2})
	if err != nil {
		t.Fatalf("create semester: %v", err)
	}
	s1, err := svc.CreateSemester(ctx, CreateSemesterInput{ProgramID: prog.ID, Name: "S1", Order: 1})
	if err != nil {
		t.Fatalf("create semester: %v", err)
	}
	if s2.Name != "S2" {
		t.Fatalf("semester name stored as %q, want S2", s2.Name)
	}

	author := createUser(t, db, "teacher@example.com", model.RoleTeacher)
	math := createSubject(t, db, "math-1", &s1.ID)
	createSubject(t, db, "physics-1", &s1.ID)
	createLesson(t, db, "limits", &math.ID, author.ID, true, mustTime(t, "2024-01-01T10:00:00Z"))
	createLesson(t, db, "draft", &math.ID, author.ID, false, mustTime(t, "2024-01-02T10:00:00Z"))

	uniView, err := svc.ResolveUniversity(ctx, "state-university")
	if err != nil {
		t.Fatalf("resolve university: %v", err)
	}
	if len(uniView.Faculties) != 2 {
		t.Fatalf("faculties = %+v", uniView.Faculties)
	}
	for _, f := range uniView.Faculties {
		if f.Slug == "science" && f.ChildCount != 1 {
			t.Fatalf("science child_count = %d, want 1", f.ChildCount)
		}
	}

	progView, err := svc.ResolveProgram(ctx, "state-university", "science", "computer-science")
	if err != nil {
		t.Fatalf("resolve program: %v", err)
	}
	if len(progView.Semesters) != 2 || progView.Semesters[0].Name != "S1" || progView.Semesters[1].Name != "S2" {
		t.Fatalf("semesters not in display order: %+v", progView.Semesters)
	}
	if progView.Semesters[0].ChildCount != 2 {
		t.Fatalf("S1 child_count = %d, want 2", progView.Semesters[0].ChildCount)
	}

	semView, err := svc.ResolveSemester(ctx, "state-university", "science", "computer-science", "s-1")
	if err != nil {
		t.Fatalf("resolve semester via normalized segment: %v", err)
	}
	if semView.Semester.ID != s1.ID || len(semView.Subjects) != 2 {
		t.Fatalf("semester view = %+v", semView)
	}
	for _, subj := range semView.Subjects {
		if subj.Slug == "math-1" && subj.ChildCount != 1 {
			t.Fatalf("math-1 counts only published lessons, got %d", subj.ChildCount)
		}
	}

	subjView, err := svc.ResolveSubject(ctx, "state-university", "science", "computer-science", "s-1", "math-1")
	if err != nil {
		t.Fatalf("resolve subject: %v", err)
	}
	if len(subjView.Lessons) != 1 || subjView.Lessons[0].Slug != "limits" {
		t.Fatalf("subject lessons = %+v", subjView.Lessons)
	}

	if _, err := svc.ResolveSemester(ctx, "state-university", "science", "computer-science", "sem 1"); err == nil {
		t.Fatal("normalization must stay a single fixed rule")
	}
}

func TestCreateSemesterRejectsDuplicateOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newTestDB(t))
	_, sci, _ := seedCatalog(t, svc)
	prog, err := svc.CreateProgram(ctx, CreateProgramInput{FacultyID: sci.ID, Name: "Chemistry"})
	if err != nil {
		t.Fatalf("create program: %v", err)
	}

	if _, err := svc.CreateSemester(ctx, CreateSemesterInput{ProgramID: prog.ID, Name: "S1", Order: 1}); err != nil {
		t.Fatalf("create semester: %v", err)
	}
	_, err = svc.CreateSemester(ctx, CreateSemesterInput{ProgramID: prog.ID, Name: "S9", Order: 1})
	var conflict *apperr.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for duplicate order, got %v", err)
	}
	_, err = svc.CreateSemester(ctx, CreateSemesterInput{ProgramID: prog.ID, Name: "s-1", Order: 3})
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for duplicate name, got %v", err)
	}
}

func TestCreateFacultyRequiresExistingUniversity(t *testing.T) {
	svc := NewCatalogService(newTestDB(t))
	_, err := svc.CreateFaculty(context.Background(), CreateFacultyInput{UniversityID: 42, Name: "Law"})
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	_, err = svc.CreateUniversity(context.Background(), CreateUniversityInput{Name: ""})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("expected name ValidationError, got %v", err)
	}
}
