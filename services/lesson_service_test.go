package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"gorm.io/gorm"
)

func lessonSlugs(lessons []model.Lesson) []string {
	out := make([]string, len(lessons))
	for i, l := range lessons {
		out[i] = l.Slug
	}
	return out
}

func equalSlugs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seedLessons(t *testing.T, db *gorm.DB) (*model.Subject, *model.User) {
	t.Helper()
	author := createUser(t, db, "teacher@example.com", model.RoleTeacher)
	subject := createSubject(t, db, "math-1", nil)

	limits := createLesson(t, db, "limits", &subject.ID, author.ID, true, mustTime(t, "2024-01-01T10:00:00Z"))
	derivs := createLesson(t, db, "derivatives", &subject.ID, author.ID, true, mustTime(t, "2024-01-02T10:00:00Z"))
	createLesson(t, db, "integrals", &subject.ID, author.ID, true, mustTime(t, "2024-01-03T10:00:00Z"))
	createLesson(t, db, "draft-series", &subject.ID, author.ID, false, mustTime(t, "2024-01-04T10:00:00Z"))

	db.Model(limits).Updates(map[string]interface{}{"views": 10, "description": "Approaching a POINT"})
	db.Model(derivs).Updates(map[string]interface{}{"views": 10, "content": "slope of the tangent"})
	return subject, author
}

func TestListOnlyPublishedAndSorted(t *testing.T) {
	db := newTestDB(t)
	seedLessons(t, db)
	svc := NewLessonService(db, nil)
	ctx := context.Background()

	recent, err := svc.List(ctx, LessonFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := lessonSlugs(recent); !equalSlugs(got, []string{"integrals", "derivatives", "limits"}) {
		t.Fatalf("recent order = %v", got)
	}

	popular, err := svc.List(ctx, LessonFilter{Sort: SortPopular})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// equal views fall back to newest first
	if got := lessonSlugs(popular); !equalSlugs(got, []string{"derivatives", "limits", "integrals"}) {
		t.Fatalf("popular order = %v", got)
	}

	if _, err := svc.List(ctx, LessonFilter{Sort: "alphabetical"}); err == nil {
		t.Fatal("unknown sort must be rejected")
	}
}

func TestListSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	db := newTestDB(t)
	subject, _ := seedLessons(t, db)
	svc := NewLessonService(db, nil)
	ctx := context.Background()

	cases := map[string][]string{
		"point":   {"limits"},      // description
		"TANGENT": {"derivatives"}, // content
		"integ":   {"integrals"},   // title
		"series":  {},              // unpublished only
		"100%":    {},              // wildcard characters are literal
	}
	for search, want := range cases {
		got, err := svc.List(ctx, LessonFilter{Search: search, SubjectID: &subject.ID})
		if err != nil {
			t.Fatalf("list %q: %v", search, err)
		}
		if !equalSlugs(lessonSlugs(got), want) {
			t.Errorf("search %q = %v, want %v", search, lessonSlugs(got), want)
		}
	}
}

func TestAdjacentEdges(t *testing.T) {
	db := newTestDB(t)
	subject, author := seedLessons(t, db)
	svc := NewLessonService(db, nil)
	ctx := context.Background()

	var lessons []model.Lesson
	db.Where("subject_id = ? AND published = ?", subject.ID, true).Order("created_at ASC").Find(&lessons)
	first, middle, last := lessons[0], lessons[1], lessons[2]

	adj, err := svc.Adjacent(ctx, first.ID)
	if err != nil {
		t.Fatalf("adjacent: %v", err)
	}
	if adj.Previous != nil || adj.Next == nil || adj.Next.ID != middle.ID {
		t.Fatalf("first lesson adjacency = %+v", adj)
	}

	adj, _ = svc.Adjacent(ctx, middle.ID)
	if adj.Previous == nil || adj.Previous.ID != first.ID || adj.Next == nil || adj.Next.ID != last.ID {
		t.Fatalf("middle lesson adjacency = %+v", adj)
	}

	adj, _ = svc.Adjacent(ctx, last.ID)
	if adj.Next != nil {
		t.Fatalf("last lesson must have no next (drafts are skipped), got %+v", adj.Next)
	}

	lonely := createSubject(t, db, "lonely", nil)
	only := createLesson(t, db, "only-one", &lonely.ID, author.ID, true, time.Now())
	adj, _ = svc.Adjacent(ctx, only.ID)
	if adj.Previous != nil || adj.Next != nil {
		t.Fatalf("single lesson adjacency = %+v", adj)
	}

	orphan := createLesson(t, db, "orphan", nil, author.ID, true, time.Now())
	adj, err = svc.Adjacent(ctx, orphan.ID)
	if err != nil || adj.Previous != nil || adj.Next != nil {
		t.Fatalf("lesson without subject: adj=%+v err=%v", adj, err)
	}

	_, err = svc.Adjacent(ctx, 9999)
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	draft := createLesson(t, db, "hidden-draft", &subject.ID, author.ID, false, time.Now())
	if _, err = svc.Adjacent(ctx, draft.ID); !errors.As(err, &nf) {
		t.Fatalf("adjacent of a draft: expected NotFoundError, got %v", err)
	}
}

func TestAdjacentBreaksCreatedAtTiesByID(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "t@example.com", model.RoleTeacher)
	subject := createSubject(t, db, "same-time", nil)
	at := mustTime(t, "2024-03-01T09:00:00Z")
	a := createLesson(t, db, "a", &subject.ID, author.ID, true, at)
	b := createLesson(t, db, "b", &subject.ID, author.ID, true, at)

	svc := NewLessonService(db, nil)
	adj, err := svc.Adjacent(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("adjacent: %v", err)
	}
	if adj.Previous != nil || adj.Next == nil || adj.Next.ID != b.ID {
		t.Fatalf("adjacency = %+v", adj)
	}
}

func TestGetBySlugCountsEveryRead(t *testing.T) {
	db := newTestDB(t)
	seedLessons(t, db)
	svc := NewLessonService(db, nil)
	ctx := context.Background()

	detail, err := svc.GetBySlug(ctx, "derivatives")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Views != 11 {
		t.Fatalf("views = %d, want 11", detail.Views)
	}
	if detail.Previous == nil || detail.Previous.Slug != "limits" || detail.Next == nil || detail.Next.Slug != "integrals" {
		t.Fatalf("neighbours = %+v / %+v", detail.Previous, detail.Next)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetBySlug(ctx, "derivatives"); err != nil {
				t.Errorf("concurrent get: %v", err)
			}
		}()
	}
	wg.Wait()

	var stored model.Lesson
	db.Where("slug = ?", "derivatives").First(&stored)
	if stored.Views != 21 {
		t.Fatalf("views after concurrent reads = %d, want 21", stored.Views)
	}

	_, err = svc.GetBySlug(ctx, "draft-series")
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("unpublished lesson must not resolve, got %v", err)
	}
}

func TestCreateUpdateDeleteOwnership(t *testing.T) {
	db := newTestDB(t)
	subject, author := seedLessons(t, db)
	other := createUser(t, db, "other@example.com", model.RoleTeacher)
	admin := createUser(t, db, "admin@example.com", model.RoleAdmin)
	svc := NewLessonService(db, nil)
	ctx := context.Background()

	owner := Actor{UserID: author.ID, Role: model.RoleTeacher}
	lesson, err := svc.Create(ctx, owner, LessonInput{
		Title:     "Chain Rule",
		Content:   "chain rule composes derivatives; chain rule again",
		SubjectID: &subject.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !lesson.Published || lesson.Slug != "chain-rule" || lesson.Difficulty != model.DifficultyBeginner {
		t.Fatalf("unexpected lesson %+v", lesson)
	}
	if tags := lesson.TagList(); len(tags) == 0 || tags[0] != "chain" {
		t.Fatalf("tags should default to heuristic hints, got %v", tags)
	}

	if _, err := svc.Create(ctx, owner, LessonInput{Title: "Chain Rule"}); err == nil {
		t.Fatal("duplicate slug must fail")
	}

	title := "Chain Rule Explained"
	_, err = svc.Update(ctx, Actor{UserID: other.ID, Role: model.RoleTeacher}, lesson.ID, UpdateLessonInput{Title: &title})
	var authz *apperr.AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("other teacher must be forbidden, got %v", err)
	}

	updated, err := svc.Update(ctx, Actor{UserID: admin.ID, Role: model.RoleAdmin}, lesson.ID, UpdateLessonInput{Title: &title})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Title != title || updated.Slug != "chain-rule" {
		t.Fatalf("updated = %+v", updated)
	}

	if err := svc.Delete(ctx, owner, lesson.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, owner, lesson.ID); !errors.As(err, new(*apperr.NotFoundError)) {
		t.Fatalf("second delete must be NotFound, got %v", err)
	}

	missing := uint(404)
	if _, err := svc.Create(ctx, owner, LessonInput{Title: "Orphan", SubjectID: &missing}); !errors.As(err, new(*apperr.NotFoundError)) {
		t.Fatalf("unknown subject must be NotFound, got %v", err)
	}
}
