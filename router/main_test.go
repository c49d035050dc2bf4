package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/database"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/cache"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	app   *fiber.App
	db    *gorm.DB
	audit *middleware.AuditLogger
}

// mapCache is an in-process cache.Cache for route tests
type mapCache struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *mapCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok {
		return "", cache.ErrNotFound
	}
	return v, nil
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vals == nil {
		m.vals = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		m.vals[key] = string(v)
	default:
		m.vals[key] = fmt.Sprint(v)
	}
	return nil
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.vals, k)
	}
	return nil
}

func (m *mapCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	return err == nil, nil
}

func (m *mapCache) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vals == nil {
		m.vals = map[string]string{}
	}
	var n int64
	fmt.Sscan(m.vals[key], &n)
	n++
	m.vals[key] = fmt.Sprint(n)
	return n, nil
}

func (m *mapCache) Expire(context.Context, string, time.Duration) error { return nil }

func (m *mapCache) TTL(context.Context, string) (time.Duration, error) { return time.Minute, nil }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithCache(t, nil)
}

func newTestServerWithCache(t *testing.T, c cache.Cache) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	audit := middleware.NewAuditLogger(db, logger.Nop())
	app := fiber.New()
	SetupRoutes(app, Dependencies{
		Store:      database.NewGORMStore(db, logger.Nop()),
		JWTManager: auth.NewJWTManager(auth.JWTConfig{Secret: "router-test-secret", Issuer: "scholarhub-test"}),
		Audit:      audit,
		Cache:      c,
	})
	return &testServer{app: app, db: db, audit: audit}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
		"name":     "Test User",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, status)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.AccessToken == "" {
		t.Fatalf("register %s: missing access token", email)
	}
	return out.AccessToken
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if status, _ := s.do(t, http.MethodGet, "/ping", "", nil); status != http.StatusOK {
		t.Fatalf("ping status = %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/health", "", nil); status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}
}

func TestUploadModerationFlow(t *testing.T) {
	s := newTestServer(t)

	subject := &model.Subject{Name: "Data Structures", Slug: "data-structures"}
	if err := s.db.Create(subject).Error; err != nil {
		t.Fatalf("create subject: %v", err)
	}

	studentToken := s.register(t, "student@example.com")
	adminToken := s.register(t, "admin@example.com")
	if err := s.db.Model(&model.User{}).Where("email = ?", "admin@example.com").Update("role", model.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}

	status, env := s.do(t, http.MethodPost, "/api/v1/uploads", studentToken, map[string]interface{}{
		"title":      "Linked Lists",
		"subject_id": subject.ID,
		"content":    "A linked list is a chain of nodes, each pointing at the next one.",
	})
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d", status)
	}
	var upload model.Upload
	if err := json.Unmarshal(env.Data, &upload); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if upload.Status != model.UploadStatusPending || upload.LessonID == nil {
		t.Fatalf("upload = %+v, want pending with a draft lesson", upload)
	}

	var draft model.Lesson
	if err := s.db.First(&draft, *upload.LessonID).Error; err != nil {
		t.Fatalf("load draft: %v", err)
	}
	lessonPath := "/api/v1/lessons/" + draft.Slug
	if status, _ := s.do(t, http.MethodGet, lessonPath, "", nil); status != http.StatusNotFound {
		t.Fatalf("draft lesson status = %d, want 404", status)
	}

	moderatePath := fmt.Sprintf("/api/v1/admin/uploads/%d", upload.ID)
	decision := map[string]string{"status": "approved"}

	if status, _ := s.do(t, http.MethodPatch, moderatePath, studentToken, decision); status != http.StatusForbidden {
		t.Fatalf("student moderation status = %d, want 403", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/v1/admin/stats", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous stats status = %d, want 401", status)
	}

	if status, _ := s.do(t, http.MethodPatch, moderatePath, adminToken, decision); status != http.StatusOK {
		t.Fatalf("approve status = %d", status)
	}
	status, env = s.do(t, http.MethodPatch, moderatePath, adminToken, map[string]string{"status": "rejected"})
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "INVALID_STATE" {
		t.Fatalf("second decision = %d %+v, want 409 INVALID_STATE", status, env.Error)
	}

	if status, _ := s.do(t, http.MethodGet, lessonPath, "", nil); status != http.StatusOK {
		t.Fatalf("published lesson status = %d, want 200", status)
	}

	s.audit.Wait()
	var logs []model.AdminAuditLog
	if err := s.db.Where("action = ?", "upload_moderate").Find(&logs).Error; err != nil {
		t.Fatalf("load audit logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("audit entries = %d, want 1 (failed decision is not recorded)", len(logs))
	}
}

func TestAdminStatsRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "teacher@example.com")

	if status, _ := s.do(t, http.MethodGet, "/api/v1/admin/stats", token, nil); status != http.StatusForbidden {
		t.Fatalf("non-admin stats status = %d, want 403", status)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "dup@example.com")

	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "dup@example.com",
		"password": "correct-horse-battery",
		"name":     "Again",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", status)
	}
}

func TestLessonWritesRefreshCachedStats(t *testing.T) {
	s := newTestServerWithCache(t, &mapCache{})
	adminToken := s.register(t, "admin@example.com")
	if err := s.db.Model(&model.User{}).Where("email = ?", "admin@example.com").Update("role", model.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}

	publishedCount := func() int64 {
		t.Helper()
		status, env := s.do(t, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
		if status != http.StatusOK {
			t.Fatalf("stats status = %d", status)
		}
		var stats struct {
			PublishedLessonCount int64 `json:"published_lesson_count"`
		}
		if err := json.Unmarshal(env.Data, &stats); err != nil {
			t.Fatalf("decode stats: %v", err)
		}
		return stats.PublishedLessonCount
	}

	if got := publishedCount(); got != 0 {
		t.Fatalf("published lessons = %d, want 0", got)
	}

	status, env := s.do(t, http.MethodPost, "/api/v1/lessons", adminToken, map[string]string{
		"title":   "Graph Traversal",
		"content": "Breadth first search visits neighbours before going deeper.",
	})
	if status != http.StatusCreated {
		t.Fatalf("create lesson status = %d", status)
	}
	var lesson model.Lesson
	if err := json.Unmarshal(env.Data, &lesson); err != nil {
		t.Fatalf("decode lesson: %v", err)
	}

	if got := publishedCount(); got != 1 {
		t.Fatalf("published lessons after create = %d, want 1", got)
	}

	if status, _ := s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/lessons/%d", lesson.ID), adminToken, nil); status != http.StatusOK {
		t.Fatalf("delete lesson status = %d", status)
	}
	if got := publishedCount(); got != 0 {
		t.Fatalf("published lessons after delete = %d, want 0", got)
	}
}

func TestLessonDetailReportsBookmarkForSignedInReader(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "reader@example.com")

	author := model.User{Email: "author@example.com", Name: "Author", Role: model.RoleTeacher, PasswordHash: "x"}
	if err := s.db.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	lesson := model.Lesson{Title: "Heaps", Slug: "heaps", Published: true, Difficulty: model.DifficultyBeginner, AuthorID: author.ID}
	if err := s.db.Create(&lesson).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	bookmarked := func(token string) *bool {
		t.Helper()
		status, env := s.do(t, http.MethodGet, "/api/v1/lessons/heaps", token, nil)
		if status != http.StatusOK {
			t.Fatalf("get lesson status = %d", status)
		}
		var detail struct {
			Bookmarked *bool `json:"bookmarked"`
		}
		if err := json.Unmarshal(env.Data, &detail); err != nil {
			t.Fatalf("decode lesson: %v", err)
		}
		return detail.Bookmarked
	}

	if got := bookmarked(""); got != nil {
		t.Fatalf("anonymous reader bookmarked = %v, want absent", *got)
	}
	if got := bookmarked(token); got == nil || *got {
		t.Fatalf("signed-in reader before bookmarking = %v, want false", got)
	}

	if status, _ := s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bookmarks/%d", lesson.ID), token, nil); status >= 300 {
		t.Fatalf("add bookmark status = %d", status)
	}
	if got := bookmarked(token); got == nil || !*got {
		t.Fatalf("signed-in reader after bookmarking = %v, want true", got)
	}
	if got := bookmarked("not-a-token"); got != nil {
		t.Fatalf("invalid token must read anonymously, got %v", *got)
	}
}
