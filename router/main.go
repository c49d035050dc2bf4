package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/database"
	"github.com/sahilchouksey/scholarhub/handlers"
	admin_handlers "github.com/sahilchouksey/scholarhub/handlers/admin"
	auth_handlers "github.com/sahilchouksey/scholarhub/handlers/auth"
	bookmark_handlers "github.com/sahilchouksey/scholarhub/handlers/bookmark"
	catalog_handlers "github.com/sahilchouksey/scholarhub/handlers/catalog"
	lesson_handlers "github.com/sahilchouksey/scholarhub/handlers/lesson"
	seo_handlers "github.com/sahilchouksey/scholarhub/handlers/seo"
	subject_handlers "github.com/sahilchouksey/scholarhub/handlers/subject"
	upload_handlers "github.com/sahilchouksey/scholarhub/handlers/upload"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/cache"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
)

// Dependencies are the long-lived collaborators the routes are built from.
// Cache, Files and AI are optional.
type Dependencies struct {
	Store      database.Storage
	JWTManager *auth.JWTManager
	Log        *logger.Logger
	Cache      cache.Cache
	Health     handlers.Pinger
	Files      services.FileStore
	AI         services.Summarizer
	Security   *middleware.SecurityConfig
	Audit      *middleware.AuditLogger
}

// SetupRoutes builds the services and mounts every route on app
func SetupRoutes(app *fiber.App, deps Dependencies) {
	db := deps.Store.GetDB()
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	// Services
	catalogService := services.NewCatalogService(db)
	lessonService := services.NewLessonService(db, log)
	seoService := services.NewSEOService(deps.AI, log)
	uploadService := services.NewUploadService(db, log, deps.Files, services.NewTextExtractor(log), seoService)
	adminService := services.NewAdminService(db, deps.Cache, log)
	subjectService := services.NewSubjectService(db)
	bookmarkService := services.NewBookmarkService(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTManager, db)
	var bruteForceProtection *middleware.BruteForceProtection
	if deps.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.Cache)
	}
	audit := deps.Audit
	if audit == nil {
		audit = middleware.NewAuditLogger(db, log)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Health)
	authHandler := auth_handlers.NewAuthHandler(db, deps.JWTManager, bruteForceProtection, log)
	catalogHandler := catalog_handlers.NewCatalogHandler(catalogService)
	lessonHandler := lesson_handlers.NewLessonHandler(lessonService, bookmarkService, adminService)
	uploadHandler := upload_handlers.NewUploadHandler(uploadService, adminService)
	adminHandler := admin_handlers.NewAdminHandler(adminService, uploadService)
	subjectHandler := subject_handlers.NewSubjectHandler(subjectService, adminService)
	bookmarkHandler := bookmark_handlers.NewBookmarkHandler(bookmarkService)
	seoHandler := seo_handlers.NewSEOHandler(seoService)

	if deps.Security != nil {
		middleware.SetupSecurity(app, *deps.Security)
	}

	// Health check endpoints (public)
	app.Get("/ping", healthHandler.Ping)
	app.Get("/health", healthHandler.Check)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckLock(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/logout-all", authMiddleware.Required(), authHandler.LogoutAll)
	authGroup.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	authGroup.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)
	authGroup.Put("/password", authMiddleware.Required(), authHandler.ChangePassword)

	// Catalog hierarchy (public)
	universities := api.Group("/universities")
	universities.Get("/", catalogHandler.ListUniversities)
	universities.Get("/:uni", catalogHandler.GetUniversity)
	universities.Get("/:uni/faculty/:fac", catalogHandler.GetFaculty)
	universities.Get("/:uni/faculty/:fac/program/:prog", catalogHandler.GetProgram)
	universities.Get("/:uni/faculty/:fac/program/:prog/semester/:sem", catalogHandler.GetSemester)
	universities.Get("/:uni/faculty/:fac/program/:prog/semester/:sem/subject/:subj", catalogHandler.GetSubject)

	// Subjects (public reads)
	subjects := api.Group("/subjects")
	subjects.Get("/", subjectHandler.ListSubjects)
	subjects.Get("/:slug", subjectHandler.GetSubject)

	// Lessons
	canAuthor := middleware.RequireRole(model.RoleTeacher, model.RoleAdmin)
	lessons := api.Group("/lessons")
	lessons.Get("/", lessonHandler.ListLessons)
	lessons.Get("/:id/adjacent", lessonHandler.GetAdjacent)
	lessons.Get("/:slug", authMiddleware.Optional(), lessonHandler.GetLesson)
	lessons.Post("/", authMiddleware.Required(), canAuthor, lessonHandler.CreateLesson)
	lessons.Put("/:id", authMiddleware.Required(), canAuthor, lessonHandler.UpdateLesson)
	lessons.Delete("/:id", authMiddleware.Required(), canAuthor, lessonHandler.DeleteLesson)

	// Uploads (any signed-in user)
	uploads := api.Group("/uploads", authMiddleware.Required())
	uploads.Post("/", uploadHandler.CreateUpload)
	uploads.Get("/mine", uploadHandler.ListMyUploads)
	uploads.Get("/:id", uploadHandler.GetUpload)

	// Bookmarks
	bookmarks := api.Group("/bookmarks", authMiddleware.Required())
	bookmarks.Get("/", bookmarkHandler.ListBookmarks)
	bookmarks.Put("/:lesson_id", bookmarkHandler.AddBookmark)
	bookmarks.Delete("/:lesson_id", bookmarkHandler.RemoveBookmark)

	// SEO assist
	api.Post("/seo/suggest", authMiddleware.Required(), seoHandler.Suggest)

	// Admin console
	admin := api.Group("/admin", authMiddleware.Required(), middleware.RequireAdmin())
	admin.Get("/stats", adminHandler.GetStats)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/moderators", adminHandler.ListModerators)
	admin.Get("/lessons", adminHandler.ListLessons)
	admin.Get("/subjects", adminHandler.ListSubjects)
	admin.Get("/uploads", adminHandler.ListUploads)
	admin.Get("/audit-logs", adminHandler.ListAuditLogs)

	admin.Patch("/users/:id", audit.Audit("user_update", "users"), adminHandler.UpdateUser)
	admin.Delete("/users/:id", audit.Audit("user_delete", "users"), adminHandler.DeleteUser)
	admin.Patch("/uploads/:id", audit.Audit("upload_moderate", "uploads"), adminHandler.ModerateUpload)
	admin.Delete("/uploads/:id", audit.Audit("upload_delete", "uploads"), adminHandler.DeleteUpload)

	admin.Post("/subjects", audit.Audit("subject_create", "subjects"), subjectHandler.CreateSubject)
	admin.Put("/subjects/:id", audit.Audit("subject_update", "subjects"), subjectHandler.UpdateSubject)
	admin.Delete("/subjects/:id", audit.Audit("subject_delete", "subjects"), subjectHandler.DeleteSubject)

	catalogAdmin := admin.Group("/catalog")
	catalogAdmin.Post("/universities", audit.Audit("university_create", "universities"), catalogHandler.CreateUniversity)
	catalogAdmin.Post("/faculties", audit.Audit("faculty_create", "faculties"), catalogHandler.CreateFaculty)
	catalogAdmin.Post("/programs", audit.Audit("program_create", "programs"), catalogHandler.CreateProgram)
	catalogAdmin.Post("/semesters", audit.Audit("semester_create", "semesters"), catalogHandler.CreateSemester)

	log.Info("routes registered", "routes", len(app.GetRoutes(true)))
}
