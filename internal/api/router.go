package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/notely/notes-api/docs"
	"github.com/notely/notes-api/internal/api/handler"
	"github.com/notely/notes-api/internal/api/middleware"
	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
	"github.com/notely/notes-api/internal/core/service"
	mongodb "github.com/notely/notes-api/internal/infrastructure/db/mongo"
)

// RouterConfig carries everything the router needs beyond the datastores.
type RouterConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, recorder ports.AuditRecorder, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("notes"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	noteRepo := mongodb.NewNoteRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	noteService := service.NewNoteService(noteRepo, userRepo, recorder, log)
	adminService := service.NewAdminService(userRepo, noteRepo, auditRepo, recorder, log)

	authHandler := handler.NewAuthHandler(authService)
	noteHandler := handler.NewNoteHandler(noteService)
	adminHandler := handler.NewAdminHandler(adminService)

	authMW := middleware.Auth(cfg.JWTSecret, userRepo)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authMW)

	// --- Note routes ---
	notes := e.Group("/api/notes", authMW)
	notes.POST("", noteHandler.Create)
	notes.GET("", noteHandler.List)
	notes.GET("/trash", noteHandler.ListTrash)
	notes.GET("/:id", noteHandler.Get)
	notes.PUT("/:id", noteHandler.Update)
	notes.PATCH("/:id/status", noteHandler.UpdateStatus)
	notes.DELETE("/:id", noteHandler.Trash)
	notes.PATCH("/:id/restore", noteHandler.Restore)
	notes.DELETE("/:id/hard", noteHandler.HardDelete)
	notes.GET("/:id/shares", noteHandler.ListShares)
	notes.POST("/:id/share", noteHandler.Share)
	notes.PATCH("/:id/share/:userId", noteHandler.UpdateShare)
	notes.DELETE("/:id/share/:userId", noteHandler.RemoveShare)
	notes.GET("/:id/comments", noteHandler.ListComments)
	notes.POST("/:id/comments", noteHandler.AddComment)

	// --- Staff routes (moderator or admin) ---
	staff := e.Group("/api/admin", authMW, middleware.RBAC(domain.RoleModerator, domain.RoleAdmin))
	staff.GET("/users-lite", adminHandler.ListUsersLite)
	staff.GET("/notes", adminHandler.ListNotes)
	staff.PATCH("/notes/:id", adminHandler.UpdateNote)
	staff.PATCH("/notes/:id/trash", adminHandler.TrashNote)
	staff.PATCH("/notes/:id/restore", adminHandler.RestoreNote)

	// --- Admin-only routes ---
	admin := e.Group("/api/admin", authMW, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.PATCH("/users/:id/role", adminHandler.UpdateUserRole)
	admin.PATCH("/users/:id/ban", adminHandler.SetUserBan)
	admin.DELETE("/notes/:id", adminHandler.DeleteNote)
	admin.GET("/audit-logs", adminHandler.ListAuditLogs)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
