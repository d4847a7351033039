package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/pivotalflow/platform-api/docs"
	"github.com/pivotalflow/platform-api/internal/api/handler"
	"github.com/pivotalflow/platform-api/internal/api/middleware"
	"github.com/pivotalflow/platform-api/internal/core/domain"
	"github.com/pivotalflow/platform-api/internal/core/service"
	mongodb "github.com/pivotalflow/platform-api/internal/infrastructure/db/mongo"
	redisdb "github.com/pivotalflow/platform-api/internal/infrastructure/db/redis"
	"github.com/pivotalflow/platform-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("pivotalflow"))

	// --- Dependencies ---
	allocationRepo := mongodb.NewAllocationRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	userLock := redisdb.NewUserLock(rdb)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	permissions := service.NewPermissionService(userRepo)
	allocationService := service.NewAllocationService(
		allocationRepo,
		projectRepo,
		userRepo,
		permissions,
		auditRepo,
		userLock,
		log,
	).WithHoursPerWeek(cfg.HoursPerWeek)

	authHandler := handler.NewAuthHandler(authService)
	allocationHandler := handler.NewAllocationHandler(allocationService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Allocation engine routes ---
	// Fine-grained permission checks live in the service layer; the RBAC gate
	// only rejects tokens carrying a role outside the platform's role set.
	v1 := e.Group("/v1",
		middleware.Auth(cfg.JWTSecret),
		middleware.RBAC(domain.RoleAdmin, domain.RoleManager, domain.RoleMember),
	)

	v1.POST("/allocations", allocationHandler.Create)
	v1.GET("/allocations", allocationHandler.List)
	v1.GET("/allocations/:id", allocationHandler.Get)
	v1.PATCH("/allocations/:id", allocationHandler.Update)
	v1.DELETE("/allocations/:id", allocationHandler.Delete)
	v1.GET("/projects/:id/capacity", allocationHandler.Capacity)

	return e
}
