package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicreporter/civic-reporter-api/internal/api/handler"
	"github.com/civicreporter/civic-reporter-api/internal/api/middleware"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

// Services bundles the core services the router exposes over HTTP.
type Services struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Reports   ports.ReportService
	Analytics ports.AnalyticsService
	Stream    handler.EventStream
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, svc Services, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("civicreporter"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	reportHandler := handler.NewReportHandler(svc.Reports)
	analyticsHandler := handler.NewAnalyticsHandler(svc.Analytics)
	eventsHandler := handler.NewEventsHandler(svc.Stream)
	requireAuth := middleware.Auth(svc.Auth)

	v1 := e.Group("/api/v1")

	// --- Auth ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.Refresh)

	// --- Users ---
	v1.GET("/users/me", userHandler.Me, requireAuth)
	v1.PUT("/users/me", userHandler.UpdateMe, requireAuth)
	v1.POST("/users/me/profile-picture", userHandler.SetProfilePicture, requireAuth)
	v1.DELETE("/users/me/profile-picture", userHandler.DeleteProfilePicture, requireAuth)
	v1.GET("/users/:id", userHandler.Get)

	// --- Reports ---
	v1.POST("/reports", reportHandler.Create, requireAuth)
	v1.GET("/reports", reportHandler.List)
	v1.GET("/reports/:id", reportHandler.Get)
	v1.PUT("/reports/:id", reportHandler.Update, requireAuth)
	v1.DELETE("/reports/:id", reportHandler.Delete, requireAuth)
	v1.POST("/reports/:id/vote", reportHandler.Vote, requireAuth)
	v1.POST("/reports/:id/comments", reportHandler.AddComment, requireAuth)
	v1.GET("/reports/:id/comments", reportHandler.ListComments)

	// --- Analytics ---
	v1.GET("/analytics/overview", analyticsHandler.Overview)
	v1.GET("/analytics/reports-timeline", analyticsHandler.Timeline)
	v1.GET("/analytics/top-locations", analyticsHandler.TopLocations)
	v1.GET("/analytics/user-stats/:id", analyticsHandler.UserStats)

	// --- Realtime ---
	v1.GET("/events", eventsHandler.Subscribe)

	// --- Health probes and operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
