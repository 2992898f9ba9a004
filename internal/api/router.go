package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parkingapp/auth-service/internal/api/handler"
	"github.com/parkingapp/auth-service/internal/api/middleware"
	"github.com/parkingapp/auth-service/internal/core/ports"
	"github.com/parkingapp/auth-service/internal/core/service"
	"github.com/parkingapp/auth-service/internal/core/token"
	"github.com/parkingapp/auth-service/internal/infrastructure/config"
	mongostore "github.com/parkingapp/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/parkingapp/auth-service/internal/infrastructure/db/redis"
	"github.com/parkingapp/auth-service/internal/infrastructure/hash"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// activity may be nil, in which case no audit trail is recorded.
func NewRouter(cfg *config.Config, codec *token.Codec, db *mongo.Database, rdb *redis.Client, activity ports.ActivitySink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	store := mongostore.NewCredentialStore(db)
	throttle := redisstore.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
	authService := service.NewAuthService(store, hash.NewBcrypt(0), codec, cfg.DefaultRole, log).
		WithThrottle(throttle)
	if activity != nil {
		authService = authService.WithActivity(activity)
	}
	authHandler := handler.NewAuthHandler(authService)
	activityHandler := handler.NewActivityHandler(mongostore.NewActivityStore(db))
	authMiddleware := middleware.Auth(codec)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authMiddleware)
	e.GET("/auth/activity", activityHandler.List, authMiddleware, middleware.RBAC("ROLE_ADMIN"))

	// --- Observability & health probes (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
