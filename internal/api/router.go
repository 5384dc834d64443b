package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/facegate/auth-system/internal/api/handler"
	"github.com/facegate/auth-system/internal/api/middleware"
	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
	"github.com/facegate/auth-system/internal/core/service"
	mongostore "github.com/facegate/auth-system/internal/infrastructure/db/mongo"
	redisstore "github.com/facegate/auth-system/internal/infrastructure/db/redis"
)

// Config carries the settings the router needs to assemble the service
// graph.
type Config struct {
	JWTSecret      string
	TokenTTL       time.Duration
	MatchThreshold float64
	ThrottleMax    int
	ThrottleWindow time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, engine ports.TemplateEngine, verifier ports.IdentityVerifier, cfg Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echoprometheus.NewMiddleware("facegate"))

	// --- Dependencies ---
	accountRepo := mongostore.NewAccountRepository(db)
	throttle := redisstore.NewLoginThrottle(rdb, cfg.ThrottleMax, cfg.ThrottleWindow, log)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	authService := service.NewAuthService(accountRepo, engine, throttle, tokens)
	faceService := service.NewFaceService(accountRepo, engine, cfg.MatchThreshold, tokens, log)
	externalService := service.NewExternalAuthService(accountRepo, verifier, tokens, log)

	authHandler := handler.NewAuthHandler(authService, faceService, externalService)
	accountHandler := handler.NewAccountHandler(accountRepo)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/face", authHandler.LoginFace)
	e.POST("/auth/external", authHandler.LoginExternal)

	// --- Authenticated routes ---
	e.GET("/me", accountHandler.Me, authMiddleware)
	e.GET("/admin/accounts", accountHandler.ListEnrolled, authMiddleware, middleware.RBAC(domain.RoleAdmin))

	// --- Observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
