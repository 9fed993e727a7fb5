package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/staffdesk/auth-service/internal/api/handler"
	"github.com/staffdesk/auth-service/internal/api/middleware"
	"github.com/staffdesk/auth-service/internal/core/ports"
	"github.com/staffdesk/auth-service/internal/core/service"
	mongostore "github.com/staffdesk/auth-service/internal/infrastructure/db/mongo"
	"github.com/staffdesk/auth-service/internal/infrastructure/mail"
	"github.com/staffdesk/auth-service/internal/pkg/config"
)

// Dependencies carries the externally-owned resources the router wires into
// handlers and services.
type Dependencies struct {
	DB     *mongo.Database
	Redis  *redis.Client
	Config *config.Config
	// Sink is the async notification dispatcher (started by main).
	Sink   ports.Notifier
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	cfg := deps.Config
	accountRepo := mongostore.NewAccountRepository(deps.DB)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	lifecycleMailer := mail.NewLifecycleMailer(deps.Sink, cfg.BaseURL, deps.Logger)
	accountService := service.NewAccountService(accountRepo, tokenService, lifecycleMailer, cfg.ResetTTL, deps.Logger)

	authHandler := handler.NewAuthHandler(accountService)
	uploadHandler, err := handler.NewUploadHandler(cfg.UploadDir, deps.Sink)
	if err != nil {
		return nil, err
	}

	// --- Public routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)

	// --- Protected routes: bearer auth + route authorization table ---
	g := e.Group("", middleware.Auth(tokenService), middleware.Authorize())
	g.POST("/auth/add-user", authHandler.AddUser)
	g.POST("/auth/add-manager", authHandler.AddManager)
	g.POST("/auth/approve-user", authHandler.ApproveUser)
	g.POST("/auth/reject-user", authHandler.RejectUser)
	g.POST("/auth/change-password", authHandler.ChangePassword)
	g.POST("/upload/file", uploadHandler.UploadFile)
	g.GET("/download/:filename", uploadHandler.DownloadFile)
	g.POST("/email/send", uploadHandler.SendEmail)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
