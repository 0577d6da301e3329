package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "volugram/docs" // This is for Swagger
	"volugram/internal/auth"
	"volugram/internal/captcha"
	"volugram/internal/certificate"
	"volugram/internal/config"
	"volugram/internal/database"
	"volugram/internal/email"
	"volugram/internal/handlers"
	"volugram/internal/logger"
	"volugram/internal/middleware"
	"volugram/internal/repository"
	"volugram/internal/service"
	"volugram/internal/tokenstore"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Volugram API
// @version 1.0
// @description Backend API for the Volugram volunteer hours and certificate platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@volugram.eu

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	formRepo := repository.NewFormRepository(db.DB)
	submissionRepo := repository.NewSubmissionRepository(db.DB)

	// Initialize single-use token registries
	activations := tokenstore.New[service.PendingAccount](cfg.TokenStore.ActivationTTL)
	defer activations.Close()
	resets := tokenstore.New[string](cfg.TokenStore.ResetTTL)
	defer resets.Close()

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email)
	captchaClient := captcha.NewClient(&cfg.Captcha)
	renderer := certificate.NewRenderer()

	authSvc := service.NewAuthService(userRepo, authService, emailService, activations, resets)
	formSvc := service.NewFormService(formRepo)
	userSvc := service.NewUserService(userRepo)
	submissionSvc := service.NewSubmissionService(submissionRepo, formRepo, userRepo, captchaClient, renderer, emailService)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	middleware.InitMetrics()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	formHandler := handlers.NewFormHandler(formSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	submissionHandler := handlers.NewSubmissionHandler(submissionSvc)

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/v1/auth/activate/{token}", authHandler.Activate)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/v1/auth/password-reset/request", authHandler.RequestPasswordReset)
	mux.HandleFunc("POST /api/v1/auth/password-reset/confirm", authHandler.ResetPassword)

	mux.HandleFunc("POST /api/v1/submissions", submissionHandler.Submit)
	mux.HandleFunc("GET /api/v1/forms/{token}", formHandler.Get)
	mux.HandleFunc("POST /api/v1/certificates/bundle", submissionHandler.RequestCertificates)

	// Protected routes
	mux.Handle("GET /api/v1/submissions", authMw.Authenticate(http.HandlerFunc(submissionHandler.ListPending)))
	mux.Handle("GET /api/v1/submissions/{id}", authMw.Authenticate(http.HandlerFunc(submissionHandler.Get)))
	mux.Handle("POST /api/v1/submissions/{id}/confirm", authMw.Authenticate(http.HandlerFunc(submissionHandler.Confirm)))
	mux.Handle("POST /api/v1/submissions/{id}/reject", authMw.Authenticate(http.HandlerFunc(submissionHandler.Reject)))

	mux.Handle("POST /api/v1/forms", authMw.Authenticate(http.HandlerFunc(formHandler.Create)))
	mux.Handle("GET /api/v1/forms", authMw.Authenticate(http.HandlerFunc(formHandler.List)))
	mux.Handle("DELETE /api/v1/forms/{token}", authMw.Authenticate(http.HandlerFunc(formHandler.Delete)))

	mux.Handle("GET /api/v1/users/profile", authMw.Authenticate(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("PUT /api/v1/users/profile/name", authMw.Authenticate(http.HandlerFunc(userHandler.UpdateName)))
	mux.Handle("PUT /api/v1/users/profile/avatar", authMw.Authenticate(http.HandlerFunc(userHandler.UpdateAvatar)))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`))
			if err != nil {
				slog.Error("Failed to write health check response", "error", err)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`))
		if err != nil {
			slog.Error("Failed to write health check response", "error", err)
		}
	})

	// Prometheus metrics
	mux.Handle("/metrics", middleware.MetricsHandler())

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(
					middleware.Instrument(mux),
				),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
