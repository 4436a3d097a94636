package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/cache"
	"github.com/GTDGit/procure_api/internal/config"
	"github.com/GTDGit/procure_api/internal/database"
	"github.com/GTDGit/procure_api/internal/handler"
	"github.com/GTDGit/procure_api/internal/middleware"
	"github.com/GTDGit/procure_api/internal/notify"
	"github.com/GTDGit/procure_api/internal/repository"
	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/sse"
	"github.com/GTDGit/procure_api/internal/utils"
	"github.com/GTDGit/procure_api/internal/worker"
	"github.com/GTDGit/procure_api/pkg/webhookproxy"
)

// main is the application entrypoint for the procurement API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting procure api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	comparisonCache := cache.NewComparisonCache(redisClient, cfg.Cache.ComparisonTTL)

	// 4. Initialize repositories
	vendorRepo := repository.NewVendorRepository(db)
	mrRepo := repository.NewMaterialRequestRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 5. Event hub and outbound integrations
	hub := sse.NewHub()
	events := sse.NewHubNotifier(hub)

	var mailer notify.Notifier = notify.NopNotifier{}
	if cfg.Mail.Enabled() {
		ses, err := notify.NewSESNotifier(context.Background(), cfg.Mail.Region, cfg.Mail.FromEmail)
		if err != nil {
			log.Warn().Err(err).Msg("SES initialization failed - emails will be disabled")
		} else {
			mailer = ses
			log.Info().Str("from", cfg.Mail.FromEmail).Msg("SES mailer enabled")
		}
	}

	var sender service.WebhookSender
	if cfg.Webhook.Enabled() {
		sender = webhookproxy.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout)
		log.Info().Str("url", cfg.Webhook.URL).Msg("webhook proxy enabled")
	} else {
		log.Warn().Msg("WEBHOOK_URL not set - quote requests and orders will not be forwarded")
	}

	// 6. Initialize services
	utils.SetJWTSecret(cfg.JWTSecret)

	eligibilitySvc := service.NewEligibilityService(mailer)
	vendorSvc := service.NewVendorService(vendorRepo)
	mrSvc := service.NewMaterialRequestService(mrRepo)
	webhookSvc := service.NewWebhookService(webhookRepo, sender, cfg.Webhook.Secret)
	quoteSvc := service.NewQuoteService(mrRepo, vendorRepo, quoteRepo, comparisonCache, events, webhookSvc)
	sessionSvc := service.NewSessionService(sessionRepo, vendorRepo, mrSvc, quoteSvc, webhookSvc, events, mailer, cfg.Session.TTL)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)

	if cfg.Admin.Enabled() {
		if _, err := adminAuthSvc.EnsureAdmin(context.Background(), cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword, "Administrator"); err != nil {
			log.Error().Err(err).Msg("failed to ensure bootstrap admin")
		}
	}

	// 7. Initialize handlers
	if err := handler.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	handlers := &Handlers{
		Health:          handler.NewHealthHandler(db, redisClient),
		Eligibility:     handler.NewEligibilityHandler(eligibilitySvc),
		Vendor:          handler.NewVendorHandler(vendorSvc),
		MaterialRequest: handler.NewMaterialRequestHandler(mrSvc),
		Quote:           handler.NewQuoteHandler(quoteSvc, mrSvc, webhookSvc),
		Session:         handler.NewSessionHandler(sessionSvc),
		Webhook:         handler.NewWebhookHandler(webhookSvc),
		SSE:             handler.NewSSEHandler(hub, mrSvc),
		Auth:            handler.NewAuthHandler(adminAuthSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()
	loginLimiter := middleware.NewInvalidAuthRateLimiter(redisClient)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	sweeper, err := worker.NewSessionSweeper(sessionSvc, cfg.Worker.SessionSweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Worker.SessionSweepSchedule).Msg("invalid session sweep schedule")
	}
	go sweeper.Start(ctx)
	go worker.NewWebhookRetryWorker(webhookSvc, cfg.Worker.WebhookRetryInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let queued eligibility emails go out before the process exits.
	eligibilitySvc.Wait()
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health          *handler.HealthHandler
	Eligibility     *handler.EligibilityHandler
	Vendor          *handler.VendorHandler
	MaterialRequest *handler.MaterialRequestHandler
	Quote           *handler.QuoteHandler
	Session         *handler.SessionHandler
	Webhook         *handler.WebhookHandler
	SSE             *handler.SSEHandler
	Auth            *handler.AuthHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.InvalidAuthRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	router.POST("/v1/eligibility/check", handlers.Eligibility.Check)

	router.GET("/v1/vendors", handlers.Vendor.ListVendors)
	router.GET("/v1/vendors/:id", handlers.Vendor.GetVendor)

	// Material requests and quotes
	mr := router.Group("/v1/material-requests")
	{
		mr.POST("", handlers.MaterialRequest.Create)
		mr.GET("/:id", handlers.MaterialRequest.Get)
		mr.PUT("/:id/items", handlers.MaterialRequest.UpdateItems)
		mr.POST("/:id/quote-requests", handlers.Quote.RequestQuotes)
		mr.GET("/:id/quotes", handlers.Quote.ListQuotes)
		mr.POST("/:id/quotes", handlers.Quote.SubmitQuote)
		mr.GET("/:id/comparison", handlers.Quote.Compare)
		mr.GET("/:id/comparison/export", handlers.Quote.Export)
		mr.GET("/:id/events", handlers.SSE.MaterialRequestStream)
	}

	// Procurement session (guided flow)
	router.POST("/v1/sessions", handlers.Session.Start)
	session := router.Group("/v1/sessions/current")
	session.Use(middleware.SessionMiddleware())
	{
		session.GET("", handlers.Session.Get)
		session.POST("/vendors", handlers.Session.SelectVendors)
		session.POST("/quote-request", handlers.Session.RequestQuotes)
		session.GET("/comparison", handlers.Session.Compare)
		session.POST("/choice", handlers.Session.ChooseVendor)
		session.POST("/order", handlers.Session.PlaceOrder)
		session.POST("/cancel", handlers.Session.Cancel)
	}

	// Third-party webhook
	router.POST("/v1/proxy/:event", handlers.Webhook.Proxy)
	router.POST("/v1/integrations/quotes", handlers.Quote.SubmitIntegrationQuote)

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", loginLimiter.Handle(), handlers.Auth.Login)
	// EventSource cannot set headers, so the stream accepts ?token=.
	admin.GET("/sse", jwtMiddleware.HandleWithQueryToken(), handlers.SSE.AdminStream)
	admin.Use(jwtMiddleware.Handle())
	{
		// Vendor Management
		admin.GET("/vendors", handlers.Vendor.ListVendors)
		admin.POST("/vendors", handlers.Vendor.CreateVendor)
		admin.PUT("/vendors/:id", handlers.Vendor.UpdateVendor)
		admin.DELETE("/vendors/:id", handlers.Vendor.DeleteVendor)

		// Material Request Management
		admin.GET("/material-requests", handlers.MaterialRequest.List)
		admin.POST("/material-requests/:id/cancel", handlers.MaterialRequest.Cancel)

		// Webhook delivery log
		admin.GET("/webhooks", handlers.Webhook.ListDeliveries)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
