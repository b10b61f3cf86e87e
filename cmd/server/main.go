// @title Document Analyzer API
// @version 1.0
// @description Orders, payments, uploads and multi-provider LLM document analysis.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/analyzer/claude"
	"docanalyzer/internal/analyzer/gemini"
	"docanalyzer/internal/analyzer/openai"
	"docanalyzer/internal/cache"
	"docanalyzer/internal/config"
	"docanalyzer/internal/email/noop"
	"docanalyzer/internal/email/ses"
	"docanalyzer/internal/extract"
	"docanalyzer/internal/handler"
	"docanalyzer/internal/logger"
	"docanalyzer/internal/port"
	"docanalyzer/internal/payment/stripe"
	"docanalyzer/internal/repository/postgres"
	"docanalyzer/internal/router"
	"docanalyzer/internal/service"
	s3storage "docanalyzer/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Setup(cfg.Log, "docanalyzer-api")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	analysisRepo := postgres.NewAnalysisRepo(db)
	auditRepo := postgres.NewOrderAuditRepo(db)
	eventRepo := postgres.NewPaymentEventRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize infrastructure
	storage, err := s3storage.NewS3Storage(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	resultCache := cache.New(cfg.Redis)

	emailSender, err := newEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	var gateway port.PaymentGateway
	if cfg.Stripe.Enabled() {
		gateway = stripe.NewGateway(cfg.Stripe)
		log.Info().Str("currency", cfg.Stripe.Currency).Msg("payments enabled")
	} else {
		log.Warn().Msg("stripe not configured, payment endpoints will return 503")
	}

	analyzer.RegisterProvider("openai", openai.Factory)
	analyzer.RegisterProvider("claude", claude.Factory)
	analyzer.RegisterProvider("gemini", gemini.Factory)

	var docAnalyzer port.DocumentAnalyzer
	if a, err := analyzer.NewAnalyzer(&cfg.Analyzer); err != nil {
		log.Warn().Err(err).Msg("analysis disabled")
	} else {
		docAnalyzer = a
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	registrationSvc := service.NewRegistrationService(userRepo, authSvc, emailSender, cfg.JWT)
	passwordResetSvc := service.NewPasswordResetService(userRepo, emailSender, cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	orderSvc := service.NewOrderService(orderRepo, docRepo, userRepo, auditRepo, cfg.Pricing, cfg.Stripe.Currency)
	documentSvc := service.NewDocumentService(docRepo, orderRepo, auditRepo, storage, &cfg.S3)
	analysisSvc := service.NewAnalysisService(
		orderRepo, docRepo, analysisRepo, auditRepo, userRepo,
		storage, extract.New(cfg.Analysis.MaxTextChars), docAnalyzer, resultCache, emailSender,
		service.AnalysisConfig{
			MaxRetries: cfg.Queue.MaxRetries,
			Timeout:    cfg.Analysis.Timeout,
			CacheTTL:   cfg.Analysis.CacheTTL,
		},
	)
	paymentSvc := service.NewPaymentService(gateway, orderRepo, userRepo, eventRepo, auditRepo)
	statsSvc := service.NewStatsService(statsRepo)

	// Start the retry queue for rate-limited analyses
	worker := service.NewAnalysisQueueWorker(analysisRepo, analysisSvc, service.QueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
		Timeout:      cfg.Analysis.Timeout,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	// Initialize handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, registrationSvc, passwordResetSvc),
		User:     handler.NewUserHandler(userSvc),
		Order:    handler.NewOrderHandler(orderSvc),
		Document: handler.NewDocumentHandler(documentSvc),
		Analysis: handler.NewAnalysisHandler(analysisSvc),
		Payment:  handler.NewPaymentHandler(paymentSvc),
		Stats:    handler.NewStatsHandler(statsSvc),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"cache":    resultCache,
			"storage":  storage,
		}),
	}

	r := router.Setup(authSvc, userRepo, handlers, router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		SwaggerEnabled: cfg.Server.SwaggerEnabled,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	<-workerDone
	analysisSvc.Wait()
	log.Info().Msg("shutdown complete")
	return nil
}

func newEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	if cfg.Provider == "ses" {
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL)
	}
	if cfg.Provider != "noop" {
		log.Warn().Str("provider", cfg.Provider).Msg("unknown email provider, emails will only be logged")
	}
	return noop.NewNoopSender(cfg.FrontendURL), nil
}
