package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pdfapp "github.com/pdfgen/backend/internal/application/pdf"
	"github.com/pdfgen/backend/internal/infrastructure/config"
	"github.com/pdfgen/backend/internal/infrastructure/logger"
	"github.com/pdfgen/backend/internal/infrastructure/render"
	"github.com/pdfgen/backend/internal/infrastructure/storage"
	"github.com/pdfgen/backend/internal/infrastructure/sweeper"
	"github.com/pdfgen/backend/internal/interfaces/http/handler"
	"github.com/pdfgen/backend/internal/interfaces/http/middleware"
	"github.com/pdfgen/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting PDF generator service",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage_dir", cfg.Storage.Dir),
		zap.Duration("retention", cfg.Retention.Window),
	)

	// File store, rehydrating any PDFs surviving a previous run
	store, err := storage.New(cfg.Storage.Dir, log)
	if err != nil {
		log.Fatal("Failed to initialize file store", zap.Error(err))
	}

	// Rendering engine
	renderer, err := render.NewChromedpRenderer(&render.ChromedpConfig{
		DefaultTimeout: cfg.Render.Timeout,
		RemoteURL:      cfg.Render.RemoteURL,
		NoSandbox:      cfg.Render.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize renderer", zap.Error(err))
	}

	// Retention sweeper
	sweep := sweeper.New(store, cfg.Retention.Window, cfg.Retention.SweepInterval, log)
	sweep.Start(context.Background())

	// Application service
	defaults, err := cfg.DefaultOptions()
	if err != nil {
		log.Fatal("Invalid render defaults", zap.Error(err))
	}
	pdfService := pdfapp.NewService(renderer, store, pdfapp.ServiceConfig{
		Defaults:      defaults,
		BaseURL:       cfg.HTTP.BaseURL,
		CookieDomain:  cfg.Render.CookieDomain,
		RenderTimeout: cfg.Render.Timeout,
	}, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Middleware stack in order: request ID, panic recovery, request
	// logging, metrics, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Metrics())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Routes
	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler())
	r.Register(handler.NewPDFHandler(pdfService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown: drain in-flight requests, then stop the sweeper
	// and release the browser
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	sweep.Stop()
	if err := renderer.Close(); err != nil {
		log.Warn("Failed to close renderer", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
