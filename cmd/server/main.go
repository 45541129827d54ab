// Package main provides the schedule bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/glebkhr/schedbot-go/internal/bot"
	"github.com/glebkhr/schedbot-go/internal/config"
	"github.com/glebkhr/schedbot-go/internal/logger"
	"github.com/glebkhr/schedbot-go/internal/metrics"
	"github.com/glebkhr/schedbot-go/internal/sheets"
	"github.com/glebkhr/schedbot-go/internal/source"
	"github.com/glebkhr/schedbot-go/internal/timetable"
)

// HTTP server timeouts. The server only exposes health and metrics
// endpoints, so short limits are enough.
const (
	httpReadTimeout  = 10 * time.Second
	httpWriteTimeout = 15 * time.Second
	httpIdleTimeout  = 60 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Scheduler Bot Server")

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create spreadsheet export client
	sheetsClient := sheets.NewClient(cfg.FetchTimeout, cfg.FetchMaxRetries)
	log.Info("Sheets client created")

	// Create the timetable classifier and the source store
	classifier := timetable.NewClassifier(timetable.DefaultClassifierConfig())
	store := source.NewStore(sheetsClient, classifier, cfg.Sources, log, m)
	log.WithField("sources", len(cfg.Sources)).Info("Source store created")

	// Create Telegram bot client
	tg, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram client")
		os.Exit(1)
	}
	log.WithField("username", tg.Self.UserName).Info("Telegram client authorized")

	schedBot := bot.New(tg, store, classifier, cfg.Bot, log, m)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	// Setup routes
	setupRoutes(router, store, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	// Start background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Bot long-polling loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in bot polling goroutine")
			}
		}()
		schedBot.Run(ctx)
	}()

	// Background source warmup (non-blocking): preload every registered
	// spreadsheet so the first user does not pay the fetch latency
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in warmup goroutine")
			}
		}()
		warmSources(ctx, store, cfg.FetchTimeout, log)
	}()

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Cancel context to stop the bot and warmup
	cancel()

	// Wait for goroutines to finish (with timeout)
	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
