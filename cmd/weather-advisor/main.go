package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YGJH/backend-test/internal/advice"
	httpapi "github.com/YGJH/backend-test/internal/api/http"
	"github.com/YGJH/backend-test/internal/config"
	"github.com/YGJH/backend-test/internal/history"
	"github.com/YGJH/backend-test/internal/scheduler"
	"github.com/YGJH/backend-test/internal/store"
	"github.com/YGJH/backend-test/internal/weather"
	"github.com/YGJH/backend-test/internal/weather/providers"
)

func main() {
	// Load configuration (.env is read by config.Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	// Last good documents, one file per kind.
	snapshots, err := store.NewFileStore(cfg.SnapshotDir)
	if err != nil {
		log.Fatalf("failed to open snapshot store: %v", err)
	}

	cwa := providers.NewCWAProvider(httpClient, providers.CWAConfig{
		BaseURL:         cfg.CWABaseURL,
		APIKey:          cfg.CWAAPIKey,
		CurrentDataset:  cfg.CWACurrentDataset,
		ForecastDataset: cfg.CWAForecastDataset,
	})

	var geocoder weather.CityResolver
	if cfg.GoogleMapsAPIKey != "" {
		geocoder = providers.NewGoogleGeocoder(httpClient, cfg.GoogleMapsAPIKey, cfg.GeocodeURL, cfg.GeocodeLanguage)
	} else {
		log.Printf("WARN: GOOGLE_MAPS_API_KEY not set, coordinate lookups are disabled")
	}

	// Advice degrades to a fixed message when the model is unavailable.
	var generator advice.Generator
	gemini, err := providers.NewGeminiAdvisor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("WARN: advice generation disabled: %v", err)
	} else {
		defer gemini.Close()
		generator = gemini
	}
	advisor := advice.NewPrompter(generator, cfg.AdviceLanguage, cfg.UpstreamTimeout)

	// Advice history is optional.
	var adviceHistory history.Store = history.NopHistory{}
	if cfg.DatabaseURL != "" {
		dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("WARN: could not connect to database, advice history disabled: %v", err)
		} else {
			defer pool.Close()
			pg, err := history.NewPostgresHistory(dbCtx, pool)
			if err != nil {
				log.Printf("WARN: advice history disabled: %v", err)
			} else {
				log.Printf("INFO: advice history stored in PostgreSQL")
				adviceHistory = pg
			}
		}
		cancel()
	}

	// Core service orchestrating fetch, fallback, resolve and advice.
	service := weather.NewService(weather.ServiceConfig{
		Current:  cwa,
		Forecast: cwa,
		Geocoder: geocoder,
		Store:    snapshots,
		Advisor:  advisor,
		History:  adviceHistory,
		Timeout:  cfg.UpstreamTimeout,
	})
	defer service.Wait()

	// Background refresh keeps the snapshots warm.
	sched := scheduler.New(cfg.RefreshInterval, 2*cfg.UpstreamTimeout, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-advisor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          3 * cfg.UpstreamTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-API-Key",
	}))

	httpapi.RegisterRoutes(app, service, httpapi.Options{
		APIKey:          cfg.APIKey,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		Health:          adviceHistory,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
