package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/clearnightbot/clearnight/internal/api/http"
	"github.com/clearnightbot/clearnight/internal/astro"
	"github.com/clearnightbot/clearnight/internal/config"
	"github.com/clearnightbot/clearnight/internal/forecast"
	"github.com/clearnightbot/clearnight/internal/forecast/providers"
	"github.com/clearnightbot/clearnight/internal/notify"
	"github.com/clearnightbot/clearnight/internal/report"
	"github.com/clearnightbot/clearnight/internal/scheduler"
	"github.com/clearnightbot/clearnight/internal/store"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		zlog.Fatal("invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	settings, err := config.NewSettingsStore(config.DefaultSettings())
	if err != nil {
		zlog.Fatal("invalid initial settings", zap.Error(err))
	}

	// Shared HTTP client for outbound provider and webhook calls.
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Open-Meteo needs no key; the rest enable only when a key is present.
	provs := []forecast.Provider{
		providers.NewOpenMeteoProvider(httpClient),
	}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WindyAPIKey != "" {
		provs = append(provs, providers.NewWindyProvider(httpClient, cfg.WindyAPIKey))
	}
	if cfg.VisualCrossingAPIKey != "" {
		provs = append(provs, providers.NewVisualCrossingProvider(httpClient, cfg.VisualCrossingAPIKey))
	}
	for _, p := range provs {
		zlog.Info("provider enabled", zap.String("provider", p.Name()))
	}

	astroEngine := astro.NewEngine(cfg.Latitude, cfg.Longitude, tz)
	forecastSvc := forecast.NewService(provs, zlog)
	composer := report.NewComposer(tz, cfg.SiteName, cfg.ShowSources)
	builder := report.NewBuilder(astroEngine, forecastSvc, settings, composer, cfg.Latitude, cfg.Longitude, zlog)

	chats, err := store.OpenChatRegistry(cfg.ChatDBPath)
	if err != nil {
		zlog.Fatal("failed to open chat registry", zap.String("path", cfg.ChatDBPath), zap.Error(err))
	}

	var notifier notify.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL, httpClient)
	} else {
		zlog.Info("no webhook configured; reports will be logged")
		notifier = notify.NewLogNotifier(zlog)
	}

	sched := scheduler.New(builder, chats, notifier, tz, zlog)
	if err := sched.Start(cfg.DailyNotifyHour, cfg.DailyNotifyMinute); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "clearnight",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute, // report builds wait on provider fan-out
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "clearnight",
		})
	})

	httpapi.RegisterRoutes(app, builder, chats, settings, tz)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
