package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	localdeals "github.com/set-night/localdeals"
	"github.com/set-night/localdeals/internal/api"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/handler"
	"github.com/set-night/localdeals/internal/middleware"
	"github.com/set-night/localdeals/internal/repository"
	"github.com/set-night/localdeals/internal/service"
	"github.com/set-night/localdeals/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(localdeals.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := repository.NewPostgres(pool)

	// Initialize services
	rewardsService := service.NewRewardsService(store, cfg.PointsReferral, cfg.PointsQRScan)
	profileService := service.NewProfileService(store, rewardsService)
	catalogService := service.NewCatalogService(store, cfg.EnforcePlanOfferLimit)
	adminService := service.NewAdminService(catalogService)
	saveService := service.NewSaveService(store)
	redemptionService := service.NewRedemptionService(store)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(store),
			middleware.UserLoader(profileService, cfg),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleUnknown(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username, "admins", cfg.AdminIDsString())

	// Initialize telegram logger
	tgLogger := telegram.NewTelegramLogger(b, cfg)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:         b,
		Cfg:         cfg,
		Profiles:    profileService,
		Catalog:     catalogService,
		Admin:       adminService,
		Saves:       saveService,
		Redemptions: redemptionService,
		Rewards:     rewardsService,
		TgLogger:    tgLogger,
		BotUsername: me.Username,
	})

	// Register all handlers
	h.Register()

	// Start HTTP API
	var srv *http.Server
	if cfg.HTTPEnabled {
		apiServer := api.NewServer(api.Deps{
			Limiter:     store,
			Profiles:    profileService,
			Catalog:     catalogService,
			Admin:       adminService,
			Saves:       saveService,
			Redemptions: redemptionService,
			Rewards:     rewardsService,
		})
		srv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      apiServer.Routes(),
			ReadTimeout:  config.HTTPReadTimeout,
			WriteTimeout: config.HTTPWriteTimeout,
		}
		go func() {
			slog.Info("starting http api", "port", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http api failed", "error", err)
				stop()
			}
		}()
	}

	// Start rate limit cleanup goroutine
	go func() {
		ticker := time.NewTicker(config.RateLimitPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.PurgeRateLimits(context.Background(), time.Now().Add(-config.RateLimitWindow))
				if err != nil {
					slog.Error("purge rate limits", "error", err)
					continue
				}
				slog.Debug("rate limits purged", "rows", n)
			}
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTPShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http api shutdown", "error", err)
		}
	}
	slog.Info("bot stopped gracefully")
}
