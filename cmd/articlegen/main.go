// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the article generator server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"articlegen/internal/ai"
	"articlegen/internal/article"
	"articlegen/internal/config"
	"articlegen/internal/database"
	"articlegen/internal/handlers"
	"articlegen/internal/media"
	"articlegen/internal/models"
	"articlegen/internal/publish"
	"articlegen/internal/router"
	"articlegen/internal/session"
	"articlegen/internal/storage"
	"articlegen/internal/store"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (session store).
	valkeyClient, err := session.Connect(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	contentStore := store.NewContentStore(db)
	tagStore := store.NewTagStore(db)
	mediaStore := store.NewMediaStore(db)
	settingStore := store.NewSiteSettingStore(db)

	if err := bootstrapAPIKey(settingStore, cfg.OpenAIKey); err != nil {
		slog.Error("failed to store bootstrap api key", "error", err)
		os.Exit(1)
	}

	// Connect to S3-compatible object storage. Without it, saved articles
	// keep the provider-hosted image URLs.
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketPublic, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	var localizer publish.Localizer
	if storageClient != nil {
		localizer = media.NewIngester(nil, storageClient, mediaStore, cfg.AITimeout)
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, generated images will not be localized")
	}

	// The AI client reads the stored API key on every call.
	aiClient := ai.NewClient(ai.Config{
		BaseURL:    cfg.OpenAIBaseURL,
		TextModel:  cfg.OpenAITextModel,
		ImageModel: cfg.OpenAIImageModel,
		Timeout:    cfg.AITimeout,
	}, settingStore)

	opts := []article.Option{article.WithConcurrency(cfg.ImageConcurrency)}
	if cfg.AIModeration {
		opts = append(opts, article.WithModeration(aiClient))
	}
	assembler := article.NewAssembler(aiClient, aiClient, opts...)
	publisher := publish.NewPublisher(contentStore, tagStore, localizer, cfg.ImageConcurrency)

	slog.Info("article generator initialized",
		"text_model", cfg.OpenAITextModel,
		"image_model", aiClient.DefaultImageModel(),
		"moderation", cfg.AIModeration,
		"max_images", cfg.MaxImages,
	)

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	genHandlers := handlers.NewGenerator(assembler, aiClient, publisher, settingStore, handlers.Limits{
		MaxImages:       cfg.MaxImages,
		DefaultMinWords: cfg.DefaultMinWords,
	})

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Options{Sessions: sessionStore, SecureCookies: secureCookies}, authHandlers, genHandlers)

	// WriteTimeout must cover one article call plus the image rounds of
	// the largest allowed draft, each bounded by the AI timeout.
	rounds := (cfg.MaxImages + cfg.ImageConcurrency - 1) / cfg.ImageConcurrency
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout*time.Duration(rounds+2) + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// In-flight generations may take minutes; give them the AI timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// bootstrapAPIKey stores key as the default OpenAI API key when none has
// been saved yet. A key saved through the admin API always wins.
func bootstrapAPIKey(settings *store.SiteSettingStore, key string) error {
	if key == "" {
		return nil
	}
	current, err := settings.Get(models.SettingOpenAIKey)
	if err != nil {
		return err
	}
	if current != "" {
		return nil
	}
	if err := settings.Set(models.SettingOpenAIKey, key); err != nil {
		return err
	}
	slog.Info("openai api key loaded from environment")
	return nil
}
