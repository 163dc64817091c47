package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-responder/internal/api"
	"whatsapp-responder/internal/automation"
	"whatsapp-responder/internal/config"
	"whatsapp-responder/internal/database"
	"whatsapp-responder/internal/webhook"
	"whatsapp-responder/internal/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "whatsapp-responder").Logger()

	cfg := config.LoadConfig()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("could not parse log level")
	}
	zerolog.SetGlobalLevel(level)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	rules := automation.DefaultRules(cfg)
	if cfg.RulesPath != "" {
		rules, err = automation.LoadRules(cfg.RulesPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.RulesPath).Msg("failed to load rules")
		}
		logger.Info().Str("path", cfg.RulesPath).Int("categories", len(rules.Categories)).Msg("loaded rules file")
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close(db) // nolint:errcheck

	whatsappClient := whatsapp.NewClient(cfg)
	automationEngine := automation.NewEngine(whatsappClient, rules, logger)
	var store *database.Store
	if db != nil {
		store = database.NewStore(db, logger)
		whatsappClient.Recorder = store
		automationEngine.Recorder = store
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(logger))

	// Webhook Routes
	webhook.NewHandler(cfg, automationEngine, logger).Register(r, cfg.WebhookPath)
	r.GET("/healthz", api.Health(db))

	// Dashboard API Routes
	if store != nil {
		api.NewDashboardHandler(store, logger).Register(r.Group("/api"))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	mainCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, groupCtx := errgroup.WithContext(mainCtx)

	group.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("webhook_path", cfg.WebhookPath).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
}
