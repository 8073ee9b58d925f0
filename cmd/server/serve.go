package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HanTheDev/review-reply-gateway/internal/admin"
	"github.com/HanTheDev/review-reply-gateway/internal/async"
	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/cache"
	"github.com/HanTheDev/review-reply-gateway/internal/config"
	"github.com/HanTheDev/review-reply-gateway/internal/db"
	"github.com/HanTheDev/review-reply-gateway/internal/handler"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/quota"
	"github.com/HanTheDev/review-reply-gateway/internal/ratelimit"
	"github.com/HanTheDev/review-reply-gateway/internal/reply"
	"github.com/HanTheDev/review-reply-gateway/internal/usage"
)

const (
	backgroundTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, migrate bool) error {
	if cfg.UsesDevSecret() {
		logger.Log.Warn("JWT_SECRET is the development default; set a real secret in production")
	}

	// Initialize database
	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if migrate {
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	tasks := async.NewGroup(backgroundTimeout)

	// Initialize sentiment cache
	sentimentCache, err := cache.NewSentimentCache(database, cfg.RedisURL, cfg.CacheTTL, tasks)
	if err != nil {
		return fmt.Errorf("initialize sentiment cache: %w", err)
	}
	defer sentimentCache.Close()

	// Initialize reply generator
	gen, err := reply.NewGenerator(reply.GeneratorConfig{
		Provider:        reply.Provider(cfg.ReplyProvider),
		Model:           cfg.ReplyModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
	})
	if err != nil {
		return err
	}

	quotaService := quota.NewService(database)
	deps := handler.ReplyDeps{
		Cache:       sentimentCache,
		Quota:       quotaService,
		Synthesizer: reply.NewSynthesizer(gen, cfg.LLMTimeout, cfg.ReplyMaxChars),
		Ledger:      usage.NewLedger(database, tasks),
		Profiles:    database,
		History:     database,
		HourlyLimit: cfg.RateLimitPerHour,
		Tasks:       tasks,
	}

	// Initialize rate limiter
	if cfg.RedisURL != "" && cfg.RateLimitPerHour > 0 {
		limiter, err := ratelimit.NewRateLimiter(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("initialize rate limiter: %w", err)
		}
		defer limiter.Close()
		deps.Limiter = limiter
	}

	router := newRouter(routes{
		auth:        auth.NewMiddleware(cfg.JWTSecret),
		reply:       handler.NewReplyHandler(deps),
		profile:     handler.NewProfileHandler(database),
		usage:       handler.NewUsageHandler(quotaService),
		admin:       admin.NewAdminHandler(quotaService, database),
		checks:      []pinger{database, sentimentCache},
		corsOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithFields(logrus.Fields{
			"port":     cfg.ServerPort,
			"provider": cfg.ReplyProvider,
			"model":    gen.Model(),
			"redis":    cfg.RedisURL != "",
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("http shutdown did not complete")
	}
	if err := tasks.Wait(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("background writes still pending at exit")
	}

	return nil
}
