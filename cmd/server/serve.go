package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/notebook-api/internal/auth"
	"github.com/iliyamo/notebook-api/internal/cache"
	"github.com/iliyamo/notebook-api/internal/config"
	"github.com/iliyamo/notebook-api/internal/database"
	"github.com/iliyamo/notebook-api/internal/handler"
	"github.com/iliyamo/notebook-api/internal/middleware"
	"github.com/iliyamo/notebook-api/internal/queue"
	"github.com/iliyamo/notebook-api/internal/repository"
	"github.com/iliyamo/notebook-api/internal/router"
	"github.com/iliyamo/notebook-api/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.Queue.URL != "" {
		pub := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, logger)
		defer pub.Close()
		events = pub

		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.AuditLogPath, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	var noteCache service.NoteCache
	if cfg.Cache.Enabled {
		if rdb := config.NewRedisClient(ctx, cfg.Redis); rdb != nil {
			defer rdb.Close()
			noteCache = cache.NewNoteListCache(rdb, cfg.Cache)
		} else {
			logger.Warn("redis unavailable, note cache disabled", "addr", cfg.Redis.Addr)
		}
	}

	accounts := service.NewAccountService(repository.NewUserRepo(db), auth.NewHasher(cfg.BcryptCost), tokens, events, logger)
	notes := service.NewNoteService(repository.NewNoteRepo(db), noteCache, events, logger)

	e := router.New(router.Handlers{
		Health: handler.NewHealthHandler(db, logger),
		Auth:   handler.NewAuthHandler(accounts, logger),
		Notes:  handler.NewNoteHandler(notes, logger),
		Gate:   middleware.RequireToken(cfg.AuthHeader, tokens, logger),
	}, cfg.CORSOrigins, cfg.AuthHeader, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr(), "env", cfg.Env, "db", string(db.Dialect))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
