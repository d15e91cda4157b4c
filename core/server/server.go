package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"slotpoll/core/cache"
	"slotpoll/core/config"
	"slotpoll/core/database"
	"slotpoll/core/logger"
	"slotpoll/core/middleware"
	"slotpoll/core/worker"
	"slotpoll/modules/event"
	"slotpoll/modules/export"
	"slotpoll/modules/participant"
	participantrepository "slotpoll/modules/participant/repository"
	"slotpoll/modules/realtime"
	"slotpoll/modules/vote"
)

const shutdownTimeout = 10 * time.Second

// Run wires the whole application together and blocks until the process
// receives SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	// Redis backs both the realtime fan-out and the event snapshot
	// cache. The hub degrades to in-process delivery without it, so a
	// missing redis is logged rather than fatal.
	c, err := cache.NewCache(cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache and cross-node fan-out", "error", err)
		c = nil
	}

	var w *worker.Worker
	if c != nil {
		w = worker.New(cfg.Redis)
	}

	e := echo.New()
	e.HideBanner = true

	mw := middleware.NewMiddleware(cfg)
	e.Use(mw.Recover())
	e.Use(mw.RequestLogger())
	e.Use(mw.CORS())

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	hub := realtime.Init(e, c, cfg)
	eventSvc := event.Init(e, db, c, hub, w)

	// The vote module checks voters against the participant roster and
	// the participant module clears ledgers on block, so the two share
	// repositories rather than services.
	participantRepo := participantrepository.NewParticipantRepository(db)
	_, voteRepo := vote.Init(e, db, eventSvc, participantRepo, hub)
	participant.Init(e, participantRepo, eventSvc, voteRepo, hub)
	export.Init(e, eventSvc)

	if w != nil {
		if err := w.Start(); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown", "error", err)
	}
	if w != nil {
		w.Shutdown()
	}
	if c != nil {
		if err := c.Close(); err != nil {
			logger.Error("Cache close", "error", err)
		}
	}

	logger.Info("Server exited")
	return nil
}
