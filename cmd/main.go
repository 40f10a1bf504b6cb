package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcamargo/flexroom/internal/adapters/http/api"
	"github.com/rcamargo/flexroom/internal/adapters/lcu"
	"github.com/rcamargo/flexroom/internal/adapters/repository"
	"github.com/rcamargo/flexroom/internal/app"
	"github.com/rcamargo/flexroom/internal/bridge"
	"github.com/rcamargo/flexroom/internal/config"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
	"github.com/rcamargo/flexroom/pkg/logger"
)

// HTTP server timeout constants. The connection probe may block on a full
// credential discovery round, so the write timeout leaves room for it.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
	}

	store := repository.NewFileStore(repository.WithPath(cfg.SnapshotPath))
	registry, err := rooms.New(ctx, store,
		rooms.WithSweepInterval(time.Duration(cfg.SweepIntervalS)*time.Second),
		rooms.WithStaleTTL(time.Duration(cfg.StaleTTLMin)*time.Minute),
	)
	if err != nil {
		log.Error(ctx, "snapshot load failed", logger.Error(err))
		return
	}

	locatorOpts := []lcu.LocatorOption{}
	if len(cfg.LockfilePaths) > 0 {
		locatorOpts = append(locatorOpts, lcu.WithLockfilePaths(cfg.LockfilePaths))
	}
	client := lcu.NewClient(
		lcu.WithLocator(lcu.NewLocator(locatorOpts...)),
		lcu.WithReconnectDelay(time.Duration(cfg.ReconnectDelayMS)*time.Millisecond),
	)

	notifier := bridge.New(registry.Events(), client.StatusEvents(),
		bridge.WithObserverBuffer(cfg.ObserverBuffer))

	svc, err := app.New(
		app.WithRegistry(registry),
		app.WithClient(client),
		app.WithBridge(notifier),
		app.WithQueueID(cfg.QueueID),
		app.WithLogger(log),
	)
	if err != nil {
		log.Error(ctx, "service wiring failed", logger.Error(err))
		return
	}
	svc.Start(ctx)
	defer svc.Stop()

	mux := http.NewServeMux()
	api.NewServer(svc, notifier).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
