package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moviehub/app"
	"moviehub/httpserver"
	"moviehub/pkg/config"
	"moviehub/pkg/logger"
	"moviehub/pkg/sentry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.Options{}).Fatalw("Cannot load config", "error", err)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = log.Sync() }()

	if err := sentry.Init(cfg.SentryDSN, cfg.AppEnv); err != nil {
		log.Fatalw("Cannot init sentry", "error", err)
	}
	defer sentry.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("Cannot open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Warnw("cannot close storage", "error", err)
		}
	}()

	factory := app.NewFactory(cfg, storage, log)
	server, err := httpserver.New(
		httpserver.WithConfig(cfg),
		httpserver.WithLogger(log),
		httpserver.WithSessions(httpserver.NewSessions(factory.New, httpserver.DefaultSessionTTL)),
	)
	if err != nil {
		log.Fatalw("Cannot create server", "error", err)
	}

	go func() {
		log.Infow("server started", "addr", server.Addr, "variant", cfg.StoreVariant, "storage", cfg.Storage.Driver)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server stopped with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("cannot shutdown server", "error", err)
	}
	log.Info("server stopped")
}
