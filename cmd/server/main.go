package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tinylink/pkg/config"
	"tinylink/pkg/dashboard"
	tinyhttp "tinylink/pkg/http"
	"tinylink/pkg/logging"
	"tinylink/pkg/service"
	"tinylink/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	logger := logging.New(cfg.Log)
	ctx := context.Background()

	logger.Info(ctx, "starting tinylink",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
	)

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error(ctx, "invalid database URL", "error", err.Error())
		os.Exit(1)
	}
	if poolCfg.ConnConfig.TLSConfig != nil {
		// Encrypt without verifying the server chain. The hosted Postgres
		// target serves a certificate the client cannot validate.
		poolCfg.ConnConfig.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error(ctx, "failed to create connection pool", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	store := storage.NewPostgresLinkStore(pool)
	if err := store.Init(ctx); err != nil {
		logger.Error(ctx, "schema init failed", "error", err.Error())
		os.Exit(1)
	}

	linkService := service.NewLinkService(store, logger)
	handler := tinyhttp.NewHandler(linkService, logger)

	dash, err := dashboard.NewHandler(linkService, logger, cfg.App.BaseURL)
	if err != nil {
		logger.Error(ctx, "dashboard init failed", "error", err.Error())
		os.Exit(1)
	}

	r := chi.NewRouter()
	tinyhttp.SetupRoutes(r, handler, logger)
	dash.Register(r)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		logger.Error(ctx, "server error", "error", err.Error())
		os.Exit(1)

	case sig := <-shutdown:
		logger.Info(ctx, "shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "graceful shutdown failed", "error", err.Error())
			if err := server.Close(); err != nil {
				logger.Error(ctx, "forced shutdown failed", "error", err.Error())
			}
		}

		logger.Info(ctx, "server stopped")
	}
}
