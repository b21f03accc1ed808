package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/linkgraph/internal/app"
	"github.com/agenthands/linkgraph/internal/config"
	"github.com/agenthands/linkgraph/internal/logger"
	"github.com/agenthands/linkgraph/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.toml"
	}
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		log.Fatal(err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()
	if !found {
		lg.Warn("config file not found, using defaults", "path", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize", "error", err)
	}
	defer a.Close(context.Background())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.NewServer(a.Engine, cfg.Server, lg).SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		lg.Info("starting server", "port", cfg.Server.Port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server error", "error", err)
		}
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error("shutdown failed", "error", err)
		}
	}
}
