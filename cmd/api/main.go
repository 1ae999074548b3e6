package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"petradar/internal/config"
	"petradar/internal/platform/logger"
	"petradar/internal/router"
	"petradar/internal/tasks"
)

func main() {
	// .env es opcional; en deploy todo viene por env real.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	runner := tasks.NewRunner(4, 64, log)
	runner.Start(context.Background())

	r, err := router.NewRouter(router.Options{
		Cfg:          cfg,
		Log:          log,
		Runner:       runner,
		AuthVerifier: nil, // sin verifier para modo dev
	})
	if err != nil {
		log.Error("router init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", map[string]any{"error": err.Error()})
	}

	// Drenar los tasks en vuelo antes de salir.
	runner.Stop()

	log.Info("server exited", nil)
}
