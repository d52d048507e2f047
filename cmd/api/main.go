package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"battery-payback/internal/api"
	"battery-payback/internal/api/store"
	"battery-payback/internal/config"
	"battery-payback/internal/logger"
	"battery-payback/internal/metrics"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("PAYBACK_CONFIG"), "Path to YAML or JSON config")
	flag.Parse()

	log := logger.New("api")
	if err := run(*cfgPath, log); err != nil {
		log.Errorf("api: %v", err)
		os.Exit(1)
	}
}

func run(cfgPath string, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rec, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	results := store.New(cfg.Server.ResultTTL)
	go results.Run(ctx, time.Minute)

	router, err := api.NewRouter(api.Deps{
		Config:   cfg,
		Store:    results,
		Logger:   log,
		Recorder: rec,
		Gatherer: prometheus.DefaultGatherer,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting API server on %s (env=%s)", srv.Addr, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Infof("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
