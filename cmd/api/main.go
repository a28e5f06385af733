package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amaravathi/marketplace/internal/cache"
	"github.com/amaravathi/marketplace/internal/config"
	"github.com/amaravathi/marketplace/internal/db"
	httpx "github.com/amaravathi/marketplace/internal/http"
	"github.com/amaravathi/marketplace/internal/observability"
	"github.com/amaravathi/marketplace/internal/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	// tracing is optional; only started when an OTLP endpoint is configured
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "marketplace", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(3 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)

	err = db.EnsureAdminUser(seedCtx, pool, cfg)

	cancelSeed()

	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	storeCtx, cancelStore := config.WithTimeout(5 * time.Second)

	imageStore, err := storage.New(storeCtx, storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}, log)

	cancelStore()

	if err != nil {
		// uploads degrade to rejection, everything else keeps working
		log.Error("image store unavailable", "err", err)
		imageStore = nil
	}

	listCache := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, 30*time.Second)

	defer listCache.Close()

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

	if err := listCache.Ping(pingCtx); err != nil {
		// the cache degrades to misses, no need to stop
		log.Warn("redis unavailable", "err", err)
	}

	cancelPing()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	router := httpx.NewRouter(log, pool, cfg, imageStore, listCache, prom, reg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
