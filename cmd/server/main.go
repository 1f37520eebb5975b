package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skufu/symptomgate/internal/analyzer"
	"github.com/Skufu/symptomgate/internal/audit"
	"github.com/Skufu/symptomgate/internal/cache"
	"github.com/Skufu/symptomgate/internal/config"
	"github.com/Skufu/symptomgate/internal/gate"
	"github.com/Skufu/symptomgate/internal/logging"
	"github.com/Skufu/symptomgate/internal/metrics"
	"github.com/Skufu/symptomgate/internal/triage"
	"github.com/Skufu/symptomgate/internal/vocabulary"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.RequireModel(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.NewLogger(cfg.Logging())
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	recorder, err := metrics.NewPrometheus(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("metrics registration failed: %v", err)
	}

	rc := routerConfig{
		Logger:       logger,
		Recorder:     recorder,
		Gatherer:     prometheus.DefaultGatherer,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Limiter:      newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	var store audit.Store = audit.Nop{}
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()

		pg := audit.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		store = pg
		rc.DB = pg
	}

	var resultCache cache.ResultCache = cache.Nop{}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer client.Close()

		rcache := cache.NewRedis(client, logger,
			cache.WithTTL(cfg.CacheTTL),
			cache.WithLoadTimeout(cfg.Gemini.Timeout),
		)
		resultCache = rcache
		rc.Cache = rcache
	}

	model, err := analyzer.NewGeminiModel(ctx, cfg.Model())
	if err != nil {
		log.Fatalf("model client failed: %v", err)
	}

	rc.Service = triage.NewService(
		gate.New(vocabulary.MustDefault(), cfg.Thresholds()),
		analyzer.New(model, cfg.Analyzer(), logger, recorder),
		triage.WithCache(resultCache),
		triage.WithAudit(store),
		triage.WithRecorder(recorder),
		triage.WithLogger(logger),
	)

	router := setupRouter(rc)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Gemini.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	logger.Info("server listening",
		logging.String("port", cfg.Port),
		logging.Bool("db", cfg.EnableDB),
		logging.Bool("cache", cfg.RedisURL != ""),
	)
	waitForShutdown(server, logger, cfg.ShutdownTimeout)
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func waitForShutdown(server *http.Server, logger logging.Logger, timeout time.Duration) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", logging.Err(err))
	}
}
