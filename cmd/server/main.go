package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/leadintake/internal/config"
	"github.com/JonMunkholm/leadintake/internal/core"
	"github.com/JonMunkholm/leadintake/internal/logging"
	"github.com/JonMunkholm/leadintake/internal/metrics"
	"github.com/JonMunkholm/leadintake/internal/web"
	"github.com/JonMunkholm/leadintake/internal/web/middleware"
	"github.com/JonMunkholm/leadintake/migrations"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_rows", cfg.Import.MaxRows,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"auth_disabled", cfg.Security.AuthDisabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())
	if cfg.Security.AuthDisabled {
		slog.Warn("token auth is disabled; the X-Actor-ID header is trusted as the caller")
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database.URL); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	importLimiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWait)
	service := core.NewService(core.NewPostgresStore(pool), core.Options{
		PageSize:      cfg.Leads.PageSize,
		HistoryLimit:  cfg.Leads.HistoryLimit,
		MaxImportRows: cfg.Import.MaxRows,
		ImportLimiter: importLimiter,
		Metrics:       metrics.NewLeadMetrics(registry),
	})

	opts := web.Options{
		Auth: middleware.AuthOptions{
			Secret:   cfg.Security.JWTSecret,
			Issuer:   cfg.Security.JWTIssuer,
			Disabled: cfg.Security.AuthDisabled,
		},
		TrustedProxies: cfg.Security.TrustedProxies,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxImportBytes: cfg.Import.MaxFileSize,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		Health:         pool.Ping,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
		opts.MetricsPath = cfg.Metrics.Path
	}

	var rdb *redis.Client
	if cfg.Rate.Enabled {
		opts.Limiter, opts.ImportLimiter, rdb, err = newRateLimiters(ctx, cfg.Rate)
		if err != nil {
			slog.Error("failed to set up rate limiting", "error", err)
			os.Exit(1)
		}
	}
	if rdb != nil {
		defer rdb.Close()
	}

	server := web.NewServer(service, opts)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := importLimiter.Active(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
			if err := importLimiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newRateLimiters returns the general and import limiters. With a Redis URL
// configured the counters are shared between instances; the returned client
// must be closed by the caller.
func newRateLimiters(ctx context.Context, cfg config.RateLimitConfig) (middleware.Limiter, middleware.Limiter, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(cfg.RequestsPerMinute, time.Minute),
			middleware.NewMemoryLimiter(cfg.ImportLimit, time.Minute),
			nil, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, err
	}
	slog.Info("rate limiting backed by redis", "addr", redisOpts.Addr)

	return middleware.NewRedisLimiter(rdb, "api", cfg.RequestsPerMinute, time.Minute),
		middleware.NewRedisLimiter(rdb, "import", cfg.ImportLimit, time.Minute),
		rdb, nil
}
