package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	oembedhandlers "ChartEmbed/internal/api/handlers/oembed"
	"ChartEmbed/internal/api/middleware"
	"ChartEmbed/internal/api/routes"
	"ChartEmbed/internal/config"
	"ChartEmbed/internal/core/charts"
	"ChartEmbed/internal/core/oembed"
	"ChartEmbed/internal/db/migrations"
	postgresRepo "ChartEmbed/internal/db/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("[SERVER] fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg.Logging)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	slog.Info("[SERVER] connected to chart database")

	if cfg.Database.AutoMigrate {
		if err := runMigrations(db); err != nil {
			return err
		}
	}

	service := newOEmbedService(cfg, db)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow, cfg.Server.RateLimitClients)
	r.Use(rateLimiter.Middleware)

	routes.RegisterOEmbedRoutes(r, oembedhandlers.NewHandler(service), cfg.Server.CORSOrigins)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("[SERVER] oEmbed provider starting",
			"port", cfg.Server.Port,
			"provider_url", cfg.ResolvedProviderURL(),
			"chart_domain", cfg.OEmbed.ChartDomain,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("[SERVER] shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("[SERVER] stopped")
	return nil
}

func setupLogging(cfg config.LoggingConfig) {
	level, _ := cfg.SlogLevel() // validated by config.Load
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("[SERVER] migrations completed successfully")
	return nil
}

// newOEmbedService assembles the resolver, access guard and response builder.
func newOEmbedService(cfg *config.Config, db *sql.DB) oembed.Service {
	chartRepo := charts.NewBreakerRepository(
		postgresRepo.NewChartRepository(db),
		charts.WithBreakerThreshold(uint32(cfg.Database.BreakerThreshold)),
		charts.WithBreakerTimeout(cfg.Database.BreakerTimeout),
	)

	// Providers are tried in registration order after the chart domain pattern
	registry := oembed.NewRegistry()
	if len(cfg.OEmbed.ExtraPatterns) > 0 {
		registry.Register("config-patterns", oembed.StaticPatterns(cfg.OEmbed.ExtraPatterns...))
	}
	if len(cfg.OEmbed.AlternateDomains) > 0 {
		alternate := make([]string, 0, len(cfg.OEmbed.AlternateDomains))
		for _, domain := range cfg.OEmbed.AlternateDomains {
			alternate = append(alternate, oembed.ChartURLPattern(domain))
		}
		registry.Register("config-domains", oembed.StaticPatterns(alternate...))
	}
	if cfg.OEmbed.DomainsFromDB {
		registry.Register("chart-domains", oembed.DomainPatterns(postgresRepo.NewDomainRepository(db)))
	}

	resolver := oembed.NewResolver(
		oembed.ChartURLPattern(cfg.OEmbed.ChartDomain),
		registry,
		oembed.WithPathFallback(cfg.OEmbed.PathFallback),
		oembed.WithPatternCacheSize(cfg.OEmbed.PatternCacheSize),
	)

	hostMatch, _ := oembed.ParseHostMatchMode(cfg.OEmbed.HostMatch) // validated by config.Load
	guard := oembed.NewGuard(chartRepo,
		oembed.WithHostMatch(hostMatch),
		oembed.WithPublishPermission(cfg.OEmbed.RequirePublishPermission),
	)

	var opts []oembed.ServiceOption
	if cfg.Thumbnails.Dir != "" {
		opts = append(opts, oembed.WithThumbnails(oembed.NewFileThumbnails(cfg.Thumbnails.Dir, cfg.Thumbnails.BaseURL)))
	}

	slog.Info("[SERVER] oEmbed service configured",
		"pattern_providers", registry.Len(),
		"host_match", hostMatch,
		"path_fallback", cfg.OEmbed.PathFallback,
		"thumbnails", cfg.Thumbnails.Dir != "",
	)

	return oembed.NewService(oembed.Config{
		ProviderName:    cfg.OEmbed.ProviderName,
		ProviderURL:     cfg.ResolvedProviderURL(),
		ElementIDPrefix: cfg.OEmbed.ElementIDPrefix,
		StrictFormat:    cfg.OEmbed.StrictFormat,
	}, resolver, guard, opts...)
}
