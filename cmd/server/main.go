package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"contractguide/internal/assets"
	assetshandler "contractguide/internal/assets/handler"
	assetsmetrics "contractguide/internal/assets/metrics"
	"contractguide/internal/determination"
	determinationhandler "contractguide/internal/determination/handler"
	determinationmetrics "contractguide/internal/determination/metrics"
	"contractguide/internal/platform/config"
	"contractguide/internal/platform/httpserver"
	"contractguide/internal/platform/logger"
	"contractguide/internal/platform/metrics"
	"contractguide/internal/platform/redis"
	httptransport "contractguide/internal/transport/http"
	"contractguide/pkg/platform/circuit"
)

var newManifestWatcher = assets.NewManifestWatcher

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "contractguide server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.Log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tables, err := determination.LoadTables(cfg.TablesPath)
	if err != nil {
		return fmt.Errorf("load determination tables: %w", err)
	}
	engine, err := determination.NewEngine(tables)
	if err != nil {
		return fmt.Errorf("build determination engine: %w", err)
	}
	service, err := determination.NewService(engine,
		determination.WithLogger(log),
		determination.WithMetrics(determinationmetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	checks := map[string]httptransport.HealthCheck{}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
	}

	cache, err := buildAssetCache(cfg.Assets, redisClient, log, assetsmetrics.New(reg))
	if err != nil {
		return err
	}
	// The API works without the front-end, so a failed install only degrades
	// asset delivery to the origin.
	if err := cache.Install(ctx); err != nil {
		log.WarnContext(ctx, "asset cache not installed, serving assets from origin", "error", err)
	} else if err := cache.Activate(ctx); err != nil {
		log.WarnContext(ctx, "asset cache activation failed", "error", err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Checks:   checks,
		Handlers: []httptransport.Registrar{
			determinationhandler.New(service, log),
			assetshandler.New(cache, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	// Everything that can fail is built before the server starts listening.
	var watcher *assets.ManifestWatcher
	if cfg.Assets.Watch {
		watcher, err = newManifestWatcher(cfg.Assets.ManifestPath, cache, assets.WithWatcherLogger(log))
		if err != nil {
			return fmt.Errorf("watch asset manifest: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "starting contractguide", "addr", cfg.Addr, "asset_version", cache.Version())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		log.InfoContext(shutdownCtx, "shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	return g.Wait()
}

func buildAssetCache(cfg config.Assets, redisClient *redis.Client, log *slog.Logger, m *assetsmetrics.Metrics) (*assets.Cache, error) {
	manifest, err := assets.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	var origin assets.Origin = assets.NewDirOrigin(os.DirFS(cfg.Dir))
	if cfg.OriginURL != "" {
		origin, err = assets.NewHTTPOrigin(cfg.OriginURL,
			assets.WithBreaker(circuit.New("asset-origin")))
		if err != nil {
			return nil, err
		}
	}

	var store assets.Store = assets.NewMemoryStore()
	if redisClient != nil {
		store = assets.NewRedisStore(redisClient.Client)
	}

	return assets.NewCache(manifest, store, origin,
		assets.WithLogger(log),
		assets.WithMetrics(m),
	)
}
