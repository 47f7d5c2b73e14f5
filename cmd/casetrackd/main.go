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
	"time"

	"legaltrack/internal/assets"
	"legaltrack/internal/assets/blobs"
	"legaltrack/internal/backend"
	"legaltrack/internal/cache"
	"legaltrack/internal/cache/store"
	"legaltrack/internal/cases/decode"
	"legaltrack/internal/cases/normalize"
	"legaltrack/internal/cases/service"
	"legaltrack/internal/overlay"
	"legaltrack/internal/platform/config"
	"legaltrack/internal/platform/connectivity"
	"legaltrack/internal/platform/credentials"
	"legaltrack/internal/platform/httpserver"
	"legaltrack/internal/platform/logger"
	"legaltrack/internal/platform/metrics"
	"legaltrack/internal/platform/redis"
	"legaltrack/internal/swr"
	httptransport "legaltrack/internal/transport/http"
)

const (
	probeInterval   = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// main wires the cache, the backend client and the local API, then serves
// until interrupted.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "casetrackd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheStore, closeStore, err := openCacheStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	blobStore, err := openBlobs(ctx, cfg.Assets)
	if err != nil {
		return err
	}

	monitor := connectivity.NewBreakerMonitor(cfg.Backend.OfflineThreshold,
		connectivity.WithLogger(log),
		connectivity.WithMetrics(m),
	)
	client, err := backend.New(cfg.Backend.APIBase,
		backend.WithDoer(&http.Client{}),
		backend.WithCredentials(credentials.NewInMemory(cfg.Backend.Token)),
		backend.WithMonitor(monitor),
		backend.WithTrustedHosts(cfg.Backend.ArchiveBase),
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(log),
		backend.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	controller, err := swrController(cacheStore, cfg, monitor, log, m)
	if err != nil {
		return err
	}
	defer controller.Close()

	readOverlay, err := overlay.New(ctx, cacheStore,
		overlay.WithCapacity(cfg.Cache.OverlayCap),
		overlay.WithLogger(log),
	)
	if err != nil {
		return err
	}
	documents, err := assets.New(blobStore, client, assets.WithLogger(log), assets.WithMetrics(m))
	if err != nil {
		return err
	}
	svc, err := service.New(controller, client, cacheStore, readOverlay, documents,
		service.WithDecoder(decode.New(decode.WithLogger(log))),
		service.WithNormalizer(normalize.New(
			normalize.WithAPIBase(cfg.Backend.APIBase),
			normalize.WithArchiveBase(cfg.Backend.ArchiveBase),
			normalize.WithLogger(log),
		)),
		service.WithLogger(log),
	)
	if err != nil {
		return err
	}

	go monitor.Run(ctx, probeInterval, client.Ping)

	handler := httptransport.New(svc, monitor, log)
	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(handler))

	log.Info("starting casetrackd",
		"addr", cfg.Server.Addr,
		"cache_driver", cfg.Cache.Driver,
		"asset_driver", cfg.Assets.Driver,
	)
	return httpserver.ListenAndServe(ctx, srv, shutdownTimeout, log)
}

func openCacheStore(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, func(), error) {
	noop := func() {}
	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		return store.NewInMemory(), noop, nil
	case config.CacheDriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		if client == nil {
			return nil, noop, errors.New("redis cache driver needs LEGALTRACK_REDIS_URL")
		}
		s, err := store.NewRedis(client.Client)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return s, func() { _ = client.Close() }, nil
	case config.CacheDriverSQLite:
		s, err := store.OpenSQLite(ctx, cfg.Cache.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		s, err := store.NewFS(cfg.Cache.Dir, store.WithFSLogger(log))
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
}

func openBlobs(ctx context.Context, cfg config.Assets) (assets.Blobs, error) {
	switch cfg.Driver {
	case config.AssetDriverMemory:
		return blobs.NewMemory(), nil
	case config.AssetDriverS3:
		return blobs.NewS3(ctx, blobs.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return blobs.NewFS(cfg.Dir)
	}
}

func swrController(s cache.Store, cfg config.Config, monitor *connectivity.BreakerMonitor, log *slog.Logger, m *metrics.Metrics) (*swr.Controller, error) {
	return swr.New(s,
		swr.WithTTL(cfg.Cache.TTL),
		swr.WithConnectivity(monitor),
		swr.WithLogger(log),
		swr.WithMetrics(m),
	)
}
