package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	libredis "parkmap/libs/redis"

	"parkmap/internal/cache"
	"parkmap/internal/config"
	"parkmap/internal/firestore"
	httpserver "parkmap/internal/http"
	"parkmap/internal/http/handlers"
	"parkmap/internal/http/middleware"
	"parkmap/internal/service"
	"parkmap/internal/ws"
)

const wsWriteTimeout = 10 * time.Second

// App wires parkmap dependencies.
type App struct {
	server      *httpserver.Server
	cron        *cron.Cron
	lots        *service.LotsService
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	fetchClient := firestore.NewClient(
		cfg.Upstream.URL,
		firestore.NewDefaultHTTPClient(cfg.UpstreamTimeout()),
	)

	var redisClient *redis.Client
	var store *cache.SnapshotStore
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		redisClient = client
		store = cache.NewSnapshotStore(redisClient, cfg.SnapshotTTL())
	}

	state := service.NewViewState(defaultRegion(cfg))
	lots := service.NewLotsService(fetchClient, state, store, logger)

	hub := ws.NewHub(lots, logger)
	lots.AddListener(hub)
	wsServer := ws.NewServer(hub, wsWriteTimeout, logger)

	routes := httpserver.Routes{
		Lots:   handlers.NewLotsHandlers(lots, logger),
		Watch:  wsServer.HandleWatch,
		Health: handlers.NewHealthHandler(),
		Auth:   middleware.Auth(cfg.Auth.Secret),
	}
	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	scheduler := cron.New()
	refreshTimeout := cfg.UpstreamTimeout() + 5*time.Second
	if _, err := scheduler.AddFunc(cfg.RefreshSchedule(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		_ = lots.Refresh(ctx) // failures are logged and leave the list as-is
	}); err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("app: invalid refresh schedule %q: %w", cfg.RefreshSchedule(), err)
	}

	return &App{
		server:      server,
		cron:        scheduler,
		lots:        lots,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run restores the last snapshot, performs the initial fetch, starts the
// refresh schedule and serves HTTP until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.lots.WarmStart(ctx)
	if err := a.lots.Refresh(ctx); err != nil {
		a.logger.Warn("initial refresh failed, serving restored or empty list", zap.Error(err))
	}

	a.cron.Start()
	defer a.cron.Stop()

	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

// defaultRegion frames the configured map center, falling back to the city
// the lot data covers when nothing is configured.
func defaultRegion(cfg *config.Config) service.Region {
	region := service.Region{
		CenterLat: cfg.Map.CenterLat,
		CenterLng: cfg.Map.CenterLng,
		SpanLat:   cfg.Map.SpanLat,
		SpanLng:   cfg.Map.SpanLng,
	}
	if region.CenterLat == 0 && region.CenterLng == 0 {
		region.CenterLat = 4.65
		region.CenterLng = -74.06
	}
	if region.SpanLat <= 0 {
		region.SpanLat = 0.25
	}
	if region.SpanLng <= 0 {
		region.SpanLng = 0.25
	}
	return region
}
