// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fleetmap-service/internal/client/gtfsrt"
	"fleetmap-service/internal/client/locations"
	"fleetmap-service/internal/config"
	"fleetmap-service/internal/db"
	"fleetmap-service/internal/domain/fleet"
	fleetHandler "fleetmap-service/internal/handlers/fleet"
	wsHandler "fleetmap-service/internal/handlers/websocket"
	"fleetmap-service/internal/middleware"
	xerrors "fleetmap-service/internal/pkg/errors"
	"fleetmap-service/internal/pkg/jwt"
	"fleetmap-service/internal/repository/cache"
	"fleetmap-service/internal/repository/postgres"
	fleetUsecase "fleetmap-service/internal/service/fleet"
	"fleetmap-service/internal/websocket"
	wsHandlers "fleetmap-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Server struct {
	cfg      config.AppConfig
	engine   *gin.Engine
	http     *http.Server
	logger   *zap.Logger
	location *time.Location

	scheduler    *cron.Cron
	fleetService *fleetUsecase.FleetService
	cleanup      []func()
	cancelHub    context.CancelFunc
}

func NewServer(cfg config.AppConfig) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", cfg.TimeZone, err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine, logger: logger, location: location}, nil
}

// Start wires every component and serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Location source -----
	source, err := s.buildSource(ctx)
	if err != nil {
		return err
	}

	// ----- Redis snapshot cache -----
	if s.cfg.RedisAddr != "" && s.cfg.SnapshotCacheTTL > 0 {
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			PoolSize: 10,
		})
		if err != nil {
			return err
		}
		s.cleanup = append(s.cleanup, func() { _ = redisClient.Close() })
		source = fleetUsecase.NewCachedSource(source, cache.NewSnapshotStore(redisClient, s.cfg.SnapshotCacheTTL), s.logger)
		s.logger.Info("snapshot cache enabled", zap.Duration("ttl", s.cfg.SnapshotCacheTTL))
	}

	// ----- JWT -----
	var verifier *jwt.Verifier
	if s.cfg.AuthEnabled() {
		verifier, err = jwt.LoadVerifier(jwt.Config{
			PubPath:  s.cfg.JWTPublicKeyPath,
			Issuer:   s.cfg.JWTIssuer,
			Audience: s.cfg.JWTAudience,
		})
		if err != nil {
			return fmt.Errorf("failed to load JWT verifier: %w", err)
		}
	} else {
		s.logger.Warn("JWT_PUBLIC_KEY_PATH not set, authentication disabled")
	}

	// ----- Scheduler -----
	s.scheduler = cron.New()
	s.scheduler.Start()

	// ----- Services -----
	s.fleetService = fleetUsecase.NewFleetService(source, s.scheduler, fleetUsecase.ServiceConfig{
		MapConfig:    s.cfg.Map,
		FetchTimeout: s.cfg.FetchTimeout,
		Location:     s.location,
	}, s.logger)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(s.logger)
	hub.RegisterHandler(wsHandlers.NewMapViewHandler())
	hubCtx, cancelHub := context.WithCancel(context.Background())
	s.cancelHub = cancelHub
	go hub.Run(hubCtx)

	// ----- Handlers -----
	handlers := &Handlers{
		FleetHandler:   fleetHandler.NewFleetHandler(s.fleetService),
		WSHandler:      wsHandler.NewWebSocketHandler(hub, s.fleetService, verifier, s.cfg.AllowedOrigins, s.logger),
		AuthMiddleware: middleware.NewAuthMiddleware(verifier),
	}

	s.engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("server running",
		zap.String("addr", s.cfg.HTTPAddr),
		zap.String("location_source", s.cfg.LocationSource),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops HTTP, closes every view and releases connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.cancelHub != nil {
		s.cancelHub()
	}
	if s.fleetService != nil {
		s.fleetService.Shutdown()
	}
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
	_ = s.logger.Sync()
	return err
}

func (s *Server) buildSource(ctx context.Context) (fleet.LocationSource, error) {
	switch s.cfg.LocationSource {
	case config.SourceAPI:
		return locations.NewClient(locations.Config{
			BaseURL: s.cfg.FleetAPIURL,
			Token:   s.cfg.FleetAPIToken,
			Timeout: s.cfg.FetchTimeout,
		}, s.logger), nil

	case config.SourcePostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{URL: s.cfg.DatabaseURL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s.cleanup = append(s.cleanup, pool.Close)
		s.logger.Info("connected to PostgreSQL")
		return postgres.NewLocationRepository(pool), nil

	case config.SourceGTFSRT:
		return gtfsrt.NewSource(s.cfg.GTFSRTURL, s.cfg.FetchTimeout), nil
	}
	return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownSource, s.cfg.LocationSource)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
