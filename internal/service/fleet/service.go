// internal/service/fleet/service.go
package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleetmap-service/internal/domain/fleet"
	xerrors "fleetmap-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ServiceConfig struct {
	MapConfig    fleet.MapConfig
	FetchTimeout time.Duration
	Location     *time.Location
}

// FleetService creates map views and serves stateless renderings of the fleet.
type FleetService struct {
	source    fleet.LocationSource
	scheduler *cron.Cron
	renderer  *MarkerRenderer
	cfg       ServiceConfig
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	views map[string]*View
}

func NewFleetService(source fleet.LocationSource, scheduler *cron.Cron, cfg ServiceConfig, logger *zap.Logger) *FleetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FleetService{
		source:    source,
		scheduler: scheduler,
		renderer:  NewMarkerRenderer(cfg.MapConfig.VehicleDetailsPath, cfg.Location),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		views:     make(map[string]*View),
	}
}

// MapConfig returns the static base-map configuration.
func (s *FleetService) MapConfig() fleet.MapConfig {
	return s.cfg.MapConfig
}

// NewView creates and registers a view. The caller starts and closes it.
func (s *FleetService) NewView() *View {
	view := NewView(ViewOptions{
		ID:           ulid.Make().String(),
		Source:       s.source,
		Scheduler:    s.scheduler,
		Renderer:     s.renderer,
		MapConfig:    s.cfg.MapConfig,
		FetchTimeout: s.cfg.FetchTimeout,
		Logger:       s.logger,
		Now:          s.now,
	})

	s.mu.Lock()
	s.views[view.ID()] = view
	total := len(s.views)
	s.mu.Unlock()

	view.OnClose(func() {
		s.mu.Lock()
		delete(s.views, view.ID())
		s.mu.Unlock()
	})

	s.logger.Info("map view opened", zap.String("view_id", view.ID()), zap.Int("active_views", total))
	return view
}

// ActiveViews returns the number of open views.
func (s *FleetService) ActiveViews() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Locations fetches the raw vehicle-locations collection.
func (s *FleetService) Locations(ctx context.Context) ([]fleet.Vehicle, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	vehicles, err := s.source.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xerrors.ErrUpstream, err)
	}
	if vehicles == nil {
		vehicles = []fleet.Vehicle{}
	}
	return vehicles, nil
}

// Overview renders markers, stats and search results for one request.
func (s *FleetService) Overview(ctx context.Context, filters *fleet.OverviewFilters) (*fleet.Overview, error) {
	vehicles, err := s.Locations(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &fleet.Overview{
		Markers:     s.renderer.Render(vehicles, fleet.VehicleID(filters.Highlight), now),
		Stats:       ComputeStats(vehicles, now),
		Search:      Search(vehicles, filters.Query),
		GeneratedAt: now,
	}, nil
}

func (s *FleetService) Stats(ctx context.Context) (fleet.Stats, error) {
	vehicles, err := s.Locations(ctx)
	if err != nil {
		return fleet.Stats{}, err
	}
	return ComputeStats(vehicles, s.now()), nil
}

func (s *FleetService) Search(ctx context.Context, query string) (fleet.SearchResult, error) {
	vehicles, err := s.Locations(ctx)
	if err != nil {
		return fleet.SearchResult{}, err
	}
	return Search(vehicles, query), nil
}

// Shutdown closes every open view.
func (s *FleetService) Shutdown() {
	s.mu.Lock()
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
	s.logger.Info("fleet service shut down", zap.Int("closed_views", len(views)))
}

func (s *FleetService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.FetchTimeout)
}
