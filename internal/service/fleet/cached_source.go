package fleet

import (
	"context"

	"fleetmap-service/internal/domain/fleet"

	"go.uber.org/zap"
)

// CachedSource serves a recent snapshot from the cache before asking the
// underlying source. Failed fetches are never cached.
type CachedSource struct {
	source fleet.LocationSource
	cache  fleet.SnapshotCache
	logger *zap.Logger
}

func NewCachedSource(source fleet.LocationSource, cache fleet.SnapshotCache, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{source: source, cache: cache, logger: logger}
}

func (s *CachedSource) ListLocations(ctx context.Context) ([]fleet.Vehicle, error) {
	vehicles, ok, err := s.cache.Load(ctx)
	if err != nil {
		s.logger.Warn("snapshot cache read failed", zap.Error(err))
	} else if ok {
		return vehicles, nil
	}

	vehicles, err = s.source.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Store(ctx, vehicles); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
	return vehicles, nil
}
