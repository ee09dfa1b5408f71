package fleet

import (
	"context"
	"errors"
	"testing"

	"fleetmap-service/internal/domain/fleet"
)

type memoryCache struct {
	vehicles []fleet.Vehicle
	hit      bool
	loadErr  error
	storeErr error
	stores   int
}

func (c *memoryCache) Load(ctx context.Context) ([]fleet.Vehicle, bool, error) {
	if c.loadErr != nil {
		return nil, false, c.loadErr
	}
	return c.vehicles, c.hit, nil
}

func (c *memoryCache) Store(ctx context.Context, vehicles []fleet.Vehicle) error {
	c.stores++
	if c.storeErr != nil {
		return c.storeErr
	}
	c.vehicles, c.hit = vehicles, true
	return nil
}

func TestCachedSourceServesHit(t *testing.T) {
	src := &stubSource{}
	cache := &memoryCache{hit: true, vehicles: []fleet.Vehicle{unlocated("1", "AA-1", fleet.StatusActive)}}

	got, err := NewCachedSource(src, cache, nil).ListLocations(context.Background())
	if err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}
	if len(got) != 1 || src.Calls() != 0 {
		t.Fatalf("got %d vehicles with %d source calls, want 1 and 0", len(got), src.Calls())
	}
}

func TestCachedSourceStoresMiss(t *testing.T) {
	src := &stubSource{vehicles: []fleet.Vehicle{unlocated("1", "AA-1", fleet.StatusActive)}}
	cache := &memoryCache{}
	cs := NewCachedSource(src, cache, nil)

	for i := 0; i < 2; i++ {
		if _, err := cs.ListLocations(context.Background()); err != nil {
			t.Fatalf("ListLocations() error = %v", err)
		}
	}
	if src.Calls() != 1 || cache.stores != 1 {
		t.Fatalf("source calls = %d, stores = %d; want 1 and 1", src.Calls(), cache.stores)
	}
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	boom := errors.New("Network Error")
	cache := &memoryCache{}
	_, err := NewCachedSource(&stubSource{err: boom}, cache, nil).ListLocations(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if cache.stores != 0 {
		t.Errorf("failed fetch was cached")
	}
}

func TestCachedSourceIgnoresCacheFailures(t *testing.T) {
	src := &stubSource{vehicles: []fleet.Vehicle{unlocated("1", "AA-1", fleet.StatusActive)}}
	cache := &memoryCache{loadErr: errors.New("connection refused"), storeErr: errors.New("connection refused")}

	got, err := NewCachedSource(src, cache, nil).ListLocations(context.Background())
	if err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d vehicles, want 1", len(got))
	}
}
