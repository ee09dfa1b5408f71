package fleet

import (
	"context"
	"sync"
	"time"

	"fleetmap-service/internal/domain/fleet"
)

var testNow = time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

type stubSource struct {
	mu       sync.Mutex
	vehicles []fleet.Vehicle
	err      error
	calls    int
}

func (s *stubSource) ListLocations(ctx context.Context) ([]fleet.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vehicles, nil
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// gatedSource blocks every call until a result is pushed on release.
type gatedSource struct {
	started chan struct{}
	release chan result
}

type result struct {
	vehicles []fleet.Vehicle
	err      error
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan struct{}, 8), release: make(chan result)}
}

func (s *gatedSource) ListLocations(ctx context.Context) ([]fleet.Vehicle, error) {
	s.started <- struct{}{}
	select {
	case r := <-s.release:
		return r.vehicles, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func located(id, plate string, status fleet.Status, lat, lng float64) fleet.Vehicle {
	return fleet.Vehicle{
		ID:          fleet.VehicleID(id),
		PlateNumber: plate,
		Model:       "Toyota Hiace",
		Status:      status,
		Location:    &fleet.Location{Latitude: floatPtr(lat), Longitude: floatPtr(lng)},
	}
}

func unlocated(id, plate string, status fleet.Status) fleet.Vehicle {
	return fleet.Vehicle{
		ID:          fleet.VehicleID(id),
		PlateNumber: plate,
		Model:       "Isuzu NPR",
		Status:      status,
	}
}
