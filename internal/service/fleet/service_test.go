package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetmap-service/internal/domain/fleet"
	xerrors "fleetmap-service/internal/pkg/errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func newTestService(src fleet.LocationSource) *FleetService {
	s := NewFleetService(src, cron.New(), ServiceConfig{MapConfig: testMapConfig, FetchTimeout: time.Second}, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s
}

func TestFleetServiceViews(t *testing.T) {
	s := newTestService(&stubSource{})

	a, b := s.NewView(), s.NewView()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("view ids = %q, %q", a.ID(), b.ID())
	}
	if n := s.ActiveViews(); n != 2 {
		t.Fatalf("ActiveViews() = %d, want 2", n)
	}

	a.Close()
	if n := s.ActiveViews(); n != 1 {
		t.Fatalf("ActiveViews() after close = %d, want 1", n)
	}

	s.Shutdown()
	if n := s.ActiveViews(); n != 0 {
		t.Fatalf("ActiveViews() after shutdown = %d, want 0", n)
	}
}

func TestFleetServiceOverview(t *testing.T) {
	s := newTestService(&stubSource{vehicles: fleetFixture()})

	ov, err := s.Overview(context.Background(), &fleet.OverviewFilters{Query: "xyz", Highlight: "2"})
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if len(ov.Markers) != 2 || ov.Stats.Total != 3 {
		t.Errorf("markers = %d, total = %d", len(ov.Markers), ov.Stats.Total)
	}
	if !ov.Markers[1].Style.Highlighted || ov.Markers[0].Style.Highlighted {
		t.Error("highlight not applied to vehicle 2 only")
	}
	if len(ov.Search.Results) != 1 || ov.Search.Results[0].ID != "2" {
		t.Errorf("search = %+v", ov.Search)
	}
	if !ov.GeneratedAt.Equal(testNow) {
		t.Errorf("GeneratedAt = %v", ov.GeneratedAt)
	}
}

func TestFleetServiceWrapsSourceErrors(t *testing.T) {
	boom := errors.New("Network Error")
	s := newTestService(&stubSource{err: boom})

	if _, err := s.Locations(context.Background()); !errors.Is(err, boom) || !errors.Is(err, xerrors.ErrUpstream) {
		t.Errorf("Locations() error = %v", err)
	}
	if _, err := s.Stats(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Stats() error = %v", err)
	}
	if _, err := s.Search(context.Background(), "a"); !errors.Is(err, boom) {
		t.Errorf("Search() error = %v", err)
	}
}

func TestFleetServiceLocationsNeverNil(t *testing.T) {
	vehicles, err := newTestService(&stubSource{}).Locations(context.Background())
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if vehicles == nil {
		t.Fatal("Locations() returned nil slice")
	}
}
