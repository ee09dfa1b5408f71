package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fleetmap-service/internal/domain/fleet"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// maxFeedSize bounds how much of a feed is read. A truncated protobuf can
// still decode, so an oversized feed is rejected instead of cut short.
const maxFeedSize = 16 << 20

// Source reads vehicle positions from a GTFS-Realtime feed.
type Source struct {
	url        string
	httpClient *http.Client
	maxSize    int64
}

func NewSource(url string, timeout time.Duration) *Source {
	return &Source{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxSize:    maxFeedSize,
	}
}

func (s *Source) ListLocations(ctx context.Context) ([]fleet.Vehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtfs-rt http status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxSize {
		return nil, fmt.Errorf("gtfs-rt feed exceeds %d bytes", s.maxSize)
	}
	var feed gtfs.FeedMessage
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode gtfs-rt feed: %w", err)
	}
	return VehiclesFromFeed(&feed), nil
}

// VehiclesFromFeed maps vehicle-position entities. Every vehicle in the feed is
// reporting, so it is treated as active; missing positions stay missing.
func VehiclesFromFeed(feed *gtfs.FeedMessage) []fleet.Vehicle {
	vehicles := make([]fleet.Vehicle, 0, len(feed.GetEntity()))
	for _, ent := range feed.GetEntity() {
		vp := ent.GetVehicle()
		if vp == nil {
			continue
		}
		desc := vp.GetVehicle()
		id := desc.GetId()
		if id == "" {
			id = ent.GetId()
		}
		if id == "" {
			continue
		}

		v := fleet.Vehicle{
			ID:          fleet.VehicleID(id),
			PlateNumber: desc.GetLicensePlate(),
			Model:       desc.GetLabel(),
			Status:      fleet.StatusActive,
		}
		if pos := vp.GetPosition(); pos != nil && pos.Latitude != nil && pos.Longitude != nil {
			lat, lng := float64(pos.GetLatitude()), float64(pos.GetLongitude())
			loc := &fleet.Location{Latitude: &lat, Longitude: &lng}
			if pos.Odometer != nil {
				odo := pos.GetOdometer() / 1000
				v.CurrentOdometer = &odo
			}
			v.Location = loc
		}
		if vp.Timestamp != nil {
			ts := time.Unix(int64(vp.GetTimestamp()), 0).UTC()
			v.LastLocationUpdate = &ts
			if v.Location != nil {
				v.Location.LastUpdate = &ts
			}
		}
		vehicles = append(vehicles, v)
	}
	return vehicles
}
