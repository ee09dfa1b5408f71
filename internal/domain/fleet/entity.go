// internal/domain/fleet/entity.go
package fleet

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

type Status string

const (
	StatusActive           Status = "active"
	StatusUnderMaintenance Status = "under_maintenance"
	StatusInactive         Status = "inactive"
)

// OnlineWindow is how recent a location update must be for a vehicle to count as online.
const OnlineWindow = 5 * time.Minute

// VehicleID accepts both string and numeric ids from the backend.
type VehicleID string

func (id *VehicleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = VehicleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = VehicleID(n.String())
	return nil
}

func (id VehicleID) String() string { return string(id) }

// Location is the last reported position of a vehicle. Either coordinate may be missing.
type Location struct {
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`
}

// Vehicle is one record of the vehicle-locations collection.
type Vehicle struct {
	ID                 VehicleID  `json:"id"`
	PlateNumber        string     `json:"plateNumber"`
	Model              string     `json:"model"`
	Status             Status     `json:"status"`
	DriverName         *string    `json:"driverName,omitempty"`
	CurrentOdometer    *float64   `json:"currentOdometer,omitempty"`
	Location           *Location  `json:"location,omitempty"`
	LastLocationUpdate *time.Time `json:"lastLocationUpdate,omitempty"`
}

// HasCoordinates reports whether the vehicle can be placed on the map.
func (v *Vehicle) HasCoordinates() bool {
	return v.Location != nil && v.Location.Latitude != nil && v.Location.Longitude != nil
}

// Coordinates returns the position; ok is false when either coordinate is missing.
func (v *Vehicle) Coordinates() (lat, lng float64, ok bool) {
	if !v.HasCoordinates() {
		return 0, 0, false
	}
	return *v.Location.Latitude, *v.Location.Longitude, true
}

// IsOnline reports whether the last location update is strictly within OnlineWindow of now.
func (v *Vehicle) IsOnline(now time.Time) bool {
	if v.LastLocationUpdate == nil {
		return false
	}
	return now.Sub(*v.LastLocationUpdate) < OnlineWindow
}

// DisplayTimestamp prefers the location's own timestamp over the top-level one.
func (v *Vehicle) DisplayTimestamp() *time.Time {
	if v.Location != nil && v.Location.LastUpdate != nil {
		return v.Location.LastUpdate
	}
	return v.LastLocationUpdate
}

// Stats summarises a vehicle list.
type Stats struct {
	Total            int `json:"total"`
	WithLocation     int `json:"with_location"`
	Online           int `json:"online"`
	Active           int `json:"active"`
	UnderMaintenance int `json:"under_maintenance"`
	Inactive         int `json:"inactive"`
	NoLocation       int `json:"no_location"`
}

// FetchState is replaced wholesale on every fetch start and completion.
type FetchState struct {
	Vehicles  []Vehicle  `json:"vehicles"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

type AutoRefreshConfig struct {
	Enabled  bool          `json:"enabled"`
	Interval time.Duration `json:"-"`
}

func (c AutoRefreshConfig) MarshalJSON() ([]byte, error) {
	return []byte(`{"enabled":` + strconv.FormatBool(c.Enabled) +
		`,"interval_seconds":` + strconv.Itoa(int(c.Interval/time.Second)) + `}`), nil
}

// Coordinate is a plain map position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CameraMove asks the map client to fly to a position.
type CameraMove struct {
	Center    Coordinate `json:"center"`
	Zoom      int        `json:"zoom"`
	VehicleID VehicleID  `json:"vehicle_id,omitempty"`
}

// MapConfig is the static configuration a map client needs to draw the base layer.
type MapConfig struct {
	TileURL                string     `json:"tile_url"`
	Attribution            string     `json:"attribution"`
	DefaultCenter          Coordinate `json:"default_center"`
	DefaultZoom            int        `json:"default_zoom"`
	FocusZoom              int        `json:"focus_zoom"`
	DefaultIntervalSeconds int        `json:"default_interval_seconds"`
	VehicleDetailsPath     string     `json:"vehicle_details_path"`
}
