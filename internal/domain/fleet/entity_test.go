package fleet

import (
	"encoding/json"
	"testing"
	"time"
)

func TestVehicleIDUnmarshal(t *testing.T) {
	cases := map[string]VehicleID{
		`"abc-1"`: "abc-1",
		`42`:      "42",
		`null`:    "",
	}
	for in, want := range cases {
		var id VehicleID
		if err := json.Unmarshal([]byte(in), &id); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", in, err)
		}
		if id != want {
			t.Errorf("Unmarshal(%s) = %q, want %q", in, id, want)
		}
	}

	var id VehicleID
	if err := json.Unmarshal([]byte(`{"id":1}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}

func TestVehicleCoordinates(t *testing.T) {
	lat := 9.01
	cases := []struct {
		name string
		v    Vehicle
		want bool
	}{
		{"no location", Vehicle{}, false},
		{"latitude only", Vehicle{Location: &Location{Latitude: &lat}}, false},
		{"both", Vehicle{Location: &Location{Latitude: &lat, Longitude: &lat}}, true},
	}
	for _, tc := range cases {
		if got := tc.v.HasCoordinates(); got != tc.want {
			t.Errorf("%s: HasCoordinates() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDisplayTimestamp(t *testing.T) {
	top := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	loc := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)

	v := Vehicle{LastLocationUpdate: &top}
	if got := v.DisplayTimestamp(); got == nil || !got.Equal(top) {
		t.Errorf("DisplayTimestamp() = %v, want top-level", got)
	}
	v.Location = &Location{LastUpdate: &loc}
	if got := v.DisplayTimestamp(); got == nil || !got.Equal(loc) {
		t.Errorf("DisplayTimestamp() = %v, want location timestamp", got)
	}
	if got := (&Vehicle{}).DisplayTimestamp(); got != nil {
		t.Errorf("DisplayTimestamp() = %v, want nil", got)
	}
}

func TestAutoRefreshConfigJSON(t *testing.T) {
	b, err := json.Marshal(AutoRefreshConfig{Enabled: true, Interval: 15 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"enabled":true,"interval_seconds":15}` {
		t.Errorf("json = %s", b)
	}
}
