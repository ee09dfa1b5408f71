package fleet

import (
	"strings"
	"sync"

	"fleetmap-service/internal/domain/fleet"
)

// Selection tracks search text, the focused vehicle and the highlighted marker
// for one view. All three are always read and reset together.
type Selection struct {
	mu           sync.RWMutex
	query        string
	dropdownOpen bool
	selected     *fleet.Vehicle
	highlightID  fleet.VehicleID
	focusZoom    int
}

func NewSelection(focusZoom int) *Selection {
	return &Selection{focusZoom: focusZoom}
}

// SetQuery updates the search text; the dropdown shows while the text is non-blank.
func (s *Selection) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.dropdownOpen = strings.TrimSpace(query) != ""
}

// Select focuses a vehicle. Vehicles without both coordinates are ignored and
// ok is false.
func (s *Selection) Select(v fleet.Vehicle) (fleet.CameraMove, bool) {
	lat, lng, ok := v.Coordinates()
	if !ok {
		return fleet.CameraMove{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &v
	s.highlightID = v.ID
	s.dropdownOpen = false
	s.query = v.PlateNumber

	return fleet.CameraMove{
		Center:    fleet.Coordinate{Lat: lat, Lng: lng},
		Zoom:      s.focusZoom,
		VehicleID: v.ID,
	}, true
}

// Clear resets query, selection and highlight.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.dropdownOpen = false
	s.selected = nil
	s.highlightID = ""
}

// ResetView moves the camera back to center. A transient selection pointing at
// center is visible while issue runs and is cleared right after, unless a real
// selection replaced it in the meantime.
func (s *Selection) ResetView(center fleet.Coordinate, zoom int, issue func(fleet.CameraMove)) {
	lat, lng := center.Lat, center.Lng
	transient := &fleet.Vehicle{Location: &fleet.Location{Latitude: &lat, Longitude: &lng}}

	s.mu.Lock()
	s.selected = transient
	s.mu.Unlock()

	if issue != nil {
		issue(fleet.CameraMove{Center: center, Zoom: zoom})
	}

	s.mu.Lock()
	if s.selected == transient {
		s.selected = nil
	}
	s.mu.Unlock()
}

func (s *Selection) State() fleet.SelectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := fleet.SelectionState{
		Query:        s.query,
		DropdownOpen: s.dropdownOpen,
		HighlightID:  s.highlightID,
	}
	if s.selected != nil {
		v := *s.selected
		st.Selected = &v
	}
	return st
}
