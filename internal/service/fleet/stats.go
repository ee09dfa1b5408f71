package fleet

import (
	"time"

	"fleetmap-service/internal/domain/fleet"
)

// ComputeStats derives the summary counts from a vehicle list as of now.
func ComputeStats(vehicles []fleet.Vehicle, now time.Time) fleet.Stats {
	s := fleet.Stats{Total: len(vehicles)}
	for i := range vehicles {
		v := &vehicles[i]
		if v.HasCoordinates() {
			s.WithLocation++
		}
		if v.IsOnline(now) {
			s.Online++
		}
		switch v.Status {
		case fleet.StatusActive:
			s.Active++
		case fleet.StatusUnderMaintenance:
			s.UnderMaintenance++
		case fleet.StatusInactive:
			s.Inactive++
		}
	}
	s.NoLocation = s.Total - s.WithLocation
	return s
}
