package fleet

import "context"

// LocationSource returns the current vehicle-locations collection.
type LocationSource interface {
	ListLocations(ctx context.Context) ([]Vehicle, error)
}

// SnapshotCache stores the last successful collection for a short time.
type SnapshotCache interface {
	Load(ctx context.Context) ([]Vehicle, bool, error)
	Store(ctx context.Context, vehicles []Vehicle) error
}
