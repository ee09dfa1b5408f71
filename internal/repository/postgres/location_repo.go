// internal/repository/postgres/location_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"fleetmap-service/internal/domain/fleet"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LocationRepository struct {
	db *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{db: db}
}

// ListLocations returns every vehicle with its assigned driver and latest
// reported position.
func (r *LocationRepository) ListLocations(ctx context.Context) ([]fleet.Vehicle, error) {
	query := `
		SELECT v.id::text, COALESCE(v.plate_number, ''), COALESCE(v.model, ''), COALESCE(v.status, ''),
		       v.current_odometer::float8, d.full_name,
		       l.latitude::float8, l.longitude::float8, l.recorded_at,
		       v.last_location_update
		FROM vehicles v
		LEFT JOIN drivers d ON d.id = v.assigned_driver_id
		LEFT JOIN LATERAL (
			SELECT latitude, longitude, recorded_at
			FROM vehicle_locations
			WHERE vehicle_id = v.id
			ORDER BY recorded_at DESC
			LIMIT 1
		) l ON TRUE
		ORDER BY v.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicle locations: %w", err)
	}
	defer rows.Close()

	vehicles := []fleet.Vehicle{}
	for rows.Next() {
		var (
			v          fleet.Vehicle
			id, status string
			lat, lng   *float64
			recordedAt *time.Time
		)
		err := rows.Scan(
			&id, &v.PlateNumber, &v.Model, &status,
			&v.CurrentOdometer, &v.DriverName,
			&lat, &lng, &recordedAt,
			&v.LastLocationUpdate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle location: %w", err)
		}
		v.ID = fleet.VehicleID(id)
		v.Status = fleet.Status(status)
		if lat != nil || lng != nil || recordedAt != nil {
			v.Location = &fleet.Location{Latitude: lat, Longitude: lng, LastUpdate: recordedAt}
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicle locations: %w", err)
	}

	return vehicles, nil
}
