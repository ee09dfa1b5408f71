package fleet

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"fleetmap-service/internal/domain/fleet"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	highlightBorder = "#3b82f6"
	defaultShadow   = "0 2px 6px rgba(0,0,0,0.3)"
	elevatedShadow  = "0 8px 24px rgba(59,130,246,0.6)"
	timestampLayout = "Jan 2, 2006, 3:04:05 PM"
	notAvailable    = "N/A"
	unassigned      = "Unassigned"
)

type palette struct {
	primary, secondary, glow string
	pulse                    bool
}

var statusPalette = map[fleet.Status]palette{
	fleet.StatusActive:           {"#10b981", "#059669", "rgba(16,185,129,0.4)", true},
	fleet.StatusUnderMaintenance: {"#f59e0b", "#d97706", "rgba(245,158,11,0.4)", false},
	fleet.StatusInactive:         {"#ef4444", "#dc2626", "rgba(239,68,68,0.4)", false},
}

var defaultPalette = palette{"#6b7280", "#4b5563", "rgba(107,114,128,0.4)", false}

var statusLabels = map[fleet.Status]string{
	fleet.StatusActive:           "Active",
	fleet.StatusUnderMaintenance: "Under Maintenance",
	fleet.StatusInactive:         "Inactive",
}

var numberPrinter = message.NewPrinter(language.English)

// MarkerRenderer turns vehicles into map marker view models.
type MarkerRenderer struct {
	detailsPath string
	location    *time.Location
}

func NewMarkerRenderer(detailsPath string, loc *time.Location) *MarkerRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &MarkerRenderer{detailsPath: detailsPath, location: loc}
}

// Render produces one marker per vehicle that has both coordinates.
func (r *MarkerRenderer) Render(vehicles []fleet.Vehicle, highlightID fleet.VehicleID, now time.Time) []fleet.Marker {
	markers := make([]fleet.Marker, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		lat, lng, ok := v.Coordinates()
		if !ok {
			continue
		}
		highlighted := highlightID != "" && v.ID == highlightID
		markers = append(markers, fleet.Marker{
			VehicleID: v.ID,
			Position:  fleet.Coordinate{Lat: lat, Lng: lng},
			Style:     StyleFor(v.Status, highlighted),
			Popup:     r.popup(v, lat, lng, now),
		})
	}
	return markers
}

// StyleFor maps a status to its marker style; unknown statuses fall back to grey.
func StyleFor(status fleet.Status, highlighted bool) fleet.MarkerStyle {
	p, ok := statusPalette[status]
	if !ok {
		p = defaultPalette
	}
	style := fleet.MarkerStyle{
		Primary:     p.primary,
		Secondary:   p.secondary,
		Glow:        p.glow,
		Pulse:       p.pulse,
		BorderColor: "#ffffff",
		Shadow:      defaultShadow,
	}
	if highlighted {
		style.Highlighted = true
		style.BorderColor = highlightBorder
		style.PulseRing = true
		style.Bounce = true
		style.Shadow = elevatedShadow
		style.ZIndex = 1000
	}
	return style
}

// StatusLabel is the human form of a status; unknown values are shown as-is.
func StatusLabel(status fleet.Status) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	if status == "" {
		return "Unknown"
	}
	return strings.ReplaceAll(string(status), "_", " ")
}

func (r *MarkerRenderer) popup(v *fleet.Vehicle, lat, lng float64, now time.Time) fleet.Popup {
	p := fleet.Popup{
		Plate:       orDefault(v.PlateNumber, notAvailable),
		Status:      string(v.Status),
		StatusLabel: StatusLabel(v.Status),
		Model:       orDefault(v.Model, notAvailable),
		Driver:      unassigned,
		Odometer:    "0",
		Online:      v.IsOnline(now),
		LastUpdate:  notAvailable,
		Coordinates: fmt.Sprintf("%.6f, %.6f", lat, lng),
		DetailsURL:  r.DetailsURL(v.ID),
	}
	if v.DriverName != nil && strings.TrimSpace(*v.DriverName) != "" {
		p.Driver = *v.DriverName
	}
	if v.CurrentOdometer != nil {
		p.Odometer = numberPrinter.Sprintf("%d", int64(*v.CurrentOdometer))
	}
	if p.Online {
		p.OnlineLabel = "Online"
	} else {
		p.OnlineLabel = "Offline"
	}
	if ts := v.DisplayTimestamp(); ts != nil {
		p.LastUpdate = ts.In(r.location).Format(timestampLayout)
	}
	return p
}

// DetailsURL links to the vehicle listing with this vehicle highlighted.
func (r *MarkerRenderer) DetailsURL(id fleet.VehicleID) string {
	q := url.Values{}
	q.Set("highlight", string(id))
	return r.detailsPath + "?" + q.Encode()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
