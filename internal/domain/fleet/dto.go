package fleet

import "time"

// MarkerStyle is the color triple and animation flags for one marker.
type MarkerStyle struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Glow      string `json:"glow"`
	Pulse     bool   `json:"pulse"`

	// Highlight treatment
	Highlighted bool   `json:"highlighted"`
	BorderColor string `json:"border_color"`
	PulseRing   bool   `json:"pulse_ring"`
	Bounce      bool   `json:"bounce"`
	Shadow      string `json:"shadow"`
	ZIndex      int    `json:"z_index"`
}

// Popup is the display-ready detail card shown when a marker is opened.
type Popup struct {
	Plate       string `json:"plate"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	Model       string `json:"model"`
	Driver      string `json:"driver"`
	Odometer    string `json:"odometer"`
	Online      bool   `json:"online"`
	OnlineLabel string `json:"online_label"`
	LastUpdate  string `json:"last_update"`
	Coordinates string `json:"coordinates"`
	DetailsURL  string `json:"details_url"`
}

type Marker struct {
	VehicleID VehicleID   `json:"vehicle_id"`
	Position  Coordinate  `json:"position"`
	Style     MarkerStyle `json:"style"`
	Popup     Popup       `json:"popup"`
}

// SearchResult separates "nothing typed" (Active=false) from "typed, no matches".
type SearchResult struct {
	Query   string    `json:"query"`
	Active  bool      `json:"active"`
	Results []Vehicle `json:"results"`
}

type SelectionState struct {
	Query        string    `json:"query"`
	DropdownOpen bool      `json:"dropdown_open"`
	Selected     *Vehicle  `json:"selected,omitempty"`
	HighlightID  VehicleID `json:"highlight_id,omitempty"`
}

// ViewState is everything a map client needs to redraw after a change.
type ViewState struct {
	ViewID      string            `json:"view_id"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
	Empty       bool              `json:"empty"`
	FetchedAt   *time.Time        `json:"fetched_at,omitempty"`
	Markers     []Marker          `json:"markers"`
	Stats       Stats             `json:"stats"`
	Search      SearchResult      `json:"search"`
	Selection   SelectionState    `json:"selection"`
	AutoRefresh AutoRefreshConfig `json:"auto_refresh"`
}

// Overview is the stateless rendering served over REST.
type Overview struct {
	Markers     []Marker     `json:"markers"`
	Stats       Stats        `json:"stats"`
	Search      SearchResult `json:"search"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// OverviewFilters for the REST map endpoint
type OverviewFilters struct {
	Query     string `form:"q" binding:"max=100"`
	Highlight string `form:"highlight" binding:"max=64"`
}

// SearchFilters for the REST search endpoint
type SearchFilters struct {
	Query string `form:"q" binding:"max=100"`
}

// Client -> server websocket payloads

type SearchRequest struct {
	Query string `json:"query" validate:"max=100"`
}

type SelectRequest struct {
	VehicleID VehicleID `json:"vehicle_id" validate:"required"`
}

type AutoRefreshRequest struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds" validate:"omitempty,min=1,max=3600"`
}
