// internal/websocket/handler/map_view.go
package handlers

import (
	"context"
	"fmt"

	"fleetmap-service/internal/domain/fleet"
	wstypes "fleetmap-service/internal/domain/websocket"
	xerrors "fleetmap-service/internal/pkg/errors"
	ws "fleetmap-service/internal/websocket"

	"github.com/go-playground/validator/v10"
)

// MapViewHandler applies map commands to the view bound to the client.
type MapViewHandler struct {
	validate *validator.Validate
}

func NewMapViewHandler() *MapViewHandler {
	return &MapViewHandler{validate: validator.New()}
}

// SupportedEvents returns events this handler supports
func (h *MapViewHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeMapSearch,
		wstypes.EventTypeMapSelect,
		wstypes.EventTypeMapClear,
		wstypes.EventTypeMapResetView,
		wstypes.EventTypeMapRefresh,
		wstypes.EventTypeMapAutoRefresh,
	}
}

// HandleMessage processes map view commands
func (h *MapViewHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	view := client.View()

	switch msg.Type {
	case wstypes.EventTypeMapSearch:
		var req fleet.SearchRequest
		if err := h.decode(msg, &req); err != nil {
			return err
		}
		view.Search(req.Query)

	case wstypes.EventTypeMapSelect:
		var req fleet.SelectRequest
		if err := h.decode(msg, &req); err != nil {
			return err
		}
		return view.Select(req.VehicleID)

	case wstypes.EventTypeMapClear:
		view.Clear()

	case wstypes.EventTypeMapResetView:
		view.ResetView()

	case wstypes.EventTypeMapRefresh:
		view.Refresh()

	case wstypes.EventTypeMapAutoRefresh:
		var req fleet.AutoRefreshRequest
		if err := h.decode(msg, &req); err != nil {
			return err
		}
		return view.ConfigureAutoRefresh(req.Enabled, req.IntervalSeconds)

	default:
		return fmt.Errorf("%w: %s", ws.ErrUnsupportedEvent, msg.Type)
	}
	return nil
}

func (h *MapViewHandler) decode(msg *wstypes.WSMessage, target interface{}) error {
	if err := ws.DecodeData(msg.Data, target); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}
	if err := h.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}
	return nil
}
