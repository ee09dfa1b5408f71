package fleet

import (
	"fmt"
	"sync"
	"time"

	"fleetmap-service/internal/domain/fleet"
	xerrors "fleetmap-service/internal/pkg/errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ViewOptions struct {
	ID           string
	Source       fleet.LocationSource
	Scheduler    *cron.Cron
	Renderer     *MarkerRenderer
	MapConfig    fleet.MapConfig
	FetchTimeout time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

// View is one live map session: its own fetch state, polling, search text,
// selection and highlight. Derived data is recomputed on every State call.
type View struct {
	id        string
	fetcher   *Fetcher
	refresh   *AutoRefresh
	selection *Selection
	renderer  *MarkerRenderer
	mapCfg    fleet.MapConfig
	logger    *zap.Logger
	now       func() time.Time

	// notifyMu orders state deliveries so the last one seen is the latest.
	notifyMu sync.Mutex

	mu       sync.RWMutex
	onState  func(fleet.ViewState)
	onCamera func(fleet.CameraMove)
	closed   bool
	closeFns []func()
}

func NewView(opts ViewOptions) *View {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("view_id", opts.ID))
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewMarkerRenderer(opts.MapConfig.VehicleDetailsPath, nil)
	}

	v := &View{
		id:        opts.ID,
		fetcher:   NewFetcher(opts.Source, opts.FetchTimeout, logger),
		selection: NewSelection(opts.MapConfig.FocusZoom),
		renderer:  renderer,
		mapCfg:    opts.MapConfig,
		logger:    logger,
		now:       now,
	}
	v.fetcher.now = now
	v.refresh = NewAutoRefresh(opts.Scheduler, v.fetcher.Refetch, logger)
	if opts.MapConfig.DefaultIntervalSeconds > 0 {
		v.refresh.cfg.Interval = time.Duration(opts.MapConfig.DefaultIntervalSeconds) * time.Second
	}
	v.fetcher.OnChange(func(fleet.FetchState) { v.notify() })
	return v
}

func (v *View) ID() string { return v.id }

// OnState registers the listener that receives every new view state.
func (v *View) OnState(fn func(fleet.ViewState)) {
	v.mu.Lock()
	v.onState = fn
	v.mu.Unlock()
}

// OnCamera registers the listener that receives camera moves.
func (v *View) OnCamera(fn func(fleet.CameraMove)) {
	v.mu.Lock()
	v.onCamera = fn
	v.mu.Unlock()
}

// OnClose registers a hook run once when the view is closed.
func (v *View) OnClose(fn func()) {
	v.mu.Lock()
	v.closeFns = append(v.closeFns, fn)
	v.mu.Unlock()
}

// Start triggers the initial fetch.
func (v *View) Start() {
	v.fetcher.Refetch()
}

// Refresh is the manual refresh trigger.
func (v *View) Refresh() {
	v.fetcher.Refetch()
}

func (v *View) Search(query string) {
	v.selection.SetQuery(query)
	v.notify()
}

// Select focuses the vehicle with the given id. A vehicle without coordinates
// is ignored without error.
func (v *View) Select(id fleet.VehicleID) error {
	vehicles := v.fetcher.State().Vehicles
	for i := range vehicles {
		if vehicles[i].ID != id {
			continue
		}
		move, ok := v.selection.Select(vehicles[i])
		if !ok {
			return nil
		}
		v.emitCamera(move)
		v.notify()
		return nil
	}
	return fmt.Errorf("vehicle %s: %w", id, xerrors.ErrNotFound)
}

// Clear resets search text, selection and highlight.
func (v *View) Clear() {
	v.selection.Clear()
	v.notify()
}

// ResetView moves the camera back to the default center.
func (v *View) ResetView() {
	v.selection.ResetView(v.mapCfg.DefaultCenter, v.mapCfg.DefaultZoom, v.emitCamera)
	v.notify()
}

// ConfigureAutoRefresh toggles polling; intervalSeconds of 0 keeps the current interval.
func (v *View) ConfigureAutoRefresh(enabled bool, intervalSeconds int) error {
	if err := v.refresh.Configure(enabled, time.Duration(intervalSeconds)*time.Second); err != nil {
		return err
	}
	v.notify()
	return nil
}

// State derives the full view state from the current snapshot.
func (v *View) State() fleet.ViewState {
	fs := v.fetcher.State()
	sel := v.selection.State()
	now := v.now()

	return fleet.ViewState{
		ViewID:      v.id,
		Loading:     fs.Loading,
		Error:       fs.Error,
		Empty:       !fs.Loading && fs.Error == "" && len(fs.Vehicles) == 0,
		FetchedAt:   fs.FetchedAt,
		Markers:     v.renderer.Render(fs.Vehicles, sel.HighlightID, now),
		Stats:       ComputeStats(fs.Vehicles, now),
		Search:      Search(fs.Vehicles, sel.Query),
		Selection:   sel,
		AutoRefresh: v.refresh.Config(),
	}
}

// Close stops polling and detaches listeners. In-flight fetches finish but
// their results are dropped.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.onState = nil
	v.onCamera = nil
	fns := v.closeFns
	v.closeFns = nil
	v.mu.Unlock()

	v.refresh.Stop()
	v.fetcher.Close()
	for _, fn := range fns {
		fn()
	}
	v.logger.Debug("view closed")
}

func (v *View) notify() {
	v.mu.RLock()
	fn := v.onState
	v.mu.RUnlock()
	if fn == nil {
		return
	}
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()
	fn(v.State())
}

func (v *View) emitCamera(move fleet.CameraMove) {
	v.mu.RLock()
	fn := v.onCamera
	v.mu.RUnlock()
	if fn != nil {
		fn(move)
	}
}
