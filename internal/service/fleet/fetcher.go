package fleet

import (
	"context"
	"sync"
	"time"

	"fleetmap-service/internal/domain/fleet"
	xerrors "fleetmap-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Fetcher owns the fetch state of one view. Overlapping fetches are not
// deduplicated: whichever completes last decides the state.
type Fetcher struct {
	source  fleet.LocationSource
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	state    fleet.FetchState
	closed   bool
	onChange func(fleet.FetchState)
}

func NewFetcher(source fleet.LocationSource, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:  source,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
		state:   fleet.FetchState{Vehicles: []fleet.Vehicle{}},
	}
}

// OnChange registers the listener called after every state replacement.
func (f *Fetcher) OnChange(fn func(fleet.FetchState)) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// State returns the current fetch state.
func (f *Fetcher) State() fleet.FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fetch runs one request against the source and replaces the state with the
// outcome. It returns the error the request ended with, if any.
func (f *Fetcher) Fetch(ctx context.Context) error {
	if !f.publish(func(prev fleet.FetchState) fleet.FetchState {
		return fleet.FetchState{Vehicles: prev.Vehicles, Loading: true, FetchedAt: prev.FetchedAt}
	}) {
		return xerrors.ErrViewClosed
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	vehicles, err := f.source.ListLocations(ctx)
	if err != nil {
		msg := xerrors.UserMessage(err)
		f.logger.Warn("vehicle locations fetch failed", zap.Error(err), zap.String("message", msg))
		f.publish(func(fleet.FetchState) fleet.FetchState {
			return fleet.FetchState{Vehicles: []fleet.Vehicle{}, Error: msg}
		})
		return err
	}

	if vehicles == nil {
		vehicles = []fleet.Vehicle{}
	}
	fetchedAt := f.now()
	f.logger.Debug("vehicle locations fetched", zap.Int("count", len(vehicles)))
	f.publish(func(fleet.FetchState) fleet.FetchState {
		return fleet.FetchState{Vehicles: vehicles, FetchedAt: &fetchedAt}
	})
	return nil
}

// Refetch starts a fetch in the background. The request is not tied to the
// caller and is never cancelled by a later one.
func (f *Fetcher) Refetch() {
	go func() {
		_ = f.Fetch(context.Background())
	}()
}

// Close makes every later completion a no-op.
func (f *Fetcher) Close() {
	f.mu.Lock()
	f.closed = true
	f.onChange = nil
	f.mu.Unlock()
}

func (f *Fetcher) publish(next func(prev fleet.FetchState) fleet.FetchState) bool {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return false
	}
	f.state = next(f.state)
	state, fn := f.state, f.onChange
	f.mu.Unlock()

	if fn != nil {
		fn(state)
	}
	return true
}
