// Package loader drives the acquisition of the EPCI contour dataset: cache
// first, then the primary source, then exactly one fallback attempt. The
// orchestrator tracks a small state machine the session and CLI poll to
// explain what the map is waiting on.
package loader

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/diag360/territory-cli/internal/geodata"
)

// State is the orchestrator lifecycle state.
type State int

const (
	// StateIdle means no load has been attempted yet.
	StateIdle State = iota
	// StateLoading means an attempt is in flight.
	StateLoading
	// StateLoaded means geometry is available.
	StateLoaded
	// StateFailed means both sources failed; Retry may be called.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Downloader fetches a URL body.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// Store is a payload cache. Reads degrade to a miss, writes to a bool.
type Store interface {
	Read(ctx context.Context) (*geodata.FeatureCollection, bool)
	Write(ctx context.Context, payload []byte) bool
}

// Orchestrator loads, filters and caches the feature collection.
type Orchestrator struct {
	fetcher  Downloader
	store    Store
	primary  string
	fallback string
	timeout  time.Duration

	mu        sync.RWMutex
	state     State
	err       error
	fc        *geodata.FeatureCollection
	source    string
	fromCache bool
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithAttemptTimeout bounds each source attempt. Default 30s.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New builds an orchestrator. store may be nil to disable caching.
func New(fetcher Downloader, store Store, primaryURL, fallbackURL string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:  fetcher,
		store:    store,
		primary:  primaryURL,
		fallback: fallbackURL,
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load acquires the filtered feature collection. A valid cache entry skips
// the network entirely. Otherwise the primary source is tried, then the
// fallback exactly once. On success the raw primary payload is cached
// best-effort; a failed cache write never fails the load.
func (o *Orchestrator) Load(ctx context.Context) (*geodata.FeatureCollection, error) {
	o.setState(StateLoading, nil)

	if o.store != nil {
		if fc, ok := o.store.Read(ctx); ok {
			filtered := geodata.FilterMetropole(fc)
			o.finish(filtered, "cache", true)
			zap.L().Info("loader: geometry served from cache",
				zap.Int("features", len(filtered.Features)))
			return filtered, nil
		}
	}

	fc, payload, err := o.attempt(ctx, o.primary)
	if err == nil {
		if o.store != nil && !o.store.Write(ctx, payload) {
			zap.L().Warn("loader: cache write failed, continuing without cache")
		}
		filtered := geodata.FilterMetropole(fc)
		o.finish(filtered, "primary", false)
		return filtered, nil
	}
	primaryErr := err
	zap.L().Warn("loader: primary source failed, trying fallback",
		zap.String("url", o.primary), zap.Error(err))

	if o.fallback == "" {
		wrapped := eris.Wrap(primaryErr, "loader: primary source failed, no fallback configured")
		o.setState(StateFailed, wrapped)
		return nil, wrapped
	}

	fc, _, err = o.attempt(ctx, o.fallback)
	if err != nil {
		wrapped := eris.Wrapf(err, "loader: fallback source failed after primary error: %v", primaryErr)
		o.setState(StateFailed, wrapped)
		return nil, wrapped
	}

	filtered := geodata.FilterMetropole(fc)
	o.finish(filtered, "fallback", false)
	return filtered, nil
}

// Retry re-enters acquisition after a failure, going straight to the
// fallback source: the primary already failed this session and is not
// worth another attempt timeout. Without a configured fallback the full
// sequence runs again. Calling Retry in any other state is a no-op
// returning the current collection and error.
func (o *Orchestrator) Retry(ctx context.Context) (*geodata.FeatureCollection, error) {
	o.mu.RLock()
	state, fc, err := o.state, o.fc, o.err
	o.mu.RUnlock()
	if state != StateFailed {
		return fc, err
	}
	if o.fallback == "" {
		return o.Load(ctx)
	}

	o.setState(StateLoading, nil)
	next, _, err := o.attempt(ctx, o.fallback)
	if err != nil {
		wrapped := eris.Wrap(err, "loader: fallback source failed on retry")
		o.setState(StateFailed, wrapped)
		return nil, wrapped
	}

	filtered := geodata.FilterMetropole(next)
	o.finish(filtered, "fallback", false)
	return filtered, nil
}

// attempt downloads and parses one source under the per-attempt timeout.
func (o *Orchestrator) attempt(ctx context.Context, rawURL string) (*geodata.FeatureCollection, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	payload, err := o.fetcher.Download(attemptCtx, rawURL)
	if err != nil {
		return nil, nil, err
	}

	var fc geodata.FeatureCollection
	if err := json.Unmarshal(payload, &fc); err != nil {
		return nil, nil, eris.Wrapf(err, "loader: parse payload from %s", rawURL)
	}
	return &fc, payload, nil
}

func (o *Orchestrator) finish(fc *geodata.FeatureCollection, source string, fromCache bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateLoaded
	o.err = nil
	o.fc = fc
	o.source = source
	o.fromCache = fromCache
}

func (o *Orchestrator) setState(s State, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
	o.err = err
}

// State returns the lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Err returns the terminal error after a failed load, nil otherwise.
func (o *Orchestrator) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

// Collection returns the filtered features, nil until loaded.
func (o *Orchestrator) Collection() *geodata.FeatureCollection {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fc
}

// FromCache reports whether the current collection came from the cache.
func (o *Orchestrator) FromCache() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fromCache
}

// DataSource names where the current collection came from: "cache",
// "primary" or "fallback". Empty until loaded.
func (o *Orchestrator) DataSource() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.source
}
