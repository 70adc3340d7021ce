// Package session ties a map viewing session together: it bootstraps the
// score table and the geometry in parallel, resolves hovered features to
// records, and answers autocomplete queries with a local fallback when the
// backend is unreachable.
package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/diag360/territory-cli/internal/apiclient"
	"github.com/diag360/territory-cli/internal/geodata"
	"github.com/diag360/territory-cli/internal/loader"
	"github.com/diag360/territory-cli/internal/match"
	"github.com/diag360/territory-cli/internal/model"
	"github.com/diag360/territory-cli/internal/resolve"
)

// listLimit bounds the score table bootstrap; metropolitan France has about
// 1250 EPCI so one page covers the full table.
const listLimit = 2000

// Session is the per-invocation state of a map view.
type Session struct {
	id      string
	api     apiclient.Client
	orch    *loader.Orchestrator
	matcher *match.Matcher

	debounce *Debouncer

	mu        sync.RWMutex
	records   []model.TerritoryRecord
	listErr   error
	debugDone bool
	onSelect  []func(model.TerritoryRecord)
}

// New creates an idle session over the given backend client and orchestrator.
func New(api apiclient.Client, orch *loader.Orchestrator) *Session {
	return &Session{
		id:       uuid.NewString(),
		api:      api,
		orch:     orch,
		matcher:  match.New(),
		debounce: NewDebouncer(DebounceDelay),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Start bootstraps the session: the score table and the geometry load in
// parallel. A geometry failure fails the session; a score table failure is
// recorded and the map degrades to synthesized placeholder records.
func (s *Session) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := s.api.ListTerritories(ctx, apiclient.ListParams{Limit: listLimit, OrderBy: "name"})
		if err != nil {
			zap.L().Warn("session: score table unavailable, map will use placeholders",
				zap.String("session_id", s.id), zap.Error(err))
			s.mu.Lock()
			s.listErr = err
			s.mu.Unlock()
			return nil
		}
		s.mu.Lock()
		s.records = resp.Items
		s.mu.Unlock()
		s.matcher.Load(resp.Items)
		zap.L().Info("session: score table loaded",
			zap.String("session_id", s.id), zap.Int("territories", len(resp.Items)))
		return nil
	})

	g.Go(func() error {
		_, err := s.orch.Load(ctx)
		return err
	})

	return g.Wait()
}

// LookupFeature resolves a feature to its identity and score record. The
// index keys the fallback code for features with no usable identifier. The
// first lookup of a session dumps the property keys once at debug level.
func (s *Session) LookupFeature(f geodata.Feature, index int) (model.ResolvedIdentity, *model.TerritoryRecord) {
	s.debugDump(f)
	id := resolve.Identity(f.Properties, fmt.Sprintf("geo-%d", index))
	rec := s.matcher.Match(id)

	s.mu.RLock()
	hooks := make([]func(model.TerritoryRecord), len(s.onSelect))
	copy(hooks, s.onSelect)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(*rec)
	}

	return id, rec
}

// OnSelect registers a callback invoked with the matched record on every
// feature lookup.
func (s *Session) OnSelect(fn func(model.TerritoryRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSelect = append(s.onSelect, fn)
}

// debugDump logs the property keys of the first inspected feature, once per
// session, so unexpected provider schemas show up in the logs.
func (s *Session) debugDump(f geodata.Feature) {
	s.mu.Lock()
	if s.debugDone {
		s.mu.Unlock()
		return
	}
	s.debugDone = true
	s.mu.Unlock()

	keys := make([]string, 0, len(f.Properties))
	for k := range f.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	zap.L().Debug("session: first feature properties",
		zap.String("session_id", s.id),
		zap.Strings("keys", keys),
	)
}

// RearmDebug re-enables the one-shot property dump. The cache clear hook
// calls this so a fresh dataset gets inspected again.
func (s *Session) RearmDebug() {
	s.mu.Lock()
	s.debugDone = false
	s.mu.Unlock()
}

// Autocomplete schedules a debounced Search: rapid successive calls within
// the 200ms window are coalesced so only the last query fires, and fn
// receives its results. Results arrive on the debounce timer's goroutine.
func (s *Session) Autocomplete(ctx context.Context, query string, limit int, fn func([]model.TerritoryRecord, error)) {
	s.debounce.Do(func() {
		fn(s.Search(ctx, query, limit))
	})
}

// CancelAutocomplete drops any pending autocomplete query.
func (s *Session) CancelAutocomplete() {
	s.debounce.Stop()
}

// Search answers an autocomplete query. The backend is asked first; when it
// fails the local score table is filtered with diacritic-insensitive
// matching so "perigueux" still finds "Périgueux".
func (s *Session) Search(ctx context.Context, query string, limit int) ([]model.TerritoryRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	items, err := s.api.SearchTerritories(ctx, query, limit)
	if err == nil {
		return items, nil
	}
	zap.L().Warn("session: backend search failed, filtering locally",
		zap.String("session_id", s.id), zap.Error(err))

	return s.localSearch(query, limit), nil
}

func (s *Session) localSearch(query string, limit int) []model.TerritoryRecord {
	needle := fold(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.TerritoryRecord
	for _, rec := range s.records {
		if strings.Contains(fold(rec.Name), needle) || strings.HasPrefix(rec.CodeSiren, query) {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips diacritics for accent-insensitive matching.
func fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Known reports whether a code is backed by a real score record rather
// than a synthesized placeholder.
func (s *Session) Known(code string) bool { return s.matcher.Known(code) }

// Records returns the loaded score table, nil when the backend was down.
func (s *Session) Records() []model.TerritoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// IsLoading reports whether the geometry load is still in flight.
func (s *Session) IsLoading() bool { return s.orch.State() == loader.StateLoading }

// Error returns the geometry load error, nil unless the load failed.
func (s *Session) Error() error { return s.orch.Err() }

// ListError returns the score table bootstrap error, nil on success.
func (s *Session) ListError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listErr
}

// FromCache reports whether the geometry came from the local cache.
func (s *Session) FromCache() bool { return s.orch.FromCache() }

// DataSource names the geometry origin: "cache", "primary" or "fallback".
func (s *Session) DataSource() string { return s.orch.DataSource() }

// Collection returns the filtered geometry, nil until loaded.
func (s *Session) Collection() *geodata.FeatureCollection { return s.orch.Collection() }
