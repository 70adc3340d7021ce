package loader

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diag360/territory-cli/internal/geodata"
)

const goodPayload = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"epci_siren": "243300316"},
		 "geometry": {"type": "Point", "coordinates": [2.5, 46.5]}},
		{"type": "Feature", "properties": {"epci_siren": "200041788"},
		 "geometry": {"type": "Point", "coordinates": [-61.5, 16.2]}}
	]
}`

type fakeFetcher struct {
	responses map[string][]byte
	errs      map[string]error
	calls     []string
}

func (f *fakeFetcher) Download(ctx context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	return f.responses[rawURL], nil
}

type fakeStore struct {
	cached    *geodata.FeatureCollection
	written   []byte
	writeFail bool
}

func (s *fakeStore) Read(ctx context.Context) (*geodata.FeatureCollection, bool) {
	return s.cached, s.cached != nil
}

func (s *fakeStore) Write(ctx context.Context, payload []byte) bool {
	if s.writeFail {
		return false
	}
	s.written = payload
	return true
}

func TestLoadFromPrimaryFiltersAndCaches(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]byte{"primary": []byte(goodPayload)}}
	s := &fakeStore{}
	o := New(f, s, "primary", "fallback")

	fc, err := o.Load(context.Background())
	require.NoError(t, err)

	// The overseas feature is filtered out, but the cached payload is raw.
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "243300316", fc.Features[0].Properties["epci_siren"])
	assert.JSONEq(t, goodPayload, string(s.written))

	assert.Equal(t, StateLoaded, o.State())
	assert.Equal(t, "primary", o.DataSource())
	assert.False(t, o.FromCache())
	assert.Equal(t, []string{"primary"}, f.calls)
}

func TestLoadCacheHitSkipsNetwork(t *testing.T) {
	var cached geodata.FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(goodPayload), &cached))

	f := &fakeFetcher{}
	o := New(f, &fakeStore{cached: &cached}, "primary", "fallback")

	fc, err := o.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Empty(t, f.calls)
	assert.Equal(t, "cache", o.DataSource())
	assert.True(t, o.FromCache())
}

func TestLoadFallsBackOnce(t *testing.T) {
	f := &fakeFetcher{
		errs:      map[string]error{"primary": errors.New("dns failure")},
		responses: map[string][]byte{"fallback": []byte(goodPayload)},
	}
	s := &fakeStore{}
	o := New(f, s, "primary", "fallback")

	fc, err := o.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, "fallback", o.DataSource())
	assert.Equal(t, []string{"primary", "fallback"}, f.calls)

	// Fallback payloads are not cached.
	assert.Nil(t, s.written)
}

func TestLoadBothSourcesFail(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{
		"primary":  errors.New("dns failure"),
		"fallback": errors.New("http 500"),
	}}
	o := New(f, nil, "primary", "fallback")

	_, err := o.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, o.State())
	assert.Error(t, o.Err())
	assert.Nil(t, o.Collection())
	assert.Equal(t, []string{"primary", "fallback"}, f.calls)
}

func TestLoadCorruptPrimaryTriggersFallback(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]byte{
		"primary":  []byte(`{"type": "FeatureCollection", "features": [`),
		"fallback": []byte(goodPayload),
	}}
	o := New(f, nil, "primary", "fallback")

	fc, err := o.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, "fallback", o.DataSource())
}

func TestRetryUsesFallbackOnly(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{
		"primary":  errors.New("down"),
		"fallback": errors.New("down"),
	}}
	o := New(f, nil, "primary", "fallback")

	_, err := o.Load(context.Background())
	require.Error(t, err)

	// The fallback recovers while the primary stays down; Retry must not
	// touch the primary again.
	f.errs = map[string]error{"primary": errors.New("down")}
	f.responses = map[string][]byte{"fallback": []byte(goodPayload)}

	fc, err := o.Retry(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, StateLoaded, o.State())
	assert.Equal(t, "fallback", o.DataSource())
	assert.Equal(t, []string{"primary", "fallback", "fallback"}, f.calls)
}

func TestRetryFallbackStillDown(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{
		"primary":  errors.New("down"),
		"fallback": errors.New("down"),
	}}
	o := New(f, nil, "primary", "fallback")

	_, err := o.Load(context.Background())
	require.Error(t, err)

	_, err = o.Retry(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, o.State())
	assert.Equal(t, []string{"primary", "fallback", "fallback"}, f.calls)
}

func TestRetryWithoutFallbackRerunsLoad(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"primary": errors.New("down")}}
	o := New(f, nil, "primary", "")

	_, err := o.Load(context.Background())
	require.Error(t, err)

	f.errs = nil
	f.responses = map[string][]byte{"primary": []byte(goodPayload)}

	fc, err := o.Retry(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, "primary", o.DataSource())
}

func TestRetryWhileLoadedIsNoOp(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]byte{"primary": []byte(goodPayload)}}
	o := New(f, nil, "primary", "")

	_, err := o.Load(context.Background())
	require.NoError(t, err)

	fc, err := o.Retry(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, fc)
	assert.Equal(t, []string{"primary"}, f.calls)
}

func TestLoadCacheWriteFailureIsNotFatal(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]byte{"primary": []byte(goodPayload)}}
	o := New(f, &fakeStore{writeFail: true}, "primary", "")

	fc, err := o.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, StateLoaded, o.State())
}

func TestNoFallbackConfigured(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"primary": errors.New("down")}}
	o := New(f, nil, "primary", "")

	_, err := o.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fallback configured")
	assert.Equal(t, []string{"primary"}, f.calls)
}
