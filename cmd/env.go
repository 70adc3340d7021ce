package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/diag360/territory-cli/internal/apiclient"
	"github.com/diag360/territory-cli/internal/config"
	"github.com/diag360/territory-cli/internal/fetcher"
	"github.com/diag360/territory-cli/internal/geocache"
	"github.com/diag360/territory-cli/internal/loader"
	"github.com/diag360/territory-cli/internal/session"
)

// env bundles the wired components a command needs.
type env struct {
	API     apiclient.Client
	Cache   *geocache.Cache
	Session *session.Session
}

// initEnv wires the fetcher, cache, orchestrator, backend client and session
// from the loaded configuration. noCache skips the local geometry cache.
func initEnv(c *config.Config, noCache bool) (*env, error) {
	api := apiclient.New(apiclient.WithBaseURL(c.API.BaseURL))

	var cache *geocache.Cache
	var store loader.Store
	if !noCache {
		opened, err := geocache.Open(c.Cache.Path,
			geocache.WithTTL(time.Duration(c.Cache.TTLHours)*time.Hour))
		if err != nil {
			// A broken cache file degrades to uncached operation.
			zap.L().Warn("cache unavailable, continuing without it", zap.Error(err))
		} else {
			cache = opened
			store = opened
		}
	}

	f := fetcher.NewHTTPFetcher(fetcher.Options{
		Timeout:      time.Duration(c.Geo.TimeoutSecs) * time.Second,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	orch := loader.New(f, store, c.Geo.PrimaryURL, c.Geo.FallbackURL,
		loader.WithAttemptTimeout(time.Duration(c.Geo.TimeoutSecs)*time.Second))

	sess := session.New(api, orch)
	if cache != nil {
		cache.RegisterOnClear(sess.RearmDebug)
	}

	return &env{API: api, Cache: cache, Session: sess}, nil
}

// Close releases the cache handle.
func (e *env) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
}
