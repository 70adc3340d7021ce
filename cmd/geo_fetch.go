package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/diag360/territory-cli/internal/fetcher"
	"github.com/diag360/territory-cli/internal/geocache"
	"github.com/diag360/territory-cli/internal/loader"
)

var (
	geoFetchNoCache bool
	geoFetchOutput  string
)

var geoFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and filter the EPCI contours",
	Long: `Runs the full geometry acquisition: cache, primary source, fallback.
The filtered metropolitan collection can be written to a file with -o.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var store loader.Store
		if !geoFetchNoCache {
			c, err := geocache.Open(cfg.Cache.Path,
				geocache.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour))
			if err != nil {
				return eris.Wrapf(err, "open cache at %s", cfg.Cache.Path)
			}
			defer c.Close()
			store = c
		}

		f := fetcher.NewHTTPFetcher(fetcher.Options{
			Timeout:      time.Duration(cfg.Geo.TimeoutSecs) * time.Second,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		orch := loader.New(f, store, cfg.Geo.PrimaryURL, cfg.Geo.FallbackURL,
			loader.WithAttemptTimeout(time.Duration(cfg.Geo.TimeoutSecs)*time.Second))

		fc, err := orch.Load(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d metropolitan features (source: %s)\n",
			len(fc.Features), orch.DataSource())

		if geoFetchOutput != "" {
			data, err := json.Marshal(fc)
			if err != nil {
				return eris.Wrap(err, "marshal collection")
			}
			if err := os.WriteFile(geoFetchOutput, data, 0644); err != nil {
				return eris.Wrapf(err, "write %s", geoFetchOutput)
			}
			fmt.Printf("Written to %s\n", geoFetchOutput)
		}
		return nil
	},
}

func init() {
	geoFetchCmd.Flags().BoolVar(&geoFetchNoCache, "no-cache", false, "skip the local cache")
	geoFetchCmd.Flags().StringVarP(&geoFetchOutput, "output", "o", "", "write the filtered GeoJSON to this path")
	geoCmd.AddCommand(geoFetchCmd)
}
