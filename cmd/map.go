package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diag360/territory-cli/internal/score"
)

var (
	mapLimit   int
	mapNoCache bool
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Load the map dataset and print matched territories",
	Long: `Loads the EPCI contours (cache, then primary source, then fallback),
fetches the score table, and prints each rendered territory with its
map-scale color band. Territories without a score record are marked as
placeholders.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(cfg, mapNoCache)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.Session.Start(ctx); err != nil {
			return err
		}

		fc := e.Session.Collection()
		fmt.Printf("Geometry: %d features (source: %s)\n", len(fc.Features), e.Session.DataSource())
		if err := e.Session.ListError(); err != nil {
			fmt.Println("Score table unavailable; showing placeholder scores.")
		} else {
			fmt.Printf("Score table: %d territories\n", len(e.Session.Records()))
		}
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tTYPE\tSCORE\tBAND\tDATA")
		placeholders := 0
		for i, f := range fc.Features {
			if mapLimit > 0 && i >= mapLimit {
				break
			}
			id, rec := e.Session.LookupFeature(f, i)
			band := score.MapScale(rec.GlobalScore)
			data := "record"
			if !e.Session.Known(id.Code) {
				data = "placeholder"
				placeholders++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\n",
				id.Code, id.Name, id.Type, rec.GlobalScore, band.Label, data)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		zap.L().Info("map rendered",
			zap.Int("features", len(fc.Features)),
			zap.Int("placeholders", placeholders),
			zap.String("source", e.Session.DataSource()),
			zap.Bool("from_cache", e.Session.FromCache()),
		)
		return nil
	},
}

func init() {
	mapCmd.Flags().IntVar(&mapLimit, "limit", 25, "maximum territories to print (0 = all)")
	mapCmd.Flags().BoolVar(&mapNoCache, "no-cache", false, "skip the local geometry cache")
	rootCmd.AddCommand(mapCmd)
}
