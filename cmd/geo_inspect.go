package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/diag360/territory-cli/internal/geodata"
	"github.com/diag360/territory-cli/internal/resolve"
)

var geoInspectCmd = &cobra.Command{
	Use:   "inspect <geojson-file>",
	Short: "Stream a GeoJSON file and summarize its features",
	Long: `Streams the features of a local GeoJSON file without loading it whole,
reporting counts, the property keys seen, and how many features resolve
to a usable territory code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close() //nolint:errcheck

		features, errs := geodata.StreamFeatures(cmd.Context(), f)

		total := 0
		resolved := 0
		keys := map[string]int{}
		for feat := range features {
			id := resolve.Identity(feat.Properties, "")
			if id.Code != "" {
				resolved++
			}
			for k := range feat.Properties {
				keys[k]++
			}
			total++
		}
		if err := <-errs; err != nil {
			return err
		}

		fmt.Printf("Features:        %d\n", total)
		fmt.Printf("With identifier: %d\n", resolved)

		names := make([]string, 0, len(keys))
		for k := range keys {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Println("Property keys:")
		for _, k := range names {
			fmt.Printf("  %s (%d)\n", k, keys[k])
		}
		return nil
	},
}

func init() { geoCmd.AddCommand(geoInspectCmd) }
