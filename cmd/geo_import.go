package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/diag360/territory-cli/internal/geodata"
)

var (
	geoImportOutput string
	geoImportRaw    bool
)

var geoImportCmd = &cobra.Command{
	Use:   "import <shapefile>",
	Short: "Convert an EPCI boundary shapefile to GeoJSON",
	Long: `Reads an IGN-style EPCI shapefile, normalizes its attributes to the
code_siren/nom/nature properties the map expects, and writes a GeoJSON
feature collection. By default the metropolitan filter is applied.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := geodata.ImportShapefile(args[0])
		if err != nil {
			return err
		}

		total := len(fc.Features)
		if !geoImportRaw {
			fc = geodata.FilterMetropole(fc)
		}

		data, err := json.Marshal(fc)
		if err != nil {
			return eris.Wrap(err, "marshal collection")
		}

		out := geoImportOutput
		if out == "" {
			out = args[0] + ".geojson"
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}

		fmt.Printf("Imported %d features (%d read) to %s\n", len(fc.Features), total, out)
		return nil
	},
}

func init() {
	geoImportCmd.Flags().StringVarP(&geoImportOutput, "output", "o", "", "output path (default <shapefile>.geojson)")
	geoImportCmd.Flags().BoolVar(&geoImportRaw, "raw", false, "keep features outside metropolitan France")
	geoCmd.AddCommand(geoImportCmd)
}
