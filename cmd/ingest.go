package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/diag360/territory-cli/internal/ingest"
	"github.com/diag360/territory-cli/internal/model"
)

var (
	ingestSheet  string
	ingestIndex  int
	ingestOutput string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <workbook.xlsx>",
	Short: "Parse a score workbook into territory records",
	Long: `Reads a Diag360-style score workbook (e.g. Diag360_EvolV2.xlsx),
resolving column aliases to record fields, and writes the records as a
JSON array.

Examples:
  # First worksheet, records to stdout
  ingest Diag360_EvolV2.xlsx

  # Named worksheet to a file
  ingest scores.xlsx --sheet "Données" -o records.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := ingest.ReadWorkbook(args[0], ingest.Options{
			SheetName:  ingestSheet,
			SheetIndex: ingestIndex,
		})
		if err != nil {
			return err
		}

		withScores := 0
		for i := range records {
			for _, key := range model.FunctionKeys {
				if records[i].FunctionScore(key) != nil {
					withScores++
					break
				}
			}
		}

		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal records")
		}

		if ingestOutput == "" {
			fmt.Println(string(data))
		} else {
			if err := os.WriteFile(ingestOutput, data, 0644); err != nil {
				return eris.Wrapf(err, "write %s", ingestOutput)
			}
		}

		fmt.Fprintf(os.Stderr, "Parsed %d records (%d with function scores)\n", len(records), withScores)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSheet, "sheet", "", "worksheet name (default: first sheet)")
	ingestCmd.Flags().IntVar(&ingestIndex, "sheet-index", 0, "worksheet index when --sheet is unset")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "write records to this path instead of stdout")
	rootCmd.AddCommand(ingestCmd)
}
