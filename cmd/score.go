package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/diag360/territory-cli/internal/apiclient"
	"github.com/diag360/territory-cli/internal/model"
	"github.com/diag360/territory-cli/internal/score"
)

var scoreBy string

var scoreCmd = &cobra.Command{
	Use:   "score <code_siren>",
	Short: "Show a territory's resilience score breakdown",
	Long: `Fetches a territory record by SIREN code and prints the global score
plus the per-function breakdown, grouped by objectives (Subsistance,
Gestion de crise, Soutenabilité) or by indicator type (Action, État).

Examples:
  # Breakdown by objective
  score 243300316

  # Breakdown by indicator type
  score 243300316 --by indicators`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var groups []score.Group
		switch scoreBy {
		case "objectives":
			groups = score.ObjectiveTypes
		case "indicators":
			groups = score.IndicatorTypes
		default:
			return eris.Errorf("score: --by must be objectives or indicators, got %q", scoreBy)
		}

		api := apiclient.New(apiclient.WithBaseURL(cfg.API.BaseURL))
		rec, err := api.GetTerritoryByCode(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		band := score.LegendScale(rec.GlobalScore)
		fmt.Printf("%s (%s)\n", rec.Name, rec.CodeSiren)
		if rec.Type != nil {
			fmt.Printf("Type: %s\n", *rec.Type)
		}
		if rec.Population != nil {
			fmt.Printf("Population: %d\n", *rec.Population)
		}
		fmt.Printf("Score global: %.1f (%s)\n\n", rec.GlobalScore, band.Label)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		summaries := score.Summarize(rec, groups)
		for i, g := range summaries {
			fmt.Fprintf(w, "%s\t%.1f\t%s\n", g.Name, g.Average, g.Label)
			for _, key := range groups[i].Keys {
				info := model.FunctionInfoFor(key)
				if s := rec.FunctionScore(key); s != nil {
					fmt.Fprintf(w, "  %s %s\t%.1f\t%s\n", info.Code, info.Label, *s, score.LegendScale(*s).Label)
				} else {
					fmt.Fprintf(w, "  %s %s\t-\t\n", info.Code, info.Label)
				}
			}
		}
		return w.Flush()
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreBy, "by", "objectives", "grouping: objectives or indicators")
	rootCmd.AddCommand(scoreCmd)
}
