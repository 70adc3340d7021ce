package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diag360/territory-cli/internal/apiclient"
	"github.com/diag360/territory-cli/internal/model"
	"github.com/diag360/territory-cli/internal/score"
)

var (
	flashSet      []string
	flashComments string
	flashLocal    bool
)

var flashCmd = &cobra.Command{
	Use:   "flash <code_siren>",
	Short: "Generate a flash diagnostic report",
	Long: `Generates a flash report for a territory: eleven metric lines with
interpretations, a baseline score and the adjusted mean after applying
any entered overrides. Entered values are never stored.

Examples:
  # Plain report from stored scores
  flash 243300316

  # Override two functions
  flash 243300316 --set water=45 --set energy=60`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := parseOverrides(flashSet)
		if err != nil {
			return err
		}

		api := apiclient.New(apiclient.WithBaseURL(cfg.API.BaseURL))

		var report model.FlashReportResponse
		if !flashLocal {
			resp, err := api.CreateFlashReport(cmd.Context(), model.FlashReportRequest{
				CodeSiren: args[0],
				Scores:    overrides,
				Comments:  flashComments,
			})
			if err == nil {
				report = *resp
				return printFlash(report)
			}
			zap.L().Warn("backend flash report failed, computing locally", zap.Error(err))
		}

		rec, err := api.GetTerritoryByCode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report = score.FlashReport(rec, overrides)
		return printFlash(report)
	},
}

// parseOverrides turns --set water=45 pairs into upstream score field keys.
func parseOverrides(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, eris.Errorf("flash: --set expects key=value, got %q", pair)
		}
		key := model.FunctionKey(strings.TrimSpace(name))
		valid := false
		for _, k := range model.FunctionKeys {
			if k == key {
				valid = true
				break
			}
		}
		if !valid {
			return nil, eris.Errorf("flash: unknown function %q", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "flash: parse value for %s", name)
		}
		if v < 0 || v > 100 {
			return nil, eris.Errorf("flash: value for %s must be between 0 and 100", name)
		}
		out["score_"+string(key)] = v
	}
	return out, nil
}

func printFlash(r model.FlashReportResponse) error {
	fmt.Printf("Rapport flash: %s (%s)\n", r.TerritoryName, r.CodeSiren)
	fmt.Printf("Score de référence: %.1f\n", r.BaselineScore)
	fmt.Printf("Score ajusté: %.1f\n\n", r.AdjustedScore)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tFONCTION\tVALEUR\tINTERPRÉTATION")
	for _, m := range r.Metrics {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\n", m.Code, m.Name, m.Value, m.Interpretation)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(r.Summary)
	return nil
}

func init() {
	flashCmd.Flags().StringArrayVar(&flashSet, "set", nil, "override a function score, e.g. --set water=45")
	flashCmd.Flags().StringVar(&flashComments, "comments", "", "free-form comments attached to the request")
	flashCmd.Flags().BoolVar(&flashLocal, "local", false, "compute the report locally without the backend")
	rootCmd.AddCommand(flashCmd)
}
