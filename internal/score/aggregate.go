package score

import (
	"github.com/diag360/territory-cli/internal/model"
)

// Group names a subset of the eleven function scores for display grouping.
type Group struct {
	Name        string
	Description string
	Keys        []model.FunctionKey
}

// ObjectiveTypes partitions the eleven functions by objective: what the
// territory can sustain today, under crisis, and durably.
var ObjectiveTypes = []Group{
	{
		Name:        "Subsistance",
		Description: "Capacité actuelle à répondre aux besoins",
		Keys: []model.FunctionKey{
			model.FunctionWater, model.FunctionFood, model.FunctionHousing,
			model.FunctionHealthcare, model.FunctionSecurity,
		},
	},
	{
		Name:        "Gestion de crise",
		Description: "Capacité à maintenir le service en situation dégradée",
		Keys: []model.FunctionKey{
			model.FunctionEducation, model.FunctionSocialCohesion, model.FunctionNature,
		},
	},
	{
		Name:        "Soutenabilité",
		Description: "Capacité à assurer les besoins de manière durable",
		Keys: []model.FunctionKey{
			model.FunctionLocalEconomy, model.FunctionEnergy, model.FunctionMobility,
		},
	},
}

// IndicatorTypes partitions the same eleven functions by indicator nature:
// actions undertaken by the territory vs measured state. Independent of
// ObjectiveTypes; a function belongs to exactly one group per scheme.
var IndicatorTypes = []Group{
	{
		Name:        "Action",
		Description: "Mesure les actions entreprises par le territoire",
		Keys: []model.FunctionKey{
			model.FunctionWater, model.FunctionFood, model.FunctionEducation,
			model.FunctionLocalEconomy, model.FunctionEnergy,
		},
	},
	{
		Name:        "État",
		Description: "Mesure la situation actuelle du territoire",
		Keys: []model.FunctionKey{
			model.FunctionHousing, model.FunctionHealthcare, model.FunctionSecurity,
			model.FunctionSocialCohesion, model.FunctionNature, model.FunctionMobility,
		},
	},
}

// GroupAverage computes the unweighted mean of the named function scores,
// skipping absent values. Returns 0 when every score in the subset is
// absent; callers treat that as "no data", not an error.
func GroupAverage(rec *model.TerritoryRecord, keys []model.FunctionKey) float64 {
	var sum float64
	var n int
	for _, k := range keys {
		if v := rec.FunctionScore(k); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// GroupScore holds one computed group average for presentation.
type GroupScore struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Average     float64 `json:"average"`
	Label       string  `json:"label"`
	Color       string  `json:"color"`
}

// Summarize computes averages for every group of a scheme, classified on
// the legend scale.
func Summarize(rec *model.TerritoryRecord, scheme []Group) []GroupScore {
	out := make([]GroupScore, 0, len(scheme))
	for _, g := range scheme {
		avg := GroupAverage(rec, g.Keys)
		band := LegendScale(avg)
		out = append(out, GroupScore{
			Name:        g.Name,
			Description: g.Description,
			Average:     avg,
			Label:       band.Label,
			Color:       band.Color,
		})
	}
	return out
}
