package score

import (
	"fmt"

	"github.com/diag360/territory-cli/internal/model"
)

// flashInterpret maps a metric value to the wording used in flash reports.
// Distinct from the classification scales: flash reports use the upstream
// 20-point interpretation steps.
func flashInterpret(v float64) string {
	switch {
	case v >= 80:
		return "Excellent"
	case v >= 60:
		return "Bon"
	case v >= 40:
		return "Moyen"
	case v >= 20:
		return "Faible"
	default:
		return "Critique"
	}
}

// flashLabels overrides the long display labels with the short metric
// names used in flash reports.
var flashLabels = map[model.FunctionKey]string{
	model.FunctionWater:          "Accès à l'eau",
	model.FunctionFood:           "Alimentation",
	model.FunctionHousing:        "Logement",
	model.FunctionHealthcare:     "Santé",
	model.FunctionSecurity:       "Sécurité",
	model.FunctionEducation:      "Éducation",
	model.FunctionSocialCohesion: "Cohésion sociale",
	model.FunctionNature:         "Nature",
	model.FunctionLocalEconomy:   "Économie locale",
	model.FunctionEnergy:         "Énergie",
	model.FunctionMobility:       "Mobilité",
}

// FlashReport generates a flash diagnostic for a territory. Overrides are
// keyed by upstream field name ("score_water", ...); a metric without an
// override takes the territory's stored score, falling back to the global
// score when the function score is absent. The adjusted score is the plain
// mean of the eleven metric values. Entered overrides are never persisted.
func FlashReport(rec *model.TerritoryRecord, overrides map[string]float64) model.FlashReportResponse {
	baseline := rec.GlobalScore

	metrics := make([]model.FlashMetric, 0, len(model.ResilienceFunctions))
	var sum float64
	for _, fi := range model.ResilienceFunctions {
		value := baseline
		if s := rec.FunctionScore(fi.Key); s != nil {
			value = *s
		}
		if ov, ok := overrides["score_"+string(fi.Key)]; ok {
			value = ov
		}
		sum += value
		metrics = append(metrics, model.FlashMetric{
			Code:           fi.Code,
			Name:           flashLabels[fi.Key],
			Value:          value,
			Interpretation: flashInterpret(value),
		})
	}

	adjusted := baseline
	if len(metrics) > 0 {
		adjusted = sum / float64(len(metrics))
	}

	return model.FlashReportResponse{
		TerritoryName: rec.Name,
		CodeSiren:     rec.CodeSiren,
		BaselineScore: baseline,
		AdjustedScore: adjusted,
		Metrics:       metrics,
		Summary: fmt.Sprintf(
			"Score moyen ajusté: %.1f. Les données saisies ne sont pas stockées et servent uniquement à générer ce rapport temporaire.",
			adjusted,
		),
	}
}
