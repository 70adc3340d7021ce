// Package score implements resilience score classification and aggregation.
package score

// Band is one severity band of a classification scale: a color token for
// map rendering and a qualitative French label.
type Band struct {
	Color string
	Label string
}

// The legend and map fill scales are independent and classify the same
// score differently: 65 is "Modéré" on the legend scale but "Bon" on the
// map scale.

var legendBands = []Band{
	{Color: "hsl(142, 76%, 36%)", Label: "Excellent"},   // >= 80
	{Color: "hsl(152, 55%, 45%)", Label: "Bon"},         // >= 70
	{Color: "hsl(84, 60%, 50%)", Label: "Modéré"},       // >= 60
	{Color: "hsl(45, 93%, 58%)", Label: "À améliorer"},  // >= 50
	{Color: "hsl(25, 95%, 53%)", Label: "Insuffisant"},  // >= 40
	{Color: "hsl(0, 72%, 51%)", Label: "Critique"},      // < 40
}

var legendCutoffs = []float64{80, 70, 60, 50, 40}

var mapBands = []Band{
	{Color: "hsl(152, 55%, 33%)", Label: "Excellent"}, // >= 80
	{Color: "hsl(142, 76%, 36%)", Label: "Bon"},       // >= 60
	{Color: "hsl(84, 60%, 50%)", Label: "Moyen"},      // >= 40
	{Color: "hsl(45, 93%, 58%)", Label: "Faible"},     // >= 20
	{Color: "hsl(25, 95%, 53%)", Label: "Critique"},   // < 20
}

var mapCutoffs = []float64{80, 60, 40, 20}

func classify(s float64, cutoffs []float64, bands []Band) Band {
	for i, c := range cutoffs {
		if s >= c {
			return bands[i]
		}
	}
	return bands[len(bands)-1]
}

// LegendScale classifies a score on the six-band legend scale
// (cutoffs 80/70/60/50/40). Scores outside [0,100] fall into the nearest
// boundary band; the function never fails.
func LegendScale(s float64) Band {
	return classify(s, legendCutoffs, legendBands)
}

// MapScale classifies a score on the five-band map fill scale
// (cutoffs 80/60/40/20). Same out-of-range behavior as LegendScale.
func MapScale(s float64) Band {
	return classify(s, mapCutoffs, mapBands)
}
