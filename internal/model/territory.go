// Package model defines the territory domain types shared across the pipeline.
package model

// FunctionKey identifies one of the eleven resilience key functions.
type FunctionKey string

const (
	FunctionWater          FunctionKey = "water"
	FunctionFood           FunctionKey = "food"
	FunctionHousing        FunctionKey = "housing"
	FunctionHealthcare     FunctionKey = "healthcare"
	FunctionSecurity       FunctionKey = "security"
	FunctionEducation      FunctionKey = "education"
	FunctionSocialCohesion FunctionKey = "social_cohesion"
	FunctionNature         FunctionKey = "nature"
	FunctionLocalEconomy   FunctionKey = "local_economy"
	FunctionEnergy         FunctionKey = "energy"
	FunctionMobility       FunctionKey = "mobility"
)

// FunctionKeys lists the eleven function keys in display order
// (besoins vitaux, essentiels, induits).
var FunctionKeys = []FunctionKey{
	FunctionWater,
	FunctionFood,
	FunctionHousing,
	FunctionHealthcare,
	FunctionSecurity,
	FunctionEducation,
	FunctionSocialCohesion,
	FunctionNature,
	FunctionLocalEconomy,
	FunctionEnergy,
	FunctionMobility,
}

// FunctionInfo carries the Diag360 display metadata for one key function.
type FunctionInfo struct {
	Code  string // BV1..BI3
	Label string // French display label
	Key   FunctionKey
}

// ResilienceFunctions maps each function key to its Diag360 code and label.
var ResilienceFunctions = []FunctionInfo{
	{Code: "BV1", Label: "Avoir accès à l'eau douce", Key: FunctionWater},
	{Code: "BV2", Label: "Se nourrir", Key: FunctionFood},
	{Code: "BV3", Label: "Se loger", Key: FunctionHousing},
	{Code: "BV4", Label: "Se soigner", Key: FunctionHealthcare},
	{Code: "BV5", Label: "Être en sécurité", Key: FunctionSecurity},
	{Code: "BE1", Label: "S'informer et s'instruire", Key: FunctionEducation},
	{Code: "BE2", Label: "Vivre ensemble et faire société", Key: FunctionSocialCohesion},
	{Code: "BE3", Label: "Être en lien avec la nature", Key: FunctionNature},
	{Code: "BI1", Label: "Produire et s'approvisionner localement", Key: FunctionLocalEconomy},
	{Code: "BI2", Label: "Avoir accès à l'énergie", Key: FunctionEnergy},
	{Code: "BI3", Label: "Se déplacer", Key: FunctionMobility},
}

// FunctionInfoFor returns the display metadata for key.
func FunctionInfoFor(key FunctionKey) FunctionInfo {
	for _, fi := range ResilienceFunctions {
		if fi.Key == key {
			return fi
		}
	}
	return FunctionInfo{Key: key}
}

// TerritoryRecord is the canonical record for one EPCI.
//
// GlobalScore is independent storage as received from upstream. It is not
// recomputed from the eleven function scores.
type TerritoryRecord struct {
	ID         string  `json:"id"`
	CodeSiren  string  `json:"code_siren"`
	Name       string  `json:"name"`
	Type       *string `json:"type"`
	Population *int64  `json:"population"`
	Department *string `json:"department"`
	Region     *string `json:"region"`

	GlobalScore float64 `json:"score"`

	ScoreWater          *float64 `json:"score_water"`
	ScoreFood           *float64 `json:"score_food"`
	ScoreHousing        *float64 `json:"score_housing"`
	ScoreHealthcare     *float64 `json:"score_healthcare"`
	ScoreSecurity       *float64 `json:"score_security"`
	ScoreEducation      *float64 `json:"score_education"`
	ScoreSocialCohesion *float64 `json:"score_social_cohesion"`
	ScoreNature         *float64 `json:"score_nature"`
	ScoreLocalEconomy   *float64 `json:"score_local_economy"`
	ScoreEnergy         *float64 `json:"score_energy"`
	ScoreMobility       *float64 `json:"score_mobility"`

	DataYear *int `json:"data_year"`
}

// FunctionScore returns the score for the given key, or nil when the key is
// unknown or the score is absent.
func (t *TerritoryRecord) FunctionScore(key FunctionKey) *float64 {
	switch key {
	case FunctionWater:
		return t.ScoreWater
	case FunctionFood:
		return t.ScoreFood
	case FunctionHousing:
		return t.ScoreHousing
	case FunctionHealthcare:
		return t.ScoreHealthcare
	case FunctionSecurity:
		return t.ScoreSecurity
	case FunctionEducation:
		return t.ScoreEducation
	case FunctionSocialCohesion:
		return t.ScoreSocialCohesion
	case FunctionNature:
		return t.ScoreNature
	case FunctionLocalEconomy:
		return t.ScoreLocalEconomy
	case FunctionEnergy:
		return t.ScoreEnergy
	case FunctionMobility:
		return t.ScoreMobility
	default:
		return nil
	}
}

// SetFunctionScore assigns the score for the given key. Unknown keys are
// ignored.
func (t *TerritoryRecord) SetFunctionScore(key FunctionKey, v *float64) {
	switch key {
	case FunctionWater:
		t.ScoreWater = v
	case FunctionFood:
		t.ScoreFood = v
	case FunctionHousing:
		t.ScoreHousing = v
	case FunctionHealthcare:
		t.ScoreHealthcare = v
	case FunctionSecurity:
		t.ScoreSecurity = v
	case FunctionEducation:
		t.ScoreEducation = v
	case FunctionSocialCohesion:
		t.ScoreSocialCohesion = v
	case FunctionNature:
		t.ScoreNature = v
	case FunctionLocalEconomy:
		t.ScoreLocalEconomy = v
	case FunctionEnergy:
		t.ScoreEnergy = v
	case FunctionMobility:
		t.ScoreMobility = v
	}
}

// ResolvedIdentity is the stable identity extracted from a map feature's
// property bag. Code is never empty when a fallback key was supplied.
type ResolvedIdentity struct {
	Code string
	Name string
	Type string
}

// Ptr returns a pointer to v. Convenience for building records with
// nullable fields.
func Ptr[T any](v T) *T { return &v }
