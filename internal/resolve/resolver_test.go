package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityCandidateOrder(t *testing.T) {
	tests := []struct {
		name     string
		props    map[string]any
		fallback string
		code     string
		epciName string
		epciType string
	}{
		{
			name: "siren array and short name",
			props: map[string]any{
				"epci_siren": []any{"243300316"},
				"nom":        "CA Exemple",
			},
			fallback: "geo-42",
			code:     "243300316",
			epciName: "CA Exemple",
			epciType: "EPCI",
		},
		{
			name: "higher priority key wins",
			props: map[string]any{
				"epci_code": "200067106",
				"siren":     "999999999",
				"epci_name": "Métropole Exemple",
				"nom_epci":  "Autre",
				"nature":    "ME",
			},
			code:     "200067106",
			epciName: "Métropole Exemple",
			epciType: "ME",
		},
		{
			name:     "all absent uses fallbacks",
			props:    map[string]any{"unrelated": "x"},
			fallback: "geo-7",
			code:     "geo-7",
			epciName: "Inconnu",
			epciType: "EPCI",
		},
		{
			name: "empty value skipped to next candidate",
			props: map[string]any{
				"epci_code": "",
				"siren":     "243300316",
			},
			code:     "243300316",
			epciName: "Inconnu",
			epciType: "EPCI",
		},
		{
			name: "numeric siren renders without decimals",
			props: map[string]any{
				"siren":   float64(243300316),
				"libepci": "CC Numérique",
			},
			code:     "243300316",
			epciName: "CC Numérique",
			epciType: "EPCI",
		},
		{
			name: "empty array skipped",
			props: map[string]any{
				"epci_siren": []any{},
				"code":       "200054781",
				"nature_epci": "CU",
			},
			code:     "200054781",
			epciName: "Inconnu",
			epciType: "CU",
		},
		{
			name:     "nil properties",
			props:    nil,
			fallback: "",
			code:     "",
			epciName: "Inconnu",
			epciType: "EPCI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Identity(tt.props, tt.fallback)
			assert.Equal(t, tt.code, id.Code)
			assert.Equal(t, tt.epciName, id.Name)
			assert.Equal(t, tt.epciType, id.Type)
		})
	}
}

func TestIdentityNestedArray(t *testing.T) {
	id := Identity(map[string]any{
		"nom_epci": []any{[]any{"CA Imbriquée"}},
	}, "f")
	assert.Equal(t, "CA Imbriquée", id.Name)
}
