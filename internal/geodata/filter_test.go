package geodata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointFeature(name string, lon, lat float64) Feature {
	coords, _ := json.Marshal([]float64{lon, lat})
	return Feature{
		Type:       "Feature",
		Properties: map[string]any{"nom": name},
		Geometry:   &Geometry{Type: "Point", Coordinates: coords},
	}
}

func polygonFeature(name string, lon, lat float64) Feature {
	coords, _ := json.Marshal([][][]float64{{{lon, lat}, {lon + 1, lat}, {lon, lat + 1}, {lon, lat}}})
	return Feature{
		Type:       "Feature",
		Properties: map[string]any{"nom": name},
		Geometry:   &Geometry{Type: "Polygon", Coordinates: coords},
	}
}

func TestFirstCoordinate_DescendsNesting(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		lon  float64
		lat  float64
		ok   bool
	}{
		{"point", `[2.5, 46.5]`, 2.5, 46.5, true},
		{"line", `[[2.5, 46.5], [3, 47]]`, 2.5, 46.5, true},
		{"polygon", `[[[2.5, 46.5], [3, 47], [2.5, 46.5]]]`, 2.5, 46.5, true},
		{"multipolygon", `[[[[2.5, 46.5], [3, 47]]]]`, 2.5, 46.5, true},
		{"empty", `[]`, 0, 0, false},
		{"non numeric", `[["a", "b"]]`, 0, 0, false},
		{"single element", `[[2.5]]`, 0, 0, false},
		{"invalid json", `{`, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lon, lat, ok := FirstCoordinate(json.RawMessage(tc.raw))
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.lon, lon)
				assert.Equal(t, tc.lat, lat)
			}
		})
	}
}

func TestFilterMetropole_BoundingBox(t *testing.T) {
	fc := &FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			pointFeature("centre", 2.5, 46.5),
			pointFeature("martinique", -61.5, 16.2),
			polygonFeature("bretagne", -4.0, 48.1),
			pointFeature("reunion", 55.5, -21.1),
		},
	}

	got := FilterMetropole(fc)
	require.Len(t, got.Features, 2)
	assert.Equal(t, "centre", got.Features[0].Properties["nom"])
	assert.Equal(t, "bretagne", got.Features[1].Properties["nom"])
}

func TestFilterMetropole_DropsUnusableGeometry(t *testing.T) {
	fc := &FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			{Type: "Feature"},
			{Type: "Feature", Geometry: &Geometry{Type: "Point"}},
			{Type: "Feature", Geometry: &Geometry{Type: "Point", Coordinates: json.RawMessage(`[]`)}},
			pointFeature("ok", 0, 45),
		},
	}

	got := FilterMetropole(fc)
	require.Len(t, got.Features, 1)
	assert.Equal(t, "ok", got.Features[0].Properties["nom"])
}

func TestFilterMetropole_PreservesExtraMembers(t *testing.T) {
	raw := `{
		"type": "FeatureCollection",
		"name": "contours-epci",
		"crs": {"type": "name"},
		"features": [
			{"type": "Feature", "properties": {"nom": "a"}, "geometry": {"type": "Point", "coordinates": [2, 46]}},
			{"type": "Feature", "properties": {"nom": "dom"}, "geometry": {"type": "Point", "coordinates": [-61.5, 16.2]}}
		]
	}`

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(raw), &fc))
	require.Len(t, fc.Features, 2)

	filtered := FilterMetropole(&fc)
	require.Len(t, filtered.Features, 1)

	out, err := json.Marshal(filtered)
	require.NoError(t, err)

	var round map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Contains(t, round, "name")
	assert.Contains(t, round, "crs")
	assert.Contains(t, round, "features")
}

func TestFilterMetropole_Nil(t *testing.T) {
	assert.Nil(t, FilterMetropole(nil))
}
