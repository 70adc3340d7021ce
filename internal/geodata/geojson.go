// Package geodata handles the EPCI GeoJSON asset: decoding, metropolitan
// filtering, and conversion from Admin Express shapefiles.
package geodata

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Geometry holds a feature's geometry with raw coordinates. Coordinates
// stay undecoded because providers ship points, polygons and multipolygons
// in the same collection; consumers descend into the raw nesting instead.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is one record of the geographic asset. Properties is a free-form
// bag; the provider's naming conventions vary per dataset vintage.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   *Geometry      `json:"geometry"`
}

// FeatureCollection is a GeoJSON feature collection. Top-level members
// other than type/features (name, crs, ...) are preserved verbatim so a
// filtered collection round-trips everything but its feature list.
type FeatureCollection struct {
	Type     string
	Features []Feature
	Extra    map[string]json.RawMessage
}

func (fc *FeatureCollection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "geodata: decode feature collection")
	}

	fc.Extra = make(map[string]json.RawMessage)
	for k, v := range raw {
		switch k {
		case "type":
			if err := json.Unmarshal(v, &fc.Type); err != nil {
				return eris.Wrap(err, "geodata: decode collection type")
			}
		case "features":
			if err := json.Unmarshal(v, &fc.Features); err != nil {
				return eris.Wrap(err, "geodata: decode features")
			}
		default:
			fc.Extra[k] = v
		}
	}
	return nil
}

func (fc FeatureCollection) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(fc.Extra)+2)
	for k, v := range fc.Extra {
		out[k] = v
	}
	out["type"] = fc.Type
	if fc.Features == nil {
		out["features"] = []Feature{}
	} else {
		out["features"] = fc.Features
	}
	return json.Marshal(out)
}

// FirstCoordinate returns "the" representative point of a raw coordinates
// value: descend into index 0 until the first two elements are numbers.
// Returns ok=false when no numeric pair exists at any depth.
func FirstCoordinate(raw json.RawMessage) (lon, lat float64, ok bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, 0, false
	}
	return descendFirst(v)
}

func descendFirst(v any) (float64, float64, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return 0, 0, false
	}
	if lon, lonOK := arr[0].(float64); lonOK && len(arr) >= 2 {
		if lat, latOK := arr[1].(float64); latOK {
			return lon, lat, true
		}
		return 0, 0, false
	}
	return descendFirst(arr[0])
}
