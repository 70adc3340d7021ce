package geodata

import (
	"go.uber.org/zap"
)

// Metropolitan France bounding box. Features outside it (DOM-TOM) are
// dropped from the national dataset before rendering.
const (
	metropoleMinLon = -6.0
	metropoleMaxLon = 10.0
	metropoleMinLat = 41.0
	metropoleMaxLat = 51.5
)

// FilterMetropole returns a copy of the collection keeping only features
// whose representative point falls inside metropolitan France. Features
// without an extractable coordinate pair are dropped. Order is preserved
// and every other top-level member passes through unchanged.
func FilterMetropole(fc *FeatureCollection) *FeatureCollection {
	if fc == nil {
		return nil
	}

	kept := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil || len(f.Geometry.Coordinates) == 0 {
			continue
		}
		lon, lat, ok := FirstCoordinate(f.Geometry.Coordinates)
		if !ok {
			continue
		}
		if lon >= metropoleMinLon && lon <= metropoleMaxLon &&
			lat >= metropoleMinLat && lat <= metropoleMaxLat {
			kept = append(kept, f)
		}
	}

	zap.L().Debug("geodata: metropole filter applied",
		zap.Int("kept", len(kept)),
		zap.Int("total", len(fc.Features)),
	)

	return &FeatureCollection{
		Type:     fc.Type,
		Features: kept,
		Extra:    fc.Extra,
	}
}
