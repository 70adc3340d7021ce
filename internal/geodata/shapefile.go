package geodata

import (
	"encoding/json"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Admin Express attribute names for EPCI contours. Older vintages use
// SIREN_EPCI instead of CODE_SIREN; both are probed.
var (
	sirenFields  = []string{"CODE_SIREN", "SIREN_EPCI", "SIREN"}
	nameFields   = []string{"NOM", "NOM_EPCI", "LIBEPCI"}
	natureFields = []string{"NATURE", "NATURE_EPCI"}
)

// ImportShapefile reads an EPCI boundary shapefile and converts it into a
// GeoJSON feature collection suitable as the map's static asset. Records
// without a SIREN code or a convertible geometry are skipped with a
// warning.
func ImportShapefile(path string) (*FeatureCollection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	sirenIdx := firstFieldIndex(reader, sirenFields)
	nameIdx := firstFieldIndex(reader, nameFields)
	natureIdx := firstFieldIndex(reader, natureFields)
	if sirenIdx < 0 {
		return nil, eris.New("geodata: no SIREN attribute found in shapefile")
	}

	fc := &FeatureCollection{Type: "FeatureCollection"}

	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		if shape == nil {
			continue
		}

		siren := strings.TrimSpace(reader.Attribute(sirenIdx))
		if siren == "" {
			skipped++
			continue
		}

		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		geomJSON, err := geomjson.Marshal(g)
		if err != nil {
			zap.L().Warn("geodata: geometry encode failed",
				zap.String("siren", siren),
				zap.Error(err),
			)
			skipped++
			continue
		}

		var geometry Geometry
		if err := json.Unmarshal(geomJSON, &geometry); err != nil {
			return nil, eris.Wrap(err, "geodata: reparse geometry")
		}

		props := map[string]any{"code_siren": siren}
		if nameIdx >= 0 {
			if nom := strings.TrimSpace(reader.Attribute(nameIdx)); nom != "" {
				props["nom"] = nom
			}
		}
		if natureIdx >= 0 {
			if nature := strings.TrimSpace(reader.Attribute(natureIdx)); nature != "" {
				props["nature"] = nature
			}
		}

		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Properties: props,
			Geometry:   &geometry,
		})
	}

	zap.L().Info("geodata: shapefile imported",
		zap.String("path", path),
		zap.Int("features", len(fc.Features)),
		zap.Int("skipped", skipped),
	)
	return fc, nil
}

func firstFieldIndex(reader *shp.Reader, names []string) int {
	for i, f := range reader.Fields() {
		fieldName := strings.TrimRight(f.String(), "\x00")
		for _, n := range names {
			if strings.EqualFold(fieldName, n) {
				return i
			}
		}
	}
	return -1
}

// shapeToGeom converts a shapefile shape to a go-geom geometry.
// Returns nil for unsupported shape types.
func shapeToGeom(s shp.Shape) geom.T {
	switch shape := s.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{shape.X, shape.Y}).SetSRID(4326)
	case *shp.Polygon:
		return polygonToMultiPolygon(shape)
	default:
		return nil
	}
}

func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		coords := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			coords = append(coords, geom.Coord{p.Points[j].X, p.Points[j].Y})
		}

		ring := geom.NewLinearRing(geom.XY)
		if _, err := ring.SetCoords(coords); err != nil {
			continue
		}
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
