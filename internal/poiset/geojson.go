package poiset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

// LoadGeoJSON reads a GeoJSON FeatureCollection of point features. Each
// feature's properties must carry a rowid and name; geog and category are
// optional.
func LoadGeoJSON(path string) ([]model.POI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "poiset: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "poiset: parse geojson %s", path)
	}

	pois := make([]model.POI, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok {
			return nil, eris.Errorf("poiset: feature %d: geometry is %T, want point", i, f.Geometry)
		}

		coords := pt.Coords()
		if len(coords) < 2 {
			return nil, eris.Errorf("poiset: feature %d: point has no coordinates", i)
		}

		id, err := propInt64(f.Properties, "rowid")
		if err != nil {
			return nil, eris.Wrapf(err, "poiset: feature %d", i)
		}

		pois = append(pois, model.POI{
			ID:        id,
			Name:      propString(f.Properties, "name"),
			Category:  propString(f.Properties, "category"),
			Geography: propStringDefault(f.Properties, "geog", "Unknown"),
			Longitude: coords[0],
			Latitude:  coords[1],
		})
	}

	zap.L().Info("loaded POIs",
		zap.String("path", path),
		zap.Int("count", len(pois)),
	)
	return pois, nil
}

func propString(props map[string]interface{}, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func propStringDefault(props map[string]interface{}, key, def string) string {
	if s := propString(props, key); s != "" {
		return s
	}
	return def
}

func propInt64(props map[string]interface{}, key string) (int64, error) {
	v, ok := props[key]
	if !ok {
		return 0, eris.Errorf("missing property %q", key)
	}
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, eris.Wrapf(err, "property %q", key)
		}
		return i, nil
	case string:
		var i int64
		if _, err := fmt.Sscanf(n, "%d", &i); err != nil {
			return 0, eris.Errorf("property %q is not numeric: %q", key, n)
		}
		return i, nil
	default:
		return 0, eris.Errorf("property %q has unexpected type %T", key, v)
	}
}
