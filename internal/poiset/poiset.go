// Package poiset loads POI records from geographic input files. GeoJSON
// feature collections are the primary format; ESRI shapefiles are supported
// as an alternate. Malformed input is fatal: the POI set is assumed
// well-formed and is read exactly once, before any processing begins.
package poiset

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

// Load reads POIs from path, dispatching on the file extension.
func Load(path string) ([]model.POI, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".shp":
		return LoadShapefile(path)
	default:
		return nil, eris.Errorf("poiset: unsupported input format %q (want .geojson or .shp)", filepath.Ext(path))
	}
}

// Filter returns the POIs belonging to the given geography. An empty
// geography returns the input unchanged.
func Filter(pois []model.POI, geography string) []model.POI {
	if geography == "" {
		return pois
	}
	out := make([]model.POI, 0, len(pois))
	for _, p := range pois {
		if strings.EqualFold(p.Geography, geography) {
			out = append(out, p)
		}
	}
	return out
}
