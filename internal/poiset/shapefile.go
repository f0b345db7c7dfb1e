package poiset

import (
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

// LoadShapefile reads point POIs from an ESRI shapefile. Attribute fields
// are matched case-insensitively: ROWID, NAME, CATEGORY, GEOG.
func LoadShapefile(path string) ([]model.POI, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "poiset: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map. DBF field names are NUL-padded.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	rowIDIdx, ok := fieldIdx["rowid"]
	if !ok {
		return nil, eris.Errorf("poiset: shapefile %s has no ROWID field", path)
	}
	nameIdx, hasName := fieldIdx["name"]
	categoryIdx, hasCategory := fieldIdx["category"]
	geogIdx, hasGeog := fieldIdx["geog"]

	var pois []model.POI
	row := 0
	for reader.Next() {
		_, shape := reader.Shape()
		row++

		pt, ok := shape.(*shp.Point)
		if !ok {
			return nil, eris.Errorf("poiset: shapefile record %d: shape is %T, want point", row, shape)
		}

		id, err := strconv.ParseInt(attr(reader, rowIDIdx), 10, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "poiset: shapefile record %d: parse rowid", row)
		}

		poi := model.POI{
			ID:        id,
			Geography: "Unknown",
			Longitude: pt.X,
			Latitude:  pt.Y,
		}
		if hasName {
			poi.Name = attr(reader, nameIdx)
		}
		if hasCategory {
			poi.Category = attr(reader, categoryIdx)
		}
		if hasGeog {
			if g := attr(reader, geogIdx); g != "" {
				poi.Geography = g
			}
		}
		pois = append(pois, poi)
	}

	zap.L().Info("loaded POIs from shapefile",
		zap.String("path", path),
		zap.Int("count", len(pois)),
	)
	return pois, nil
}

func attr(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}
