package poiset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

const sampleGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-95.3698, 29.7604]},
			"properties": {"rowid": 1, "name": "Minute Maid Park", "category": "Stadium", "geog": "Houston"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-97.7431, 30.2672]},
			"properties": {"rowid": 2, "name": "Texas Capitol", "geog": "Austin"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-95.4, 29.71]},
			"properties": {"rowid": 3, "name": "Orphan Venue"}
		}
	]
}`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGeoJSON(t *testing.T) {
	path := writeTempFile(t, "pois.geojson", sampleGeoJSON)

	pois, err := Load(path)
	require.NoError(t, err)
	require.Len(t, pois, 3)

	assert.Equal(t, model.POI{
		ID:        1,
		Name:      "Minute Maid Park",
		Category:  "Stadium",
		Geography: "Houston",
		Latitude:  29.7604,
		Longitude: -95.3698,
	}, pois[0])

	assert.Equal(t, "Austin", pois[1].Geography)
	assert.Empty(t, pois[1].Category)

	// Missing geog falls back to the sentinel.
	assert.Equal(t, "Unknown", pois[2].Geography)
}

func TestLoadGeoJSON_MissingRowID(t *testing.T) {
	path := writeTempFile(t, "bad.geojson", `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-95.4, 29.7]},
			"properties": {"name": "No ID"}
		}]
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rowid")
}

func TestLoadGeoJSON_NonPointGeometry(t *testing.T) {
	path := writeTempFile(t, "line.geojson", `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "LineString", "coordinates": [[-95.4, 29.7], [-95.5, 29.8]]},
			"properties": {"rowid": 1, "name": "A Road"}
		}]
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want point")
}

func TestLoadGeoJSON_StringRowID(t *testing.T) {
	path := writeTempFile(t, "str.geojson", `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-95.4, 29.7]},
			"properties": {"rowid": "42", "name": "Stringy"}
		}]
	}`)

	pois, err := Load(path)
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, int64(42), pois[0].ID)
}

func TestLoadGeoJSON_Malformed(t *testing.T) {
	path := writeTempFile(t, "broken.geojson", `{"type": "FeatureCollection", "features": [`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("pois.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.geojson"))
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	pois := []model.POI{
		{ID: 1, Geography: "Houston"},
		{ID: 2, Geography: "Austin"},
		{ID: 3, Geography: "houston"},
	}

	tests := []struct {
		name      string
		geography string
		wantIDs   []int64
	}{
		{name: "match is case-insensitive", geography: "Houston", wantIDs: []int64{1, 3}},
		{name: "empty selects all", geography: "", wantIDs: []int64{1, 2, 3}},
		{name: "no match", geography: "Dallas", wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(pois, tt.geography)
			ids := make([]int64, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
