package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/brandonbuckley/uber-top100-POIs/internal/checkpoint"
	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			POI:          model.POI{ID: 1, Name: "Hilton Americas Parking Garage", Geography: "Houston", Latitude: 29.7522, Longitude: -95.3578},
			Tier:         model.TierHigh,
			Evidence:     `name contains "parking"`,
			FacilityName: "Hilton Americas Parking Garage",
		},
		{
			POI:          model.POI{ID: 2, Name: "Toyota Center", Geography: "Houston", Latitude: 29.7508, Longitude: -95.3621},
			Tier:         model.TierMedium,
			Evidence:     `osm place type "parking"`,
			FacilityName: "Tundra Garage",
			PlaceType:    "parking",
			Address:      "1510 Polk Street, Houston, Texas 77002",
		},
		{
			POI:          model.POI{ID: 3, Name: "MD Anderson Cancer Center", Geography: "Houston", Latitude: 29.7070, Longitude: -95.3970},
			Tier:         model.TierAssumed,
			Evidence:     `category "Hospital" presumed to provide parking`,
			FacilityName: "MD Anderson Cancer Center Parking",
		},
		{
			POI:      model.POI{ID: 4, Name: "Texas Capitol", Geography: "Austin", Latitude: 30.2747, Longitude: -97.7404},
			Tier:     model.TierNone,
			Evidence: "no rule matched",
		},
		{
			POI:      model.POI{ID: 5, Name: "Zilker Park", Geography: "Austin", Latitude: 30.2669, Longitude: -97.7729},
			Tier:     model.TierNone,
			Evidence: "geocode failed: connection refused",
			Err:      "connection refused",
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords())

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, model.TierCounts{High: 1, Medium: 1, Assumed: 1, None: 2, Unresolved: 1}, s.Counts)
	assert.Equal(t, []string{"Austin", "Houston"}, s.Geographies())

	houston := s.ByGeography["Houston"]
	assert.Equal(t, 3, houston.Identified())
	austin := s.ByGeography["Austin"]
	assert.Equal(t, 0, austin.Identified())
	assert.Equal(t, 1, austin.Unresolved)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Geographies())
}

func TestFormatGeography(t *testing.T) {
	var houston []model.Record
	for _, r := range sampleRecords() {
		if r.POI.Geography == "Houston" {
			houston = append(houston, r)
		}
	}

	out := FormatGeography("Houston", houston)

	assert.Contains(t, out, "# Parking Facility Report: Houston")
	assert.Contains(t, out, "- POIs analyzed: 3")
	assert.Contains(t, out, "- Parking facilities identified: 3")
	assert.Contains(t, out, "## High Confidence (1)")
	assert.Contains(t, out, "Hilton Americas Parking Garage")
	assert.Contains(t, out, "## Medium Confidence (1)")
	// The facility differs from the POI, so both names appear.
	assert.Contains(t, out, "Tundra Garage")
	assert.Contains(t, out, "POI: Toyota Center")
	assert.Contains(t, out, "Address: 1510 Polk Street")
	assert.Contains(t, out, "## Assumed Parking (1)")
	assert.NotContains(t, out, "## Unresolved")
}

func TestFormatGeography_Unresolved(t *testing.T) {
	out := FormatGeography("Austin", []model.Record{
		{
			POI:      model.POI{ID: 5, Name: "Zilker Park", Geography: "Austin"},
			Tier:     model.TierNone,
			Evidence: "geocode failed: connection refused",
			Err:      "connection refused",
		},
	})

	assert.Contains(t, out, "## Unresolved (1)")
	assert.Contains(t, out, "- Zilker Park: connection refused")
	assert.NotContains(t, out, "## High Confidence")
}

func TestFormatGeography_CapsListings(t *testing.T) {
	var recs []model.Record
	for i := 0; i < 20; i++ {
		recs = append(recs, model.Record{
			POI:          model.POI{ID: int64(i + 1), Name: "Garage", Geography: "Houston"},
			Tier:         model.TierHigh,
			Evidence:     `name contains "garage"`,
			FacilityName: "Garage",
		})
	}

	out := FormatGeography("Houston", recs)
	assert.Contains(t, out, "## High Confidence (20)")
	assert.Contains(t, out, "... and 5 more")
}

func TestWriteAll_CSV(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteAll(sampleRecords(), Options{Dir: dir, Format: FormatCSV})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "parking_analysis_austin.csv"),
		filepath.Join(dir, "parking_analysis_houston.csv"),
		filepath.Join(dir, "parking_report_austin.md"),
		filepath.Join(dir, "parking_report_houston.md"),
	}
	assert.Equal(t, want, paths)

	f, err := os.Open(filepath.Join(dir, "parking_analysis_houston.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per Houston POI")
	assert.Equal(t, checkpoint.Header(), rows[0])
	assert.Equal(t, "Hilton Americas Parking Garage", rows[1][1])
	assert.Equal(t, "high", rows[1][6])
}

func TestWriteAll_XLSX(t *testing.T) {
	dir := t.TempDir()

	_, err := WriteAll(sampleRecords(), Options{Dir: dir, Format: FormatXLSX})
	require.NoError(t, err)

	path := filepath.Join(dir, "parking_analysis_houston.xlsx")
	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, "poi_id", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Toyota Center", sheet.Rows[2].Cells[1].Value)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: "XLSX", want: FormatXLSX},
		{in: "parquet", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "new_york_city", slug(" New York City "))
	assert.Equal(t, "houston", slug("Houston"))
}
