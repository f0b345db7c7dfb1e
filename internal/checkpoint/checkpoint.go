// Package checkpoint persists partial classification results so a long batch
// run can resume after interruption. The checkpoint is a CSV file with the
// same schema as the final output; on startup it is re-read and unprocessed
// POIs are replayed through a resumable iterator.
package checkpoint

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

// Header returns the column names shared by checkpoints and final exports.
func Header() []string {
	return []string{
		"poi_id", "name", "category", "geography",
		"latitude", "longitude",
		"tier", "evidence", "facility_name", "place_type", "address", "error",
	}
}

// Row renders a record as a CSV row in Header order.
func Row(r model.Record) []string {
	return []string{
		strconv.FormatInt(r.POI.ID, 10),
		r.POI.Name,
		r.POI.Category,
		r.POI.Geography,
		strconv.FormatFloat(r.POI.Latitude, 'f', 6, 64),
		strconv.FormatFloat(r.POI.Longitude, 'f', 6, 64),
		string(r.Tier),
		r.Evidence,
		r.FacilityName,
		r.PlaceType,
		r.Address,
		r.Err,
	}
}

// ParseRow decodes a CSV row produced by Row.
func ParseRow(row []string) (model.Record, error) {
	if len(row) != len(Header()) {
		return model.Record{}, eris.Errorf("checkpoint: row has %d columns, want %d", len(row), len(Header()))
	}

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.Record{}, eris.Wrap(err, "checkpoint: parse poi_id")
	}
	lat, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return model.Record{}, eris.Wrap(err, "checkpoint: parse latitude")
	}
	lon, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return model.Record{}, eris.Wrap(err, "checkpoint: parse longitude")
	}
	tier, err := model.ParseTier(row[6])
	if err != nil {
		return model.Record{}, eris.Wrap(err, "checkpoint: parse tier")
	}

	return model.Record{
		POI: model.POI{
			ID:        id,
			Name:      row[1],
			Category:  row[2],
			Geography: row[3],
			Latitude:  lat,
			Longitude: lon,
		},
		Tier:         tier,
		Evidence:     row[7],
		FacilityName: row[8],
		PlaceType:    row[9],
		Address:      row[10],
		Err:          row[11],
	}, nil
}

// File is a checkpoint backed by a single CSV file with one writer.
type File struct {
	path string
}

// NewFile creates a checkpoint handle for the given path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the checkpoint file location.
func (f *File) Path() string {
	return f.path
}

// Load reads the checkpointed records. A missing file is not an error: it
// means a fresh run.
func (f *File) Load() ([]model.Record, error) {
	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "checkpoint: open %s", f.path)
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "checkpoint: read %s", f.path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		rec, err := ParseRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "checkpoint: row %d", i+2)
		}
		records = append(records, rec)
	}

	zap.L().Info("loaded checkpoint",
		zap.String("path", f.path),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Write persists the full accumulated record sequence. The write is atomic
// (temp file + rename) so an interruption mid-write never corrupts the last
// good checkpoint.
func (f *File) Write(records []model.Record) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "checkpoint: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.csv")
	if err != nil {
		return eris.Wrap(err, "checkpoint: create temp file")
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(Header()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: write header")
	}
	for _, rec := range records {
		if err := writer.Write(Row(rec)); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return eris.Wrap(err, "checkpoint: write row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: flush")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: close temp file")
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrapf(err, "checkpoint: rename to %s", f.path)
	}
	return nil
}

// Remove deletes the checkpoint file after a successful run.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "checkpoint: remove %s", f.path)
	}
	return nil
}
