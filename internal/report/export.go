package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brandonbuckley/uber-top100-POIs/internal/checkpoint"
	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

// Format selects the tabular export format.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want csv or xlsx)", s)
	}
}

// Options configures output generation.
type Options struct {
	Dir    string
	Format Format
}

// WriteAll groups records by geography and writes one tabular export plus one
// text report per geography. Returns the paths written.
func WriteAll(records []model.Record, opts Options) ([]string, error) {
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create output dir %s", opts.Dir)
	}

	byGeo := make(map[string][]model.Record)
	for _, r := range records {
		byGeo[r.POI.Geography] = append(byGeo[r.POI.Geography], r)
	}

	geographies := make([]string, 0, len(byGeo))
	for g := range byGeo {
		geographies = append(geographies, g)
	}
	sort.Strings(geographies)

	var mu sync.Mutex
	var paths []string
	appendPath := func(p string) {
		mu.Lock()
		paths = append(paths, p)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(4)
	for _, geo := range geographies {
		g.Go(func() error {
			recs := byGeo[geo]

			tablePath := filepath.Join(opts.Dir, fmt.Sprintf("parking_analysis_%s.%s", slug(geo), opts.Format))
			if err := writeTable(tablePath, recs, opts.Format); err != nil {
				return err
			}
			appendPath(tablePath)

			reportPath := filepath.Join(opts.Dir, fmt.Sprintf("parking_report_%s.md", slug(geo)))
			if err := os.WriteFile(reportPath, []byte(FormatGeography(geo, recs)), 0o644); err != nil {
				return eris.Wrapf(err, "report: write %s", reportPath)
			}
			appendPath(reportPath)

			zap.L().Info("wrote geography outputs",
				zap.String("geography", geo),
				zap.Int("records", len(recs)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func writeTable(path string, records []model.Record, format Format) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(path, records)
	default:
		return writeCSV(path, records)
	}
}

func writeCSV(path string, records []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(checkpoint.Header()); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, r := range records {
		if err := w.Write(checkpoint.Row(r)); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "report: flush csv")
}

func writeXLSX(path string, records []model.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("parking")
	if err != nil {
		return eris.Wrap(err, "report: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range checkpoint.Header() {
		header.AddCell().Value = col
	}
	for _, r := range records {
		row := sheet.AddRow()
		for _, v := range checkpoint.Row(r) {
			row.AddCell().Value = v
		}
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

func slug(geography string) string {
	s := strings.ToLower(strings.TrimSpace(geography))
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
