// Package report renders the final classified dataset into tabular exports
// and human-readable summaries, one pair per geography. Everything here is a
// pure function of the record sequence.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
)

// Summary aggregates per-tier counts for the whole run and per geography.
type Summary struct {
	Total       int
	Counts      model.TierCounts
	ByGeography map[string]model.TierCounts
}

// Summarize computes tier counts from a record sequence.
func Summarize(records []model.Record) Summary {
	s := Summary{ByGeography: make(map[string]model.TierCounts)}
	for _, r := range records {
		s.Total++
		s.Counts.Add(r)
		geo := s.ByGeography[r.POI.Geography]
		geo.Add(r)
		s.ByGeography[r.POI.Geography] = geo
	}
	return s
}

// Geographies returns the geography names present in the summary, sorted.
func (s Summary) Geographies() []string {
	names := make([]string, 0, len(s.ByGeography))
	for g := range s.ByGeography {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

// maxListedFacilities caps the per-tier facility listings in the text report.
const maxListedFacilities = 15

// FormatGeography renders the human-readable report for one geography.
func FormatGeography(geography string, records []model.Record) string {
	var b strings.Builder

	counts := model.TierCounts{}
	byTier := map[model.Tier][]model.Record{}
	for _, r := range records {
		counts.Add(r)
		byTier[r.Tier] = append(byTier[r.Tier], r)
	}

	fmt.Fprintf(&b, "# Parking Facility Report: %s\n\n", geography)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- POIs analyzed: %d\n", len(records))
	fmt.Fprintf(&b, "- Parking facilities identified: %d\n", counts.Identified())
	fmt.Fprintf(&b, "- High confidence: %d\n", counts.High)
	fmt.Fprintf(&b, "- Medium confidence: %d\n", counts.Medium)
	fmt.Fprintf(&b, "- Assumed (hotels/venues/campuses): %d\n", counts.Assumed)
	fmt.Fprintf(&b, "- No parking identified: %d\n", counts.None)
	fmt.Fprintf(&b, "- Unresolved (geocode failed): %d\n\n", counts.Unresolved)

	sections := []struct {
		tier  model.Tier
		title string
		note  string
	}{
		{model.TierHigh, "High Confidence", "Names explicitly mention parking."},
		{model.TierMedium, "Medium Confidence", "Categorized as parking facilities by OpenStreetMap."},
		{model.TierAssumed, "Assumed Parking", "Business types that typically provide parking."},
	}

	for _, sec := range sections {
		recs := byTier[sec.tier]
		if len(recs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s (%d)\n", sec.title, len(recs))
		fmt.Fprintf(&b, "%s\n\n", sec.note)

		for i, r := range recs {
			if i >= maxListedFacilities {
				fmt.Fprintf(&b, "... and %d more\n", len(recs)-maxListedFacilities)
				break
			}
			name := r.FacilityName
			if name == "" {
				name = r.POI.Name
			}
			fmt.Fprintf(&b, "%2d. %s\n", i+1, name)
			if name != r.POI.Name {
				fmt.Fprintf(&b, "    POI: %s\n", r.POI.Name)
			}
			fmt.Fprintf(&b, "    Coordinates: (%.6f, %.6f)\n", r.POI.Longitude, r.POI.Latitude)
			if r.Address != "" {
				fmt.Fprintf(&b, "    Address: %s\n", r.Address)
			}
			fmt.Fprintf(&b, "    Evidence: %s\n", r.Evidence)
		}
		b.WriteString("\n")
	}

	if unresolved := collectUnresolved(records); len(unresolved) > 0 {
		fmt.Fprintf(&b, "## Unresolved (%d)\n", len(unresolved))
		for _, r := range unresolved {
			fmt.Fprintf(&b, "- %s: %s\n", r.POI.Name, r.Err)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func collectUnresolved(records []model.Record) []model.Record {
	var out []model.Record
	for _, r := range records {
		if r.Unresolved() {
			out = append(out, r)
		}
	}
	return out
}
