package classify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RuleSet holds the keyword and category data the rules match against.
// The defaults cover the common cases; a YAML file can override any list.
type RuleSet struct {
	// ParkingKeywords mark a name as explicitly parking-related.
	ParkingKeywords []string `yaml:"parking_keywords"`

	// ParkingPlaceTypes are OSM type/category values that identify a
	// parking facility.
	ParkingPlaceTypes []string `yaml:"parking_place_types"`

	// AssumedCategories are POI category tags for business types presumed
	// to provide parking (hotels, hospitals, venues, corporate campuses).
	AssumedCategories []string `yaml:"assumed_categories"`

	// AssumedNameHints are business-type words that, appearing in a POI
	// name, suggest the same presumption.
	AssumedNameHints []string `yaml:"assumed_name_hints"`
}

// DefaultRuleSet returns the built-in rule data.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		ParkingKeywords: []string{
			"parking", "garage", "valet", "lot",
			"deck", "structure", "motor court",
		},
		ParkingPlaceTypes: []string{"parking"},
		AssumedCategories: []string{
			"hotel", "hospital", "medical", "clinic",
			"venue", "mall", "shopping", "stadium", "arena",
			"office", "corporate", "campus", "company",
			"convention", "conference", "theater", "amphitheatre",
		},
		AssumedNameHints: []string{
			"hotel", "hospital", "medical center",
			"mall", "stadium", "arena", "amphitheatre", "theater",
			"convention", "conference", "center",
			"office", "corporate", "campus",
		},
	}
}

// LoadRuleSet reads a RuleSet from a YAML file. Lists absent from the file
// fall back to the defaults, so an override file only needs the lists it
// changes.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, eris.Wrapf(err, "classify: read rule file %s", path)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, eris.Wrapf(err, "classify: parse rule file %s", path)
	}

	defaults := DefaultRuleSet()
	if len(rs.ParkingKeywords) == 0 {
		rs.ParkingKeywords = defaults.ParkingKeywords
	}
	if len(rs.ParkingPlaceTypes) == 0 {
		rs.ParkingPlaceTypes = defaults.ParkingPlaceTypes
	}
	if len(rs.AssumedCategories) == 0 {
		rs.AssumedCategories = defaults.AssumedCategories
	}
	if len(rs.AssumedNameHints) == 0 {
		rs.AssumedNameHints = defaults.AssumedNameHints
	}
	return rs, nil
}
