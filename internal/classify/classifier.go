// Package classify assigns parking-facility confidence tiers to POIs by
// evaluating an ordered list of rules against the POI and its reverse-geocode
// result.
package classify

import (
	"fmt"

	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
	"github.com/brandonbuckley/uber-top100-POIs/pkg/nominatim"
)

// Input is everything a rule may inspect. Geo is nil when geocoding failed;
// rules that need it must report no match in that case.
type Input struct {
	Name     string
	Category string
	Geo      *nominatim.Result
}

func (in Input) geocoded() bool {
	return in.Geo != nil && in.Geo.Matched
}

// Outcome is the classification result for one POI.
type Outcome struct {
	Tier         model.Tier
	Evidence     string
	FacilityName string
}

// Rule is a single predicate→tier pair. Match returns the outcome and true
// when the rule applies.
type Rule struct {
	Name string
	Tier model.Tier
	// Match returns evidence and facility name. ok=false means no match.
	Match func(in Input) (evidence, facility string, ok bool)
}

// Classifier evaluates rules in priority order; the first match wins, so tier
// precedence is a property of the list order, not of nested conditionals.
type Classifier struct {
	rules []Rule
}

// New builds a Classifier from a rule set. Rule order encodes the tier
// priority high > medium > assumed > none.
func New(rs RuleSet) *Classifier {
	rules := []Rule{
		{
			Name: "poi_name_keyword",
			Tier: model.TierHigh,
			Match: func(in Input) (string, string, bool) {
				kw := containsAny(in.Name, rs.ParkingKeywords)
				if kw == "" {
					return "", "", false
				}
				return fmt.Sprintf("name contains %q", kw), in.Name, true
			},
		},
		{
			Name: "geocoded_name_keyword",
			Tier: model.TierHigh,
			Match: func(in Input) (string, string, bool) {
				if !in.geocoded() || in.Geo.Name == "" {
					return "", "", false
				}
				kw := containsAny(in.Geo.Name, rs.ParkingKeywords)
				if kw == "" {
					return "", "", false
				}
				return fmt.Sprintf("geocoded name %q contains %q", in.Geo.Name, kw), in.Geo.Name, true
			},
		},
		{
			Name: "osm_place_type",
			Tier: model.TierMedium,
			Match: func(in Input) (string, string, bool) {
				if !in.geocoded() {
					return "", "", false
				}
				match := containsAny(in.Geo.PlaceType, rs.ParkingPlaceTypes)
				if match == "" {
					match = containsAny(in.Geo.Category, rs.ParkingPlaceTypes)
				}
				if match == "" {
					return "", "", false
				}
				facility := in.Geo.Name
				if facility == "" {
					facility = "Parking Facility"
				}
				return fmt.Sprintf("osm place type %q", in.Geo.PlaceType), facility, true
			},
		},
		{
			Name: "business_type",
			Tier: model.TierAssumed,
			Match: func(in Input) (string, string, bool) {
				facility := in.Name + " Parking"
				if cat := containsAny(in.Category, rs.AssumedCategories); cat != "" {
					return fmt.Sprintf("category %q presumed to provide parking", in.Category), facility, true
				}
				if hint := containsAny(in.Name, rs.AssumedNameHints); hint != "" {
					return fmt.Sprintf("name suggests business type %q", hint), facility, true
				}
				return "", "", false
			},
		},
	}
	return &Classifier{rules: rules}
}

// Classify evaluates the rules in order and returns the first match.
// When nothing matches the outcome is tier none with empty evidence.
func (c *Classifier) Classify(in Input) Outcome {
	for _, r := range c.rules {
		if evidence, facility, ok := r.Match(in); ok {
			return Outcome{Tier: r.Tier, Evidence: evidence, FacilityName: facility}
		}
	}
	return Outcome{Tier: model.TierNone, Evidence: "no rule matched"}
}

// Rules exposes the ordered rule list so tests can verify priority in
// isolation.
func (c *Classifier) Rules() []Rule {
	return c.rules
}
