// Package model defines the core domain types shared across the pipeline.
package model

import "fmt"

// POI is a point of interest loaded from the input feature collection.
// Immutable once loaded.
type POI struct {
	ID        int64   `json:"rowid"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Geography string  `json:"geography"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Tier is the parking-classification confidence tier assigned to a POI.
type Tier string

// Confidence tiers, strongest first.
const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierAssumed Tier = "assumed"
	TierNone    Tier = "none"
)

// Rank returns the tier's strength for ordering: high > medium > assumed > none.
func (t Tier) Rank() int {
	switch t {
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	case TierAssumed:
		return 1
	default:
		return 0
	}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierHigh, TierMedium, TierAssumed, TierNone:
		return true
	}
	return false
}

// ParseTier converts a string into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("model: unknown tier %q", s)
	}
	return t, nil
}

// Record is the classification outcome for a single POI. Exactly one tier is
// assigned per POI; the first matching rule in priority order wins.
type Record struct {
	POI          POI    `json:"poi"`
	Tier         Tier   `json:"tier"`
	Evidence     string `json:"evidence"`
	FacilityName string `json:"facility_name,omitempty"`
	PlaceType    string `json:"place_type,omitempty"`
	Address      string `json:"address,omitempty"`
	Err          string `json:"error,omitempty"`
}

// Unresolved reports whether the record's geocode lookup failed.
func (r Record) Unresolved() bool {
	return r.Err != ""
}
