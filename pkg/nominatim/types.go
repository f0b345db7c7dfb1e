package nominatim

import "strings"

// Address holds the structured address parts returned by Nominatim.
type Address struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	City          string `json:"city"`
	Town          string `json:"town"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
}

// Locality returns the city, falling back to town for smaller places.
func (a Address) Locality() string {
	if a.City != "" {
		return a.City
	}
	return a.Town
}

// Format renders the address as a single line, e.g.
// "1200 Smith Street, Houston, Texas 77002". Empty parts are skipped.
func (a Address) Format() string {
	street := strings.TrimSpace(a.HouseNumber + " " + a.Road)
	region := strings.TrimSpace(a.State + " " + a.Postcode)

	parts := make([]string, 0, 3)
	for _, p := range []string{street, a.Locality(), region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Result holds the reverse-geocoding output for a coordinate pair.
// Only the fields the classifier consumes are kept.
type Result struct {
	Name        string
	DisplayName string
	Category    string // OSM tag key, e.g. "amenity"
	PlaceType   string // OSM tag value, e.g. "parking"
	OSMID       int64
	Address     Address
	Matched     bool
}
