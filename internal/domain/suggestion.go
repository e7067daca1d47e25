package domain

// SearchType tags how a property suggestion was found.
type SearchType string

const (
	SearchTextMatch       SearchType = "text_match"
	SearchCoordinateMatch SearchType = "coordinate_match"
	SearchPincodeMatch    SearchType = "pincode_match"
	SearchTextPartial     SearchType = "text_partial"
	SearchPincodePartial  SearchType = "pincode_partial"
)

// Suggestion variants.
const (
	SuggestionProperty = "property"
	SuggestionGeocode  = "mapbox"
)

// LocationSuggestion is one row of the location autocomplete list. Type is
// SuggestionProperty for rows backed by listings and SuggestionGeocode for
// provider passthroughs; only the fields of the matching variant are set.
type LocationSuggestion struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Subtitle    string `json:"subtitle"`

	// Property variant.
	City          string     `json:"city,omitempty"`
	Locality      string     `json:"locality,omitempty"`
	State         string     `json:"state,omitempty"`
	Pincode       string     `json:"pincode,omitempty"`
	PropertyCount int        `json:"property_count,omitempty"`
	AvgPrice      float64    `json:"avg_price,omitempty"`
	SearchType    SearchType `json:"search_type,omitempty"`

	// Geocode variant.
	PlaceType   string       `json:"place_type,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	FullAddress string       `json:"full_address,omitempty"`
}

// IsProperty reports whether s is backed by listings.
func (s *LocationSuggestion) IsProperty() bool {
	return s.Type == SuggestionProperty
}
