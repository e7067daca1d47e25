package domain

import (
	"strings"
	"time"
)

// PropertyRecord is a listing as persisted by the property store. Numeric
// attributes arrive as text and are parsed only where a comparison needs them.
type PropertyRecord struct {
	ID           string    `json:"id"`
	City         string    `json:"city"`
	Locality     string    `json:"locality"`
	State        string    `json:"state"`
	Pincode      string    `json:"pincode"`
	Latitude     string    `json:"latitude"`
	Longitude    string    `json:"longitude"`
	PropertyType string    `json:"property_type"`
	SellingPrice string    `json:"selling_price"`
	Bedrooms     string    `json:"bedrooms"`
	Bathrooms    string    `json:"bathrooms"`
	TotalArea    string    `json:"total_area"`
	PublishedAt  time.Time `json:"published_at"`
	IsLive       bool      `json:"is_live"`
}

// HasCoordinates reports whether both coordinate fields are non-blank. It says
// nothing about whether they parse.
func (p *PropertyRecord) HasCoordinates() bool {
	return strings.TrimSpace(p.Latitude) != "" && strings.TrimSpace(p.Longitude) != ""
}

// Coordinates is a decimal latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationCandidate is one place returned by the geocoding provider.
type LocationCandidate struct {
	DisplayName string      `json:"display_name"`
	Subtitle    string      `json:"subtitle"`
	PlaceType   string      `json:"place_type"`
	Coordinates Coordinates `json:"coordinates"`
	FullAddress string      `json:"full_address"`
}

// LocationGroup aggregates live properties sharing the same location 4-tuple.
type LocationGroup struct {
	City          string  `json:"city"`
	Locality      string  `json:"locality"`
	State         string  `json:"state"`
	Pincode       string  `json:"pincode"`
	PropertyCount int     `json:"property_count"`
	AvgPrice      float64 `json:"avg_price"`
}

// SameArea reports whether g and o name the same city, locality and state.
// Pincode is ignored.
func (g LocationGroup) SameArea(o LocationGroup) bool {
	return g.City == o.City && g.Locality == o.Locality && g.State == o.State
}
