// Package merge combines results from the text matcher, the radius matcher
// and the geocoding provider into one ordered, duplicate-free list.
package merge

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/pkg/slug"
)

// Candidate is anything that can become a location suggestion.
type Candidate interface {
	Suggestion() domain.LocationSuggestion
}

// TextCandidate is a group found by matching location text.
type TextCandidate struct {
	Group      domain.LocationGroup
	SearchType domain.SearchType
}

func (c TextCandidate) Suggestion() domain.LocationSuggestion {
	return groupSuggestion(c.Group, c.SearchType)
}

// CoordinateCandidate is a group found near a geocoded point.
type CoordinateCandidate struct {
	Group domain.LocationGroup
}

func (c CoordinateCandidate) Suggestion() domain.LocationSuggestion {
	return groupSuggestion(c.Group, domain.SearchCoordinateMatch)
}

// GeocodeCandidate is a place returned by the provider, passed through as is.
type GeocodeCandidate struct {
	Location domain.LocationCandidate
}

func (c GeocodeCandidate) Suggestion() domain.LocationSuggestion {
	coords := c.Location.Coordinates
	return domain.LocationSuggestion{
		ID:          slug.Join(domain.SuggestionGeocode, c.Location.FullAddress),
		Type:        domain.SuggestionGeocode,
		DisplayName: c.Location.DisplayName,
		Subtitle:    c.Location.Subtitle,
		PlaceType:   c.Location.PlaceType,
		Coordinates: &coords,
		FullAddress: c.Location.FullAddress,
	}
}

// TextCandidates tags every group with searchType.
func TextCandidates(groups []domain.LocationGroup, searchType domain.SearchType) []TextCandidate {
	out := make([]TextCandidate, 0, len(groups))
	for _, g := range groups {
		out = append(out, TextCandidate{Group: g, SearchType: searchType})
	}
	return out
}

// CoordinateCandidates wraps radius match groups.
func CoordinateCandidates(groups []domain.LocationGroup) []CoordinateCandidate {
	out := make([]CoordinateCandidate, 0, len(groups))
	for _, g := range groups {
		out = append(out, CoordinateCandidate{Group: g})
	}
	return out
}

// GeocodeCandidates wraps provider results.
func GeocodeCandidates(locs []domain.LocationCandidate) []GeocodeCandidate {
	out := make([]GeocodeCandidate, 0, len(locs))
	for _, l := range locs {
		out = append(out, GeocodeCandidate{Location: l})
	}
	return out
}

var titler = cases.Title(language.Und, cases.NoLower)

// DisplayName renders a group as "Locality, City", or "City" when the
// locality is blank. Pincode matches get the pincode appended.
func DisplayName(g domain.LocationGroup, searchType domain.SearchType) string {
	city := titler.String(strings.TrimSpace(g.City))
	name := city
	if loc := strings.TrimSpace(g.Locality); loc != "" {
		name = titler.String(loc) + ", " + city
	}
	if searchType == domain.SearchPincodeMatch && g.Pincode != "" {
		name += " - " + g.Pincode
	}
	return name
}

func groupSuggestion(g domain.LocationGroup, searchType domain.SearchType) domain.LocationSuggestion {
	return domain.LocationSuggestion{
		ID:            slug.Join(string(searchType), g.Locality, g.City, g.State, g.Pincode),
		Type:          domain.SuggestionProperty,
		DisplayName:   DisplayName(g, searchType),
		Subtitle:      titler.String(strings.TrimSpace(g.State)),
		City:          g.City,
		Locality:      g.Locality,
		State:         g.State,
		Pincode:       g.Pincode,
		PropertyCount: g.PropertyCount,
		AvgPrice:      g.AvgPrice,
		SearchType:    searchType,
	}
}
