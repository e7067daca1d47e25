package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/utafrali/propsearch/pkg/errors"
	"github.com/utafrali/propsearch/pkg/pagination"
	"github.com/utafrali/propsearch/pkg/validator"
)

// MinLocationQueryLength is the shortest location query, in runes, that
// SearchLocations accepts after trimming.
const MinLocationQueryLength = 2

// SearchFilters holds all parameters of a property search. It is treated as
// an immutable value once validated.
type SearchFilters struct {
	Location      string   `json:"location,omitempty" query:"location"`
	City          string   `json:"city,omitempty" query:"city"`
	Locality      string   `json:"locality,omitempty" query:"locality"`
	State         string   `json:"state,omitempty" query:"state"`
	Pincode       string   `json:"pincode,omitempty" query:"pincode"`
	PropertyTypes []string `json:"property_types,omitempty" query:"property_type"`
	MinPrice      *float64 `json:"min_price,omitempty" query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice      *float64 `json:"max_price,omitempty" query:"max_price" validate:"omitempty,gte=0"`
	Bedrooms      []string `json:"bedrooms,omitempty" query:"bedrooms"`
	Bathrooms     []string `json:"bathrooms,omitempty" query:"bathrooms"`
	MinArea       *float64 `json:"min_area,omitempty" query:"min_area" validate:"omitempty,gte=0"`
	MaxArea       *float64 `json:"max_area,omitempty" query:"max_area" validate:"omitempty,gte=0"`
	Page          int      `json:"page" query:"page" validate:"gte=1"`
	Limit         int      `json:"limit" query:"limit" validate:"gte=1,lte=100"`
}

// WithDefaults returns a copy with a zero Page or Limit replaced by the
// pagination defaults.
func (f SearchFilters) WithDefaults() SearchFilters {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = pagination.DefaultLimit
	}
	f.Location = strings.TrimSpace(f.Location)
	return f
}

// Validate checks field constraints and that every present range is ordered.
func (f SearchFilters) Validate() error {
	if err := validator.Validate(f); err != nil {
		return err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return apperrors.InvalidInput("min_price must not exceed max_price")
	}
	if f.MinArea != nil && f.MaxArea != nil && *f.MinArea > *f.MaxArea {
		return apperrors.InvalidInput("min_area must not exceed max_area")
	}
	return nil
}

// HasStructuredLocation reports whether any of city, locality, state or
// pincode is set.
func (f SearchFilters) HasStructuredLocation() bool {
	return strings.TrimSpace(f.City) != "" || strings.TrimSpace(f.Locality) != "" ||
		strings.TrimSpace(f.State) != "" || strings.TrimSpace(f.Pincode) != ""
}

// Summary renders the non-empty location fields for logs and analytics.
func (f SearchFilters) Summary() string {
	var parts []string
	add := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	add("location", f.Location)
	add("city", f.City)
	add("locality", f.Locality)
	add("state", f.State)
	add("pincode", f.Pincode)
	return strings.Join(parts, " ")
}
