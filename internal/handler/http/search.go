// Package http exposes the search operations over a JSON HTTP API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/service"
	"github.com/utafrali/propsearch/pkg/httputil"
	"github.com/utafrali/propsearch/pkg/pagination"
)

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// LocationsResponse wraps location suggestions.
type LocationsResponse struct {
	Suggestions []domain.LocationSuggestion `json:"suggestions"`
}

// SearchLocations handles GET /api/v1/search/locations?q=
func (h *SearchHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.SearchLocations(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: LocationsResponse{Suggestions: suggestions},
	})
}

// SearchProperties handles GET /api/v1/search/properties
func (h *SearchHandler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteParameterError(w, r, "pagination", err)
		return
	}

	filters := domain.SearchFilters{
		Location:      q.Get("location"),
		City:          q.Get("city"),
		Locality:      q.Get("locality"),
		State:         q.Get("state"),
		Pincode:       q.Get("pincode"),
		PropertyTypes: multiValue(q, "property_type"),
		Bedrooms:      multiValue(q, "bedrooms"),
		Bathrooms:     multiValue(q, "bathrooms"),
		Page:          page.Page,
		Limit:         page.Limit,
	}

	bounds := []struct {
		name string
		dst  **float64
	}{
		{"min_price", &filters.MinPrice},
		{"max_price", &filters.MaxPrice},
		{"min_area", &filters.MinArea},
		{"max_area", &filters.MaxArea},
	}
	for _, b := range bounds {
		v, err := floatParam(q, b.name)
		if err != nil {
			httputil.WriteParameterError(w, r, b.name, err)
			return
		}
		*b.dst = v
	}

	result, err := h.service.SearchProperties(r.Context(), filters)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// multiValue collects a parameter given as repeated keys, comma lists or both.
func multiValue(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// floatParam parses an optional numeric parameter. Absent or blank yields nil.
func floatParam(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, ok := domain.ParseAmount(raw)
	if !ok {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return &v, nil
}
