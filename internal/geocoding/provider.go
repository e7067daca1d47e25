// Package geocoding resolves free-text place names to coordinates through an
// external provider. Client is fail-open: callers never see provider errors.
package geocoding

import (
	"context"
	"errors"

	"github.com/utafrali/propsearch/internal/domain"
)

// ErrMissingCredentials is returned by providers that have no access token.
var ErrMissingCredentials = errors.New("geocoding provider credentials not configured")

// Provider is the external text to coordinates lookup.
type Provider interface {
	Lookup(ctx context.Context, text, country string, limit int) ([]domain.LocationCandidate, error)
}
