// Package repository defines the read-only property store contract shared by
// the Postgres, Elasticsearch and in-memory backends.
package repository

import (
	"context"
	"strings"

	"github.com/utafrali/propsearch/internal/domain"
)

// MatchMode selects how FindByTextMatch compares the term with location fields.
type MatchMode int

const (
	// MatchContains matches when any location field contains the term.
	MatchContains MatchMode = iota
	// MatchPrefix matches when any location field starts with any
	// whitespace token of the term that is at least MinPrefixTokenLength long.
	MatchPrefix
	// MatchPincode matches the pincode field exactly.
	MatchPincode
)

// MinPrefixTokenLength is the shortest token used by MatchPrefix.
const MinPrefixTokenLength = 2

func (m MatchMode) String() string {
	switch m {
	case MatchContains:
		return "contains"
	case MatchPrefix:
		return "prefix"
	case MatchPincode:
		return "pincode"
	default:
		return "unknown"
	}
}

// FieldQuery selects live records by structured location fields. Non-empty
// structured fields are compared case-insensitively for equality and ANDed.
// Location, when set, must be contained in any location field. The zero
// value selects every live record.
type FieldQuery struct {
	Location string
	City     string
	Locality string
	State    string
	Pincode  string
}

// PropertyStore is the read-only query interface over persisted listings.
// Every method only sees records with is_live set.
type PropertyStore interface {
	// FindByTextMatch groups matching records by city, locality, state and
	// pincode, ordered by count desc then by the group key, capped at limit.
	FindByTextMatch(ctx context.Context, term string, mode MatchMode, limit int) ([]domain.LocationGroup, error)

	// FindLiveWithCoordinates returns records whose latitude and longitude
	// are both non-blank, newest first.
	FindLiveWithCoordinates(ctx context.Context) ([]domain.PropertyRecord, error)

	// FindByFields returns records selected by q, newest first.
	FindByFields(ctx context.Context, q FieldQuery) ([]domain.PropertyRecord, error)
}

// PrefixTokens splits term on whitespace and keeps tokens long enough for
// prefix matching.
func PrefixTokens(term string) []string {
	var tokens []string
	for _, tok := range strings.Fields(term) {
		if len([]rune(tok)) >= MinPrefixTokenLength {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
