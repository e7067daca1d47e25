// Package matcher finds listings for a location query, by text against the
// location fields or by distance from a coordinate.
package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/repository"
)

// Group caps.
const (
	TextGroupLimit    = 5
	PartialGroupLimit = 3
)

var (
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	digitsPattern  = regexp.MustCompile(`^[\d\s]+$`)
)

// IsPincode reports whether term is a six digit Indian postal code.
func IsPincode(term string) bool {
	return pincodePattern.MatchString(term)
}

// TextMatcher resolves a term to location groups: an exact pincode lookup
// when the term looks like one, then a contains pass, then a prefix pass.
type TextMatcher struct {
	store  repository.PropertyStore
	logger *slog.Logger
}

// NewTextMatcher creates a text matcher over store.
func NewTextMatcher(store repository.PropertyStore, logger *slog.Logger) *TextMatcher {
	return &TextMatcher{store: store, logger: logger}
}

// Match returns up to TextGroupLimit groups and how they were found. An
// empty result carries the type of the last pass tried.
func (m *TextMatcher) Match(ctx context.Context, term string) ([]domain.LocationGroup, domain.SearchType, error) {
	term = strings.TrimSpace(term)

	if IsPincode(term) {
		groups, err := m.store.FindByTextMatch(ctx, term, repository.MatchPincode, TextGroupLimit)
		if err != nil {
			return nil, "", fmt.Errorf("pincode match: %w", err)
		}
		if len(groups) > 0 {
			return groups, domain.SearchPincodeMatch, nil
		}
	}

	groups, err := m.store.FindByTextMatch(ctx, term, repository.MatchContains, TextGroupLimit)
	if err != nil {
		return nil, "", fmt.Errorf("text match: %w", err)
	}
	if len(groups) > 0 {
		return groups, domain.SearchTextMatch, nil
	}

	partialType := domain.SearchTextPartial
	if digitsPattern.MatchString(term) {
		partialType = domain.SearchPincodePartial
	}
	groups, err = m.store.FindByTextMatch(ctx, term, repository.MatchPrefix, PartialGroupLimit)
	if err != nil {
		return nil, "", fmt.Errorf("prefix match: %w", err)
	}

	m.logger.DebugContext(ctx, "text match fell back to prefix",
		slog.String("term", term),
		slog.Int("groups", len(groups)),
	)
	if len(groups) > PartialGroupLimit {
		groups = groups[:PartialGroupLimit]
	}
	return groups, partialType, nil
}
