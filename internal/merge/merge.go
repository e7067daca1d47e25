package merge

import (
	"slices"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/pkg/slug"
)

// MaxSuggestions is the default cap on merged location suggestions.
const MaxSuggestions = 10

// Suggestions merges the three sources in priority order: text groups, then
// coordinate groups not covering the same city, locality and state as a text
// group, then geocode candidates whose normalized display name is not already
// present. Order within a source is kept. The result holds at most max
// entries, or MaxSuggestions when max is not positive.
func Suggestions(text []TextCandidate, coordinate []CoordinateCandidate, geocoded []GeocodeCandidate, max int) []domain.LocationSuggestion {
	if max <= 0 {
		max = MaxSuggestions
	}

	out := make([]domain.LocationSuggestion, 0, min(max, len(text)+len(coordinate)+len(geocoded)))
	names := make(map[string]struct{})
	add := func(c Candidate) {
		s := c.Suggestion()
		names[slug.Normalize(s.DisplayName)] = struct{}{}
		out = append(out, s)
	}

	for _, c := range text {
		add(c)
	}

	for _, c := range coordinate {
		covered := slices.ContainsFunc(text, func(t TextCandidate) bool {
			return t.Group.SameArea(c.Group)
		})
		if !covered {
			add(c)
		}
	}

	for _, c := range geocoded {
		if _, dup := names[slug.Normalize(c.Location.DisplayName)]; dup {
			continue
		}
		add(c)
	}

	if len(out) > max {
		out = out[:max]
	}
	return out
}

// Properties returns text records followed by radius records whose id was
// not already seen, stable-sorted newest first. No id appears twice.
func Properties(text, radius []domain.PropertyRecord) []domain.PropertyRecord {
	seen := make(map[string]struct{}, len(text)+len(radius))
	out := make([]domain.PropertyRecord, 0, len(text)+len(radius))
	for _, src := range [][]domain.PropertyRecord{text, radius} {
		for _, r := range src {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.PropertyRecord) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return out
}
