package repository

import (
	"cmp"
	"slices"
	"strings"

	"github.com/utafrali/propsearch/internal/domain"
)

// MatchesText reports whether rec matches term under mode. Backends that
// filter in process use it so every store agrees on match semantics.
func MatchesText(rec *domain.PropertyRecord, term string, mode MatchMode) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	switch mode {
	case MatchPincode:
		return strings.TrimSpace(rec.Pincode) == term
	case MatchPrefix:
		for _, tok := range PrefixTokens(term) {
			tok = strings.ToLower(tok)
			for _, f := range locationFields(rec) {
				if strings.HasPrefix(strings.ToLower(f), tok) {
					return true
				}
			}
		}
		return false
	default:
		return containsFold(rec, term)
	}
}

// MatchesFields reports whether rec is selected by q.
func MatchesFields(rec *domain.PropertyRecord, q FieldQuery) bool {
	eq := func(field, want string) bool {
		want = strings.TrimSpace(want)
		return want == "" || strings.EqualFold(strings.TrimSpace(field), want)
	}
	if !eq(rec.City, q.City) || !eq(rec.Locality, q.Locality) ||
		!eq(rec.State, q.State) || !eq(rec.Pincode, q.Pincode) {
		return false
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		return containsFold(rec, loc)
	}
	return true
}

// GroupRecords aggregates records by location 4-tuple. Groups are ordered by
// property count desc with ties broken by city, locality, state and pincode
// ascending, then capped at limit when limit is positive.
func GroupRecords(records []domain.PropertyRecord, limit int) []domain.LocationGroup {
	groups := Aggregate(records)
	SortGroups(groups)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// Aggregate groups records by location 4-tuple in first-encounter order,
// counting members and averaging selling prices. Prices that do not parse
// are left out of the average.
func Aggregate(records []domain.PropertyRecord) []domain.LocationGroup {
	type acc struct {
		group    domain.LocationGroup
		priceSum float64
		priced   int
	}

	index := make(map[[4]string]*acc)
	var order []*acc
	for i := range records {
		r := &records[i]
		key := [4]string{r.City, r.Locality, r.State, r.Pincode}
		a, ok := index[key]
		if !ok {
			a = &acc{group: domain.LocationGroup{City: r.City, Locality: r.Locality, State: r.State, Pincode: r.Pincode}}
			index[key] = a
			order = append(order, a)
		}
		a.group.PropertyCount++
		if p, ok := domain.ParseAmount(r.SellingPrice); ok {
			a.priceSum += p
			a.priced++
		}
	}

	groups := make([]domain.LocationGroup, 0, len(order))
	for _, a := range order {
		if a.priced > 0 {
			a.group.AvgPrice = a.priceSum / float64(a.priced)
		}
		groups = append(groups, a.group)
	}
	return groups
}

// SortGroups orders groups by property count desc, then by key ascending.
func SortGroups(groups []domain.LocationGroup) {
	slices.SortStableFunc(groups, func(a, b domain.LocationGroup) int {
		if c := cmp.Compare(b.PropertyCount, a.PropertyCount); c != 0 {
			return c
		}
		return cmp.Or(
			cmp.Compare(a.City, b.City),
			cmp.Compare(a.Locality, b.Locality),
			cmp.Compare(a.State, b.State),
			cmp.Compare(a.Pincode, b.Pincode),
		)
	})
}

// SortNewestFirst orders records by published_at desc, then id asc.
func SortNewestFirst(records []domain.PropertyRecord) {
	slices.SortStableFunc(records, func(a, b domain.PropertyRecord) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func containsFold(rec *domain.PropertyRecord, term string) bool {
	term = strings.ToLower(term)
	for _, f := range locationFields(rec) {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func locationFields(rec *domain.PropertyRecord) [4]string {
	return [4]string{rec.City, rec.Locality, rec.State, rec.Pincode}
}
