// Package filter applies the secondary attribute constraints of a property
// search to an already merged result set.
package filter

import (
	"slices"
	"strings"

	"github.com/utafrali/propsearch/internal/domain"
)

// Predicate reports whether a record satisfies one constraint.
type Predicate func(*domain.PropertyRecord) bool

// Pipeline is an AND of predicates built from SearchFilters.
type Pipeline struct {
	predicates []Predicate
}

// New builds a pipeline holding one predicate per active filter. Empty lists
// and nil bounds add nothing.
func New(f domain.SearchFilters) *Pipeline {
	p := &Pipeline{}

	if types := nonBlank(f.PropertyTypes); len(types) > 0 {
		p.add(func(r *domain.PropertyRecord) bool {
			return slices.ContainsFunc(types, func(t string) bool {
				return strings.EqualFold(t, strings.TrimSpace(r.PropertyType))
			})
		})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		p.add(rangePredicate(func(r *domain.PropertyRecord) string { return r.SellingPrice }, f.MinPrice, f.MaxPrice))
	}
	if beds := nonBlank(f.Bedrooms); len(beds) > 0 {
		p.add(func(r *domain.PropertyRecord) bool {
			return slices.Contains(beds, strings.TrimSpace(r.Bedrooms))
		})
	}
	if baths := nonBlank(f.Bathrooms); len(baths) > 0 {
		p.add(func(r *domain.PropertyRecord) bool {
			return slices.Contains(baths, strings.TrimSpace(r.Bathrooms))
		})
	}
	if f.MinArea != nil || f.MaxArea != nil {
		p.add(rangePredicate(func(r *domain.PropertyRecord) string { return r.TotalArea }, f.MinArea, f.MaxArea))
	}

	return p
}

func (p *Pipeline) add(pred Predicate) {
	p.predicates = append(p.predicates, pred)
}

// Len returns the number of active constraints.
func (p *Pipeline) Len() int {
	return len(p.predicates)
}

// Apply returns the records passing every constraint, in input order. The
// input is not modified and the result is never nil.
func (p *Pipeline) Apply(records []domain.PropertyRecord) []domain.PropertyRecord {
	out := make([]domain.PropertyRecord, 0, len(records))
	for i := range records {
		if p.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Match reports whether r passes every constraint.
func (p *Pipeline) Match(r *domain.PropertyRecord) bool {
	for _, pred := range p.predicates {
		if !pred(r) {
			return false
		}
	}
	return true
}

// rangePredicate bounds a numeric-as-text field. A value that does not parse
// fails whenever a bound is active.
func rangePredicate(field func(*domain.PropertyRecord) string, lo, hi *float64) Predicate {
	return func(r *domain.PropertyRecord) bool {
		v, ok := domain.ParseAmount(field(r))
		if !ok {
			return false
		}
		if lo != nil && v < *lo {
			return false
		}
		if hi != nil && v > *hi {
			return false
		}
		return true
	}
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
