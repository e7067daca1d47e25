package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/geo"
	"github.com/utafrali/propsearch/internal/repository"
)

// Radius defaults.
const (
	DefaultRadiusKm = 15.0
	DefaultWorkers  = 3
)

// RadiusMatcher finds live records within a great-circle distance of a point.
type RadiusMatcher struct {
	store   repository.PropertyStore
	workers int
	logger  *slog.Logger
}

// NewRadiusMatcher creates a radius matcher running at most workers store
// scans at once.
func NewRadiusMatcher(store repository.PropertyStore, workers int, logger *slog.Logger) *RadiusMatcher {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &RadiusMatcher{store: store, workers: workers, logger: logger}
}

// Match returns live records no further than radiusKm from center, in store
// order. Records whose coordinates do not parse are skipped.
func (m *RadiusMatcher) Match(ctx context.Context, center geo.Point, radiusKm float64) ([]domain.PropertyRecord, error) {
	records, err := m.store.FindLiveWithCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("radius match: %w", err)
	}

	matched := make([]domain.PropertyRecord, 0)
	for _, r := range records {
		p, ok := geo.ParseCoordinates(r.Latitude, r.Longitude)
		if !ok {
			continue
		}
		if geo.Distance(center, p) <= radiusKm {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// MatchAll runs Match once per distinct centre and returns the union in
// centre order without repeated ids. Identical centres are evaluated once.
// Any store error fails the whole fan-out.
func (m *RadiusMatcher) MatchAll(ctx context.Context, centers []geo.Point, radiusKm float64) ([]domain.PropertyRecord, error) {
	centers = distinctCenters(centers)
	if len(centers) == 0 {
		return []domain.PropertyRecord{}, nil
	}

	acc := newAccumulator(len(centers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, c := range centers {
		g.Go(func() error {
			records, err := m.Match(gctx, c, radiusKm)
			if err != nil {
				return err
			}
			acc.put(i, records)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := acc.flatten()
	m.logger.DebugContext(ctx, "radius fan-out complete",
		slog.Int("centers", len(centers)),
		slog.Int("records", len(out)),
	)
	return out, nil
}

func distinctCenters(centers []geo.Point) []geo.Point {
	seen := make(map[geo.Point]struct{}, len(centers))
	out := make([]geo.Point, 0, len(centers))
	for _, c := range centers {
		if !c.Valid() {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// accumulator collects per-centre results from concurrent workers. Slots
// keep centre order independent of completion order.
type accumulator struct {
	mu    sync.Mutex
	slots [][]domain.PropertyRecord
}

func newAccumulator(n int) *accumulator {
	return &accumulator{slots: make([][]domain.PropertyRecord, n)}
}

func (a *accumulator) put(i int, records []domain.PropertyRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slots[i] = records
}

func (a *accumulator) flatten() []domain.PropertyRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[string]struct{})
	out := make([]domain.PropertyRecord, 0)
	for _, slot := range a.slots {
		for _, r := range slot {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
