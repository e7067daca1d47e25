package matcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/geo"
	"github.com/utafrali/propsearch/internal/repository"
	"github.com/utafrali/propsearch/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var base = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func record(id, city, locality, pincode, lat, lng string, age int) domain.PropertyRecord {
	return domain.PropertyRecord{
		ID: id, City: city, Locality: locality, State: "Madhya Pradesh", Pincode: pincode,
		Latitude: lat, Longitude: lng, SellingPrice: "5000000",
		PublishedAt: base.Add(-time.Duration(age) * time.Hour), IsLive: true,
	}
}

func indoreStore() *memory.Store {
	return memory.New(
		record("a1", "Indore", "Vijay Nagar", "452010", "22.7533", "75.8937", 1),
		record("a2", "Indore", "Vijay Nagar", "452010", "22.7540", "75.8940", 2),
		record("a3", "Indore", "Palasia", "452001", "22.7240", "75.8839", 3),
		record("a4", "Indore", "Rau", "453331", "22.6800", "75.8400", 4),
		record("b1", "Bhopal", "Arera Colony", "462016", "23.2100", "77.4300", 5),
		record("x1", "Indore", "Vijay Nagar", "452010", "not-a-number", "75.89", 6),
	)
}

// errStore fails every call and counts coordinate scans.
type errStore struct {
	scans atomic.Int32
}

func (s *errStore) FindByTextMatch(context.Context, string, repository.MatchMode, int) ([]domain.LocationGroup, error) {
	return nil, errors.New("store down")
}

func (s *errStore) FindLiveWithCoordinates(context.Context) ([]domain.PropertyRecord, error) {
	s.scans.Add(1)
	return nil, errors.New("store down")
}

func (s *errStore) FindByFields(context.Context, repository.FieldQuery) ([]domain.PropertyRecord, error) {
	return nil, errors.New("store down")
}

// countingStore wraps a PropertyStore and counts coordinate scans.
type countingStore struct {
	repository.PropertyStore
	scans atomic.Int32
}

func (s *countingStore) FindLiveWithCoordinates(ctx context.Context) ([]domain.PropertyRecord, error) {
	s.scans.Add(1)
	return s.PropertyStore.FindLiveWithCoordinates(ctx)
}

func TestIsPincode(t *testing.T) {
	assert.True(t, IsPincode("452010"))
	assert.False(t, IsPincode("45201"))
	assert.False(t, IsPincode("4520100"))
	assert.False(t, IsPincode("45201a"))
}

func TestTextMatcher_Pincode(t *testing.T) {
	m := NewTextMatcher(indoreStore(), testLogger())

	groups, typ, err := m.Match(context.Background(), "452010")
	require.NoError(t, err)
	assert.Equal(t, domain.SearchPincodeMatch, typ)
	require.Len(t, groups, 1)
	assert.Equal(t, "Vijay Nagar", groups[0].Locality)
	assert.Equal(t, 3, groups[0].PropertyCount)
}

func TestTextMatcher_UnknownPincodeFallsThrough(t *testing.T) {
	m := NewTextMatcher(indoreStore(), testLogger())

	groups, typ, err := m.Match(context.Background(), "999999")
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Equal(t, domain.SearchPincodePartial, typ)
}

func TestTextMatcher_Contains(t *testing.T) {
	m := NewTextMatcher(indoreStore(), testLogger())

	groups, typ, err := m.Match(context.Background(), "  indore ")
	require.NoError(t, err)
	assert.Equal(t, domain.SearchTextMatch, typ)
	require.Len(t, groups, 3)
	assert.Equal(t, "Vijay Nagar", groups[0].Locality, "largest group first")
}

func TestTextMatcher_PrefixFallback(t *testing.T) {
	m := NewTextMatcher(indoreStore(), testLogger())

	groups, typ, err := m.Match(context.Background(), "are colonyx")
	require.NoError(t, err)
	assert.Equal(t, domain.SearchTextPartial, typ)
	require.Len(t, groups, 1)
	assert.Equal(t, "Arera Colony", groups[0].Locality)
}

func TestTextMatcher_PartialPincode(t *testing.T) {
	m := NewTextMatcher(indoreStore(), testLogger())

	groups, typ, err := m.Match(context.Background(), "45 2")
	require.NoError(t, err)
	assert.Equal(t, domain.SearchPincodePartial, typ)
	assert.LessOrEqual(t, len(groups), PartialGroupLimit)
}

func TestTextMatcher_StoreError(t *testing.T) {
	m := NewTextMatcher(&errStore{}, testLogger())

	_, _, err := m.Match(context.Background(), "indore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestRadiusMatcher_Match(t *testing.T) {
	m := NewRadiusMatcher(indoreStore(), 3, testLogger())

	got, err := m.Match(context.Background(), geo.Point{Lat: 22.7533, Lng: 75.8937}, DefaultRadiusKm)
	require.NoError(t, err)

	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a1", "a2", "a3", "a4"}, ids, "Bhopal is out of range and x1 is malformed")
}

func TestRadiusMatcher_MatchTightRadius(t *testing.T) {
	m := NewRadiusMatcher(indoreStore(), 3, testLogger())

	got, err := m.Match(context.Background(), geo.Point{Lat: 22.7533, Lng: 75.8937}, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		p, ok := geo.ParseCoordinates(r.Latitude, r.Longitude)
		require.True(t, ok)
		assert.LessOrEqual(t, geo.Distance(geo.Point{Lat: 22.7533, Lng: 75.8937}, p), 0.5)
	}
}

func TestRadiusMatcher_MatchAll_DedupsInCandidateOrder(t *testing.T) {
	m := NewRadiusMatcher(indoreStore(), 2, testLogger())

	centers := []geo.Point{
		{Lat: 23.2599, Lng: 77.4126}, // Bhopal
		{Lat: 22.7533, Lng: 75.8937}, // Vijay Nagar
		{Lat: 22.7240, Lng: 75.8839}, // Palasia
	}
	got, err := m.MatchAll(context.Background(), centers, DefaultRadiusKm)
	require.NoError(t, err)

	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b1", "a1", "a2", "a3", "a4"}, ids)
}

func TestRadiusMatcher_MatchAll_CollapsesIdenticalCenters(t *testing.T) {
	store := &countingStore{PropertyStore: indoreStore()}
	m := NewRadiusMatcher(store, 3, testLogger())

	p := geo.Point{Lat: 22.7533, Lng: 75.8937}
	got, err := m.MatchAll(context.Background(), []geo.Point{p, p, p}, DefaultRadiusKm)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, int32(1), store.scans.Load())
}

func TestRadiusMatcher_MatchAll_NearbyCentersEachEvaluated(t *testing.T) {
	// Two centres a few metres apart, with a listing just inside the radius
	// of the second only.
	a := geo.Point{Lat: 22.7533, Lng: 75.8937}
	b := geo.Point{Lat: 22.7533, Lng: 75.89375}
	edge := domain.PropertyRecord{ID: "edge", City: "Indore", Latitude: "22.7533", IsLive: true}
	for lng := 75.8937 + 0.1; lng < 76.2; lng += 0.00001 {
		p := geo.Point{Lat: 22.7533, Lng: lng}
		if geo.Distance(b, p) > DefaultRadiusKm {
			break
		}
		if geo.Distance(a, p) > DefaultRadiusKm {
			edge.Longitude = strconv.FormatFloat(lng, 'f', -1, 64)
			break
		}
	}
	require.NotEmpty(t, edge.Longitude)

	store := &countingStore{PropertyStore: memory.New(edge)}
	m := NewRadiusMatcher(store, 3, testLogger())

	got, err := m.MatchAll(context.Background(), []geo.Point{a, b}, DefaultRadiusKm)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "edge", got[0].ID)
	assert.Equal(t, int32(2), store.scans.Load())
}

func TestRadiusMatcher_MatchAll_Empty(t *testing.T) {
	m := NewRadiusMatcher(indoreStore(), 3, testLogger())

	got, err := m.MatchAll(context.Background(), nil, DefaultRadiusKm)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRadiusMatcher_MatchAll_Error(t *testing.T) {
	m := NewRadiusMatcher(&errStore{}, 3, testLogger())

	_, err := m.MatchAll(context.Background(), []geo.Point{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}, DefaultRadiusKm)
	require.Error(t, err)
}

func TestNewRadiusMatcher_DefaultsWorkers(t *testing.T) {
	m := NewRadiusMatcher(indoreStore(), 0, testLogger())
	assert.Equal(t, DefaultWorkers, m.workers)
}
