package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/repository"
)

// Store is an in-memory implementation of repository.PropertyStore.
// Thread-safe via sync.RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.PropertyRecord
}

// New creates a store holding records. Later duplicates of an id replace
// earlier ones.
func New(records ...domain.PropertyRecord) *Store {
	s := &Store{records: make(map[string]domain.PropertyRecord, len(records))}
	s.Put(records...)
	return s
}

// LoadFile creates a store from a JSON array of property records.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var records []domain.PropertyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(records...), nil
}

// Put adds or replaces records.
func (s *Store) Put(records ...domain.PropertyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.records[r.ID] = r
	}
}

// Len returns the number of stored records, live or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FindByTextMatch implements repository.PropertyStore.
func (s *Store) FindByTextMatch(_ context.Context, term string, mode repository.MatchMode, limit int) ([]domain.LocationGroup, error) {
	term = strings.TrimSpace(term)
	matched := s.liveWhere(func(r *domain.PropertyRecord) bool {
		return repository.MatchesText(r, term, mode)
	})
	return repository.GroupRecords(matched, limit), nil
}

// FindLiveWithCoordinates implements repository.PropertyStore.
func (s *Store) FindLiveWithCoordinates(_ context.Context) ([]domain.PropertyRecord, error) {
	return s.liveWhere((*domain.PropertyRecord).HasCoordinates), nil
}

// FindByFields implements repository.PropertyStore.
func (s *Store) FindByFields(_ context.Context, q repository.FieldQuery) ([]domain.PropertyRecord, error) {
	return s.liveWhere(func(r *domain.PropertyRecord) bool {
		return repository.MatchesFields(r, q)
	}), nil
}

// liveWhere returns copies of live records accepted by keep, newest first.
func (s *Store) liveWhere(keep func(*domain.PropertyRecord) bool) []domain.PropertyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PropertyRecord, 0)
	for _, r := range s.records {
		if !r.IsLive || !keep(&r) {
			continue
		}
		out = append(out, r)
	}
	repository.SortNewestFirst(out)
	return out
}
