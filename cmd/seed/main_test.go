package main

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/propsearch/internal/geo"
	"github.com/utafrali/propsearch/internal/repository/memory"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(rand.New(rand.NewSource(42)), 50, now)
	b := generate(rand.New(rand.NewSource(42)), 50, now)
	assert.Equal(t, a, b)
}

func TestGenerate_Shape(t *testing.T) {
	records := generate(rand.New(rand.NewSource(7)), 500, now)
	require.Len(t, records, 500)

	ids := map[string]bool{}
	var live, withCoords int
	for _, r := range records {
		assert.False(t, ids[r.ID], "duplicate id")
		ids[r.ID] = true
		if r.IsLive {
			live++
		}
		if r.HasCoordinates() {
			withCoords++
			_, ok := geo.ParseCoordinates(r.Latitude, r.Longitude)
			assert.True(t, ok)
		}
		assert.False(t, r.PublishedAt.After(now))
	}
	assert.Greater(t, live, 400)
	assert.Less(t, live, 500)
	assert.Greater(t, withCoords, 380)
	assert.Less(t, withCoords, 500)
}

func TestWrite_LoadsIntoMemoryStore(t *testing.T) {
	records := generate(rand.New(rand.NewSource(1)), 25, now)
	path := filepath.Join(t.TempDir(), "nested", "seed.json")

	require.NoError(t, write(path, records))

	store, err := memory.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25, store.Len())
}
