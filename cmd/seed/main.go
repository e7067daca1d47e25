// Package main generates a deterministic JSON fixture of property listings
// for the in-memory store (MEMORY_STORE_SEED).
//
// Run: go run ./cmd/seed
//
//	SEED_OUT=testdata/properties.json SEED_COUNT=5000 go run ./cmd/seed
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/propsearch/internal/domain"
)

const defaultCount = 2000

// seedNamespace makes generated ids stable across runs.
var seedNamespace = uuid.MustParse("6f1d2c9e-3b7a-4e51-9d0c-8a4f2e6b1c37")

type area struct {
	City     string
	Locality string
	State    string
	Pincode  string
	Lat, Lng float64
}

var areas = []area{
	{"Indore", "Vijay Nagar", "Madhya Pradesh", "452010", 22.7533, 75.8937},
	{"Indore", "Palasia", "Madhya Pradesh", "452001", 22.7240, 75.8839},
	{"Indore", "Rau", "Madhya Pradesh", "453331", 22.6360, 75.8100},
	{"Bhopal", "Arera Colony", "Madhya Pradesh", "462016", 23.2100, 77.4300},
	{"Bhopal", "", "Madhya Pradesh", "462001", 23.2599, 77.4126},
	{"Mumbai", "Bandra West", "Maharashtra", "400050", 19.0596, 72.8295},
	{"Mumbai", "Andheri East", "Maharashtra", "400069", 19.1136, 72.8697},
	{"Pune", "Kothrud", "Maharashtra", "411038", 18.5074, 73.8077},
	{"Bengaluru", "Whitefield", "Karnataka", "560066", 12.9698, 77.7500},
	{"Bengaluru", "Koramangala", "Karnataka", "560034", 12.9352, 77.6245},
	{"New Delhi", "Dwarka", "Delhi", "110075", 28.5921, 77.0460},
	{"Gurugram", "DLF Phase 2", "Haryana", "122002", 28.4901, 77.0888},
}

var propertyTypes = []string{"apartment", "villa", "independent_house", "plot", "penthouse"}

var rooms = []string{"1", "2", "3", "4", "5+"}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// generate builds n listings spread over areas. Roughly one in ten is not
// live and one in eight has no coordinates, so every store path has data.
func generate(rng *rand.Rand, n int, now time.Time) []domain.PropertyRecord {
	records := make([]domain.PropertyRecord, 0, n)
	for i := range n {
		a := areas[rng.Intn(len(areas))]
		typ := propertyTypes[rng.Intn(len(propertyTypes))]

		r := domain.PropertyRecord{
			ID:           uuid.NewSHA1(seedNamespace, []byte(strconv.Itoa(i))).String(),
			City:         a.City,
			Locality:     a.Locality,
			State:        a.State,
			Pincode:      a.Pincode,
			PropertyType: typ,
			SellingPrice: strconv.Itoa((20 + rng.Intn(480)) * 100000),
			TotalArea:    strconv.Itoa(400 + rng.Intn(3600)),
			PublishedAt:  now.Add(-time.Duration(rng.Intn(180*24)) * time.Hour),
			IsLive:       rng.Intn(10) != 0,
		}
		if typ != "plot" {
			r.Bedrooms = rooms[rng.Intn(len(rooms))]
			r.Bathrooms = rooms[rng.Intn(len(rooms)-1)]
		}
		if rng.Intn(8) != 0 {
			// Jitter within roughly 3 km of the locality centre.
			r.Latitude = strconv.FormatFloat(a.Lat+(rng.Float64()-0.5)*0.05, 'f', 6, 64)
			r.Longitude = strconv.FormatFloat(a.Lng+(rng.Float64()-0.5)*0.05, 'f', 6, 64)
		}
		records = append(records, r)
	}
	return records
}

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	out := getEnv("SEED_OUT", "testdata/properties.json")
	count, err := strconv.Atoi(getEnv("SEED_COUNT", strconv.Itoa(defaultCount)))
	if err != nil || count < 1 {
		log.Fatalf("SEED_COUNT must be a positive integer")
	}

	rng := rand.New(rand.NewSource(42)) // deterministic seed
	now := time.Now().UTC().Truncate(time.Hour)
	records := generate(rng, count, now)
	log.Printf("Generated %d listings across %d areas.", len(records), len(areas))

	if err := write(out, records); err != nil {
		log.Fatalf("write fixture: %v", err)
	}
	log.Printf("Wrote %s. Start the server with PROPERTY_STORE=memory MEMORY_STORE_SEED=%s", out, out)
}

func write(path string, records []domain.PropertyRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
