package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/repository"
	"github.com/utafrali/propsearch/pkg/database"
)

// DefaultIndexName is the index holding property documents.
const DefaultIndexName = "marketplace_properties"

// DefaultPageSize is how many hits each search_after round trip fetches.
// Queries walk every page, so results are never cut at
// index.max_result_window.
const DefaultPageSize = 1000

var locationFields = []string{"city", "locality", "state", "pincode"}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// Store is a read-only repository.PropertyStore over an Elasticsearch index
// whose location fields are mapped as keywords.
type Store struct {
	client    *elasticsearch.Client
	indexName string
	pageSize  int
	logger    *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source domain.PropertyRecord `json:"_source"`
			Sort   []json.RawMessage     `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates a store connected to esURL. If indexName is empty,
// DefaultIndexName is used. No request is made until the first query.
func New(esURL, indexName string, logger *slog.Logger) (*Store, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	return &Store{
		client:    client,
		indexName: indexName,
		pageSize:  DefaultPageSize,
		logger:    logger,
	}, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// FindByTextMatch implements repository.PropertyStore. Matching runs in the
// index; grouping and averaging run in process so every backend groups alike.
func (s *Store) FindByTextMatch(ctx context.Context, term string, mode repository.MatchMode, limit int) ([]domain.LocationGroup, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.LocationGroup{}, nil
	}

	var clause map[string]any
	switch mode {
	case repository.MatchPincode:
		clause = map[string]any{"term": map[string]any{"pincode": term}}
	case repository.MatchPrefix:
		tokens := repository.PrefixTokens(term)
		if len(tokens) == 0 {
			return []domain.LocationGroup{}, nil
		}
		var should []any
		for _, tok := range tokens {
			for _, f := range locationFields {
				should = append(should, map[string]any{
					"prefix": map[string]any{f: map[string]any{"value": tok, "case_insensitive": true}},
				})
			}
		}
		clause = anyOf(should)
	default:
		clause = containsAny(term)
	}

	records, err := s.search(ctx, "FindByTextMatch", liveQuery(clause))
	if err != nil {
		return nil, fmt.Errorf("find by text match (%s): %w", mode, err)
	}
	return repository.GroupRecords(records, limit), nil
}

// FindLiveWithCoordinates implements repository.PropertyStore.
func (s *Store) FindLiveWithCoordinates(ctx context.Context) ([]domain.PropertyRecord, error) {
	query := liveQuery(
		map[string]any{"exists": map[string]any{"field": "latitude"}},
		map[string]any{"exists": map[string]any{"field": "longitude"}},
	)

	records, err := s.search(ctx, "FindLiveWithCoordinates", query)
	if err != nil {
		return nil, fmt.Errorf("find live with coordinates: %w", err)
	}

	// exists does not reject blank strings.
	out := records[:0]
	for _, r := range records {
		if r.HasCoordinates() {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindByFields implements repository.PropertyStore.
func (s *Store) FindByFields(ctx context.Context, q repository.FieldQuery) ([]domain.PropertyRecord, error) {
	var clauses []any
	for _, f := range []struct {
		field string
		value string
	}{
		{"city", q.City},
		{"locality", q.Locality},
		{"state", q.State},
		{"pincode", q.Pincode},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			clauses = append(clauses, map[string]any{
				"term": map[string]any{f.field: map[string]any{"value": v, "case_insensitive": true}},
			})
		}
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		clauses = append(clauses, containsAny(loc))
	}

	records, err := s.search(ctx, "FindByFields", liveQuery(clauses...))
	if err != nil {
		return nil, fmt.Errorf("find by fields: %w", err)
	}
	return records, nil
}

// search walks every page of query with search_after on the
// (published_at desc, id asc) sort, dropping documents that are not live.
func (s *Store) search(ctx context.Context, operation string, query map[string]any) (records []domain.PropertyRecord, err error) {
	statement, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	ctx, end := database.TraceOperation(ctx, "elasticsearch", operation, string(statement))
	defer func() { end(err) }()

	records = []domain.PropertyRecord{}
	var (
		after []json.RawMessage
		pages int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := s.searchPage(ctx, query, after)
		if err != nil {
			return nil, err
		}
		pages++

		hits := resp.Hits.Hits
		for _, hit := range hits {
			if hit.Source.IsLive {
				records = append(records, hit.Source)
			}
		}
		if len(hits) < s.pageSize {
			break
		}
		after = hits[len(hits)-1].Sort
		if len(after) == 0 {
			return nil, fmt.Errorf("elasticsearch search: hit without sort values")
		}
	}

	s.logger.DebugContext(ctx, "elasticsearch search executed",
		slog.String("operation", operation),
		slog.Int("hits", len(records)),
		slog.Int("pages", pages),
	)
	return records, nil
}

func (s *Store) searchPage(ctx context.Context, query map[string]any, after []json.RawMessage) (*esSearchResponse, error) {
	body := map[string]any{
		"query": query,
		"size":  s.pageSize,
		"sort": []any{
			map[string]any{"published_at": map[string]any{"order": "desc", "missing": "_last"}},
			map[string]any{"id": "asc"},
		},
	}
	if len(after) > 0 {
		body["search_after"] = after
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(bytes.NewReader(data)),
		s.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
			return nil, fmt.Errorf("elasticsearch search: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return nil, fmt.Errorf("elasticsearch search: unexpected status %s", res.Status())
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}
	return &esResp, nil
}

// liveQuery ANDs clauses with the is_live filter.
func liveQuery(clauses ...any) map[string]any {
	filter := append([]any{map[string]any{"term": map[string]any{"is_live": true}}}, clauses...)
	return map[string]any{"bool": map[string]any{"filter": filter}}
}

func anyOf(should []any) map[string]any {
	return map[string]any{"bool": map[string]any{"should": should, "minimum_should_match": 1}}
}

func containsAny(term string) map[string]any {
	pattern := "*" + wildcardEscaper.Replace(term) + "*"
	should := make([]any, 0, len(locationFields))
	for _, f := range locationFields {
		should = append(should, map[string]any{
			"wildcard": map[string]any{f: map[string]any{"value": pattern, "case_insensitive": true}},
		})
	}
	return anyOf(should)
}
