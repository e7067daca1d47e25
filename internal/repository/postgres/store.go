package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/propsearch/internal/domain"
	"github.com/utafrali/propsearch/internal/repository"
	"github.com/utafrali/propsearch/pkg/database"
)

const recordColumns = `id, city, COALESCE(locality, ''), state, pincode,
	COALESCE(latitude, ''), COALESCE(longitude, ''), COALESCE(property_type, ''),
	COALESCE(selling_price, ''), COALESCE(bedrooms, ''), COALESCE(bathrooms, ''),
	COALESCE(total_area, ''), COALESCE(published_at, 'epoch'::timestamptz), is_live`

// numericPrice yields selling_price as numeric, or NULL when it does not
// parse, so AVG skips it.
const numericPrice = `CASE WHEN regexp_replace(COALESCE(selling_price, ''), '[,[:space:]]', '', 'g') ~ '^-?[0-9]+(\.[0-9]+)?$'
		THEN regexp_replace(selling_price, '[,[:space:]]', '', 'g')::numeric END`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Store implements repository.PropertyStore on the marketplace properties table.
type Store struct {
	pool database.DBTX
}

// NewStore creates a new PostgreSQL-backed property store.
func NewStore(pool database.DBTX) *Store {
	return &Store{pool: pool}
}

// FindByTextMatch implements repository.PropertyStore.
func (s *Store) FindByTextMatch(ctx context.Context, term string, mode repository.MatchMode, limit int) (groups []domain.LocationGroup, err error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.LocationGroup{}, nil
	}

	var (
		conditions []string
		args       []any
	)
	switch mode {
	case repository.MatchPincode:
		conditions = append(conditions, "pincode = $1")
		args = append(args, term)
	case repository.MatchPrefix:
		for _, tok := range repository.PrefixTokens(term) {
			args = append(args, likeEscaper.Replace(tok)+"%")
			conditions = append(conditions, anyFieldILike(len(args)))
		}
		if len(conditions) == 0 {
			return []domain.LocationGroup{}, nil
		}
	default:
		args = append(args, "%"+likeEscaper.Replace(term)+"%")
		conditions = append(conditions, anyFieldILike(1))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT city, COALESCE(locality, '') AS locality, state, pincode,
			   COUNT(*) AS property_count,
			   COALESCE(AVG(%s), 0)::float8 AS avg_price
		FROM properties
		WHERE is_live = true AND (%s)
		GROUP BY city, COALESCE(locality, ''), state, pincode
		ORDER BY property_count DESC, city, locality, state, pincode
		LIMIT $%d`,
		numericPrice, strings.Join(conditions, " OR "), len(args),
	)

	ctx, end := database.TraceQuery(ctx, "FindByTextMatch", query)
	defer func() { end(err) }()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find by text match (%s): %w", mode, err)
	}
	defer rows.Close()

	groups = make([]domain.LocationGroup, 0)
	for rows.Next() {
		var g domain.LocationGroup
		if err := rows.Scan(&g.City, &g.Locality, &g.State, &g.Pincode, &g.PropertyCount, &g.AvgPrice); err != nil {
			return nil, fmt.Errorf("scan location group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate location group rows: %w", err)
	}

	return groups, nil
}

// FindLiveWithCoordinates implements repository.PropertyStore.
func (s *Store) FindLiveWithCoordinates(ctx context.Context) (records []domain.PropertyRecord, err error) {
	query := `
		SELECT ` + recordColumns + `
		FROM properties
		WHERE is_live = true
		  AND TRIM(COALESCE(latitude, '')) <> ''
		  AND TRIM(COALESCE(longitude, '')) <> ''
		ORDER BY published_at DESC NULLS LAST, id`

	ctx, end := database.TraceQuery(ctx, "FindLiveWithCoordinates", query)
	defer func() { end(err) }()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find live with coordinates: %w", err)
	}
	return scanRecords(rows)
}

// FindByFields implements repository.PropertyStore.
func (s *Store) FindByFields(ctx context.Context, q repository.FieldQuery) (records []domain.PropertyRecord, err error) {
	var (
		conditions = []string{"is_live = true"}
		args       []any
		argIndex   = 1
	)

	for _, f := range []struct {
		column string
		value  string
	}{
		{"city", q.City},
		{"locality", q.Locality},
		{"state", q.State},
		{"pincode", q.Pincode},
	} {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(COALESCE(%s, ''))) = LOWER($%d)", f.column, argIndex))
		args = append(args, v)
		argIndex++
	}

	if loc := strings.TrimSpace(q.Location); loc != "" {
		conditions = append(conditions, anyFieldILike(argIndex))
		args = append(args, "%"+likeEscaper.Replace(loc)+"%")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE %s
		ORDER BY published_at DESC NULLS LAST, id`,
		recordColumns, strings.Join(conditions, " AND "),
	)

	ctx, end := database.TraceQuery(ctx, "FindByFields", query)
	defer func() { end(err) }()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find by fields: %w", err)
	}
	return scanRecords(rows)
}

func anyFieldILike(arg int) string {
	return fmt.Sprintf("(city ILIKE $%[1]d OR locality ILIKE $%[1]d OR state ILIKE $%[1]d OR pincode ILIKE $%[1]d)", arg)
}

func scanRecords(rows pgx.Rows) ([]domain.PropertyRecord, error) {
	defer rows.Close()

	records := make([]domain.PropertyRecord, 0)
	for rows.Next() {
		var r domain.PropertyRecord
		if err := rows.Scan(
			&r.ID,
			&r.City,
			&r.Locality,
			&r.State,
			&r.Pincode,
			&r.Latitude,
			&r.Longitude,
			&r.PropertyType,
			&r.SellingPrice,
			&r.Bedrooms,
			&r.Bathrooms,
			&r.TotalArea,
			&r.PublishedAt,
			&r.IsLive,
		); err != nil {
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property rows: %w", err)
	}

	return records, nil
}
