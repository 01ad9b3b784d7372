package pgvector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hairstory/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs nearest-neighbour queries against pgvector tables. Each table
// holds one corpus with columns id, embedding and metadata (jsonb).
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// Corpus returns a searcher over one table
func (s *Store) Corpus(table string) *Corpus {
	return &Corpus{pool: s.pool, query: searchQuery(table)}
}

// Corpus implements domain.VectorSearcher for a single table
type Corpus struct {
	pool  *pgxpool.Pool
	query string
}

// Search returns the topK rows closest to vector by cosine similarity
func (c *Corpus) Search(ctx context.Context, vector []float32, topK int) ([]domain.VectorMatch, error) {
	if len(vector) == 0 || topK <= 0 {
		return nil, fmt.Errorf("%w: empty vector or topK %d", domain.ErrInvalidRequest, topK)
	}

	rows, err := c.pool.Query(ctx, c.query, pgVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrSearch, err)
	}
	defer rows.Close()

	var matches []domain.VectorMatch
	for rows.Next() {
		var m domain.VectorMatch
		if err := rows.Scan(&m.ID, &m.Score, &m.Metadata); err != nil {
			return nil, fmt.Errorf("%w: scan match: %v", domain.ErrSearch, err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", domain.ErrSearch, err)
	}

	return matches, nil
}

// searchQuery builds the similarity query for a table name, which may be schema qualified
func searchQuery(table string) string {
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	return `
		SELECT id::text, 1 - (embedding <=> $1::vector) AS similarity, metadata
		FROM ` + ident + `
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2`
}

// pgVector formats a vector as a pgvector literal, e.g. "[0.1,0.2,0.3]"
func pgVector(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
