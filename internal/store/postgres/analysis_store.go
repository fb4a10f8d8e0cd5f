// Package postgres persists analysis reports using PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/types"
)

// AnalysisStore implements interfaces.AnalysisStore on a pgx pool.
type AnalysisStore struct {
	pool *pgxpool.Pool
}

var _ interfaces.AnalysisStore = (*AnalysisStore)(nil)

func NewAnalysisStore(pool *pgxpool.Pool) *AnalysisStore {
	return &AnalysisStore{pool: pool}
}

// Connect opens a connection pool against the given DSN and verifies it
// with a ping, so a bad database configuration fails at startup rather
// than mid-cycle.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// Insert appends one analysis row. Rows are append-only; each cycle adds
// two per target (technical and sentimental).
func (s *AnalysisStore) Insert(ctx context.Context, row types.AnalysisRow) error {
	const query = `INSERT INTO analysis (name, type, content, created, target) VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.pool.Exec(ctx, query, row.Name, row.Type, row.Content, row.Created, row.Target); err != nil {
		return fmt.Errorf("postgres: insert %s analysis for %s: %w", row.Type, row.Target, err)
	}
	return nil
}
