// Package store loads a finished crosswalk into Postgres so downstream
// analysis jobs can join against it.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ai-labor/occwalk/internal/crosswalk"
)

// Pool is the minimal pgx pool surface the store needs. Satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Store writes crosswalk rows to the crosswalk.occ_soc table.
type Store struct {
	pool Pool
}

// insertChunk bounds the number of rows per multi-VALUES insert.
const insertChunk = 500

// New connects to Postgres and returns a Store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping")
	}
	return &Store{pool: pool}, nil
}

// NewFromPool wraps an existing pool; used by tests.
func NewFromPool(pool Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Migrate creates the crosswalk schema and table if missing.
func (s *Store) Migrate(ctx context.Context) error {
	const ddl = `
CREATE SCHEMA IF NOT EXISTS crosswalk;
CREATE TABLE IF NOT EXISTS crosswalk.occ_soc (
	occ       TEXT NOT NULL,
	soc       TEXT NOT NULL,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (occ, soc)
);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// Load inserts crosswalk rows, replacing the existing table contents when
// replace is true. Conflicting pairs are left untouched otherwise.
func (s *Store) Load(ctx context.Context, rows []crosswalk.Row, replace bool) (int64, error) {
	if replace {
		if _, err := s.pool.Exec(ctx, "TRUNCATE TABLE crosswalk.occ_soc"); err != nil {
			return 0, eris.Wrap(err, "store: truncate occ_soc")
		}
	}

	var total int64
	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		n, err := s.insertChunk(ctx, rows[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *Store) insertChunk(ctx context.Context, rows []crosswalk.Row) (int64, error) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO crosswalk.occ_soc (occ, soc) VALUES ")

	args := make([]any, 0, len(rows)*2)
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d)", i*2+1, i*2+2)
		args = append(args, r.Occ, r.Soc)
	}
	sb.WriteString(" ON CONFLICT (occ, soc) DO NOTHING")

	tag, err := s.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, eris.Wrap(err, "store: insert occ_soc")
	}
	return tag.RowsAffected(), nil
}
