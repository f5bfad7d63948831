package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcadeworks/arena/internal/config"
)

// NewPool creates a PostgreSQL connection pool from the given configuration.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected pool or a non-nil error. The pool is
// ready for queries upon successful return.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// PgStore persists player records as JSONB documents keyed by account name.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a PgStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

// Get loads the record document for account. Fields absent from the stored
// document keep their DefaultRecord values, so old documents stay readable
// after the schema of Record grows.
//
// Postcondition: Returns DefaultRecord() with a nil error for unknown accounts.
func (s *PgStore) Get(ctx context.Context, account string) (Record, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM player_records WHERE account = $1`,
		account,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultRecord(), nil
		}
		return Record{}, fmt.Errorf("querying player record for %q: %w", account, err)
	}

	rec := DefaultRecord()
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding player record for %q: %w", account, err)
	}
	return rec, nil
}

// Put upserts the record document for account.
func (s *PgStore) Put(ctx context.Context, account string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding player record for %q: %w", account, err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO player_records (account, data)
		 VALUES ($1, $2)
		 ON CONFLICT (account) DO UPDATE
		 SET data = EXCLUDED.data, updated_at = NOW()`,
		account, data,
	)
	if err != nil {
		return fmt.Errorf("upserting player record for %q: %w", account, err)
	}
	return nil
}
