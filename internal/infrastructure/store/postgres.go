package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"propradar/internal/config"
	"propradar/pkg/logger"
)

// Postgres is the Store backed by a single jsonb key-value table. Row
// locks (SELECT ... FOR UPDATE) make Update strictly serialized per key,
// so unlike the Redis backend it never needs a retry loop.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        text PRIMARY KEY,
	value      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// NewPostgres connects to PostgreSQL and ensures the kv table exists.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*Postgres, error) {
	log = log.WithComponent("postgres-store")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Str("dbname", cfg.DBName).Msg("connecting to PostgreSQL")

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(connectCtx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	log.Info().Msg("connected to PostgreSQL successfully")

	return &Postgres{pool: pool, logger: log}, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.logger.Info().Msg("closing PostgreSQL connection pool")
	s.pool.Close()
}

func (s *Postgres) Get(ctx context.Context, key string, dest any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *Postgres) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, raw)
	return err
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return err
}

func (s *Postgres) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM kv_entries WHERE key LIKE $1 || '%'`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, key string, apply func(current []byte) ([]byte, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current []byte
	err = tx.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1 FOR UPDATE`, key).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	next, err := apply(current)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, next); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) Name() string { return "postgres" }
