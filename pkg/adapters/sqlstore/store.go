package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/fatefinder/pkg/domain"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_results (
    result_key  TEXT PRIMARY KEY,
    payload     TEXT NOT NULL,
    updated_at  BIGINT NOT NULL
)`

// Store implements ports.ResultStore on SQLite or PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects, applies the schema and returns a ready store.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One writer at a time; WAL lets readers proceed alongside it.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	s := &Store{db: db, driver: driver, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// rebind rewrites '?' placeholders for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save upserts the result under key.
func (s *Store) Save(ctx context.Context, key string, result *domain.FortuneResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := s.rebind(`INSERT INTO saved_results (result_key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (result_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, string(data), s.now().UnixNano()); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// Load retrieves the result stored under key.
func (s *Store) Load(ctx context.Context, key string) (*domain.FortuneResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM saved_results WHERE result_key = ?`), key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}

	var result domain.FortuneResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

// UpdatedAt reports when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var nanos int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT updated_at FROM saved_results WHERE result_key = ?`), key).Scan(&nanos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, domain.ErrResultNotFound
		}
		return time.Time{}, fmt.Errorf("load timestamp: %w", err)
	}
	return time.Unix(0, nanos), nil
}

// Delete removes the row for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM saved_results WHERE result_key = ?`), key); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
