package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"legaltrack/internal/cache"
	"legaltrack/pkg/requestcontext"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS cache_entries (
	namespace  TEXT    NOT NULL,
	cache_key  TEXT    NOT NULL,
	payload    BLOB    NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, cache_key)
)`

// SQLiteStore keeps all namespaces in one table. Each Put is a single
// upsert statement, which SQLite applies atomically.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, ns cache.Namespace, key string, payload []byte) error {
	if payload == nil {
		payload = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (namespace, cache_key, payload, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, cache_key) DO UPDATE SET
		    payload = excluded.payload,
		    fetched_at = excluded.fetched_at`,
		string(ns), key, payload, requestcontext.Now(ctx).UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, ns cache.Namespace, key string) (cache.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM cache_entries WHERE namespace = ? AND cache_key = ?`,
		string(ns), key,
	)
	var payload []byte
	var fetchedAt int64
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cache.Entry{}, cache.ErrNotFound
		}
		return cache.Entry{}, fmt.Errorf("get cache entry: %w", err)
	}
	return cache.Entry{Payload: payload, FetchedAt: time.Unix(0, fetchedAt).UTC()}, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, ns cache.Namespace, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE namespace = ? AND cache_key = ?`, string(ns), key)
	if err != nil {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, ns cache.Namespace) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ?`, string(ns)); err != nil {
		return fmt.Errorf("clear namespace %s: %w", ns, err)
	}
	return nil
}

func (s *SQLiteStore) SizeOf(ctx context.Context, ns cache.Namespace) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(LENGTH(payload)) FROM cache_entries WHERE namespace = ?`, string(ns),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("size of namespace %s: %w", ns, err)
	}
	return total.Int64, nil
}
