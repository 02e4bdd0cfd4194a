package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/migrations"
)

const (
	getKVValue = `SELECT value FROM kv WHERE key = ?;`

	setKVValue = `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	removeKVValue = `DELETE FROM kv WHERE key = ?;`

	// Size of everything except the key being written; the key's own
	// previous value is replaced, so it does not count against the quota.
	sumKVSizeExcept = `SELECT COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0)
		FROM kv WHERE key != ?;`
)

// sqliteKV is the SQLite-backed implementation of [KV]. One row per key;
// values are stored as text. An optional byte quota makes writes fail
// with [ErrQuotaExceeded] once the table outgrows it, which is what lets
// the local backend exercise its eviction-and-retry path.
type sqliteKV struct {
	db     *sql.DB
	quota  int64
	logger *logger.Logger
}

// NewSQLiteKV opens (creating if necessary) the SQLite database at
// cfg.DBPath, runs pending schema migrations, and returns a [KV] bound
// to it.
func NewSQLiteKV(ctx context.Context, cfg config.Local, log *logger.Logger) (KV, error) {
	if err := createLocalDBFileIfNotExists(cfg.DBPath); err != nil {
		log.Err(err).Str("func", "NewSQLiteKV").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	conn, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		log.Err(err).Str("func", "NewSQLiteKV").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewSQLiteKV").Msg("error connecting database (ping)")
		return nil, err
	}

	if err = migrations.MigrateSQLite(conn); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Debug().Str("func", "NewSQLiteKV").Msg("connected to local database successfully")

	return &sqliteKV{db: conn, quota: cfg.QuotaBytes, logger: log}, nil
}

func (s *sqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getKVValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Err(err).Str("func", "sqliteKV.Get").Str("key", key).Msg("failed to read key")
		return "", false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return value, true, nil
}

func (s *sqliteKV) Set(ctx context.Context, key string, value string) error {
	if s.quota > 0 {
		var used int64
		if err := s.db.QueryRowContext(ctx, sumKVSizeExcept, key).Scan(&used); err != nil {
			s.logger.Err(err).Str("func", "sqliteKV.Set").Str("key", key).Msg("failed to compute store size")
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		if used+int64(len(key)+len(value)) > s.quota {
			return fmt.Errorf("%w: writing %q", ErrQuotaExceeded, key)
		}
	}

	if _, err := s.db.ExecContext(ctx, setKVValue, key, value); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull {
			return fmt.Errorf("%w: writing %q", ErrQuotaExceeded, key)
		}
		s.logger.Err(err).Str("func", "sqliteKV.Set").Str("key", key).Msg("failed to write key")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteKV) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, removeKVValue, key); err != nil {
		s.logger.Err(err).Str("func", "sqliteKV.Remove").Str("key", key).Msg("failed to remove key")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *sqliteKV) Close() error {
	return s.db.Close()
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		// if not found - create
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	// file already exists
	return nil
}
