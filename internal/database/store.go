// Package database implements the movie catalog store over Postgres or SQLite.
//
// Both backends share one sqlx handle and build their SQL with go-sqlbuilder
// in the matching flavor. Every resolve is a single
// INSERT ... ON CONFLICT DO NOTHING against a unique natural key, followed by
// a lookup when the row already existed.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/movieloader/internal/config"
	"github.com/JonMunkholm/movieloader/internal/core"
)

// Backend names a supported database engine.
type Backend string

const (
	Postgres Backend = "postgres"
	SQLite   Backend = "sqlite"
)

// sqlitePragmas are applied to every SQLite connection. LIKE is made
// case-sensitive to match Postgres.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=case_sensitive_like(1)&_pragma=busy_timeout(5000)"

// ErrUnsupportedURL is returned when DATABASE_URL names no known backend.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Store is the catalog store. One instance is opened at startup and closed
// at shutdown.
type Store struct {
	db      *sqlx.DB
	pool    *pgxpool.Pool // nil for SQLite
	flavor  sqlbuilder.Flavor
	backend Backend
}

var _ core.Store = (*Store)(nil)

// Open connects to the database named by cfg.URL and creates missing tables.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	var (
		s   *Store
		err error
	)

	switch {
	case strings.HasPrefix(cfg.URL, "postgres://"), strings.HasPrefix(cfg.URL, "postgresql://"):
		s, err = openPostgres(ctx, cfg)
	case strings.HasPrefix(cfg.URL, "sqlite:"):
		s, err = openSQLite(cfg.URL)
	default:
		return nil, fmt.Errorf("%w: expected postgres:// or sqlite:", ErrUnsupportedURL)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{
		db:      sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
		pool:    pool,
		flavor:  sqlbuilder.PostgreSQL,
		backend: Postgres,
	}, nil
}

func openSQLite(url string) (*Store, error) {
	path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "sqlite:")
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite url has no path", ErrUnsupportedURL)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	db, err := sqlx.Open("sqlite", path+sep+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	return &Store{
		db:      db,
		flavor:  sqlbuilder.SQLite,
		backend: SQLite,
	}, nil
}

// Backend reports which engine the store is connected to.
func (s *Store) Backend() Backend {
	return s.backend
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	_ = s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
}

// WithinTx runs fn in one transaction, committing on success and rolling
// back on error or panic.
func (s *Store) WithinTx(ctx context.Context, fn func(tx core.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&catalogTx{tx: tx, flavor: s.flavor}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
