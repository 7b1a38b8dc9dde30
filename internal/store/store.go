package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Supported database/sql driver names.
const (
	DriverCGo  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// Store provides durable storage for events, documents and category tags.
//
// A Store has a single owner; it is not a process-wide singleton. Operations
// are safe for concurrent use, but the store assumes one logical writer.
type Store struct {
	path   string
	driver string
	log    zerolog.Logger

	mu sync.Mutex
	db *sql.DB
}

// Option configures a Store.
type Option func(*Store)

// WithDriver selects the database/sql driver (DriverCGo or DriverPure).
func WithDriver(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.driver = name
		}
	}
}

// WithLogger sets the logger used for migration and best-effort write diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New returns an unopened store for the database file at path.
// The file is created on first use.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		driver: DriverCGo,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open is a convenience that constructs a store and opens it immediately,
// surfacing schema errors at startup rather than on the first operation.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := New(path, opts...)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open creates or opens the database, applies pragmas and migrations.
//
// Idempotent: calling Open on an already open store is a no-op and does not
// re-run any schema statement.
func (s *Store) Open(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

// conn returns the open handle, opening the database on first use.
func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	switch s.driver {
	case DriverCGo, DriverPure:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", s.driver)
	}

	db, err := sql.Open(s.driver, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// Pragmas below are per-connection and must stick to this one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := s.applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s.log.Debug().Str("path", s.path).Str("driver", s.driver).Msg("store opened")
	s.db = db
	return db, nil
}

// Close closes the database connection. A later operation reopens it lazily.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying sql.DB for direct queries.
// Returns ErrNotInitialized if the store has not been opened yet.
func (s *Store) DB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func (s *Store) applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := s.runMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	db, err := s.conn(context.Background())
	if err != nil {
		return err
	}
	var value string
	if err := db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
