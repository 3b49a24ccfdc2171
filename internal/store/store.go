package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a database from version-1 to version. Databases
// created from schema.sql still run every migration; each one must be
// idempotent.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations is the ordered upgrade path. The schema version is the
// version of the last entry.
var migrations = []migration{
	{
		version: 1,
		name:    "sync run status index",
		stmt: `
			CREATE INDEX IF NOT EXISTS idx_sync_runs_status
			ON sync_runs(asset, status, seq)
		`,
	},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// pragma is a connection setting and the value SQLite reports once it is
// applied.
type pragma struct {
	name  string
	set   string
	reads string
}

var pragmas = []pragma{
	{name: "journal_mode", set: "WAL", reads: "wal"},
	{name: "synchronous", set: "NORMAL", reads: "1"},
	{name: "busy_timeout", set: "5000", reads: "5000"},
	{name: "foreign_keys", set: "ON", reads: "1"},
}

// Store provides durable storage for scene snapshots and the sync-run
// journal. Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures Open.
type Option func(*Store)

// WithLogger sets the logger used to report migrations.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	ctx := context.Background()
	if err := s.applyPragmas(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := s.applySchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) applyPragmas(ctx context.Context) error {
	for _, p := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", p.name, p.set)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}

// applySchema creates missing tables, then runs the migrations newer than
// the database's user_version.
func (s *Store) applySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	from := version
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		version = m.version
	}

	// PRAGMA does not accept bound parameters.
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	if version != from {
		s.logger.Info("store migrated",
			"from_version", from,
			"to_version", version,
		)
	}
	return nil
}

// verifyPragmas checks every pragma reads back its expected value.
// Used for testing.
func (s *Store) verifyPragmas() error {
	for _, p := range pragmas {
		var value string
		if err := s.db.QueryRow("PRAGMA " + p.name).Scan(&value); err != nil {
			return fmt.Errorf("failed to query %s: %w", p.name, err)
		}
		if value != p.reads {
			return fmt.Errorf("%s = %q, expected %q", p.name, value, p.reads)
		}
	}
	return nil
}
