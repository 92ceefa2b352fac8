package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo driver, selectable via Config.Driver
	_ "modernc.org/sqlite"          // pure-Go driver, the default

	"mercator-hq/saturn/pkg/governance"
)

// Config contains configuration for the SQLite store.
type Config struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Driver selects the compiled-in SQLite driver: "sqlite" (modernc,
	// pure Go) or "sqlite3" (mattn, cgo). Default: "sqlite"
	Driver string `yaml:"driver"`

	// WALMode enables write-ahead logging for better read concurrency.
	// Unset means enabled; an explicit false disables it. Default: true
	WALMode *bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	wal := true
	return &Config{
		Path:        "data/saturn.db",
		Driver:      "sqlite",
		WALMode:     &wal,
		BusyTimeout: 5 * time.Second,
	}
}

// walEnabled resolves the WALMode tri-state: unset means enabled.
func (c *Config) walEnabled() bool {
	return c.WALMode == nil || *c.WALMode
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("storage path cannot be empty")
	}
	if c.Driver != "sqlite" && c.Driver != "sqlite3" {
		return fmt.Errorf("unknown sqlite driver %q (want \"sqlite\" or \"sqlite3\")", c.Driver)
	}
	return nil
}

// Store is the SQLite-backed persistence layer for the governance engine.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Open opens (or creates) the governance database and initializes the
// schema.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite"
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, governance.NewStorageError("open", err)
	}

	// SQLite supports a single writer; a one-connection pool keeps the
	// write path serialized without driver-specific locking behavior.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, config: config, logger: logger}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.walEnabled(),
	)

	return s, nil
}

// initialize sets pragmas and creates the schema.
func (s *Store) initialize() error {
	if s.config.walEnabled() {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return governance.NewStorageError("enable_wal", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return governance.NewStorageError("set_busy_timeout", err)
	}
	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return governance.NewStorageError("enable_foreign_keys", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return governance.NewStorageError("create_schema", err)
	}
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)",
		SchemaVersion, time.Now().UnixNano(),
	)
	if err != nil {
		return governance.NewStorageError("record_schema_version", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return governance.NewStorageError("ping", err)
	}
	return nil
}

// Tx is a transactional view of the store. All writes of a governance run
// go through one Tx; reads on a Tx see the transaction's snapshot.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a single transaction. If fn returns an error the
// transaction rolls back and the error is returned unchanged; otherwise the
// transaction commits. Foreign keys are enforced per connection; the pool is
// capped at one connection, so the pragma set at initialization covers every
// transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return governance.NewStorageError("begin", err)
	}

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return governance.NewStorageError("commit", err)
	}
	return nil
}

// timeFromNanos converts a stored Unix-nanosecond value back to time.Time.
func timeFromNanos(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
