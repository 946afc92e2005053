package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	driverName = "pgx"

	// Dialect names the SQL dialect every query is written for.
	Dialect = "postgresql"

	// DefaultSchema holds the Neurosynth tables.
	DefaultSchema = "ns"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	schema          string
	logger          *slog.Logger
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration
}

func defaultOptions() *options {
	return &options{
		schema: DefaultSchema,
		logger: slog.Default(),
	}
}

// WithSchema selects the schema that contains the Neurosynth tables.
func WithSchema(schema string) Option {
	return func(o *options) {
		if s := strings.TrimSpace(schema); s != "" {
			o.schema = s
		}
	}
}

// WithLogger sets the logger used for query diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPool tunes the database/sql connection pool. Zero values keep the
// driver defaults.
func WithPool(maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) Option {
	return func(o *options) {
		o.maxOpenConns = maxOpen
		o.maxIdleConns = maxIdle
		o.connMaxLifetime = maxLifetime
		o.connMaxIdleTime = maxIdleTime
	}
}

// Store is safe for concurrent use; it shares one connection pool and every
// operation checks out its own connection.
type Store struct {
	db      *sql.DB
	log     *slog.Logger
	schema  string
	queries queries
}

// Open creates the connection pool for dsn. No connection is made until the
// first query or Ping.
func Open(dsn string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: dsn is required")
	}

	settings := applyOptions(opts)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}

	if settings.maxOpenConns > 0 {
		db.SetMaxOpenConns(settings.maxOpenConns)
	}
	if settings.maxIdleConns > 0 {
		db.SetMaxIdleConns(settings.maxIdleConns)
	}
	if settings.connMaxLifetime > 0 {
		db.SetConnMaxLifetime(settings.connMaxLifetime)
	}
	if settings.connMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(settings.connMaxIdleTime)
	}

	return newStore(db, settings), nil
}

// New wraps an existing pool. Pool options are ignored. It panics when db
// is nil; use Open to get an error instead.
func New(db *sql.DB, opts ...Option) *Store {
	if db == nil {
		panic("store: db cannot be nil")
	}
	return newStore(db, applyOptions(opts))
}

func applyOptions(opts []Option) *options {
	settings := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}
	return settings
}

func newStore(db *sql.DB, settings *options) *Store {
	return &Store{
		db:      db,
		log:     settings.logger,
		schema:  settings.schema,
		queries: buildQueries(settings.schema),
	}
}

// DB exposes the underlying pool, mainly for probes.
func (s *Store) DB() *sql.DB { return s.db }

// Schema returns the schema the queries target.
func (s *Store) Schema() string { return s.schema }

// PingContext verifies a connection can be established.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// readTx runs fn inside a read-only transaction with search_path pinned to
// the data schema. The transaction is always rolled back since nothing is
// written; this also keeps a failed statement from turning into a commit error.
func (s *Store) readTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return queryError("begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.WarnContext(ctx, "rollback failed", "error", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, s.queries.searchPath); err != nil {
		return queryError("set search_path", err)
	}
	return fn(tx)
}

// savepoint isolates fn so a failing statement does not abort the rest of
// the transaction.
func savepoint(ctx context.Context, tx *sql.Tx, name string, fn func() error) error {
	ident := pgx.Identifier{name}.Sanitize()
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+ident); err != nil {
		return queryError("savepoint "+name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+ident); rbErr != nil {
			return errors.Join(err, queryError("rollback to savepoint "+name, rbErr))
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+ident); err != nil {
		return queryError("release savepoint "+name, err)
	}
	return nil
}
