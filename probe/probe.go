package probe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Func is a single health check. A nil error means the dependency is usable.
type Func func(ctx context.Context) error

// PingFunc is the shape of a caller supplied check passed to NewPingProbe.
type PingFunc = Func

// DBPinger is satisfied by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// RowQuerier is satisfied by *sql.DB and *sql.Tx.
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrNotConfigured is wrapped by checks built without a client or function.
var ErrNotConfigured = errors.New("not configured")

// Failure names the check that failed. errors.Is and errors.As see through
// it to the underlying cause.
type Failure struct {
	Check string
	Err   error
}

func (f *Failure) Error() string {
	return f.Check + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

const (
	tableExistsQuery     = "SELECT to_regclass($1) IS NOT NULL"
	extensionExistsQuery = "SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = $1)"
)

// NewPingProbe names fn so its failures read "<name>: <cause>".
func NewPingProbe(name string, fn PingFunc) Func {
	return guarded(name, fn != nil, func(ctx context.Context) error {
		return fn(ctx)
	})
}

// NewDBPingProbe checks that db answers a ping.
func NewDBPingProbe(name string, db DBPinger) Func {
	return guarded(name, db != nil, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
}

// NewTableProbe checks that every table resolves inside schema. It stops at
// the first missing table.
func NewTableProbe(name string, db RowQuerier, schema string, tables ...string) Func {
	return guarded(name, db != nil, func(ctx context.Context) error {
		for _, table := range tables {
			qualified := pgx.Identifier{schema, table}.Sanitize()
			found, err := catalogHas(ctx, db, tableExistsQuery, qualified)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("table %s is missing", qualified)
			}
		}
		return nil
	})
}

// NewExtensionProbe checks that extension is installed in the connected
// database.
func NewExtensionProbe(name string, db RowQuerier, extension string) Func {
	return guarded(name, db != nil, func(ctx context.Context) error {
		found, err := catalogHas(ctx, db, extensionExistsQuery, extension)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("extension %s is not installed", extension)
		}
		return nil
	})
}

func catalogHas(ctx context.Context, db RowQuerier, query, arg string) (bool, error) {
	var found bool
	err := db.QueryRowContext(ctx, query, arg).Scan(&found)
	return found, err
}

// guarded wraps run so a missing dependency, a nil context and any failure
// are all reported under name.
func guarded(name string, configured bool, run Func) Func {
	return func(ctx context.Context) error {
		if !configured {
			return &Failure{Check: name, Err: ErrNotConfigured}
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if err := run(ctx); err != nil {
			return &Failure{Check: name, Err: err}
		}
		return nil
	}
}
