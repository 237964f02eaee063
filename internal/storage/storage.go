// Package storage contains the storage-agnostic contracts used by the load
// tooling: a narrow Repository interface, a factory registry keyed by
// backend kind, and the conversion from typed row cells to driver values.
//
// Concrete backends (Postgres, SQLite, MSSQL) live in subpackages and
// register themselves in an init function; importing storage/all enables
// every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

// Repository abstracts a bulk-insert capable SQL backend.
type Repository interface {
	// CopyFrom inserts rows (aligned to columns order) using the backend's
	// most efficient bulk primitive and returns the inserted row count.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs an arbitrary statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the connection resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind    string   // registered backend kind: "postgres", "sqlite", "mssql"
	DSN     string   // backend connection string
	Table   string   // target table name
	Columns []string // ordered target columns
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var factories = map[string]Factory{}

// Register installs a backend factory. Called from backend init functions;
// duplicate registration panics since it is a programming error.
func Register(kind string, f Factory) {
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("storage: duplicate backend %q", kind))
	}
	factories[kind] = f
}

// New opens a Repository for the configured kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	f, ok := factories[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q (registered: %v)", cfg.Kind, kinds())
	}
	return f(ctx, cfg)
}

func kinds() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DriverValues converts one decoded row into database/sql-friendly values:
// nulls become nil, numbers become int64 when integral and float64
// otherwise, temporal cells become time.Time.
func DriverValues(sch schema.Schema, row schema.Row) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = driverValue(sch[i].Type, v)
	}
	return out
}

func driverValue(t cty.Type, v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	switch {
	case t.Equals(cty.String):
		return v.AsString()
	case t.Equals(cty.Number):
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == 0 { // exact integer
			return i
		}
		f, _ := bf.Float64()
		return f
	case t.Equals(cty.Bool):
		return v.True()
	case t.Equals(rowtype.Date), t.Equals(rowtype.Timestamp):
		return rowtype.TimeFromVal(v)
	default:
		// Containers and user-defined values are stored in their text form.
		return v.GoString()
	}
}
