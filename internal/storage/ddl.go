package storage

import (
	"context"
	"fmt"
	"strings"

	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement for sch,
// mapping the generic SQL type names onto the given backend dialect.
func CreateTableSQL(kind, table string, sch schema.Schema) (string, error) {
	cols := make([]string, 0, len(sch))
	for _, f := range sch {
		typ, err := columnType(kind, rowtype.TypeName(f.Type))
		if err != nil {
			return "", fmt.Errorf("storage: column %q: %w", f.Name, err)
		}
		col := quoteCol(f.Name) + " " + typ
		if !f.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", ")), nil
}

// EnsureTable creates the target table for sch when it does not exist yet.
func EnsureTable(ctx context.Context, repo Repository, cfg Config, sch schema.Schema) error {
	ddl, err := CreateTableSQL(cfg.Kind, cfg.Table, sch)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("storage: ensure table %s: %w", cfg.Table, err)
	}
	return nil
}

// columnType translates a generic SQL type name to the backend dialect.
func columnType(kind, generic string) (string, error) {
	switch kind {
	case "postgres", "":
		return generic, nil
	case "sqlite":
		switch generic {
		case "BIGINT", "BOOLEAN":
			return "INTEGER", nil
		case "DOUBLE PRECISION", "NUMERIC":
			return "REAL", nil
		default:
			return "TEXT", nil
		}
	case "mssql":
		switch generic {
		case "TEXT":
			return "NVARCHAR(MAX)", nil
		case "BOOLEAN":
			return "BIT", nil
		case "DOUBLE PRECISION":
			return "FLOAT", nil
		case "TIMESTAMPTZ":
			return "DATETIMEOFFSET", nil
		default:
			return generic, nil
		}
	default:
		return "", fmt.Errorf("no DDL dialect for backend %q", kind)
	}
}

func quoteCol(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
