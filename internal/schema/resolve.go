package schema

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rowtype"
)

// ErrCorruptRecordColumn is wrapped by Resolve when the configured
// corrupt-record column is missing from the declared schema or is not a text
// column. It is a bind-time configuration error, never a per-row one.
var ErrCorruptRecordColumn = errors.New("invalid corrupt record column")

// Resolved holds the schema variants derived once when a codec binds.
//
//   - Nullable: the declared schema with every field forced nullable.
//   - Actual: Nullable minus the corrupt-record column; this is the shape the
//     raw parser is asked to populate, since the corrupt column is never
//     present in the source text.
//   - Required: the downstream projection (column pruning), forced nullable.
//     It retains the corrupt-record column because that column is part of
//     the row the codec emits.
//   - RequiredActual: Required stripped of the corrupt column, derived
//     identically to Actual. This is the pruned parser target.
//
// All variants are fresh copies; Resolved is immutable after construction.
type Resolved struct {
	Declared       Schema
	Nullable       Schema
	Actual         Schema
	Required       Schema
	RequiredActual Schema
	CorruptCol     string // empty when no corrupt-record column is configured
}

// Resolve derives the nullable, actual, and required schemas from a declared
// schema and an optional corrupt-record column name. required may be nil, in
// which case the declared schema is used. Resolve is pure: resolving the same
// inputs twice yields identical results.
func Resolve(declared, required Schema, corruptCol string) (Resolved, error) {
	if corruptCol != "" {
		i := declared.IndexOf(corruptCol)
		if i < 0 {
			return Resolved{}, fmt.Errorf("schema: %w: field %q not found in schema %q",
				ErrCorruptRecordColumn, corruptCol, declared.String())
		}
		if !declared[i].Type.Equals(cty.String) {
			return Resolved{}, fmt.Errorf("schema: %w: field %q must be TEXT, is %s",
				ErrCorruptRecordColumn, corruptCol, rowtype.TypeName(declared[i].Type))
		}
	}

	nullable := declared.AsNullable()
	if required == nil {
		required = declared
	}
	reqNullable := required.AsNullable()
	return Resolved{
		Declared:       declared,
		Nullable:       nullable,
		Actual:         nullable.Without(corruptCol),
		Required:       reqNullable,
		RequiredActual: reqNullable.Without(corruptCol),
		CorruptCol:     corruptCol,
	}, nil
}
