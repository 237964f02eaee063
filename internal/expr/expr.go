// Package expr defines the narrow expression contracts through which the
// surrounding evaluation engine drives the codec. The engine's real
// expression tree is out of scope here; these interfaces are the seam.
package expr

import (
	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/schema"
)

// Expr is one evaluable expression. Implementations report their output
// type and nullability up front so the engine can type-check a plan before
// any row is processed.
type Expr interface {
	// DataType is the type of the value Eval produces.
	DataType() cty.Type
	// Nullable reports whether Eval may produce a null value.
	Nullable() bool
	// Foldable reports whether the expression is a compile-time constant.
	Foldable() bool
	// Eval produces the expression's value for one input row.
	Eval(row schema.Row) (cty.Value, error)
}

// SchemaBound is implemented by expressions bound to a fixed row schema.
type SchemaBound interface {
	BoundSchema() schema.Schema
}

// TimeZoneAware is implemented by expressions whose behavior depends on a
// resolved time zone.
type TimeZoneAware interface {
	TimeZone() string
}

// TypeChecked is implemented by expressions that constrain their input
// type. CheckInputType runs once at bind time; a non-nil error invalidates
// the whole expression, not a single row.
type TypeChecked interface {
	CheckInputType() error
}

// CodeGenerable is implemented by expressions offering a specialized
// evaluation path. The returned closure must behave identically to Eval;
// it exists so the engine can prebind per-instance state out of the hot
// loop. Implementations are free not to offer it.
type CodeGenerable interface {
	Specialize() func(row schema.Row) (cty.Value, error)
}

// Literal is a foldable constant expression.
type Literal struct {
	Val cty.Value
}

// Lit wraps a value as a Literal.
func Lit(v cty.Value) Literal { return Literal{Val: v} }

func (l Literal) DataType() cty.Type { return l.Val.Type() }

func (l Literal) Nullable() bool { return l.Val.IsNull() }

func (l Literal) Foldable() bool { return true }

func (l Literal) Eval(schema.Row) (cty.Value, error) { return l.Val, nil }
