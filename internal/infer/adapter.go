package infer

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/expr"
	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

// Input-contract errors, reported as distinct kinds so callers can give
// precise diagnostics. Both concern the sample expression, not the sample's
// content.
var (
	// ErrNonFoldableInput reports a sample that is not a compile-time
	// constant.
	ErrNonFoldableInput = errors.New("schema inference sample must be a constant")

	// ErrNullSample reports a sample that is constant but null.
	ErrNullSample = errors.New("schema inference sample must not be null")
)

// SchemaOfExpr is the expression-engine hook for schema inference: a
// foldable text expression producing the schema description of its sample
// argument. The heavy widening is delegated to the Evaluator, which is
// constructed lazily on first evaluation and reused; this type owns only
// the input contract and error classification.
type SchemaOfExpr struct {
	sample expr.Expr
	raw    map[string]string
	eval   *Evaluator // lazy, built on first Eval
}

var (
	_ expr.Expr        = (*SchemaOfExpr)(nil)
	_ expr.TypeChecked = (*SchemaOfExpr)(nil)
)

// NewSchemaOfExpr wraps a sample expression. Options are threaded through
// to the evaluator unchanged.
func NewSchemaOfExpr(sample expr.Expr, raw map[string]string) *SchemaOfExpr {
	return &SchemaOfExpr{sample: sample, raw: raw}
}

func (e *SchemaOfExpr) DataType() cty.Type { return cty.String }

func (e *SchemaOfExpr) Nullable() bool { return false }

func (e *SchemaOfExpr) Foldable() bool { return true }

// CheckInputType enforces the constant, non-null, text contract at bind
// time.
func (e *SchemaOfExpr) CheckInputType() error {
	_, err := foldSample(e.sample)
	return err
}

// Eval infers the schema description for the folded sample.
func (e *SchemaOfExpr) Eval(schema.Row) (cty.Value, error) {
	text, err := foldSample(e.sample)
	if err != nil {
		return cty.NilVal, err
	}
	if e.eval == nil {
		ev, err := NewEvaluator(e.raw)
		if err != nil {
			return cty.NilVal, err
		}
		e.eval = ev
	}
	desc, err := e.eval.Evaluate(text)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.StringVal(desc), nil
}

// InferSchema is the plain-function form of the adapter, used outside the
// expression engine.
func InferSchema(sample expr.Expr, raw map[string]string) (string, error) {
	v, err := NewSchemaOfExpr(sample, raw).Eval(nil)
	if err != nil {
		return "", err
	}
	return v.AsString(), nil
}

// foldSample folds the sample expression and validates the input contract.
func foldSample(sample expr.Expr) (string, error) {
	if !sample.Foldable() {
		return "", fmt.Errorf("infer: %w", ErrNonFoldableInput)
	}
	v, err := sample.Eval(nil)
	if err != nil {
		return "", fmt.Errorf("infer: fold sample: %w", err)
	}
	if v.IsNull() {
		return "", fmt.Errorf("infer: %w", ErrNullSample)
	}
	if !v.Type().Equals(cty.String) {
		return "", fmt.Errorf("infer: %w: sample must be TEXT, got %s",
			ErrNonFoldableInput, rowtype.TypeName(v.Type()))
	}
	return v.AsString(), nil
}
