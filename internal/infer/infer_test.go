package infer

import (
	"errors"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/expr"
	"csvcodec/internal/schema"
)

func evaluate(t *testing.T, sample string, raw map[string]string) string {
	t.Helper()
	ev, err := NewEvaluator(raw)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	desc, err := ev.Evaluate(sample)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", sample, err)
	}
	return desc
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sample string
		raw    map[string]string
		want   string
	}{
		{
			name:   "single record",
			sample: "1,abc",
			want:   "col_0 BIGINT, col_1 TEXT",
		},
		{
			name:   "widening to text",
			sample: "1,x\n2,y\nnotanint,z\n",
			want:   "col_0 TEXT, col_1 TEXT",
		},
		{
			name:   "integers stay integer across records",
			sample: "1\n2\n3\n",
			want:   "col_0 BIGINT",
		},
		{
			name:   "floats",
			sample: "0.5\n1.25\n",
			want:   "col_0 DOUBLE PRECISION",
		},
		{
			name:   "int widens to float",
			sample: "1\n2.5\n",
			want:   "col_0 DOUBLE PRECISION",
		},
		{
			name:   "booleans",
			sample: "true\nno\nYES\n",
			want:   "col_0 BOOLEAN",
		},
		{
			name:   "dates",
			sample: "2024-01-01\n2024-03-15\n",
			want:   "col_0 DATE",
		},
		{
			name:   "timestamps",
			sample: "2024-01-01T10:00:00Z\n2024-03-15T23:59:59Z\n",
			want:   "col_0 TIMESTAMPTZ",
		},
		{
			name:   "empty values do not narrow",
			sample: "1,\n2,\n",
			want:   "col_0 BIGINT, col_1 TEXT",
		},
		{
			name:   "header names columns",
			sample: "id,Name\n1,x\n2,y\n",
			raw:    map[string]string{"header": "true"},
			want:   "id BIGINT, name TEXT",
		},
		{
			name:   "accented header normalized",
			sample: "Počet Vozidel,Č. řádku\n1,2\n",
			raw:    map[string]string{"header": "true"},
			want:   "pocet_vozidel BIGINT, c_radku BIGINT",
		},
		{
			name:   "custom delimiter",
			sample: "1;x\n2;y\n",
			raw:    map[string]string{"delimiter": ";"},
			want:   "col_0 BIGINT, col_1 TEXT",
		},
		{
			name:   "misaligned rows skipped",
			sample: "1,x\n2\n3,y\n",
			want:   "col_0 BIGINT, col_1 TEXT",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := evaluate(t, tc.sample, tc.raw); got != tc.want {
				t.Fatalf("Evaluate(%q) = %q, want %q", tc.sample, got, tc.want)
			}
		})
	}
}

func TestEvaluate_EmptySample(t *testing.T) {
	t.Parallel()

	ev, err := NewEvaluator(nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	if _, err := ev.Evaluate(""); err == nil {
		t.Fatalf("expected error for empty sample")
	}
}

func TestEvaluate_Memoized(t *testing.T) {
	t.Parallel()

	ev, err := NewEvaluator(nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	a, err := ev.Evaluate("1,x")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	b, err := ev.Evaluate("1,x")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if a != b {
		t.Fatalf("memoized results differ: %q vs %q", a, b)
	}
}

func TestSchemaOfExpr(t *testing.T) {
	t.Parallel()

	e := NewSchemaOfExpr(expr.Lit(cty.StringVal("1,abc")), nil)

	if !e.Foldable() {
		t.Fatalf("schema inference must be foldable")
	}
	if !e.DataType().Equals(cty.String) {
		t.Fatalf("DataType = %s, want TEXT", e.DataType().FriendlyName())
	}
	if err := e.CheckInputType(); err != nil {
		t.Fatalf("CheckInputType: %v", err)
	}

	v, err := e.Eval(nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got, want := v.AsString(), "col_0 BIGINT, col_1 TEXT"; got != want {
		t.Fatalf("Eval = %q, want %q", got, want)
	}
}

func TestSchemaOfExpr_InputContract(t *testing.T) {
	t.Parallel()

	t.Run("non-foldable sample", func(t *testing.T) {
		e := NewSchemaOfExpr(nonFoldable{}, nil)
		if err := e.CheckInputType(); !errors.Is(err, ErrNonFoldableInput) {
			t.Fatalf("err = %v, want ErrNonFoldableInput", err)
		}
	})

	t.Run("null sample", func(t *testing.T) {
		e := NewSchemaOfExpr(expr.Lit(cty.NullVal(cty.String)), nil)
		if err := e.CheckInputType(); !errors.Is(err, ErrNullSample) {
			t.Fatalf("err = %v, want ErrNullSample", err)
		}
	})

	t.Run("non-text sample", func(t *testing.T) {
		e := NewSchemaOfExpr(expr.Lit(cty.NumberIntVal(1)), nil)
		if err := e.CheckInputType(); !errors.Is(err, ErrNonFoldableInput) {
			t.Fatalf("err = %v, want ErrNonFoldableInput", err)
		}
	})
}

func TestInferSchema(t *testing.T) {
	t.Parallel()

	desc, err := InferSchema(expr.Lit(cty.StringVal("2024-01-01,true")), nil)
	if err != nil {
		t.Fatalf("InferSchema: %v", err)
	}
	if want := "col_0 DATE, col_1 BOOLEAN"; desc != want {
		t.Fatalf("InferSchema = %q, want %q", desc, want)
	}
}

// nonFoldable is a sample expression that is not a compile-time constant.
type nonFoldable struct{}

func (nonFoldable) DataType() cty.Type { return cty.String }

func (nonFoldable) Nullable() bool { return false }

func (nonFoldable) Foldable() bool { return false }

func (nonFoldable) Eval(schema.Row) (cty.Value, error) {
	return cty.StringVal(""), nil
}
