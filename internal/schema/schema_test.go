package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rowtype"
)

func testSchema() Schema {
	return Schema{
		{Name: "id", Type: cty.Number, Nullable: false},
		{Name: "name", Type: cty.String, Nullable: true},
		{Name: "at", Type: rowtype.Timestamp, Nullable: true},
	}
}

func TestSchema_IndexOf(t *testing.T) {
	t.Parallel()

	s := testSchema()
	if got := s.IndexOf("name"); got != 1 {
		t.Fatalf("IndexOf(name) = %d, want 1", got)
	}
	if got := s.IndexOf("missing"); got != -1 {
		t.Fatalf("IndexOf(missing) = %d, want -1", got)
	}
}

func TestSchema_AsNullable_DoesNotMutate(t *testing.T) {
	t.Parallel()

	s := testSchema()
	n := s.AsNullable()

	for i, f := range n {
		if !f.Nullable {
			t.Errorf("field %d not nullable after AsNullable", i)
		}
	}
	if s[0].Nullable {
		t.Fatalf("AsNullable mutated the receiver")
	}
}

func TestSchema_Without(t *testing.T) {
	t.Parallel()

	s := testSchema()
	got := s.Without("name").Names()
	want := []string{"id", "at"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Without(name) names = %v, want %v", got, want)
	}

	if got := s.Without("missing"); len(got) != len(s) {
		t.Fatalf("Without(missing) dropped a field: %v", got.Names())
	}
}

func TestSchema_NullRow(t *testing.T) {
	t.Parallel()

	row := testSchema().NullRow()
	if len(row) != 3 {
		t.Fatalf("NullRow length = %d, want 3", len(row))
	}
	for i, v := range row {
		if !v.IsNull() {
			t.Errorf("cell %d not null", i)
		}
	}
	if !row[0].Type().Equals(cty.Number) {
		t.Fatalf("cell 0 type = %s, want number", row[0].Type().FriendlyName())
	}
}

func TestSchema_String(t *testing.T) {
	t.Parallel()

	s := Schema{
		{Name: "a", Type: cty.Number},
		{Name: "b", Type: cty.String},
	}
	if got, want := s.String(), "a NUMERIC, b TEXT"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParseDDL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		desc    string
		want    []string // expected field names; nil means error
		wantErr bool
	}{
		{name: "simple", desc: "id BIGINT, name TEXT", want: []string{"id", "name"}},
		{name: "multi word type", desc: "x DOUBLE PRECISION", want: []string{"x"}},
		{name: "temporal", desc: "d DATE, at TIMESTAMPTZ", want: []string{"d", "at"}},
		{name: "duplicate field", desc: "a INT, a TEXT", wantErr: true},
		{name: "unknown type", desc: "a BLOB", wantErr: true},
		{name: "missing type", desc: "justaname", wantErr: true},
		{name: "empty", desc: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDDL(tc.desc)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseDDL(%q) succeeded, want error", tc.desc)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDDL(%q): %v", tc.desc, err)
			}
			if !reflect.DeepEqual(got.Names(), tc.want) {
				t.Fatalf("ParseDDL(%q) names = %v, want %v", tc.desc, got.Names(), tc.want)
			}
			for _, f := range got {
				if !f.Nullable {
					t.Errorf("field %q not nullable", f.Name)
				}
			}
		})
	}
}

func TestParseDDL_RoundTripsString(t *testing.T) {
	t.Parallel()

	const desc = "id NUMERIC, name TEXT, ok BOOLEAN, d DATE, at TIMESTAMPTZ"
	s, err := ParseDDL(desc)
	if err != nil {
		t.Fatalf("ParseDDL: %v", err)
	}
	if got := s.String(); got != desc {
		t.Fatalf("String() = %q, want %q", got, desc)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	declared := Schema{
		{Name: "id", Type: cty.Number, Nullable: false},
		{Name: "name", Type: cty.String, Nullable: true},
		{Name: "_corrupt", Type: cty.String, Nullable: true},
	}

	res, err := Resolve(declared, nil, "_corrupt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got, want := res.Actual.Names(), []string{"id", "name"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Actual = %v, want %v", got, want)
	}
	if got, want := res.Required.Names(), []string{"id", "name", "_corrupt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Required = %v, want %v", got, want)
	}
	if got, want := res.RequiredActual.Names(), []string{"id", "name"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("RequiredActual = %v, want %v", got, want)
	}
	for _, f := range res.Required {
		if !f.Nullable {
			t.Errorf("required field %q not nullable", f.Name)
		}
	}
	// The declared schema is untouched.
	if declared[0].Nullable {
		t.Fatalf("Resolve mutated declared schema")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	declared := testSchema()
	a, err := Resolve(declared, nil, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, err := Resolve(declared, nil, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(a.Actual.Names(), b.Actual.Names()) ||
		!reflect.DeepEqual(a.Required.Names(), b.Required.Names()) {
		t.Fatalf("Resolve not deterministic: %v vs %v", a, b)
	}
}

func TestResolve_RequiredProjection(t *testing.T) {
	t.Parallel()

	declared := testSchema()
	required := Schema{declared[2], declared[0]} // pruned and reordered

	res, err := Resolve(declared, required, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got, want := res.Required.Names(), []string{"at", "id"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Required = %v, want %v", got, want)
	}
	// Actual keeps the full declared shape so positions stay stable.
	if got, want := res.Actual.Names(), []string{"id", "name", "at"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Actual = %v, want %v", got, want)
	}
}

func TestResolve_CorruptColumnErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		declared Schema
		corrupt  string
	}{
		{
			name:     "missing from schema",
			declared: Schema{{Name: "id", Type: cty.Number}},
			corrupt:  "_corrupt",
		},
		{
			name: "not a text column",
			declared: Schema{
				{Name: "id", Type: cty.Number},
				{Name: "_corrupt", Type: cty.Number},
			},
			corrupt: "_corrupt",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.declared, nil, tc.corrupt)
			if !errors.Is(err, ErrCorruptRecordColumn) {
				t.Fatalf("err = %v, want ErrCorruptRecordColumn", err)
			}
		})
	}
}
