package codec

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/expr"
	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

// DecodeExpr is the expression-engine hook decoding text into a structured row. It
// wraps a bound Decoder and reports the output type, nullability, and input
// constraint the surrounding engine needs for planning.
type DecodeExpr struct {
	child    expr.Expr
	dec      *Decoder
	declared schema.Schema
	tz       string
}

var (
	_ expr.Expr          = (*DecodeExpr)(nil)
	_ expr.SchemaBound   = (*DecodeExpr)(nil)
	_ expr.TimeZoneAware = (*DecodeExpr)(nil)
	_ expr.TypeChecked   = (*DecodeExpr)(nil)
)

// NewDecodeExpr binds a decode expression over a text-producing child.
// All decoder bind-time validation applies here.
func NewDecodeExpr(child expr.Expr, declared schema.Schema, raw map[string]string, engineTZ, engineCorrupt string) (*DecodeExpr, error) {
	dec, err := NewDecoder(declared, nil, raw, engineTZ, engineCorrupt)
	if err != nil {
		return nil, err
	}
	return &DecodeExpr{child: child, dec: dec, declared: declared, tz: dec.opt.TimeZone}, nil
}

// DataType is the struct type of the decoded row.
func (e *DecodeExpr) DataType() cty.Type { return e.dec.Schema().ObjectType() }

// Nullable is true: a null input text yields a null row.
func (e *DecodeExpr) Nullable() bool { return true }

func (e *DecodeExpr) Foldable() bool { return e.child.Foldable() }

func (e *DecodeExpr) BoundSchema() schema.Schema { return e.declared }

func (e *DecodeExpr) TimeZone() string { return e.tz }

// CheckInputType enforces the text-in constraint once at bind time.
func (e *DecodeExpr) CheckInputType() error {
	if t := e.child.DataType(); !t.Equals(cty.String) {
		return fmt.Errorf("codec: decode input must be TEXT, got %s", rowtype.TypeName(t))
	}
	return nil
}

// Eval decodes the child's text value into a struct value of DataType.
func (e *DecodeExpr) Eval(row schema.Row) (cty.Value, error) {
	v, err := e.child.Eval(row)
	if err != nil {
		return cty.NilVal, err
	}
	if v.IsNull() {
		return cty.NullVal(e.DataType()), nil
	}
	out, err := e.dec.Decode(v.AsString())
	if err != nil {
		return cty.NilVal, err
	}
	return rowObject(e.dec.Schema(), out), nil
}

// EncodeExpr is the expression-engine hook encoding a structured row to text. The
// child must produce a struct of an encodable type; this is checked once at
// bind time.
type EncodeExpr struct {
	child expr.Expr
	enc   *Encoder
	tz    string
}

var (
	_ expr.Expr          = (*EncodeExpr)(nil)
	_ expr.SchemaBound   = (*EncodeExpr)(nil)
	_ expr.TimeZoneAware = (*EncodeExpr)(nil)
	_ expr.TypeChecked   = (*EncodeExpr)(nil)
	_ expr.CodeGenerable = (*EncodeExpr)(nil)
)

// NewEncodeExpr binds an encode expression over a struct-producing child.
func NewEncodeExpr(child expr.Expr, sch schema.Schema, raw map[string]string, engineTZ string) (*EncodeExpr, error) {
	enc, err := NewEncoder(sch, raw, engineTZ)
	if err != nil {
		return nil, err
	}
	return &EncodeExpr{child: child, enc: enc, tz: enc.opt.TimeZone}, nil
}

// DataType is TEXT.
func (e *EncodeExpr) DataType() cty.Type { return cty.String }

// Nullable is true: a null input row yields a null text value.
func (e *EncodeExpr) Nullable() bool { return true }

func (e *EncodeExpr) Foldable() bool { return e.child.Foldable() }

func (e *EncodeExpr) BoundSchema() schema.Schema { return e.enc.Schema() }

func (e *EncodeExpr) TimeZone() string { return e.tz }

// CheckInputType enforces the struct-in constraint: the child's type must
// be an object whose attributes cover the bound schema with encodable
// types. Encodability itself was already proven during binding; here the
// shape is checked.
func (e *EncodeExpr) CheckInputType() error {
	t := e.child.DataType()
	if !t.IsObjectType() {
		return fmt.Errorf("codec: encode input must be a struct, got %s", rowtype.TypeName(t))
	}
	for _, f := range e.enc.Schema() {
		if !t.HasAttribute(f.Name) {
			return fmt.Errorf("codec: encode input struct is missing field %q", f.Name)
		}
	}
	return nil
}

// Eval encodes the child's struct value into one text record.
func (e *EncodeExpr) Eval(row schema.Row) (cty.Value, error) {
	v, err := e.child.Eval(row)
	if err != nil {
		return cty.NilVal, err
	}
	if v.IsNull() {
		return cty.NullVal(cty.String), nil
	}
	text, err := e.enc.Encode(objectRow(e.enc.Schema(), v))
	if err != nil {
		return cty.NilVal, err
	}
	return cty.StringVal(text), nil
}

// Specialize returns a prebound evaluation closure. It is the
// behavior-identical stand-in for a generated fast path: the engine may
// call it instead of Eval inside a hot loop.
func (e *EncodeExpr) Specialize() func(row schema.Row) (cty.Value, error) {
	child, enc, sch := e.child, e.enc, e.enc.Schema()
	return func(row schema.Row) (cty.Value, error) {
		v, err := child.Eval(row)
		if err != nil {
			return cty.NilVal, err
		}
		if v.IsNull() {
			return cty.NullVal(cty.String), nil
		}
		text, err := enc.Encode(objectRow(sch, v))
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(text), nil
	}
}

// rowObject builds the engine-facing struct value from a positional row.
func rowObject(sch schema.Schema, row schema.Row) cty.Value {
	attrs := make(map[string]cty.Value, len(sch))
	for i, f := range sch {
		attrs[f.Name] = row[i]
	}
	return cty.ObjectVal(attrs)
}

// objectRow projects a struct value onto the schema's positional row form,
// preserving field order.
func objectRow(sch schema.Schema, v cty.Value) schema.Row {
	row := make(schema.Row, len(sch))
	for i, f := range sch {
		row[i] = v.GetAttr(f.Name)
	}
	return row
}
