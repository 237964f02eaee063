// Package schema defines the ordered field schema the CSV codec decodes
// into and encodes from, plus the bind-time resolution step that derives
// the schema variants the codec actually works with.
package schema

import (
	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rowtype"
)

// Field is one column of a schema: a name (unique within the schema), a cty
// type, and whether the column tolerates NULL.
type Field struct {
	Name     string
	Type     cty.Type
	Nullable bool
}

// Schema is an ordered list of fields. Order is significant and is preserved
// end-to-end between text records and rows.
type Schema []Field

// Row is an ordered tuple of cell values aligned positionally to a schema.
// A missing cell is cty.NullVal of the field type.
type Row []cty.Value

// IndexOf returns the position of the named field, or -1.
func (s Schema) IndexOf(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// AsNullable returns a copy of the schema with every field's nullability
// forced to true. The receiver is not modified. Delimited text has no way to
// signal a missing field other than NULL, so the codec always works against
// the nullable form.
func (s Schema) AsNullable() Schema {
	out := make(Schema, len(s))
	for i, f := range s {
		f.Nullable = true
		out[i] = f
	}
	return out
}

// Without returns a copy of the schema with the named field removed. When the
// name is absent the copy is identical.
func (s Schema) Without(name string) Schema {
	out := make(Schema, 0, len(s))
	for _, f := range s {
		if f.Name == name {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ObjectType returns the cty object type describing a row of this schema.
// Used for typing the encode side's input.
func (s Schema) ObjectType() cty.Type {
	attrs := make(map[string]cty.Type, len(s))
	for _, f := range s {
		attrs[f.Name] = f.Type
	}
	return cty.Object(attrs)
}

// NullRow returns a row of the schema's width with every cell null.
func (s Schema) NullRow() Row {
	row := make(Row, len(s))
	for i, f := range s {
		row[i] = cty.NullVal(f.Type)
	}
	return row
}

// String renders the schema as a comma-separated DDL-ish description, e.g.
// "a NUMERIC, b TEXT". Types are named via rowtype.TypeName.
func (s Schema) String() string {
	buf := make([]byte, 0, 16*len(s))
	for i, f := range s {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, f.Name...)
		buf = append(buf, ' ')
		buf = append(buf, rowtype.TypeName(f.Type)...)
	}
	return string(buf)
}
