package rawcsv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

// Writer renders one typed row into a single delimited text record. The
// underlying buffer and csv.Writer are acquired once and reused across
// calls; a Writer must not be shared between codec instances or goroutines.
//
// Quoting always uses '"' (encoding/csv semantics); the Quote option only
// affects parsing.
type Writer struct {
	fields schema.Schema
	opt    Options
	buf    bytes.Buffer
	cw     *csv.Writer
}

// NewWriter constructs a Writer for rows of the given field schema.
func NewWriter(fields schema.Schema, opt Options) *Writer {
	w := &Writer{fields: fields, opt: opt}
	w.cw = csv.NewWriter(&w.buf)
	w.cw.Comma = opt.comma()
	return w
}

// Write renders row (aligned to the writer's schema) as one text record
// without a trailing record terminator.
func (w *Writer) Write(row schema.Row) (string, error) {
	if len(row) != len(w.fields) {
		return "", fmt.Errorf("rawcsv: row has %d cells, schema expects %d",
			len(row), len(w.fields))
	}

	record := make([]string, len(row))
	for i, v := range row {
		s, err := w.render(v)
		if err != nil {
			return "", fmt.Errorf("rawcsv: field %q: %w", w.fields[i].Name, err)
		}
		record[i] = s
	}

	w.buf.Reset()
	if err := w.cw.Write(record); err != nil {
		return "", fmt.Errorf("rawcsv: write record: %w", err)
	}
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return "", fmt.Errorf("rawcsv: flush record: %w", err)
	}
	return strings.TrimRight(w.buf.String(), "\r\n"), nil
}

// render converts a single cell to its text form. Null cells render as the
// configured null literal. Containers render in a compact bracketed form;
// the field-level CSV quoting then protects any embedded delimiters.
func (w *Writer) render(v cty.Value) (string, error) {
	if v.IsNull() {
		return w.opt.NullValue, nil
	}

	t := v.Type()
	switch {
	case t.Equals(cty.String):
		return v.AsString(), nil
	case t.Equals(cty.Number):
		return v.AsBigFloat().Text('f', -1), nil
	case t.Equals(cty.Bool):
		if v.True() {
			return "true", nil
		}
		return "false", nil
	case t.Equals(rowtype.Date):
		return rowtype.TimeFromVal(v).In(w.opt.location()).Format(w.opt.dateLayout()), nil
	case t.Equals(rowtype.Timestamp):
		return rowtype.TimeFromVal(v).In(w.opt.location()).Format(w.opt.timestampLayout()), nil
	case t.IsListType(), t.IsSetType(), t.IsTupleType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			s, err := w.render(ev)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ",") + "]", nil
	case t.IsMapType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			s, err := w.render(ev)
			if err != nil {
				return "", err
			}
			parts = append(parts, kv.AsString()+":"+s)
		}
		return "{" + strings.Join(parts, ",") + "}", nil
	case t.IsObjectType():
		names := make([]string, 0, len(t.AttributeTypes()))
		for name := range t.AttributeTypes() {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			s, err := w.render(v.GetAttr(name))
			if err != nil {
				return "", err
			}
			parts = append(parts, name+":"+s)
		}
		return "{" + strings.Join(parts, ",") + "}", nil
	default:
		// User-defined types render as their underlying physical value.
		if _, ok := rowtype.Underlying(t); ok {
			if inner, ok := v.EncapsulatedValue().(*cty.Value); ok {
				return w.render(*inner)
			}
		}
		return "", fmt.Errorf("type %s is not renderable to delimited text", rowtype.TypeName(t))
	}
}
