// Package rawcsv implements the low-level delimited-text contracts the row
// codec builds on: a single-record parser and a single-record writer.
//
// Both sides are configured once with a target field schema and an options
// bundle and are then driven per record. The record terminator is
// configurable so that callers can force an out-of-band sentinel rune and
// have an entire input string treated as exactly one record, regardless of
// embedded newlines or delimiters.
package rawcsv

import (
	"fmt"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

// Options configures a Parser or Writer. Zero values get sensible defaults.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// Quote is the field quoting rune. When zero, '"' is used. Doubled
	// quotes inside a quoted field denote a literal quote.
	Quote rune

	// RecordSep terminates a record. The codec always passes a sentinel rune
	// absent from realistic input so that a whole string is one record.
	// When zero, '\n' is used.
	RecordSep rune

	// NullValue is the literal text representing NULL. Empty fields are
	// always treated as null in addition to this literal.
	NullValue string

	// DateLayout and TimestampLayout are Go reference layouts for temporal
	// columns. Zero values default to "2006-01-02" and time.RFC3339.
	DateLayout      string
	TimestampLayout string

	// Location interprets and formats temporal values. Nil means UTC.
	Location *time.Location

	// Permissive selects soft field-level handling: width mismatches are
	// padded or truncated and uncoercible fields become null. When false any
	// such condition is an error.
	Permissive bool
}

func (o Options) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

func (o Options) quote() rune {
	if o.Quote == 0 {
		return '"'
	}
	return o.Quote
}

func (o Options) recordSep() rune {
	if o.RecordSep == 0 {
		return '\n'
	}
	return o.RecordSep
}

func (o Options) dateLayout() string {
	if o.DateLayout == "" {
		return "2006-01-02"
	}
	return o.DateLayout
}

func (o Options) timestampLayout() string {
	if o.TimestampLayout == "" {
		return time.RFC3339
	}
	return o.TimestampLayout
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Parser converts one delimited text record into a typed row aligned to a
// fixed field schema. A Parser is stateless across calls but not safe for
// concurrent use by multiple goroutines.
type Parser struct {
	fields schema.Schema
	opt    Options
}

// NewParser constructs a Parser populating the given fields.
func NewParser(fields schema.Schema, opt Options) *Parser {
	return &Parser{fields: fields, opt: opt}
}

// Parse tokenizes text into records terminated by the configured record
// separator and coerces each token to its field type. Empty input yields
// zero records. Under the sentinel-terminator contract the result holds at
// most one record; more than one means the caller's input contained the
// sentinel and it is up to the caller to treat that as a violation.
func (p *Parser) Parse(text string) ([]schema.Row, error) {
	if text == "" {
		return nil, nil
	}
	recs, err := p.split(text)
	if err != nil {
		return nil, err
	}
	rows := make([]schema.Row, 0, len(recs))
	for _, tokens := range recs {
		row, err := p.coerceRecord(tokens)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// split scans text into records of raw tokens. It understands quoted fields
// (including embedded delimiters, record separators, and doubled quotes) and
// fails on an unterminated quote.
func (p *Parser) split(text string) ([][]string, error) {
	var (
		comma   = p.opt.comma()
		quote   = p.opt.quote()
		sep     = p.opt.recordSep()
		records [][]string
		fields  []string
		buf     strings.Builder
		pending bool // current record has unfinished content
	)

	runes := []rune(text)
	i := 0
	endField := func() {
		fields = append(fields, buf.String())
		buf.Reset()
		pending = true
	}
	endRecord := func() {
		endField()
		records = append(records, fields)
		fields = nil
		pending = false
	}

	for i < len(runes) {
		r := runes[i]
		pending = true
		switch {
		case r == quote && buf.Len() == 0:
			// Quoted field: consume through the closing quote.
			i++
			closed := false
			for i < len(runes) {
				r = runes[i]
				if r == quote {
					if i+1 < len(runes) && runes[i+1] == quote {
						buf.WriteRune(quote)
						i += 2
						continue
					}
					closed = true
					i++
					break
				}
				buf.WriteRune(r)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("rawcsv: unterminated quoted field at offset %d", i)
			}
		case r == comma:
			endField()
			i++
		case r == sep:
			endRecord()
			i++
		default:
			buf.WriteRune(r)
			i++
		}
	}
	// Final field/record unless the text ended exactly on a record separator.
	if pending || buf.Len() > 0 || len(fields) > 0 {
		endRecord()
	}
	return records, nil
}

// coerceRecord maps raw tokens onto the field schema. Width mismatches and
// per-field coercion failures follow the configured permissiveness.
func (p *Parser) coerceRecord(tokens []string) (schema.Row, error) {
	if len(tokens) != len(p.fields) {
		if !p.opt.Permissive {
			return nil, fmt.Errorf("rawcsv: record has %d fields, schema expects %d",
				len(tokens), len(p.fields))
		}
		tokens = fitToWidth(tokens, len(p.fields))
	}

	row := make(schema.Row, len(p.fields))
	for i, f := range p.fields {
		v, err := p.coerceField(tokens[i], f)
		if err != nil {
			if p.opt.Permissive {
				row[i] = cty.NullVal(f.Type)
				continue
			}
			return nil, fmt.Errorf("rawcsv: field %q: %w", f.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

// coerceField converts one raw token to the field's type. Empty tokens and
// the configured null literal become null for every type.
func (p *Parser) coerceField(tok string, f schema.Field) (cty.Value, error) {
	trimmed := strings.TrimSpace(tok)
	if trimmed == "" || trimmed == p.opt.NullValue {
		return cty.NullVal(f.Type), nil
	}

	t := f.Type
	switch {
	case t.Equals(cty.String):
		return cty.StringVal(tok), nil
	case t.Equals(cty.Number):
		v, err := cty.ParseNumberVal(trimmed)
		if err != nil {
			return cty.NilVal, fmt.Errorf("parse number %q: %w", trimmed, err)
		}
		return v, nil
	case t.Equals(cty.Bool):
		b, ok := parseBool(trimmed)
		if !ok {
			return cty.NilVal, fmt.Errorf("parse bool %q", trimmed)
		}
		return cty.BoolVal(b), nil
	case t.Equals(rowtype.Date):
		ts, err := time.ParseInLocation(p.opt.dateLayout(), trimmed, p.opt.location())
		if err != nil {
			return cty.NilVal, fmt.Errorf("parse date %q: %w", trimmed, err)
		}
		return rowtype.DateVal(ts), nil
	case t.Equals(rowtype.Timestamp):
		ts, err := time.ParseInLocation(p.opt.timestampLayout(), trimmed, p.opt.location())
		if err != nil {
			return cty.NilVal, fmt.Errorf("parse timestamp %q: %w", trimmed, err)
		}
		return rowtype.TimestampVal(ts), nil
	default:
		return cty.NilVal, fmt.Errorf("type %s is not parseable from delimited text", rowtype.TypeName(t))
	}
}

// fitToWidth truncates or pads tokens to exactly n entries. Missing entries
// are empty strings, which coerce to null.
func fitToWidth(tokens []string, n int) []string {
	if len(tokens) == n {
		return tokens
	}
	cp := make([]string, n)
	copy(cp, tokens)
	return cp
}

// parseBool accepts the common textual booleans plus 1/0.
func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}
