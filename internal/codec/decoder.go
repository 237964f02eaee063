package codec

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rawcsv"
	"csvcodec/internal/schema"
)

// Decoder is the failure-safe decode pipeline: it wraps the raw
// single-record parser with the schema resolution and error policy decided
// at bind time. A Decoder is stateless across calls except for the lazily
// constructed raw parser, which is built on first use and reused; the
// surrounding engine guarantees a single instance is driven by one logical
// thread at a time.
type Decoder struct {
	res schema.Resolved
	opt Options
	loc *time.Location

	// corruptIdx and actualIdx are positional maps from the Required output
	// row onto the parser's output, precomputed at bind time.
	corruptIdx int
	actualIdx  []int

	parser *rawcsv.Parser // lazy, built on first Decode
}

// NewDecoder binds a decoder. All configuration errors (unsupported parse
// mode, invalid corrupt-record column, unknown time zone) surface here,
// once, and never per row. required may be nil to decode the full declared
// schema.
func NewDecoder(declared, required schema.Schema, raw map[string]string, engineTZ, engineCorrupt string) (*Decoder, error) {
	opt, err := ResolveOptions(raw, engineTZ, engineCorrupt)
	if err != nil {
		return nil, err
	}
	res, err := schema.Resolve(declared, required, opt.CorruptColumn)
	if err != nil {
		return nil, err
	}
	if opt.TimeZone == "" {
		return nil, fmt.Errorf("codec: %w: timeZone is required for decoding", ErrBadOption)
	}
	loc, err := time.LoadLocation(opt.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("codec: %w: timeZone: %v", ErrBadOption, err)
	}

	d := &Decoder{res: res, opt: opt, loc: loc, corruptIdx: -1}
	d.actualIdx = make([]int, len(res.Required))
	for i, f := range res.Required {
		if opt.CorruptColumn != "" && f.Name == opt.CorruptColumn {
			d.corruptIdx = i
			d.actualIdx[i] = -1
			continue
		}
		d.actualIdx[i] = res.Actual.IndexOf(f.Name)
	}
	return d, nil
}

// Schema returns the shape of the rows Decode produces.
func (d *Decoder) Schema() schema.Schema { return d.res.Required }

// Mode returns the bound failure policy.
func (d *Decoder) Mode() ParseMode { return d.opt.Mode }

// Decode parses one logical record of delimited text into a typed row of
// the required schema's shape. The record terminator is forced to an
// out-of-band sentinel, so text containing embedded newlines or delimiters
// is still exactly one record.
//
// Failure handling follows the bound mode: under PERMISSIVE a record that
// cannot be parsed becomes an all-null row with the corrupt-record column
// (when configured) holding the original text; under FAILFAST it is a
// terminal ErrMalformedRecord. A raw-parser result of more than one record
// violates the single-record contract and is reported as ErrMultiRecord
// regardless of mode.
func (d *Decoder) Decode(text string) (schema.Row, error) {
	if d.parser == nil {
		d.parser = rawcsv.NewParser(d.res.Actual, d.opt.raw(d.loc))
	}

	rows, err := d.parser.Parse(text)
	if err != nil {
		if d.opt.Mode == FailFastMode {
			return nil, fmt.Errorf("codec: %w: %v", ErrMalformedRecord, err)
		}
		return d.badRecordRow(text), nil
	}

	switch len(rows) {
	case 0:
		if d.opt.Mode == FailFastMode {
			return nil, fmt.Errorf("codec: %w: input %q produced no record", ErrMalformedRecord, text)
		}
		return d.badRecordRow(text), nil
	case 1:
		return d.project(rows[0]), nil
	default:
		return nil, fmt.Errorf("codec: %w: got %d records", ErrMultiRecord, len(rows))
	}
}

// project maps a parsed row of the actual schema onto the required output
// shape. Fields the parser did not produce are null; the corrupt-record
// column is null for a successfully parsed record.
func (d *Decoder) project(parsed schema.Row) schema.Row {
	out := make(schema.Row, len(d.res.Required))
	for i, f := range d.res.Required {
		if j := d.actualIdx[i]; j >= 0 {
			out[i] = parsed[j]
		} else {
			out[i] = cty.NullVal(f.Type)
		}
	}
	return out
}

// badRecordRow is the permissive-mode substitute for an unparseable record:
// every field null except the corrupt-record column, which captures the
// original input text.
func (d *Decoder) badRecordRow(text string) schema.Row {
	out := d.res.Required.NullRow()
	if d.corruptIdx >= 0 {
		out[d.corruptIdx] = cty.StringVal(text)
	}
	return out
}
