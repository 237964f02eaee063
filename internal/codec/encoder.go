package codec

import (
	"fmt"
	"time"

	"csvcodec/internal/rawcsv"
	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

// Encoder renders one typed row into one delimited text record. The input
// schema is validated for encodability at bind time; the underlying record
// writer is acquired once here and reused across calls, scoped to this
// instance.
type Encoder struct {
	sch schema.Schema
	opt Options
	loc *time.Location
	w   *rawcsv.Writer
}

// NewEncoder binds an encoder for rows of the given schema. A field whose
// type cannot be rendered to text is a bind-time ErrUnsupportedType naming
// the field and its type; no row is ever processed for an invalid schema.
// The time zone defaults to UTC when neither the options nor the engine
// provide one, since encoding has no mandatory zone requirement.
func NewEncoder(sch schema.Schema, raw map[string]string, engineTZ string) (*Encoder, error) {
	opt, err := ResolveOptions(raw, engineTZ, "")
	if err != nil {
		return nil, err
	}

	for _, f := range sch {
		if !rowtype.Encodable(f.Type) {
			return nil, fmt.Errorf("codec: %w: field %q has type %s",
				ErrUnsupportedType, f.Name, rowtype.TypeName(f.Type))
		}
	}

	loc := time.UTC
	if opt.TimeZone != "" {
		loc, err = time.LoadLocation(opt.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("codec: %w: timeZone: %v", ErrBadOption, err)
		}
	}

	return &Encoder{
		sch: sch,
		opt: opt,
		loc: loc,
		w:   rawcsv.NewWriter(sch, opt.raw(loc)),
	}, nil
}

// Schema returns the row schema the encoder accepts.
func (e *Encoder) Schema() schema.Schema { return e.sch }

// Encode renders row, aligned to the encoder's schema, as a single text
// record with no trailing terminator. There is no corrupt-record concept on
// this path; any failure is an error.
func (e *Encoder) Encode(row schema.Row) (string, error) {
	return e.w.Write(row)
}
