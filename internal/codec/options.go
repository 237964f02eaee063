// Package codec implements the failure-safe row codec at the center of the
// CSV expression support: Decoder turns one delimited text record into one
// typed row under a declared schema and a parse-mode policy, and Encoder
// performs the inverse. Both are constructed once at bind time and then
// driven per row; neither is safe for concurrent use of a single instance.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"csvcodec/internal/rawcsv"
)

// ParseMode is the failure-handling policy for malformed records.
type ParseMode int

const (
	// PermissiveMode recovers locally: unmappable fields become null and,
	// when a corrupt-record column is configured, the original text is
	// captured there.
	PermissiveMode ParseMode = iota + 1

	// FailFastMode aborts the whole operation on the first malformed record.
	FailFastMode
)

func (m ParseMode) String() string {
	switch m {
	case PermissiveMode:
		return "PERMISSIVE"
	case FailFastMode:
		return "FAILFAST"
	default:
		return fmt.Sprintf("ParseMode(%d)", int(m))
	}
}

// ParseModeFromString maps a mode literal onto a ParseMode. Matching is
// case-insensitive; the empty string selects PERMISSIVE. Anything else is a
// bind-time configuration error.
func ParseModeFromString(s string) (ParseMode, error) {
	switch {
	case s == "" || strings.EqualFold(s, "PERMISSIVE"):
		return PermissiveMode, nil
	case strings.EqualFold(s, "FAILFAST"):
		return FailFastMode, nil
	default:
		return 0, fmt.Errorf("codec: %w %q (want PERMISSIVE or FAILFAST)", ErrParseMode, s)
	}
}

// RecordSepSentinel is the synthetic record terminator forced onto the raw
// parser so that an entire input string is one record regardless of embedded
// newlines. U+FFFF is a Unicode noncharacter and does not occur in realistic
// input.
const RecordSepSentinel = '￿'

// Options is the resolved, immutable option bundle for one codec instance.
// It is built once at bind time from the user's string map plus fixed
// engine-level settings and never mutated afterward.
type Options struct {
	Delimiter       rune
	Quote           rune
	Header          bool
	NullValue       string
	DateFormat      string
	TimestampFormat string
	TimeZone        string
	Mode            ParseMode
	CorruptColumn   string
	RecordSep       rune
}

// ResolveOptions interprets the raw option map. engineTZ and engineCorrupt
// are the engine-level defaults for the time zone and the corrupt-record
// column name; explicit options win over both. Unrecognized keys are
// ignored for forward compatibility.
//
// Recognized keys: delimiter (alias sep), quote, header, nullValue,
// dateFormat, timestampFormat, timeZone, mode, columnNameOfCorruptRecord,
// lineSep.
func ResolveOptions(raw map[string]string, engineTZ, engineCorrupt string) (Options, error) {
	opts := Options{
		Delimiter:       ',',
		Quote:           '"',
		DateFormat:      "2006-01-02",
		TimestampFormat: time.RFC3339,
		TimeZone:        engineTZ,
		CorruptColumn:   engineCorrupt,
		RecordSep:       RecordSepSentinel,
	}

	if s, ok := firstOf(raw, "delimiter", "sep"); ok {
		r, err := singleRune(s)
		if err != nil {
			return Options{}, fmt.Errorf("codec: %w: delimiter: %v", ErrBadOption, err)
		}
		opts.Delimiter = r
	}
	if s, ok := raw["quote"]; ok {
		r, err := singleRune(s)
		if err != nil {
			return Options{}, fmt.Errorf("codec: %w: quote: %v", ErrBadOption, err)
		}
		opts.Quote = r
	}
	if s, ok := raw["header"]; ok {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Options{}, fmt.Errorf("codec: %w: header: %v", ErrBadOption, err)
		}
		opts.Header = b
	}
	if s, ok := raw["nullValue"]; ok {
		opts.NullValue = s
	}
	if s, ok := raw["dateFormat"]; ok {
		opts.DateFormat = s
	}
	if s, ok := raw["timestampFormat"]; ok {
		opts.TimestampFormat = s
	}
	if s, ok := raw["timeZone"]; ok {
		opts.TimeZone = s
	}
	if s, ok := raw["columnNameOfCorruptRecord"]; ok {
		opts.CorruptColumn = s
	}
	if s, ok := raw["lineSep"]; ok {
		r, err := singleRune(s)
		if err != nil {
			return Options{}, fmt.Errorf("codec: %w: lineSep: %v", ErrBadOption, err)
		}
		opts.RecordSep = r
	}

	mode, err := ParseModeFromString(raw["mode"])
	if err != nil {
		return Options{}, err
	}
	opts.Mode = mode

	return opts, nil
}

// raw returns the rawcsv option bundle for this codec configuration.
func (o Options) raw(loc *time.Location) rawcsv.Options {
	return rawcsv.Options{
		Comma:           o.Delimiter,
		Quote:           o.Quote,
		RecordSep:       o.RecordSep,
		NullValue:       o.NullValue,
		DateLayout:      o.DateFormat,
		TimestampLayout: o.TimestampFormat,
		Location:        loc,
		Permissive:      o.Mode == PermissiveMode,
	}
}

func firstOf(raw map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v, true
		}
	}
	return "", false
}

func singleRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("want exactly one character, got %q", s)
	}
	return r, nil
}
