// Package infer produces a schema description from a sample of delimited
// text. The statistical widening lives in Evaluator; the expression-facing
// input contract (constant, non-null sample) lives in the adapter.
package infer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"csvcodec/internal/codec"
)

// timestampLayouts and dateLayouts are the candidate layouts tried per
// column, most specific first. A temporal column must parse entirely under
// one layout to be classified.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006 15:04:05",
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
}

// Evaluator infers a schema description from sample text. Configuration is
// fixed at construction; results are memoized per sample (xxh3 key), which
// makes repeated evaluation of the same folded constant free. An Evaluator
// is confined to one logical thread, like every other codec sub-resource.
type Evaluator struct {
	opt  codec.Options
	memo map[uint64]string
}

// NewEvaluator resolves the option map once. The recognized options are the
// decode options; header selects whether the sample's first record names
// the columns (default: no header, columns are named col_N).
func NewEvaluator(raw map[string]string) (*Evaluator, error) {
	opt, err := codec.ResolveOptions(raw, "UTC", "")
	if err != nil {
		return nil, err
	}
	return &Evaluator{opt: opt, memo: make(map[uint64]string)}, nil
}

// Evaluate returns a DDL-like description of the schema inferred from the
// sample, e.g. "col_0 BIGINT, col_1 TEXT". Column types are widened over
// all sampled records: a column is the narrowest of integer, boolean,
// floating point, date, timestamp, and text that every non-empty value in
// it satisfies.
func (e *Evaluator) Evaluate(sample string) (string, error) {
	key := xxh3.HashString(sample)
	if desc, ok := e.memo[key]; ok {
		return desc, nil
	}

	headers, rows, err := e.readSample(sample)
	if err != nil {
		return "", fmt.Errorf("infer: parse sample: %w", err)
	}
	if len(headers) == 0 {
		return "", fmt.Errorf("infer: sample contains no records")
	}

	kinds := inferKinds(len(headers), rows)
	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = h + " " + sqlTypeFor(kinds[i])
	}
	desc := strings.Join(parts, ", ")
	e.memo[key] = desc
	return desc, nil
}

// readSample splits the sample into column names and data rows. Records
// whose width differs from the first record are skipped so they cannot
// distort the widening, mirroring how misaligned rows are treated on the
// decode side under the permissive policy.
func (e *Evaluator) readSample(sample string) ([]string, [][]string, error) {
	cr := csv.NewReader(strings.NewReader(sample))
	cr.Comma = e.opt.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var headers []string
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if headers == nil {
				return nil, nil, err
			}
			continue // soft-fail a malformed sample line
		}
		if headers == nil {
			if e.opt.Header {
				headers = fieldNames(rec)
				continue
			}
			headers = make([]string, len(rec))
			for i := range rec {
				headers[i] = "col_" + strconv.Itoa(i)
			}
		}
		if len(rec) != len(headers) {
			continue
		}
		rows = append(rows, rec)
	}
	return headers, rows, nil
}

// column kinds, narrowest wins when every non-empty value satisfies it.
const (
	kindText      = "text"
	kindInteger   = "integer"
	kindReal      = "real"
	kindBoolean   = "boolean"
	kindDate      = "date"
	kindTimestamp = "timestamp"
)

func inferKinds(width int, rows [][]string) []string {
	cols := make([][]string, width)
	for _, row := range rows {
		for i := 0; i < width && i < len(row); i++ {
			if v := strings.TrimSpace(row[i]); v != "" {
				cols[i] = append(cols[i], v)
			}
		}
	}
	kinds := make([]string, width)
	for i := range kinds {
		kinds[i] = inferKind(cols[i])
	}
	return kinds
}

// inferKind classifies one column from its non-empty values. An all-empty
// column stays text.
func inferKind(values []string) string {
	if len(values) == 0 {
		return kindText
	}
	if allMatch(values, isInt) {
		return kindInteger
	}
	if allMatch(values, isBool) {
		return kindBoolean
	}
	if allMatch(values, isFloat) {
		return kindReal
	}
	if layout := commonLayout(values, timestampLayouts); layout != "" {
		return kindTimestamp
	}
	if layout := commonLayout(values, dateLayouts); layout != "" {
		return kindDate
	}
	return kindText
}

func allMatch(values []string, fn func(string) bool) bool {
	for _, v := range values {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation but not plain integers, so
// integer columns stay integer.
func isFloat(s string) bool {
	if isInt(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "t", "f", "yes", "no", "y", "n":
		return true
	default:
		return false
	}
}

// commonLayout returns the first candidate layout that parses every value,
// or "" when none does.
func commonLayout(values []string, layouts []string) string {
	for _, layout := range layouts {
		ok := true
		for _, v := range values {
			if _, err := time.Parse(layout, v); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return layout
		}
	}
	return ""
}

func sqlTypeFor(kind string) string {
	switch kind {
	case kindInteger:
		return "BIGINT"
	case kindReal:
		return "DOUBLE PRECISION"
	case kindBoolean:
		return "BOOLEAN"
	case kindDate:
		return "DATE"
	case kindTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// fieldNames normalizes header cells into lowercase ASCII identifiers:
// lowercase, strip accents (NFD, drop nonspacing marks, NFC), keep
// [a-z0-9_], map space/dash/dot to underscore, fall back to col_N.
func fieldNames(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\uFEFF")
		name := normalizeName(h)
		if name == "" {
			name = "col_" + strconv.Itoa(i)
		}
		out[i] = name
	}
	return out
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
