package rawcsv

import (
	"bufio"
	"io"
	"strings"
)

// Scanner splits a stream into raw record texts, honoring quoting so that
// record separators inside quoted fields do not end a record. The yielded
// text excludes the separator and is suitable input for a single-record
// decode.
type Scanner struct {
	r   *bufio.Reader
	opt Options
	rec string
	err error
}

// NewScanner wraps r. Only the Quote and RecordSep options are consulted.
func NewScanner(r io.Reader, opt Options) *Scanner {
	return &Scanner{r: bufio.NewReader(r), opt: opt}
}

// Scan advances to the next record. It returns false at end of input or on
// a read error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	var (
		buf     strings.Builder
		inQuote bool
		quote   = s.opt.quote()
		sep     = s.opt.recordSep()
		seen    bool
	)
	for {
		r, _, err := s.r.ReadRune()
		if err != nil {
			if err != io.EOF {
				s.err = err
				return false
			}
			if !seen {
				return false
			}
			s.rec = buf.String()
			return true
		}
		seen = true

		switch {
		case r == quote:
			inQuote = !inQuote
			buf.WriteRune(r)
		case r == sep && !inQuote:
			s.rec = trimCR(buf.String(), sep)
			return true
		default:
			buf.WriteRune(r)
		}
	}
}

// Text returns the record produced by the last successful Scan.
func (s *Scanner) Text() string { return s.rec }

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error { return s.err }

// trimCR drops a trailing carriage return when records end in newlines, so
// CRLF input behaves like LF input.
func trimCR(rec string, sep rune) string {
	if sep == '\n' {
		return strings.TrimSuffix(rec, "\r")
	}
	return rec
}
