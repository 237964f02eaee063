package codec

import "errors"

// Error taxonomy. Configuration errors surface once at bind time and are
// fatal for the expression; record errors are per row and governed by the
// parse mode; ErrMultiRecord is an internal invariant violation, distinct
// from user-facing parse failures, and must never be swallowed.
var (
	// ErrParseMode reports an unrecognized parse mode name at bind time.
	ErrParseMode = errors.New("unsupported parse mode")

	// ErrBadOption reports an unusable option value at bind time.
	ErrBadOption = errors.New("invalid option")

	// ErrUnsupportedType reports an encode-side input type that cannot be
	// rendered to delimited text. Bind-time, fatal.
	ErrUnsupportedType = errors.New("data type not supported for CSV output")

	// ErrMalformedRecord reports a record that failed to parse under
	// fail-fast mode. It aborts the enclosing operation.
	ErrMalformedRecord = errors.New("malformed CSV record")

	// ErrMultiRecord reports that the raw parser produced more than one
	// record from a single-record input, which the sentinel record
	// terminator is supposed to make impossible. This indicates codec
	// misuse, not malformed input.
	ErrMultiRecord = errors.New("internal: single-record input produced multiple records")
)
