// Package rowtype extends the go-cty type system with the column types the
// CSV codec works with and with the support checks the codec performs at
// bind time.
//
// The package adds three things on top of cty:
//
//   - Date and Timestamp capsule types carrying a time.Time, since cty has
//     no temporal primitives of its own.
//   - Named types: user-defined wrappers around an underlying physical type,
//     modeled as capsule types that expose the underlying type through
//     capsule extension data.
//   - Encodable, the recursive check deciding whether a type can be
//     rendered to delimited text at all.
//
// Everything here is pure; no state is shared between callers.
package rowtype

import (
	"reflect"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Date is a calendar date (no time-of-day component). Encapsulates *time.Time;
// only the year/month/day parts are significant.
var Date = cty.CapsuleWithOps("date", reflect.TypeOf(time.Time{}), &cty.CapsuleOps{
	RawEquals: func(a, b interface{}) bool {
		ta, tb := a.(*time.Time), b.(*time.Time)
		return ta.Equal(*tb)
	},
})

// Timestamp is an instant in time. Encapsulates *time.Time. Formatting and
// parsing are zone-sensitive and handled by the codec, not by the type.
var Timestamp = cty.CapsuleWithOps("timestamp", reflect.TypeOf(time.Time{}), &cty.CapsuleOps{
	RawEquals: func(a, b interface{}) bool {
		ta, tb := a.(*time.Time), b.(*time.Time)
		return ta.Equal(*tb)
	},
})

// DateVal wraps t in a Date value.
func DateVal(t time.Time) cty.Value { return cty.CapsuleVal(Date, &t) }

// TimestampVal wraps t in a Timestamp value.
func TimestampVal(t time.Time) cty.Value { return cty.CapsuleVal(Timestamp, &t) }

// TimeFromVal extracts the time.Time from a Date or Timestamp value.
func TimeFromVal(v cty.Value) time.Time { return *(v.EncapsulatedValue().(*time.Time)) }

type extensionKey int

// underlyingKey is the capsule extension-data key under which Named types
// record their underlying physical type.
const underlyingKey extensionKey = 0

// Named constructs a user-defined type: a distinct type with its own name
// whose physical representation is the given underlying type. Two calls with
// the same arguments produce distinct types, matching cty capsule semantics.
func Named(name string, underlying cty.Type) cty.Type {
	return cty.CapsuleWithOps(name, reflect.TypeOf(cty.Value{}), &cty.CapsuleOps{
		ExtensionData: func(key interface{}) interface{} {
			if key == underlyingKey {
				return underlying
			}
			return nil
		},
	})
}

// Underlying reports the underlying physical type of a Named type. The second
// result is false for every other type, including Date and Timestamp.
func Underlying(t cty.Type) (cty.Type, bool) {
	if !t.IsCapsuleType() {
		return cty.NilType, false
	}
	if u, ok := t.CapsuleExtensionData(underlyingKey).(cty.Type); ok {
		return u, true
	}
	return cty.NilType, false
}

// Encodable reports whether values of type t can be rendered to delimited
// text. The check is recursive:
//
//   - primitive types (string, number, bool) are encodable
//   - Date and Timestamp are encodable
//   - lists, sets, and maps are encodable iff their element type is (cty map
//     keys are always strings, which are encodable by construction)
//   - tuples and objects are encodable iff every element/attribute type is
//   - a Named type is encodable iff its underlying type is
//   - cty.DynamicPseudoType (the open-ended "anything" type) never is
//   - any other capsule type never is
func Encodable(t cty.Type) bool {
	switch {
	case t.Equals(cty.DynamicPseudoType):
		return false
	case t.IsPrimitiveType():
		return true
	case t.IsListType(), t.IsSetType(), t.IsMapType():
		return Encodable(t.ElementType())
	case t.IsTupleType():
		for _, et := range t.TupleElementTypes() {
			if !Encodable(et) {
				return false
			}
		}
		return true
	case t.IsObjectType():
		for _, at := range t.AttributeTypes() {
			if !Encodable(at) {
				return false
			}
		}
		return true
	case t.Equals(Date), t.Equals(Timestamp):
		return true
	case t.IsCapsuleType():
		if u, ok := Underlying(t); ok {
			return Encodable(u)
		}
		return false
	default:
		return false
	}
}

// TypeName renders t as the SQL-ish type name used in schema descriptions
// and DDL output. Non-scalar types fall back to the cty friendly name.
func TypeName(t cty.Type) string {
	switch {
	case t.Equals(cty.String):
		return "TEXT"
	case t.Equals(cty.Number):
		return "NUMERIC"
	case t.Equals(cty.Bool):
		return "BOOLEAN"
	case t.Equals(Date):
		return "DATE"
	case t.Equals(Timestamp):
		return "TIMESTAMPTZ"
	default:
		return t.FriendlyName()
	}
}

// ParseTypeName maps a loosely-specified SQL type name onto a cty type. The
// mapping is case-insensitive and intentionally generous: all integer and
// floating-point names collapse onto cty.Number, which represents both
// exactly.
func ParseTypeName(s string) (cty.Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "varchar", "char":
		return cty.String, true
	case "int", "integer", "bigint", "smallint", "numeric", "decimal",
		"real", "float", "double", "double precision":
		return cty.Number, true
	case "bool", "boolean":
		return cty.Bool, true
	case "date":
		return Date, true
	case "timestamp", "timestamptz":
		return Timestamp, true
	default:
		return cty.NilType, false
	}
}
