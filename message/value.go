package message

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ValueType tags the variant held by a Value.
type ValueType byte

const (
	// TypeNull is the zero Value. It reads as absent.
	TypeNull ValueType = iota
	// TypeString holds a string.
	TypeString
	// TypeNumber holds a float64.
	TypeNumber
	// TypeBool holds a bool.
	TypeBool
	// TypeAddress holds an endpoint Address.
	TypeAddress
	// TypeExpression holds raw expression text evaluated lazily on read.
	TypeExpression
	// TypeOpaque holds any other Go value.
	TypeOpaque
)

var valueTypeNames = [...]string{
	TypeNull:       "null",
	TypeString:     "string",
	TypeNumber:     "number",
	TypeBool:       "bool",
	TypeAddress:    "address",
	TypeExpression: "expression",
	TypeOpaque:     "opaque",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// Value is a property value. It is a small tagged union; the zero Value is null.
type Value struct {
	typ  ValueType
	s    string
	n    float64
	b    bool
	addr Address
	v    any
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{typ: TypeString, s: s}
}

// NumberValue returns a number Value.
func NumberValue(n float64) Value {
	return Value{typ: TypeNumber, n: n}
}

// BoolValue returns a bool Value.
func BoolValue(b bool) Value {
	return Value{typ: TypeBool, b: b}
}

// AddressValue returns an address Value.
func AddressValue(a Address) Value {
	return Value{typ: TypeAddress, addr: a}
}

// ExpressionValue returns a Value holding unevaluated expression text.
// Readers going through the expression engine evaluate it against the
// scope that is active at read time.
func ExpressionValue(expr string) Value {
	return Value{typ: TypeExpression, s: expr}
}

// OpaqueValue wraps an arbitrary Go value. A nil v yields the null Value.
func OpaqueValue(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{typ: TypeOpaque, v: v}
}

// Type returns the variant tag.
func (v Value) Type() ValueType {
	return v.typ
}

// IsNull reports whether v is the null Value.
func (v Value) IsNull() bool {
	return v.typ == TypeNull
}

// Number returns the number held by v.
func (v Value) Number() (float64, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	return v.n, true
}

// Bool returns the bool held by v.
func (v Value) Bool() (bool, bool) {
	if v.typ != TypeBool {
		return false, false
	}
	return v.b, true
}

// Address returns the address held by v.
func (v Value) Address() (Address, bool) {
	if v.typ != TypeAddress {
		return Address{}, false
	}
	return v.addr, true
}

// Expression returns the raw expression text held by v.
func (v Value) Expression() (string, bool) {
	if v.typ != TypeExpression {
		return "", false
	}
	return v.s, true
}

// Raw returns the held value as a plain Go value (nil for null).
func (v Value) Raw() any {
	switch v.typ {
	case TypeString, TypeExpression:
		return v.s
	case TypeNumber:
		return v.n
	case TypeBool:
		return v.b
	case TypeAddress:
		return v.addr
	case TypeOpaque:
		return v.v
	default:
		return nil
	}
}

// String coerces v to a string the way the expression language does.
//
//	null       → ""
//	number     → shortest decimal form, integers without a fraction
//	bool       → "true" / "false"
//	address    → the address URI
//	expression → the raw expression text
func (v Value) String() string {
	switch v.typ {
	case TypeString, TypeExpression:
		return v.s
	case TypeNumber:
		return formatNumber(v.n)
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeAddress:
		return v.addr.URI
	case TypeOpaque:
		return fmt.Sprint(v.v)
	default:
		return ""
	}
}

// Equal reports whether v and o hold the same variant and value.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeNumber:
		return v.n == o.n
	case TypeBool:
		return v.b == o.b
	case TypeAddress:
		return v.addr == o.addr
	case TypeOpaque:
		return reflect.DeepEqual(v.v, o.v)
	default:
		return v.s == o.s
	}
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
