package orlok

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies the scalar variant held by a Value.
type Kind string

const (
	KindText    Kind = "text"
	KindInt     Kind = "int"
	KindDecimal Kind = "decimal"
	KindBool    Kind = "bool"
	KindTime    Kind = "time"
	KindID      Kind = "id"
	KindNull    Kind = "null"
)

// Value is a scalar that can be stored in any backend. It is a closed
// tagged union: both the SQL compiler and the in-memory evaluator switch
// over the same set of kinds, which keeps their semantics aligned.
//
// Null is a first-class variant, not an absent Value. Comparisons between
// different kinds are rejected with a FilterTypeError rather than coerced.
type Value struct {
	kind Kind
	text string
	num  int64
	dec  decimal.Decimal
	flag bool
	ts   time.Time
	id   uuid.UUID
}

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Int(n int64) Value { return Value{kind: KindInt, num: n} }

func Dec(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func Time(t time.Time) Value { return Value{kind: KindTime, ts: t.UTC()} }

func ID(id uuid.UUID) Value { return Value{kind: KindID, id: id} }

func Null() Value { return Value{kind: KindNull} }

// NullableText maps a nil pointer to Null, mirroring optional columns.
func NullableText(s *string) Value {
	if s == nil {
		return Null()
	}
	return Text(*s)
}

func NullableInt(n *int64) Value {
	if n == nil {
		return Null()
	}
	return Int(*n)
}

func NullableTime(t *time.Time) Value {
	if t == nil {
		return Null()
	}
	return Time(*t)
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Accessors return the underlying Go value and whether the kind matched.

func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

func (v Value) Int() (int64, bool) { return v.num, v.kind == KindInt }

func (v Value) Dec() (decimal.Decimal, bool) { return v.dec, v.kind == KindDecimal }

func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

func (v Value) Time() (time.Time, bool) { return v.ts, v.kind == KindTime }

func (v Value) ID() (uuid.UUID, bool) { return v.id, v.kind == KindID }

// Equal compares two values of the same kind. Null equals only Null.
// A kind mismatch between two non-null values is a FilterTypeError.
func (v Value) Equal(other Value) (bool, error) {
	if v.kind == KindNull || other.kind == KindNull {
		return v.kind == other.kind, nil
	}
	if v.kind != other.kind {
		return false, NewFilterTypeError("", "", v.kind, other.kind)
	}
	switch v.kind {
	case KindText:
		return v.text == other.text, nil
	case KindInt:
		return v.num == other.num, nil
	case KindDecimal:
		return v.dec.Equal(other.dec), nil
	case KindBool:
		return v.flag == other.flag, nil
	case KindTime:
		return v.ts.Equal(other.ts), nil
	case KindID:
		return v.id == other.id, nil
	}
	return false, NewFilterTypeError("", "", v.kind, other.kind)
}

// Compare orders two non-null values of the same kind. It returns -1, 0
// or 1. Null values and kind mismatches are FilterTypeErrors; ordering
// null is handled separately by the sort layer.
func (v Value) Compare(other Value) (int, error) {
	if v.kind != other.kind || v.kind == KindNull {
		return 0, NewFilterTypeError("", "", v.kind, other.kind)
	}
	switch v.kind {
	case KindText:
		return compareOrdered(v.text, other.text), nil
	case KindInt:
		return compareOrdered(v.num, other.num), nil
	case KindDecimal:
		return v.dec.Cmp(other.dec), nil
	case KindTime:
		return v.ts.Compare(other.ts), nil
	case KindBool, KindID:
		return 0, NewFilterTypeError("", "", v.kind, other.kind)
	}
	return 0, NewFilterTypeError("", "", v.kind, other.kind)
}

// Arg converts the value into a driver-friendly argument for parameter
// binding. Values are always bound, never interpolated into SQL text.
func (v Value) Arg() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindInt:
		return v.num
	case KindDecimal:
		return v.dec
	case KindBool:
		return v.flag
	case KindTime:
		return v.ts
	case KindID:
		return v.id
	}
	return nil
}

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("%q", v.text)
	case KindInt:
		return fmt.Sprintf("%d", v.num)
	case KindDecimal:
		return v.dec.String()
	case KindBool:
		return fmt.Sprintf("%t", v.flag)
	case KindTime:
		return v.ts.Format(time.RFC3339Nano)
	case KindID:
		return v.id.String()
	}
	return "null"
}

func compareOrdered[T interface{ ~string | ~int64 }](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
