package xdb

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// GetOrDefault reads the named field from src as a T.
//
// Argument problems are errors: a nil src is ErrArgumentNull, an empty name
// or a name src does not know is ErrArgumentInvalid. Value problems never
// are. A null field yields def (or the zero T), and so does a value that
// cannot be represented in T, e.g. an int32 of 32768 read as int16, or the
// text "Bad" read as int32. Use TryGet to tell those two cases apart.
//
// Numeric values widen freely and narrow only when they fit exactly. Any
// value reads as a string through its default text form. Other mismatches
// parse the text form invariantly; for bool the words "Yes" and "No" are
// accepted besides the strconv.ParseBool forms.
//
// Example:
//
//	n, err := xdb.GetOrDefault[int32](row, "quantity", -1)
//	if err != nil {
//	    // the row has no quantity column
//	}
func GetOrDefault[T Value](src FieldSource, name string, def ...T) (T, error) {
	return getOrDefault(src, name, convert[T], def)
}

// TryGet is the non-failing form of GetOrDefault. It reports false for every
// argument or value problem, and true with the zero T for a null field.
func TryGet[T Value](src FieldSource, name string) (T, bool) {
	return tryGet(src, name, convert[T])
}

func getOrDefault[T any](src FieldSource, name string, conv func(any) (T, bool), def []T) (T, error) {
	var d T
	if len(def) > 0 {
		d = def[0]
	}
	v, _, err := resolve(src, name, conv, d)
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func tryGet[T any](src FieldSource, name string, conv func(any) (T, bool)) (T, bool) {
	var zero T
	v, ok, err := resolve(src, name, conv, zero)
	if err != nil || !ok {
		return zero, false
	}
	return v, true
}

// resolve is the single coercion path behind both surfaces. ok is false only
// for values that cannot be represented; err only for argument problems.
func resolve[T any](src FieldSource, name string, conv func(any) (T, bool), def T) (T, bool, error) {
	f, err := lookupField(src, name)
	if err != nil {
		return def, false, err
	}
	v := normalize(f.Value)
	if v == nil {
		return def, true, nil
	}
	out, ok := conv(v)
	if !ok {
		return def, false, nil
	}
	return out, true, nil
}

func lookupField(src FieldSource, name string) (Field, error) {
	if isNilSource(src) {
		return Field{}, fmt.Errorf("%w: field source", ErrArgumentNull)
	}
	if name == "" {
		return Field{}, fmt.Errorf("%w: field name is empty", ErrArgumentInvalid)
	}
	f, ok := src.Field(name)
	if !ok {
		return Field{}, fmt.Errorf("%w: field %q is missing", ErrArgumentInvalid, name)
	}
	return f, nil
}

func isNilSource(src FieldSource) bool {
	if src == nil {
		return true
	}
	rv := reflect.ValueOf(src)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Typed entry points. Each is GetOrDefault / TryGet fixed to one type.

// GetSByteOrDefault reads the named field as an int8.
func GetSByteOrDefault(src FieldSource, name string, def ...int8) (int8, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetSByte(src FieldSource, name string) (int8, bool) { return TryGet[int8](src, name) }

// GetInt16OrDefault reads the named field as an int16.
func GetInt16OrDefault(src FieldSource, name string, def ...int16) (int16, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetInt16(src FieldSource, name string) (int16, bool) { return TryGet[int16](src, name) }

// GetInt32OrDefault reads the named field as an int32.
func GetInt32OrDefault(src FieldSource, name string, def ...int32) (int32, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetInt32(src FieldSource, name string) (int32, bool) { return TryGet[int32](src, name) }

// GetInt64OrDefault reads the named field as an int64.
func GetInt64OrDefault(src FieldSource, name string, def ...int64) (int64, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetInt64(src FieldSource, name string) (int64, bool) { return TryGet[int64](src, name) }

// GetByteOrDefault reads the named field as a uint8.
func GetByteOrDefault(src FieldSource, name string, def ...uint8) (uint8, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetByte(src FieldSource, name string) (uint8, bool) { return TryGet[uint8](src, name) }

// GetUInt16OrDefault reads the named field as a uint16.
func GetUInt16OrDefault(src FieldSource, name string, def ...uint16) (uint16, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetUInt16(src FieldSource, name string) (uint16, bool) { return TryGet[uint16](src, name) }

// GetUInt32OrDefault reads the named field as a uint32.
func GetUInt32OrDefault(src FieldSource, name string, def ...uint32) (uint32, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetUInt32(src FieldSource, name string) (uint32, bool) { return TryGet[uint32](src, name) }

// GetUInt64OrDefault reads the named field as a uint64.
func GetUInt64OrDefault(src FieldSource, name string, def ...uint64) (uint64, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetUInt64(src FieldSource, name string) (uint64, bool) { return TryGet[uint64](src, name) }

// GetSingleOrDefault reads the named field as a float32. Wider floats narrow
// when their magnitude is within float32 range.
func GetSingleOrDefault(src FieldSource, name string, def ...float32) (float32, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetSingle(src FieldSource, name string) (float32, bool) { return TryGet[float32](src, name) }

// GetDoubleOrDefault reads the named field as a float64.
func GetDoubleOrDefault(src FieldSource, name string, def ...float64) (float64, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetDouble(src FieldSource, name string) (float64, bool) { return TryGet[float64](src, name) }

// GetDecimalOrDefault reads the named field as a decimal.
func GetDecimalOrDefault(src FieldSource, name string, def ...decimal.Decimal) (decimal.Decimal, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetDecimal(src FieldSource, name string) (decimal.Decimal, bool) {
	return TryGet[decimal.Decimal](src, name)
}

// GetBooleanOrDefault reads the named field as a bool.
func GetBooleanOrDefault(src FieldSource, name string, def ...bool) (bool, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetBoolean(src FieldSource, name string) (bool, bool) { return TryGet[bool](src, name) }

// GetCharOrDefault reads the named field as a single character. Text must
// hold exactly one rune; numbers must be a valid code point.
func GetCharOrDefault(src FieldSource, name string, def ...rune) (rune, error) {
	return getOrDefault(src, name, toRune, def)
}

func TryGetChar(src FieldSource, name string) (rune, bool) { return tryGet(src, name, toRune) }

// GetStringOrDefault reads the named field as a string. Every non-null value
// has a string form, so only null fields yield def.
func GetStringOrDefault(src FieldSource, name string, def ...string) (string, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetString(src FieldSource, name string) (string, bool) { return TryGet[string](src, name) }

// GetDateOrDefault reads the named field as a calendar date.
func GetDateOrDefault(src FieldSource, name string, def ...Date) (Date, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetDate(src FieldSource, name string) (Date, bool) { return TryGet[Date](src, name) }

// GetDateTimeOrDefault reads the named field as a time.Time.
func GetDateTimeOrDefault(src FieldSource, name string, def ...time.Time) (time.Time, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetDateTime(src FieldSource, name string) (time.Time, bool) {
	return TryGet[time.Time](src, name)
}

// GetGuidOrDefault reads the named field as a UUID.
func GetGuidOrDefault(src FieldSource, name string, def ...uuid.UUID) (uuid.UUID, error) {
	return GetOrDefault(src, name, def...)
}

func TryGetGuid(src FieldSource, name string) (uuid.UUID, bool) { return TryGet[uuid.UUID](src, name) }
