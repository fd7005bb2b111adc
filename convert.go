package xdb

import (
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Value is the closed set of Go types the accessor family produces.
type Value interface {
	bool | string |
		int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 |
		decimal.Decimal | time.Time | Date | uuid.UUID
}

type signedInt interface {
	int | int8 | int16 | int32 | int64
}

type unsignedInt interface {
	uint | uint8 | uint16 | uint32 | uint64
}

type numKind uint8

const (
	numSigned numKind = iota + 1
	numUnsigned
	numFloat
	numDecimal
)

// number is a numeric stored value lifted into the widest representation of
// its family. bits records the width of a float so float32 sources keep
// their shortest decimal form.
type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
	bits int
	d    decimal.Decimal
}

func asNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int:
		return number{kind: numSigned, i: int64(x)}, true
	case int8:
		return number{kind: numSigned, i: int64(x)}, true
	case int16:
		return number{kind: numSigned, i: int64(x)}, true
	case int32:
		return number{kind: numSigned, i: int64(x)}, true
	case int64:
		return number{kind: numSigned, i: x}, true
	case uint:
		return number{kind: numUnsigned, u: uint64(x)}, true
	case uint8:
		return number{kind: numUnsigned, u: uint64(x)}, true
	case uint16:
		return number{kind: numUnsigned, u: uint64(x)}, true
	case uint32:
		return number{kind: numUnsigned, u: uint64(x)}, true
	case uint64:
		return number{kind: numUnsigned, u: x}, true
	case float32:
		return number{kind: numFloat, f: float64(x), bits: 32}, true
	case float64:
		return number{kind: numFloat, f: x, bits: 64}, true
	case decimal.Decimal:
		return number{kind: numDecimal, d: x}, true
	case Currency:
		return number{kind: numDecimal, d: x.d}, true
	}
	return number{}, false
}

// parseInteger reads a base-10 integer literal into the signed or unsigned
// family, whichever can hold it.
func parseInteger(s string) (number, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return number{kind: numSigned, i: i}, true
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return number{kind: numUnsigned, u: u}, true
	}
	return number{}, false
}

// integral converts floats and decimals without a fractional part into the
// signed or unsigned family.
func (n number) integral() (number, bool) {
	switch n.kind {
	case numSigned, numUnsigned:
		return n, true
	case numFloat:
		f := n.f
		if f != math.Trunc(f) {
			return number{}, false
		}
		switch {
		case f >= -(1<<63) && f < 1<<63:
			return number{kind: numSigned, i: int64(f)}, true
		case f >= 0 && f < 1<<64:
			return number{kind: numUnsigned, u: uint64(f)}, true
		}
	case numDecimal:
		if !n.d.IsInteger() {
			return number{}, false
		}
		bi := n.d.BigInt()
		switch {
		case bi.IsInt64():
			return number{kind: numSigned, i: bi.Int64()}, true
		case bi.IsUint64():
			return number{kind: numUnsigned, u: bi.Uint64()}, true
		}
	}
	return number{}, false
}

// signedOf narrows n into T; the round trip through T must be lossless.
func signedOf[T signedInt](n number) (T, bool) {
	switch n.kind {
	case numSigned:
		t := T(n.i)
		return t, int64(t) == n.i
	case numUnsigned:
		t := T(n.u)
		return t, t >= 0 && uint64(t) == n.u
	}
	return 0, false
}

func unsignedOf[T unsignedInt](n number) (T, bool) {
	switch n.kind {
	case numSigned:
		if n.i < 0 {
			return 0, false
		}
		t := T(n.i)
		return t, uint64(t) == uint64(n.i)
	case numUnsigned:
		t := T(n.u)
		return t, uint64(t) == n.u
	}
	return 0, false
}

func float64Of(n number) (float64, bool) {
	switch n.kind {
	case numSigned:
		return float64(n.i), true
	case numUnsigned:
		return float64(n.u), true
	case numFloat:
		return n.f, true
	case numDecimal:
		f, _ := n.d.Float64()
		return f, !math.IsInf(f, 0)
	}
	return 0, false
}

func float32Of(n number) (float32, bool) {
	f, ok := float64Of(n)
	if !ok {
		return 0, false
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, false
	}
	return float32(f), true
}

func decimalOf(n number) (decimal.Decimal, bool) {
	switch n.kind {
	case numSigned:
		return decimal.NewFromInt(n.i), true
	case numUnsigned:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n.u), 0), true
	case numFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return decimal.Decimal{}, false
		}
		if n.bits == 32 {
			return decimal.NewFromFloat32(float32(n.f)), true
		}
		return decimal.NewFromFloat(n.f), true
	case numDecimal:
		return n.d, true
	}
	return decimal.Decimal{}, false
}

// numberOrText lifts v to a number, parsing its text form with parse when v
// is not numeric.
func numberOrText(v any, parse func(string) (number, bool)) (number, bool) {
	if n, ok := asNumber(v); ok {
		return n, true
	}
	return parse(displayString(v))
}

func parseFloatNumber(s string) (number, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return number{}, false
	}
	return number{kind: numFloat, f: f, bits: 64}, true
}

func parseDecimalNumber(s string) (number, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return number{}, false
	}
	return number{kind: numDecimal, d: d}, true
}

func toSigned[T signedInt](v any) (T, bool) {
	n, ok := numberOrText(v, parseInteger)
	if !ok {
		return 0, false
	}
	if n, ok = n.integral(); !ok {
		return 0, false
	}
	return signedOf[T](n)
}

func toUnsigned[T unsignedInt](v any) (T, bool) {
	n, ok := numberOrText(v, parseInteger)
	if !ok {
		return 0, false
	}
	if n, ok = n.integral(); !ok {
		return 0, false
	}
	return unsignedOf[T](n)
}

func toFloat32(v any) (float32, bool) {
	n, ok := numberOrText(v, parseFloatNumber)
	if !ok {
		return 0, false
	}
	return float32Of(n)
}

func toFloat64(v any) (float64, bool) {
	n, ok := numberOrText(v, parseFloatNumber)
	if !ok {
		return 0, false
	}
	return float64Of(n)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	n, ok := numberOrText(v, parseDecimalNumber)
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimalOf(n)
}

func toBool(v any) (bool, bool) {
	s := displayString(v)
	switch s {
	case "Yes":
		return true, true
	case "No":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	return b, err == nil
}

func toTime(v any) (time.Time, bool) {
	t, err := parseTime(strings.TrimSpace(displayString(v)))
	return t, err == nil
}

func toDate(v any) (Date, bool) {
	d, err := ParseDate(displayString(v))
	return d, err == nil
}

func toUUID(v any) (uuid.UUID, bool) {
	u, err := uuid.FromString(strings.TrimSpace(displayString(v)))
	return u, err == nil
}

// toRune reads a single character: a numeric code point or a one-rune text.
func toRune(v any) (rune, bool) {
	if r, ok := v.(rune); ok {
		return r, true
	}
	if n, ok := asNumber(v); ok {
		if n, ok = n.integral(); !ok {
			return 0, false
		}
		r, ok := signedOf[int32](n)
		return r, ok && utf8.ValidRune(r)
	}
	s := displayString(v)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || (r == utf8.RuneError && size == 1) {
		return 0, false
	}
	return r, true
}

func toCurrency(v any) (Currency, bool) {
	d, ok := toDecimal(v)
	if !ok {
		return Currency{}, false
	}
	return NewCurrency(d), true
}

func toDateTimeOffset(v any) (DateTimeOffset, bool) {
	t, ok := toTime(v)
	return DateTimeOffset{Time: t}, ok
}

// toDuration accepts integer nanoseconds or time.ParseDuration text.
func toDuration(v any) (time.Duration, bool) {
	if n, ok := asNumber(v); ok {
		if n, ok = n.integral(); !ok {
			return 0, false
		}
		i, ok := signedOf[int64](n)
		return time.Duration(i), ok
	}
	d, err := time.ParseDuration(strings.TrimSpace(displayString(v)))
	return d, err == nil
}

func toBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case sql.RawBytes:
		return append([]byte(nil), x...), true
	case string:
		return []byte(x), true
	case []rune:
		return []byte(string(x)), true
	}
	return nil, false
}

func toXML(v any) (*etree.Document, bool) {
	switch x := v.(type) {
	case *etree.Document:
		return x, true
	case *etree.Element:
		doc := etree.NewDocument()
		doc.SetRoot(x.Copy())
		return doc, true
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(displayString(v)); err != nil {
		return nil, false
	}
	return doc, true
}

// convert applies the coercion policy for a non-null stored value v.
func convert[T Value](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var (
		zero T
		out  any
		ok   bool
	)
	switch any(zero).(type) {
	case string:
		out, ok = displayString(v), true
	case bool:
		out, ok = toBool(v)
	case int:
		out, ok = toSigned[int](v)
	case int8:
		out, ok = toSigned[int8](v)
	case int16:
		out, ok = toSigned[int16](v)
	case int32:
		out, ok = toSigned[int32](v)
	case int64:
		out, ok = toSigned[int64](v)
	case uint:
		out, ok = toUnsigned[uint](v)
	case uint8:
		out, ok = toUnsigned[uint8](v)
	case uint16:
		out, ok = toUnsigned[uint16](v)
	case uint32:
		out, ok = toUnsigned[uint32](v)
	case uint64:
		out, ok = toUnsigned[uint64](v)
	case float32:
		out, ok = toFloat32(v)
	case float64:
		out, ok = toFloat64(v)
	case decimal.Decimal:
		out, ok = toDecimal(v)
	case time.Time:
		out, ok = toTime(v)
	case Date:
		out, ok = toDate(v)
	case uuid.UUID:
		out, ok = toUUID(v)
	}
	if !ok {
		return zero, false
	}
	return out.(T), true
}

func erase[T any](f func(any) (T, bool)) func(any) (any, bool) {
	return func(v any) (any, bool) { return f(v) }
}

// converters covers every native type a tag can map to.
var converters = map[reflect.Type]func(any) (any, bool){
	reflect.TypeFor[bool]():             erase(convert[bool]),
	reflect.TypeFor[string]():           erase(convert[string]),
	reflect.TypeFor[int]():              erase(convert[int]),
	reflect.TypeFor[int8]():             erase(convert[int8]),
	reflect.TypeFor[int16]():            erase(convert[int16]),
	reflect.TypeFor[int32]():            erase(convert[int32]),
	reflect.TypeFor[int64]():            erase(convert[int64]),
	reflect.TypeFor[uint]():             erase(convert[uint]),
	reflect.TypeFor[uint8]():            erase(convert[uint8]),
	reflect.TypeFor[uint16]():           erase(convert[uint16]),
	reflect.TypeFor[uint32]():           erase(convert[uint32]),
	reflect.TypeFor[uint64]():           erase(convert[uint64]),
	reflect.TypeFor[float32]():          erase(convert[float32]),
	reflect.TypeFor[float64]():          erase(convert[float64]),
	reflect.TypeFor[decimal.Decimal]():  erase(convert[decimal.Decimal]),
	reflect.TypeFor[time.Time]():        erase(convert[time.Time]),
	reflect.TypeFor[Date]():             erase(convert[Date]),
	reflect.TypeFor[uuid.UUID]():        erase(convert[uuid.UUID]),
	reflect.TypeFor[Currency]():         erase(toCurrency),
	reflect.TypeFor[DateTimeOffset]():   erase(toDateTimeOffset),
	reflect.TypeFor[time.Duration]():    erase(toDuration),
	reflect.TypeFor[[]byte]():           erase(toBytes),
	reflect.TypeFor[*etree.Document](): erase(toXML),
}

// changeType converts a non-null v to target. Targets without a converter
// only accept values of exactly that type.
func changeType(v any, target reflect.Type) (any, bool) {
	if target == nil || target == anyType {
		return v, true
	}
	if reflect.TypeOf(v) == target {
		return v, true
	}
	if conv, ok := converters[target]; ok {
		return conv(v)
	}
	return nil, false
}

// ChangeType converts v to the native type of tag using the same rules as
// the accessor family. Null values stay nil. Unlike the accessors, a value
// that cannot be represented is reported as ErrConversion.
func ChangeType(v any, tag DbType) (any, error) {
	v = normalize(v)
	if v == nil {
		return nil, nil
	}
	out, ok := changeType(v, ToNativeType(tag))
	if !ok {
		return nil, fmt.Errorf("%w: %T to %s", ErrConversion, v, tag)
	}
	return out, nil
}

// displayString is the default text form of a stored value.
func displayString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case sql.RawBytes:
		return string(x)
	case []rune:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case *etree.Document:
		s, _ := x.WriteToString()
		return s
	case *etree.Element:
		doc := etree.NewDocument()
		doc.SetRoot(x.Copy())
		s, _ := doc.WriteToString()
		return s
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

func parseTime(s string) (time.Time, error) {
	var first error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, first
}
