package xdb

import (
	"database/sql"
	"reflect"
	"time"

	"github.com/beevik/etree"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

var anyType = reflect.TypeFor[any]()

// nativeTypes is the tag -> Go type direction. Every defined tag has exactly
// one entry.
var nativeTypes = map[DbType]reflect.Type{
	TypeAnsiString:            reflect.TypeFor[string](),
	TypeAnsiStringFixedLength: reflect.TypeFor[string](),
	TypeString:                reflect.TypeFor[string](),
	TypeStringFixedLength:     reflect.TypeFor[string](),
	TypeBinary:                reflect.TypeFor[[]byte](),
	TypeByte:                  reflect.TypeFor[uint8](),
	TypeSByte:                 reflect.TypeFor[int8](),
	TypeBoolean:               reflect.TypeFor[bool](),
	TypeCurrency:              reflect.TypeFor[Currency](),
	TypeDate:                  reflect.TypeFor[Date](),
	TypeDateTime:              reflect.TypeFor[time.Time](),
	TypeDateTime2:             reflect.TypeFor[time.Time](),
	TypeDateTimeOffset:        reflect.TypeFor[DateTimeOffset](),
	TypeDecimal:               reflect.TypeFor[decimal.Decimal](),
	TypeVarNumeric:            reflect.TypeFor[decimal.Decimal](),
	TypeDouble:                reflect.TypeFor[float64](),
	TypeSingle:                reflect.TypeFor[float32](),
	TypeGuid:                  reflect.TypeFor[uuid.UUID](),
	TypeInt16:                 reflect.TypeFor[int16](),
	TypeInt32:                 reflect.TypeFor[int32](),
	TypeInt64:                 reflect.TypeFor[int64](),
	TypeUInt16:                reflect.TypeFor[uint16](),
	TypeUInt32:                reflect.TypeFor[uint32](),
	TypeUInt64:                reflect.TypeFor[uint64](),
	TypeTime:                  reflect.TypeFor[time.Duration](),
	TypeXml:                   reflect.TypeFor[*etree.Document](),
	TypeObject:                anyType,
}

// dbTypes is the Go type -> tag direction. Several Go types collapse onto
// the same tag; the string and decimal families resolve to String and
// Decimal, DateTime2 resolves to DateTime.
var dbTypes = map[reflect.Type]DbType{
	reflect.TypeFor[string]():          TypeString,
	reflect.TypeFor[[]rune]():          TypeString,
	reflect.TypeFor[[]byte]():          TypeBinary,
	reflect.TypeFor[sql.RawBytes]():    TypeBinary,
	reflect.TypeFor[uint8]():           TypeByte,
	reflect.TypeFor[int8]():            TypeSByte,
	reflect.TypeFor[bool]():            TypeBoolean,
	reflect.TypeFor[Currency]():        TypeCurrency,
	reflect.TypeFor[Date]():            TypeDate,
	reflect.TypeFor[time.Time]():       TypeDateTime,
	reflect.TypeFor[DateTimeOffset]():  TypeDateTimeOffset,
	reflect.TypeFor[decimal.Decimal](): TypeDecimal,
	reflect.TypeFor[float64]():         TypeDouble,
	reflect.TypeFor[float32]():         TypeSingle,
	reflect.TypeFor[uuid.UUID]():       TypeGuid,
	reflect.TypeFor[int16]():           TypeInt16,
	reflect.TypeFor[int32]():           TypeInt32,
	reflect.TypeFor[int64]():           TypeInt64,
	reflect.TypeFor[int]():             TypeInt64,
	reflect.TypeFor[uint16]():          TypeUInt16,
	reflect.TypeFor[uint32]():          TypeUInt32,
	reflect.TypeFor[uint64]():          TypeUInt64,
	reflect.TypeFor[uint]():            TypeUInt64,
	reflect.TypeFor[time.Duration]():   TypeTime,
	reflect.TypeFor[*etree.Document](): TypeXml,
	reflect.TypeFor[*etree.Element]():  TypeXml,
}

// ToNativeType returns the Go type that holds values of tag. Tags outside
// the defined set, and TypeObject itself, yield the empty interface type.
func ToNativeType(tag DbType) reflect.Type {
	if t, ok := nativeTypes[tag]; ok {
		return t
	}
	return anyType
}

// ToDbType returns the tag for Go type t. Nullable forms (pointers,
// sql.NullXxx and sql.Null[T]) are unwrapped first. Unknown types, including
// nil, yield TypeObject.
func ToDbType(t reflect.Type) DbType {
	for t != nil {
		if tag, ok := dbTypes[t]; ok {
			return tag
		}
		switch {
		case t.Kind() == reflect.Pointer:
			t = t.Elem()
		case isSQLNull(t):
			t = t.Field(0).Type
		default:
			return TypeObject
		}
	}
	return TypeObject
}

// DbTypeOf returns the tag for the dynamic type of v; nil is TypeObject.
func DbTypeOf(v any) DbType {
	if v == nil {
		return TypeObject
	}
	return ToDbType(reflect.TypeOf(v))
}

// isSQLNull matches sql.NullString, sql.NullInt64, ..., and sql.Null[T]:
// a database/sql struct of {value, Valid bool}.
func isSQLNull(t reflect.Type) bool {
	return t.Kind() == reflect.Struct &&
		t.PkgPath() == "database/sql" &&
		t.NumField() == 2 &&
		t.Field(1).Name == "Valid" &&
		t.Field(1).Type.Kind() == reflect.Bool
}

// normalize maps every null representation to nil and unwraps nullable
// values to the value they hold.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for {
		t := rv.Type()
		if t.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		if _, ok := dbTypes[t]; ok {
			return rv.Interface()
		}
		switch {
		case t.Kind() == reflect.Pointer:
			rv = rv.Elem()
		case isSQLNull(t):
			if !rv.Field(1).Bool() {
				return nil
			}
			rv = rv.Field(0)
		default:
			return rv.Interface()
		}
	}
}
