package xdb

import (
	"reflect"
	"strings"
)

// FieldSource is anything holding named, typed, nullable values: a buffered
// Row, the current position of a Reader, or an ad-hoc Fields map.
//
// Field looks a name up case-insensitively and reports whether it exists.
// A nil Field.Value is the null marker.
type FieldSource interface {
	Field(name string) (Field, bool)
}

// Field is one named slot of a FieldSource.
type Field struct {
	Name  string
	Type  reflect.Type // declared type; nil when the source does not know it
	Value any
}

// IsNull reports whether the field holds the null marker, including nil
// pointers and invalid sql.NullXxx values.
func (f Field) IsNull() bool { return normalize(f.Value) == nil }

// DbType is the tag of the declared type.
func (f Field) DbType() DbType { return ToDbType(f.Type) }

// Fields is a FieldSource over a map. The declared type of each field is the
// dynamic type of its value.
//
// An exact key match wins. Among keys that differ from name only by case,
// the lexically smallest is used.
type Fields map[string]any

func (fs Fields) Field(name string) (Field, bool) {
	if v, ok := fs[name]; ok {
		return Field{Name: name, Type: reflect.TypeOf(v), Value: v}, true
	}
	key, found := "", false
	for k := range fs {
		if strings.EqualFold(k, name) && (!found || k < key) {
			key, found = k, true
		}
	}
	if !found {
		return Field{}, false
	}
	v := fs[key]
	return Field{Name: key, Type: reflect.TypeOf(v), Value: v}, true
}

// columnIndex maps ASCII-lowered column names to their position. The first
// of several equal names wins.
type columnIndex map[string]int

func newColumnIndex(cols []Column) columnIndex {
	ix := make(columnIndex, len(cols))
	for i, c := range cols {
		k := toLowerASCII(c.Name)
		if _, dup := ix[k]; !dup {
			ix[k] = i
		}
	}
	return ix
}

func (ix columnIndex) find(name string) (int, bool) {
	if i, ok := ix[toLowerASCII(name)]; ok {
		return i, true
	}
	// Non-ASCII letters only fold through EqualFold.
	for k, i := range ix {
		if strings.EqualFold(k, name) {
			return i, true
		}
	}
	return 0, false
}

// unquoteIdent strips one level of "", `` or [] quoting that some drivers
// leave on column names.
func unquoteIdent(s string) string {
	if l := len(s); l >= 2 {
		switch s[0] {
		case '"':
			if s[l-1] == '"' {
				return s[1 : l-1]
			}
		case '`':
			if s[l-1] == '`' {
				return s[1 : l-1]
			}
		case '[':
			if s[l-1] == ']' {
				return s[1 : l-1]
			}
		}
	}
	return s
}

func toLowerASCII(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
