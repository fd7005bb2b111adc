package xdb

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Direction tells whether a parameter carries a value in, out, or both.
type Direction int

const (
	Input Direction = iota
	Output
	InputOutput
	ReturnValue
)

// Parameter is a named command argument with a portable type tag.
//
// For Input parameters Value is the argument. For the other directions Value
// must be a non-nil pointer the driver writes into.
type Parameter struct {
	Name      string
	DbType    DbType
	Direction Direction
	Value     any
}

// NewParameter returns an input parameter whose tag is inferred from value.
func NewParameter(name string, value any) Parameter {
	return Parameter{Name: name, DbType: DbTypeOf(value), Value: value}
}

// Param returns an input parameter with an explicit tag. The value is
// converted to the tag's native type when the command is bound.
func Param(name string, tag DbType, value any) Parameter {
	return Parameter{Name: name, DbType: tag, Value: value}
}

// bareName drops the @ or : prefix callers sometimes keep on names.
func bareName(name string) string { return strings.TrimLeft(name, "@:") }

// DriverValue converts Value to the tag's native type and then to a value
// every database/sql driver accepts.
func (p Parameter) DriverValue() (any, error) {
	v, err := ChangeType(p.Value, p.DbType)
	if err != nil {
		return nil, fmt.Errorf("xdb: parameter %q: %w", p.Name, err)
	}
	switch x := v.(type) {
	case Date:
		return x.In(time.UTC), nil
	case DateTimeOffset:
		return x.Time, nil
	case Currency:
		return x.String(), nil
	case decimal.Decimal:
		return x.String(), nil
	case uuid.UUID:
		return x.String(), nil
	case time.Duration:
		return int64(x), nil
	case *etree.Document:
		s, err := x.WriteToString()
		if err != nil {
			return nil, fmt.Errorf("xdb: parameter %q: %w", p.Name, err)
		}
		return s, nil
	}
	return v, nil
}

// arg is the value handed to database/sql: the driver value for inputs, an
// sql.Out for everything else.
func (p Parameter) arg() (any, error) {
	if p.Direction == Input {
		return p.DriverValue()
	}
	rv := reflect.ValueOf(p.Value)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("%w: parameter %q: %s destination must be a non-nil pointer",
			ErrArgumentInvalid, p.Name, p.Direction)
	}
	return sql.Out{Dest: p.Value, In: p.Direction == InputOutput}, nil
}

// NamedArg returns the parameter as an sql.NamedArg.
func (p Parameter) NamedArg() (sql.NamedArg, error) {
	v, err := p.arg()
	if err != nil {
		return sql.NamedArg{}, err
	}
	return sql.Named(bareName(p.Name), v), nil
}

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case InputOutput:
		return "input/output"
	case ReturnValue:
		return "return value"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}
