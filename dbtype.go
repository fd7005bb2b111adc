package xdb

import "strconv"

// DbType is a portable data type tag describing a column or parameter
// independently of the Go type used to hold its value.
//
// The numbering is stable and matches the tags found in most ADO-style
// schemas, including the unused slot at 24.
type DbType int

const (
	TypeAnsiString            DbType = 0
	TypeBinary                DbType = 1
	TypeByte                  DbType = 2
	TypeBoolean               DbType = 3
	TypeCurrency              DbType = 4
	TypeDate                  DbType = 5
	TypeDateTime              DbType = 6
	TypeDecimal               DbType = 7
	TypeDouble                DbType = 8
	TypeGuid                  DbType = 9
	TypeInt16                 DbType = 10
	TypeInt32                 DbType = 11
	TypeInt64                 DbType = 12
	TypeObject                DbType = 13
	TypeSByte                 DbType = 14
	TypeSingle                DbType = 15
	TypeString                DbType = 16
	TypeTime                  DbType = 17
	TypeUInt16                DbType = 18
	TypeUInt32                DbType = 19
	TypeUInt64                DbType = 20
	TypeVarNumeric            DbType = 21
	TypeAnsiStringFixedLength DbType = 22
	TypeStringFixedLength     DbType = 23
	TypeXml                   DbType = 25
	TypeDateTime2             DbType = 26
	TypeDateTimeOffset        DbType = 27
)

var dbTypeNames = map[DbType]string{
	TypeAnsiString:            "AnsiString",
	TypeBinary:                "Binary",
	TypeByte:                  "Byte",
	TypeBoolean:               "Boolean",
	TypeCurrency:              "Currency",
	TypeDate:                  "Date",
	TypeDateTime:              "DateTime",
	TypeDecimal:               "Decimal",
	TypeDouble:                "Double",
	TypeGuid:                  "Guid",
	TypeInt16:                 "Int16",
	TypeInt32:                 "Int32",
	TypeInt64:                 "Int64",
	TypeObject:                "Object",
	TypeSByte:                 "SByte",
	TypeSingle:                "Single",
	TypeString:                "String",
	TypeTime:                  "Time",
	TypeUInt16:                "UInt16",
	TypeUInt32:                "UInt32",
	TypeUInt64:                "UInt64",
	TypeVarNumeric:            "VarNumeric",
	TypeAnsiStringFixedLength: "AnsiStringFixedLength",
	TypeStringFixedLength:     "StringFixedLength",
	TypeXml:                   "Xml",
	TypeDateTime2:             "DateTime2",
	TypeDateTimeOffset:        "DateTimeOffset",
}

// DbTypes returns every defined tag in ascending order.
func DbTypes() []DbType {
	out := make([]DbType, 0, len(dbTypeNames))
	for t := TypeAnsiString; t <= TypeDateTimeOffset; t++ {
		if _, ok := dbTypeNames[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// IsDefined reports whether t is one of the declared tags.
func (t DbType) IsDefined() bool {
	_, ok := dbTypeNames[t]
	return ok
}

func (t DbType) String() string {
	if n, ok := dbTypeNames[t]; ok {
		return n
	}
	return "DbType(" + strconv.Itoa(int(t)) + ")"
}
