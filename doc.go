/*
Package xdb is a small helper layer over database/sql: portable type tags,
forgiving value accessors, buffered tables, commands with named parameters,
and transaction helpers. You write plain SQL; xdb takes care of the typing
chores around it.

# Type tags

DbType is a portable tag (String, Int32, Decimal, Guid, Xml, ...) for a
column or parameter. ToNativeType and ToDbType translate between tags and
the Go types that hold their values:

  - String and its Ansi/fixed-length variants hold string; []rune maps back to String.
  - Binary holds []byte; sql.RawBytes maps back to Binary.
  - Decimal and VarNumeric hold decimal.Decimal; Currency holds xdb.Currency.
  - Date holds xdb.Date, DateTime and DateTime2 hold time.Time, DateTimeOffset
    holds xdb.DateTimeOffset, Time holds time.Duration.
  - Guid holds uuid.UUID and Xml holds *etree.Document.
  - Unknown tags map to the empty interface, unknown types to Object.

Pointers, sql.NullXxx and sql.Null[T] are unwrapped before mapping.

# Accessors

GetOrDefault and TryGet read a named field from any FieldSource (a Row, a
Reader, or a Fields map) as a requested type. Both share one policy:

  - null yields the default;
  - numbers widen freely and narrow only when the value fits exactly;
  - anything reads as a string through its default text form;
  - other mismatches parse the text form invariantly ("Yes"/"No" are booleans).

Argument problems (nil source, empty or unknown field name) are errors from
GetOrDefault. Value problems never are: GetOrDefault returns the default and
TryGet reports false. Typed shorthands such as GetInt32OrDefault and
TryGetGuid exist for every supported type.

# Tables, readers and commands

LoadTable and ReadTable buffer a result into a Table whose rows keep values
of each column's declared type. NewReader wraps *sql.Rows as a forward-only
field source. Command binds @name or :name references (or ?) to the
placeholder style of a driver and runs Exec, Query or Scalar. InTx and
WithConn scope a transaction or a dedicated connection to a callback.

# Error handling

  - ErrArgumentNull and ErrArgumentInvalid report misuse; test with errors.Is.
  - ErrConversion reports a value that cannot take a column's or parameter's type.
  - Driver errors propagate unchanged; Close errors surface when nothing else failed.

xdb works with any database/sql driver. It does not rewrite SQL beyond
parameter references.
*/
package xdb
