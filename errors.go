package xdb

import "errors"

// ErrArgumentNull is returned when a required argument was not supplied,
// e.g. a nil FieldSource handed to an accessor.
var ErrArgumentNull = errors.New("xdb: argument is nil")

// ErrArgumentInvalid is returned for malformed arguments: an empty field
// name, a field that does not exist in the source, or a row whose shape does
// not match its table.
var ErrArgumentInvalid = errors.New("xdb: argument is invalid")

// ErrConversion is returned by ChangeType and the parameter helpers when a
// value cannot be represented in the requested native type. The accessor
// family never returns it; see GetOrDefault.
var ErrConversion = errors.New("xdb: value cannot be converted")
