// Package xio reads and writes compact binary records: fixed-width numbers
// in a chosen byte order, 7-bit encoded integers, and strings that are
// length prefixed, fixed width or NUL terminated in a chosen text encoding.
//
// A Writer and a Reader built with the same options agree on the format:
//
//	w := xio.NewWriter(f, xio.WithEncoding(charmap.Windows1252))
//	_ = w.WriteString("café")
//	_ = w.WriteInt32(42)
//	_ = w.Flush()
//
// Integers and floats default to little endian, text to UTF-8.
package xio

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrBadEncoding is returned when a 7-bit encoded integer runs past the
// width of its type.
var ErrBadEncoding = errors.New("xio: bad 7-bit encoded integer")

// ErrTooLong is returned when a string or byte slice exceeds the configured
// maximum length or its fixed width.
var ErrTooLong = errors.New("xio: value too long")

// DefaultMaxLength bounds length-prefixed values when WithMaxLength is not
// given.
const DefaultMaxLength = 1 << 20

type config struct {
	order  binary.ByteOrder
	enc    encoding.Encoding
	maxLen int
}

func newConfig(opts []Option) config {
	c := config{
		order:  binary.LittleEndian,
		enc:    unicode.UTF8,
		maxLen: DefaultMaxLength,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// Option configures a Reader or Writer.
type Option func(*config)

// WithByteOrder sets the byte order of fixed-width numbers.
func WithByteOrder(o binary.ByteOrder) Option {
	return func(c *config) {
		if o != nil {
			c.order = o
		}
	}
}

// WithEncoding sets the text encoding of strings, e.g. charmap.Windows1252
// or unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).
func WithEncoding(e encoding.Encoding) Option {
	return func(c *config) {
		if e != nil {
			c.enc = e
		}
	}
}

// WithMaxLength bounds the encoded size of length-prefixed and
// NUL-terminated values. n <= 0 restores DefaultMaxLength.
func WithMaxLength(n int) Option {
	return func(c *config) {
		if n <= 0 {
			n = DefaultMaxLength
		}
		c.maxLen = n
	}
}

// nul returns the encoded terminator of a C string: one NUL code unit.
// Encoders that emit a byte order mark put it in front of every call, so the
// unit is measured as the growth from one NUL to two.
func (c config) nul() ([]byte, error) {
	one, err := c.enc.NewEncoder().Bytes([]byte{0})
	if err != nil {
		return nil, fmt.Errorf("xio: encode NUL: %w", err)
	}
	two, err := c.enc.NewEncoder().Bytes([]byte{0, 0})
	if err != nil {
		return nil, fmt.Errorf("xio: encode NUL: %w", err)
	}
	unit := len(two) - len(one)
	if unit <= 0 || unit > len(one) {
		return nil, fmt.Errorf("xio: encoding has no fixed NUL code unit")
	}
	return one[len(one)-unit:], nil
}
