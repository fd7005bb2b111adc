package xio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Reader decodes values written by a Writer with the same options.
//
// A read that finds no data at all returns io.EOF; a value cut short
// returns io.ErrUnexpectedEOF.
type Reader struct {
	r   *bufio.Reader
	cfg config
	buf [8]byte
}

func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{r: bufio.NewReader(r), cfg: newConfig(opts)}
}

func (r *Reader) fill(n int) ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		return nil, err
	}
	return r.buf[:n], nil
}

func (r *Reader) ReadUint8() (uint8, error) { return r.r.ReadByte() }

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.r.ReadByte()
	return int8(b), err
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return r.cfg.order.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return r.cfg.order.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return r.cfg.order.Uint64(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.r.ReadByte()
	return b != 0, err
}

// Read7BitEncodedInt reads a value written by Write7BitEncodedInt. More
// than five bytes, or a fifth byte with bits beyond 32, is ErrBadEncoding.
func (r *Reader) Read7BitEncodedInt() (int32, error) {
	u, err := r.read7(32)
	return int32(uint32(u)), err
}

// Read7BitEncodedInt64 reads a value written by Write7BitEncodedInt64,
// using at most ten bytes.
func (r *Reader) Read7BitEncodedInt64() (int64, error) {
	u, err := r.read7(64)
	return int64(u), err
}

func (r *Reader) read7(bits int) (uint64, error) {
	maxBytes := (bits + 6) / 7
	// The last byte carries the remaining high bits and no continuation.
	lastMax := byte(1<<(bits-7*(maxBytes-1)) - 1)

	var u uint64
	for i := 0; i < maxBytes; i++ {
		b, err := r.r.ReadByte()
		if err != nil {
			if i > 0 {
				err = unexpected(err)
			}
			return 0, err
		}
		if i == maxBytes-1 && b > lastMax {
			return 0, ErrBadEncoding
		}
		u |= uint64(b&0x7f) << (7 * uint(i))
		if b < 0x80 {
			return u, nil
		}
	}
	return 0, ErrBadEncoding
}

func (r *Reader) decode(b []byte) (string, error) {
	s, err := r.cfg.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("xio: decode: %w", err)
	}
	return string(s), nil
}

func (r *Reader) length() (int, error) {
	n, err := r.Read7BitEncodedInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrBadEncoding, n)
	}
	if int(n) > r.cfg.maxLen {
		return 0, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, n, r.cfg.maxLen)
	}
	return int(n), nil
}

// ReadBytes reads a byte slice written by WriteBytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, unexpected(err)
	}
	return b, nil
}

// ReadString reads a string written by WriteString.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return r.decode(b)
}

// ReadFixedString reads n bytes and decodes them, dropping trailing NULs.
func (r *Reader) ReadFixedString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", err
	}
	s, err := r.decode(b)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\x00"), nil
}

// ReadCString reads up to and including an encoded NUL and returns the text
// before it. Multi-byte encodings only match a NUL on a code unit boundary.
func (r *Reader) ReadCString() (string, error) {
	nul, err := r.cfg.nul()
	if err != nil {
		return "", err
	}
	unit := len(nul)
	var b []byte
	for {
		c, err := r.r.ReadByte()
		if err != nil {
			if len(b) > 0 {
				err = unexpected(err)
			}
			return "", err
		}
		b = append(b, c)
		if len(b)%unit == 0 && bytes.HasSuffix(b, nul) {
			return r.decode(b[:len(b)-unit])
		}
		if len(b) > r.cfg.maxLen+unit {
			return "", fmt.Errorf("%w: no terminator within %d bytes", ErrTooLong, r.cfg.maxLen)
		}
	}
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
