package xio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// Writer encodes values to an underlying io.Writer. Output is buffered;
// call Flush when done.
type Writer struct {
	w   *bufio.Writer
	cfg config
	buf [10]byte
}

func NewWriter(w io.Writer, opts ...Option) *Writer {
	return &Writer{w: bufio.NewWriter(w), cfg: newConfig(opts)}
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

func (w *Writer) write(p []byte) error {
	_, err := w.w.Write(p)
	return err
}

func (w *Writer) WriteUint8(v uint8) error { return w.w.WriteByte(v) }
func (w *Writer) WriteInt8(v int8) error   { return w.w.WriteByte(uint8(v)) }

func (w *Writer) WriteUint16(v uint16) error {
	w.cfg.order.PutUint16(w.buf[:2], v)
	return w.write(w.buf[:2])
}

func (w *Writer) WriteUint32(v uint32) error {
	w.cfg.order.PutUint32(w.buf[:4], v)
	return w.write(w.buf[:4])
}

func (w *Writer) WriteUint64(v uint64) error {
	w.cfg.order.PutUint64(w.buf[:8], v)
	return w.write(w.buf[:8])
}

func (w *Writer) WriteInt16(v int16) error { return w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) error { return w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) error { return w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) error { return w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) error { return w.WriteUint64(math.Float64bits(v)) }

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.w.WriteByte(1)
	}
	return w.w.WriteByte(0)
}

// Write7BitEncodedInt writes v seven bits at a time, low bits first, with
// the high bit of each byte set while more bytes follow. Negative values
// always take five bytes.
func (w *Writer) Write7BitEncodedInt(v int32) error {
	return w.write7(uint64(uint32(v)))
}

// Write7BitEncodedInt64 is Write7BitEncodedInt for 64-bit values; negative
// values take ten bytes.
func (w *Writer) Write7BitEncodedInt64(v int64) error {
	return w.write7(uint64(v))
}

func (w *Writer) write7(u uint64) error {
	n := 0
	for u >= 0x80 {
		w.buf[n] = byte(u) | 0x80
		u >>= 7
		n++
	}
	w.buf[n] = byte(u)
	return w.write(w.buf[:n+1])
}

func (w *Writer) encode(s string) ([]byte, error) {
	b, err := w.cfg.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("xio: encode %q: %w", s, err)
	}
	return b, nil
}

// WriteString writes the encoded byte count as a 7-bit encoded integer
// followed by the encoded text.
func (w *Writer) WriteString(s string) error {
	b, err := w.encode(s)
	if err != nil {
		return err
	}
	return w.WriteBytes(b)
}

// WriteBytes writes len(b) as a 7-bit encoded integer followed by b.
func (w *Writer) WriteBytes(b []byte) error {
	if len(b) > w.cfg.maxLen {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, len(b), w.cfg.maxLen)
	}
	if err := w.Write7BitEncodedInt(int32(len(b))); err != nil {
		return err
	}
	return w.write(b)
}

// WriteFixedString writes s encoded into exactly n bytes, padded with
// zero bytes. Text that does not fit is ErrTooLong.
func (w *Writer) WriteFixedString(s string, n int) error {
	b, err := w.encode(s)
	if err != nil {
		return err
	}
	if len(b) > n {
		return fmt.Errorf("%w: %q needs %d bytes, field has %d", ErrTooLong, s, len(b), n)
	}
	if err := w.write(b); err != nil {
		return err
	}
	return w.write(make([]byte, n-len(b)))
}

// WriteCString writes s followed by one encoded NUL code unit. s must not
// contain NUL. An encoding that emits a byte order mark writes it before the
// text, as it does for WriteString.
func (w *Writer) WriteCString(s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("xio: C string %q contains NUL", s)
	}
	b, err := w.encode(s)
	if err != nil {
		return err
	}
	if len(b) > w.cfg.maxLen {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, len(b), w.cfg.maxLen)
	}
	nul, err := w.cfg.nul()
	if err != nil {
		return err
	}
	if err := w.write(b); err != nil {
		return err
	}
	return w.write(nul)
}
