package binio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Reader decodes primitives sequentially from a byte buffer.
// Every read is bounds-checked before it touches the stream, so a short
// buffer fails with ErrOutOfBounds instead of yielding a partial value.
type Reader struct {
	data   []byte
	off    int
	cfg    Config
	stream *kaitai.Stream
	text   *encoding.Decoder
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte, cfg Config) *Reader {
	return &Reader{
		data:   data,
		cfg:    cfg.normalize(),
		stream: kaitai.NewStream(bytes.NewReader(data)),
		text:   unicode.UTF8.NewDecoder(),
	}
}

// Config returns the reader configuration.
func (r *Reader) Config() Config {
	return r.cfg
}

// Offset returns the cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// SetOffset moves the cursor to an absolute position within the buffer.
func (r *Reader) SetOffset(off int) error {
	if off < 0 || off > len(r.data) {
		return &BoundsError{Offset: r.off, Need: off - r.off, Remaining: r.Remaining()}
	}
	if _, err := r.stream.Seek(int64(off), io.SeekStart); err != nil {
		return fmt.Errorf("binio: seek: %w", err)
	}
	r.off = off
	return nil
}

// Seek advances the cursor by n bytes without reading them.
func (r *Reader) Seek(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	return r.SetOffset(r.off + n)
}

func (r *Reader) need(n int) error {
	if n < 0 || n > r.Remaining() {
		return &BoundsError{Offset: r.off, Need: n, Remaining: r.Remaining()}
	}
	return nil
}

func (r *Reader) advance(n int, err error) error {
	if err != nil {
		return fmt.Errorf("binio: read at offset %d: %w", r.off, err)
	}
	r.off += n
	return nil
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v, err := r.stream.ReadU1()
	return v, r.advance(1, err)
}

// Bool reads a byte and reports whether it is non-zero.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Byte()
	return v != 0, err
}

// Int8 reads a signed byte.
func (r *Reader) Int8() (int8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v, err := r.stream.ReadS1()
	return v, r.advance(1, err)
}

// Int16 reads a signed 16-bit integer.
func (r *Reader) Int16() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	var (
		v   int16
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadS2be()
	} else {
		v, err = r.stream.ReadS2le()
	}
	return v, r.advance(2, err)
}

// Uint16 reads an unsigned 16-bit integer.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	var (
		v   uint16
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadU2be()
	} else {
		v, err = r.stream.ReadU2le()
	}
	return v, r.advance(2, err)
}

// Int32 reads a signed 32-bit integer.
func (r *Reader) Int32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	var (
		v   int32
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadS4be()
	} else {
		v, err = r.stream.ReadS4le()
	}
	return v, r.advance(4, err)
}

// Uint32 reads an unsigned 32-bit integer.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	var (
		v   uint32
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadU4be()
	} else {
		v, err = r.stream.ReadU4le()
	}
	return v, r.advance(4, err)
}

// Int64 reads a signed 64-bit integer.
func (r *Reader) Int64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	var (
		v   int64
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadS8be()
	} else {
		v, err = r.stream.ReadS8le()
	}
	return v, r.advance(8, err)
}

// Uint64 reads an unsigned 64-bit integer.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	var (
		v   uint64
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadU8be()
	} else {
		v, err = r.stream.ReadU8le()
	}
	return v, r.advance(8, err)
}

// Float32 reads an IEEE-754 single precision value.
func (r *Reader) Float32() (float32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	var (
		v   float32
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadF4be()
	} else {
		v, err = r.stream.ReadF4le()
	}
	return v, r.advance(4, err)
}

// Float64 reads an IEEE-754 double precision value.
func (r *Reader) Float64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	var (
		v   float64
		err error
	)
	if r.cfg.Endian == BigEndian {
		v, err = r.stream.ReadF8be()
	} else {
		v, err = r.stream.ReadF8le()
	}
	return v, r.advance(8, err)
}

// Bytes reads n raw bytes. The returned slice is a copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	b, err := r.stream.ReadBytes(n)
	return b, r.advance(n, err)
}

// Text reads a length prefix of the configured width followed by that many
// UTF-8 bytes. Invalid sequences decode to U+FFFD.
func (r *Reader) Text() (string, error) {
	n, err := r.length()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	raw, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	decoded, err := r.text.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("binio: decode text at offset %d: %w", r.off-len(raw), err)
	}
	return string(decoded), nil
}

func (r *Reader) length() (uint64, error) {
	switch r.cfg.LengthWidth {
	case Length8:
		v, err := r.Byte()
		return uint64(v), err
	case Length16:
		v, err := r.Uint16()
		return uint64(v), err
	case Length32:
		v, err := r.Uint32()
		return uint64(v), err
	}
	return 0, fmt.Errorf("%w: %d", ErrLengthWidth, r.cfg.LengthWidth)
}
