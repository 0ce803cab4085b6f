package binio

import (
	"bytes"
	"fmt"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
)

// Writer encodes primitives sequentially into a growing buffer.
// The first failure is kept and every later write becomes a no-op;
// Bytes reports it.
type Writer struct {
	buf    *bytes.Buffer
	cfg    Config
	stream *kaitai.Writer
	err    error
}

// NewWriter returns an empty Writer.
func NewWriter(cfg Config) *Writer {
	buf := bytes.NewBuffer(nil)
	return &Writer{
		buf:    buf,
		cfg:    cfg.normalize(),
		stream: kaitai.NewWriter(buf),
	}
}

// Config returns the writer configuration.
func (w *Writer) Config() Config {
	return w.cfg
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Bytes returns the encoded buffer or the first error encountered.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

func (w *Writer) fail(err error) {
	if err != nil && w.err == nil {
		w.err = err
	}
}

func (w *Writer) be() bool {
	return w.cfg.Endian == BigEndian
}

// Byte writes a single byte.
func (w *Writer) Byte(v byte) {
	if w.err != nil {
		return
	}
	w.fail(w.stream.WriteU1(v))
}

// Bool writes 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.Byte(1)
		return
	}
	w.Byte(0)
}

// Int8 writes a signed byte.
func (w *Writer) Int8(v int8) {
	if w.err != nil {
		return
	}
	w.fail(w.stream.WriteS1(v))
}

// Int16 writes a signed 16-bit integer.
func (w *Writer) Int16(v int16) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteS2be(v))
		return
	}
	w.fail(w.stream.WriteS2le(v))
}

// Uint16 writes an unsigned 16-bit integer.
func (w *Writer) Uint16(v uint16) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteU2be(v))
		return
	}
	w.fail(w.stream.WriteU2le(v))
}

// Int32 writes a signed 32-bit integer.
func (w *Writer) Int32(v int32) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteS4be(v))
		return
	}
	w.fail(w.stream.WriteS4le(v))
}

// Uint32 writes an unsigned 32-bit integer.
func (w *Writer) Uint32(v uint32) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteU4be(v))
		return
	}
	w.fail(w.stream.WriteU4le(v))
}

// Int64 writes a signed 64-bit integer.
func (w *Writer) Int64(v int64) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteS8be(v))
		return
	}
	w.fail(w.stream.WriteS8le(v))
}

// Uint64 writes an unsigned 64-bit integer.
func (w *Writer) Uint64(v uint64) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteU8be(v))
		return
	}
	w.fail(w.stream.WriteU8le(v))
}

// Float32 writes an IEEE-754 single precision value.
func (w *Writer) Float32(v float32) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteF4be(v))
		return
	}
	w.fail(w.stream.WriteF4le(v))
}

// Float64 writes an IEEE-754 double precision value.
func (w *Writer) Float64(v float64) {
	if w.err != nil {
		return
	}
	if w.be() {
		w.fail(w.stream.WriteF8be(v))
		return
	}
	w.fail(w.stream.WriteF8le(v))
}

// Raw writes b verbatim.
func (w *Writer) Raw(b []byte) {
	if w.err != nil || len(b) == 0 {
		return
	}
	w.fail(w.stream.WriteBytes(b))
}

// Text writes the UTF-8 bytes of s behind a length prefix of the configured width.
func (w *Writer) Text(s string) {
	if w.err != nil {
		return
	}
	if !w.cfg.LengthWidth.valid() {
		w.fail(fmt.Errorf("%w: %d", ErrLengthWidth, w.cfg.LengthWidth))
		return
	}
	if uint64(len(s)) > w.cfg.LengthWidth.Max() {
		w.fail(fmt.Errorf("%w: %d bytes for %d-byte prefix", ErrTextTooLong, len(s), w.cfg.LengthWidth))
		return
	}
	switch w.cfg.LengthWidth {
	case Length8:
		w.Byte(uint8(len(s)))
	case Length16:
		w.Uint16(uint16(len(s)))
	case Length32:
		w.Uint32(uint32(len(s)))
	}
	w.Raw([]byte(s))
}
