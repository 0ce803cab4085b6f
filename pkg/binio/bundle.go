package binio

import (
	"fmt"
	"math"
)

// Kind identifies the encoding of a Field.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindByte
	KindInt8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindText
	KindRaw
)

var kindNames = map[Kind]string{
	KindBool:    "bool",
	KindByte:    "byte",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindUint16:  "uint16",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindText:    "text",
	KindRaw:     "raw",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Field is one tagged value for Bundle. Numeric payloads are stored as raw
// bits; options apply only to the kinds that use them.
type Field struct {
	Kind Kind

	bits uint64
	text string
	raw  []byte

	endian    Endian
	endianSet bool
	width     LengthWidth
	noLength  bool
}

// BoolField returns a one-byte boolean field.
func BoolField(v bool) Field {
	if v {
		return Field{Kind: KindBool, bits: 1}
	}
	return Field{Kind: KindBool}
}

// ByteField returns a single-byte field.
func ByteField(v byte) Field { return Field{Kind: KindByte, bits: uint64(v)} }

// Int8Field returns a signed single-byte field.
func Int8Field(v int8) Field { return Field{Kind: KindInt8, bits: uint64(uint8(v))} }

// Int16Field returns a signed 2-byte field.
func Int16Field(v int16) Field { return Field{Kind: KindInt16, bits: uint64(uint16(v))} }

// Uint16Field returns an unsigned 2-byte field.
func Uint16Field(v uint16) Field { return Field{Kind: KindUint16, bits: uint64(v)} }

// Int32Field returns a signed 4-byte field.
func Int32Field(v int32) Field { return Field{Kind: KindInt32, bits: uint64(uint32(v))} }

// Uint32Field returns an unsigned 4-byte field.
func Uint32Field(v uint32) Field { return Field{Kind: KindUint32, bits: uint64(v)} }

// Int64Field returns a signed 8-byte field.
func Int64Field(v int64) Field { return Field{Kind: KindInt64, bits: uint64(v)} }

// Uint64Field returns an unsigned 8-byte field.
func Uint64Field(v uint64) Field { return Field{Kind: KindUint64, bits: v} }

// Float32Field returns an IEEE 754 single-precision field.
func Float32Field(v float32) Field { return Field{Kind: KindFloat32, bits: uint64(math.Float32bits(v))} }

// Float64Field returns an IEEE 754 double-precision field.
func Float64Field(v float64) Field { return Field{Kind: KindFloat64, bits: math.Float64bits(v)} }

// TextField returns a UTF-8 text field, length-prefixed unless WithoutLength is applied.
func TextField(v string) Field { return Field{Kind: KindText, text: v} }

// RawField returns a field that copies v verbatim.
func RawField(v []byte) Field { return Field{Kind: KindRaw, raw: v} }

// WithEndian overrides the bundle byte order for a numeric field.
func (f Field) WithEndian(e Endian) Field {
	f.endian = e
	f.endianSet = true
	return f
}

// WithLengthWidth overrides the bundle length-prefix width for a text field.
func (f Field) WithLengthWidth(w LengthWidth) Field {
	f.width = w
	return f
}

// WithoutLength writes a text field as bare UTF-8 bytes.
func (f Field) WithoutLength() Field {
	f.noLength = true
	return f
}

func (f Field) size(cfg Config) (int, error) {
	switch f.Kind {
	case KindBool, KindByte, KindInt8:
		return 1, nil
	case KindInt16, KindUint16:
		return 2, nil
	case KindInt32, KindUint32, KindFloat32:
		return 4, nil
	case KindInt64, KindUint64, KindFloat64:
		return 8, nil
	case KindRaw:
		return len(f.raw), nil
	case KindText:
		if f.noLength {
			return len(f.text), nil
		}
		w := f.lengthWidth(cfg)
		if !w.valid() {
			return 0, fmt.Errorf("%w: %d", ErrLengthWidth, w)
		}
		if uint64(len(f.text)) > w.Max() {
			return 0, fmt.Errorf("%w: %d bytes for %d-byte prefix", ErrTextTooLong, len(f.text), w)
		}
		return int(w) + len(f.text), nil
	}
	return 0, fmt.Errorf("binio: unknown field kind %s", f.Kind)
}

func (f Field) lengthWidth(cfg Config) LengthWidth {
	if f.width != 0 {
		return f.width
	}
	return cfg.LengthWidth
}

func (f Field) put(dst []byte, cfg Config) int {
	e := cfg.Endian
	if f.endianSet {
		e = f.endian
	}
	order := e.order()

	switch f.Kind {
	case KindBool, KindByte, KindInt8:
		dst[0] = byte(f.bits)
		return 1
	case KindInt16, KindUint16:
		order.PutUint16(dst, uint16(f.bits))
		return 2
	case KindInt32, KindUint32, KindFloat32:
		order.PutUint32(dst, uint32(f.bits))
		return 4
	case KindInt64, KindUint64, KindFloat64:
		order.PutUint64(dst, f.bits)
		return 8
	case KindRaw:
		return copy(dst, f.raw)
	case KindText:
		if f.noLength {
			return copy(dst, f.text)
		}
		// Length prefixes follow the bundle byte order, not the field override.
		lorder := cfg.Endian.order()
		w := f.lengthWidth(cfg)
		switch w {
		case Length8:
			dst[0] = byte(len(f.text))
		case Length16:
			lorder.PutUint16(dst, uint16(len(f.text)))
		case Length32:
			lorder.PutUint32(dst, uint32(len(f.text)))
		}
		return int(w) + copy(dst[w:], f.text)
	}
	return 0
}

// Bundle concatenates the encodings of fields into one buffer. The total
// size is computed first so the output is allocated exactly once.
func Bundle(cfg Config, fields ...Field) ([]byte, error) {
	cfg = cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	total := 0
	for i, f := range fields {
		n, err := f.size(cfg)
		if err != nil {
			return nil, fmt.Errorf("bundle field %d (%s): %w", i, f.Kind, err)
		}
		total += n
	}

	out := make([]byte, total)
	off := 0
	for _, f := range fields {
		off += f.put(out[off:], cfg)
	}
	return out, nil
}
