// Package binio provides a cursor-based binary reader and writer with a
// configurable byte order and length-prefix width for text fields.
package binio

import (
	"encoding/binary"
	"fmt"
)

// Endian selects the byte order of multi-byte values.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

// String returns "little" or "big".
func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

func (e Endian) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// LengthWidth is the byte width of the length prefix written before text.
type LengthWidth uint8

const (
	Length8  LengthWidth = 1
	Length16 LengthWidth = 2
	Length32 LengthWidth = 4
)

// Max returns the largest length the prefix can express.
func (w LengthWidth) Max() uint64 {
	switch w {
	case Length8:
		return 0xff
	case Length16:
		return 0xffff
	case Length32:
		return 0xffffffff
	}
	return 0
}

// ParseLengthWidth converts a byte count to a LengthWidth. Only 1, 2 and 4
// are accepted.
func ParseLengthWidth(n int) (LengthWidth, error) {
	switch n {
	case 1, 2, 4:
		return LengthWidth(n), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrLengthWidth, n)
}

func (w LengthWidth) valid() bool {
	return w == Length8 || w == Length16 || w == Length32
}

// Config holds the codec settings shared by a Reader and its matching Writer.
// The zero value is little-endian with a 2-byte length prefix.
type Config struct {
	Endian      Endian
	LengthWidth LengthWidth
}

// DefaultConfig returns little-endian with 2-byte length prefixes.
func DefaultConfig() Config {
	return Config{Endian: LittleEndian, LengthWidth: Length16}
}

// Validate checks the length width and byte order.
func (c Config) Validate() error {
	c = c.normalize()
	if !c.LengthWidth.valid() {
		return fmt.Errorf("%w: %d", ErrLengthWidth, c.LengthWidth)
	}
	if c.Endian != LittleEndian && c.Endian != BigEndian {
		return fmt.Errorf("binio: invalid endian %d", c.Endian)
	}
	return nil
}

func (c Config) normalize() Config {
	if c.LengthWidth == 0 {
		c.LengthWidth = Length16
	}
	return c
}
