// Package archive reads and writes zstd-compressed document containers.
package archive

import (
	"encoding/binary"
	"fmt"
)

// Magic bytes identifying a container header.
var Magic = [4]byte{'Y', 'M', 'Z', '1'}

// HeaderSize is the fixed binary size of a container header.
const HeaderSize = 24 // 4 + 2 + 2 + 8 + 8 bytes

// FormatVersion is the only header version written and accepted.
const FormatVersion uint16 = 1

// Kind identifies the document stored in a container.
type Kind uint16

const (
	KindJSON     Kind = 1
	KindYAML     Kind = 2
	KindManifest Kind = 3 // binary package manifest
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindYAML:
		return "yaml"
	case KindManifest:
		return "manifest"
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// Header precedes the zstd stream of a container.
type Header struct {
	Magic            [4]byte
	Version          uint16
	Kind             Kind
	Length           uint64 // Uncompressed size
	CompressedLength uint64 // Compressed size
}

// NewHeader returns a header for a document of the given kind and sizes.
func NewHeader(kind Kind, uncompressedSize, compressedSize uint64) *Header {
	return &Header{
		Magic:            Magic,
		Version:          FormatVersion,
		Kind:             kind,
		Length:           uncompressedSize,
		CompressedLength: compressedSize,
	}
}

// Size returns the binary size of the header.
func (h *Header) Size() int {
	return HeaderSize
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("invalid magic: expected %x, got %x", Magic, h.Magic)
	}
	if h.Version != FormatVersion {
		return fmt.Errorf("unsupported container version %d", h.Version)
	}
	switch h.Kind {
	case KindJSON, KindYAML, KindManifest:
	default:
		return fmt.Errorf("unknown document kind %d", uint16(h.Kind))
	}
	if h.Length == 0 {
		return fmt.Errorf("uncompressed size is zero")
	}
	if h.CompressedLength == 0 {
		return fmt.Errorf("compressed size is zero")
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h.Kind))
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	h.Kind = Kind(binary.LittleEndian.Uint16(buf[6:8]))
	h.Length = binary.LittleEndian.Uint64(buf[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(buf[16:24])
}

// IsContainer reports whether data starts with the container magic.
func IsContainer(data []byte) bool {
	return len(data) >= 4 && [4]byte(data[:4]) == Magic
}
