package archive

import (
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

const (
	// DefaultCompressionLevel is the default compression level for encoding.
	DefaultCompressionLevel = zstd.BestSpeed

	// BestCompressionLevel trades speed for size; used for archived manifests.
	BestCompressionLevel = zstd.BestCompression

	// MaxDocumentSize bounds the uncompressed size a container may declare.
	MaxDocumentSize = 1 << 30
)

// Reader decompresses the document stored in a container.
type Reader struct {
	header    *Header
	zReader   io.ReadCloser
	headerBuf [HeaderSize]byte
}

// NewReader reads and validates the header from r and returns a reader
// for the decompressed document.
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{
		header: &Header{},
	}

	if _, err := io.ReadFull(r, reader.headerBuf[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if err := reader.header.UnmarshalBinary(reader.headerBuf[:]); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if reader.header.Length > MaxDocumentSize {
		return nil, fmt.Errorf("document too large: %d bytes", reader.header.Length)
	}

	reader.zReader = zstd.NewReader(r)
	return reader, nil
}

// Kind returns the kind of the stored document.
func (r *Reader) Kind() Kind {
	return r.header.Kind
}

// Read reads decompressed data into p.
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.zReader.Read(p)
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.zReader.Close()
}

// Length returns the uncompressed document length.
func (r *Reader) Length() int {
	return int(r.header.Length)
}

// ReadAll reads the entire decompressed document from a container.
func ReadAll(r io.Reader) ([]byte, Kind, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	data := make([]byte, reader.Length())
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, 0, fmt.Errorf("read content: %w", err)
	}

	return data, reader.Kind(), nil
}
