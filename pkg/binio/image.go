package binio

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// PNGSignature opens every PNG stream.
var PNGSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const (
	ihdrChunkSize = 25 // length + type + 13 bytes of data + crc
	chunkCRCSize  = 4
)

var (
	idatType = []byte("IDAT")
	iendType = []byte("IEND")
)

// ExtractImageBlock carves a complete PNG stream starting at the cursor
// without decoding it. Only IHDR, IDAT and IEND chunks are accepted.
// The returned slice is a copy and the cursor is left at the start of the block.
func (r *Reader) ExtractImageBlock() ([]byte, error) {
	start := r.off
	block, err := r.scanImageBlock()
	if serr := r.SetOffset(start); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (r *Reader) scanImageBlock() ([]byte, error) {
	start := r.off

	sig, err := r.Bytes(len(PNGSignature))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, PNGSignature) {
		return nil, &FormatError{Offset: start, Reason: "invalid PNG signature"}
	}

	if err := r.Seek(ihdrChunkSize); err != nil {
		return nil, err
	}

	// Chunk lengths are big-endian regardless of the reader configuration.
	// A length that is not positive as an int32 ends the IDAT run.
	for {
		lenBuf, err := r.Bytes(4)
		if err != nil {
			return nil, err
		}
		size := int32(binary.BigEndian.Uint32(lenBuf))

		chunkAt := r.off
		chunkType, err := r.Bytes(4)
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			if !bytes.Equal(chunkType, iendType) {
				return nil, &FormatError{Offset: chunkAt, Reason: "expected IEND chunk, got " + string(chunkType)}
			}
			break
		}
		if !bytes.Equal(chunkType, idatType) {
			return nil, &FormatError{Offset: chunkAt, Reason: "expected IDAT chunk, got " + string(chunkType)}
		}
		if err := r.Seek(int(size) + chunkCRCSize); err != nil {
			return nil, err
		}
	}

	if err := r.Seek(chunkCRCSize); err != nil {
		return nil, err
	}

	block := make([]byte, r.off-start)
	copy(block, r.data[start:r.off])
	return block, nil
}

// FindImageBlocks returns every well-formed PNG stream embedded in data, in
// order of appearance. Signatures that do not start a valid block are skipped.
func FindImageBlocks(data []byte, cfg Config) ([][]byte, error) {
	var blocks [][]byte
	r := NewReader(data, cfg)

	for from := 0; from < len(data); {
		i := bytes.Index(data[from:], PNGSignature)
		if i < 0 {
			break
		}
		at := from + i
		if err := r.SetOffset(at); err != nil {
			return nil, err
		}

		block, err := r.ExtractImageBlock()
		switch {
		case err == nil:
			blocks = append(blocks, block)
			from = at + len(block)
		case errors.Is(err, ErrFormat), errors.Is(err, ErrOutOfBounds):
			from = at + 1
		default:
			return nil, err
		}
	}
	return blocks, nil
}
