package archive

import (
	"bytes"
	"io"
	"testing"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := NewHeader(KindYAML, 1024, 512)

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(data[:8], []byte{'Y', 'M', 'Z', '1', 1, 0, 2, 0}) {
			t.Errorf("header prefix: %x", data[:8])
		}

		decoded := &Header{}
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if *decoded != *original {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	invalid := map[string]func(h *Header){
		"InvalidMagic":   func(h *Header) { h.Magic = [4]byte{'Z', 'S', 'T', 'D'} },
		"InvalidVersion": func(h *Header) { h.Version = 2 },
		"UnknownKind":    func(h *Header) { h.Kind = 9 },
		"ZeroLength":     func(h *Header) { h.Length = 0 },
		"ZeroCompressed": func(h *Header) { h.CompressedLength = 0 },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			h := NewHeader(KindJSON, 1024, 512)
			mutate(h)
			if err := h.Validate(); err == nil {
				t.Errorf("expected validation error for %+v", h)
			}
		})
	}

	t.Run("Short", func(t *testing.T) {
		if err := (&Header{}).UnmarshalBinary(make([]byte, HeaderSize-1)); err == nil {
			t.Error("expected error for short header")
		}
	})

	t.Run("KindString", func(t *testing.T) {
		if KindManifest.String() != "manifest" || Kind(7).String() != "Kind(7)" {
			t.Errorf("unexpected names %q %q", KindManifest, Kind(7))
		}
	})
}

func TestReadWrite(t *testing.T) {
	original := []byte(`{"fileVersion":"1.5.2","packageName":"DefaultPackage"}`)

	t.Run("EncodeDecodeRoundTrip", func(t *testing.T) {
		ws := &seekableBuffer{Buffer: &bytes.Buffer{}}

		if err := Encode(ws, KindJSON, original); err != nil {
			t.Fatalf("encode: %v", err)
		}

		decoded, kind, err := ReadAll(bytes.NewReader(ws.Bytes()))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if kind != KindJSON {
			t.Errorf("kind: got %s, want json", kind)
		}
		if !bytes.Equal(decoded, original) {
			t.Errorf("data mismatch: got %q, want %q", decoded, original)
		}
	})

	t.Run("HeaderAtOffset", func(t *testing.T) {
		ws := &seekableBuffer{Buffer: &bytes.Buffer{}}
		ws.Write([]byte("prefix"))

		if err := Encode(ws, KindYAML, original, WithCompressionLevel(DefaultCompressionLevel)); err != nil {
			t.Fatalf("encode: %v", err)
		}

		var h Header
		if err := h.UnmarshalBinary(ws.Bytes()[6:]); err != nil {
			t.Fatalf("parse header: %v", err)
		}
		if got := int(h.CompressedLength); got != ws.Len()-6-HeaderSize {
			t.Errorf("compressed length: got %d, want %d", got, ws.Len()-6-HeaderSize)
		}

		r, err := NewReader(bytes.NewReader(ws.Bytes()[6:]))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer r.Close()

		if r.Kind() != KindYAML || r.Length() != len(original) {
			t.Errorf("got kind %s length %d", r.Kind(), r.Length())
		}
		decoded, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !bytes.Equal(decoded, original) {
			t.Errorf("data mismatch: got %q", decoded)
		}
	})

	t.Run("CompressReadAll", func(t *testing.T) {
		packed, err := Compress(KindManifest, original, DefaultCompressionLevel)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		if !IsContainer(packed) {
			t.Fatal("missing container magic")
		}

		decoded, kind, err := ReadAll(bytes.NewReader(packed))
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		if kind != KindManifest || !bytes.Equal(decoded, original) {
			t.Errorf("got kind %s data %q", kind, decoded)
		}

		if _, _, err := ReadAll(bytes.NewReader(packed[:len(packed)-1])); err == nil {
			t.Error("expected error for truncated container")
		}
	})

	t.Run("NotAContainer", func(t *testing.T) {
		if IsContainer(original) {
			t.Error("plain JSON reported as container")
		}
		if _, _, err := ReadAll(bytes.NewReader(original)); err == nil {
			t.Error("expected error for missing header")
		}
	})

	t.Run("Oversized", func(t *testing.T) {
		h := NewHeader(KindJSON, MaxDocumentSize+1, 1)
		data, _ := h.MarshalBinary()
		if _, err := NewReader(bytes.NewReader(append(data, 0))); err == nil {
			t.Error("expected error for oversized document")
		}
	})
}

type seekableBuffer struct {
	*bytes.Buffer
	pos int64
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = int64(s.Buffer.Len()) + offset
	}
	s.pos = newPos
	return newPos, nil
}

func (s *seekableBuffer) Write(p []byte) (n int, err error) {
	for int64(s.Buffer.Len()) < s.pos {
		s.Buffer.WriteByte(0)
	}
	if s.pos < int64(s.Buffer.Len()) {
		data := s.Buffer.Bytes()
		n = copy(data[s.pos:], p)
		if n < len(p) {
			m, err := s.Buffer.Write(p[n:])
			n += m
			if err != nil {
				return n, err
			}
		}
	} else {
		n, err = s.Buffer.Write(p)
	}
	s.pos += int64(n)
	return n, err
}
