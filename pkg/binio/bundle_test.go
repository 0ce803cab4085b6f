package binio

import (
	"bytes"
	"errors"
	"testing"
)

func TestBundle(t *testing.T) {
	t.Run("MatchesWriter", func(t *testing.T) {
		for _, cfg := range []Config{DefaultConfig(), {Endian: BigEndian, LengthWidth: Length32}} {
			bundled, err := Bundle(cfg,
				BoolField(true),
				ByteField(9),
				Int8Field(-1),
				Int16Field(-300),
				Uint16Field(300),
				Int32Field(-70000),
				Uint32Field(70000),
				Int64Field(-1<<40),
				Uint64Field(1<<60),
				Float32Field(1.5),
				Float64Field(2.75),
				TextField("1.5.2"),
				RawField([]byte{0xde, 0xad}),
			)
			if err != nil {
				t.Fatalf("bundle: %v", err)
			}

			w := NewWriter(cfg)
			w.Bool(true)
			w.Byte(9)
			w.Int8(-1)
			w.Int16(-300)
			w.Uint16(300)
			w.Int32(-70000)
			w.Uint32(70000)
			w.Int64(-1 << 40)
			w.Uint64(1 << 60)
			w.Float32(1.5)
			w.Float64(2.75)
			w.Text("1.5.2")
			w.Raw([]byte{0xde, 0xad})
			written, err := w.Bytes()
			if err != nil {
				t.Fatalf("write: %v", err)
			}

			if !bytes.Equal(bundled, written) {
				t.Errorf("%s endian: bundle %x, writer %x", cfg.Endian, bundled, written)
			}
		}
	})

	t.Run("FieldOptions", func(t *testing.T) {
		got, err := Bundle(DefaultConfig(),
			Uint16Field(0x0102).WithEndian(BigEndian),
			TextField("ab").WithLengthWidth(Length8),
			TextField("cd").WithoutLength(),
		)
		if err != nil {
			t.Fatalf("bundle: %v", err)
		}
		want := []byte{0x01, 0x02, 0x02, 'a', 'b', 'c', 'd'}
		if !bytes.Equal(got, want) {
			t.Errorf("got %x, want %x", got, want)
		}
	})

	t.Run("ExactAllocation", func(t *testing.T) {
		got, err := Bundle(DefaultConfig(), TextField("abc"), Int32Field(1))
		if err != nil {
			t.Fatalf("bundle: %v", err)
		}
		if len(got) != 9 || cap(got) != 9 {
			t.Errorf("len %d cap %d, want 9", len(got), cap(got))
		}
	})

	t.Run("TextTooLong", func(t *testing.T) {
		_, err := Bundle(DefaultConfig(), TextField(string(make([]byte, 300))).WithLengthWidth(Length8))
		if !errors.Is(err, ErrTextTooLong) {
			t.Errorf("expected ErrTextTooLong, got %v", err)
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		if _, err := Bundle(DefaultConfig(), Field{Kind: 99}); err == nil {
			t.Error("expected error for unknown kind")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		got, err := Bundle(DefaultConfig())
		if err != nil || len(got) != 0 {
			t.Errorf("got %x, %v", got, err)
		}
	})
}
