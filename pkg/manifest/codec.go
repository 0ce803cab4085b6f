package manifest

import (
	"fmt"
	"math"

	"github.com/yooasset/manifestTools/pkg/binio"
)

// Config selects the codec settings and signature table used by Decode and Encode.
type Config struct {
	Codec      binio.Config
	Signatures Signatures // nil means DefaultSignatures
}

// DefaultConfig returns little-endian, 2-byte length prefixes and the built-in signatures.
func DefaultConfig() Config {
	return Config{Codec: binio.DefaultConfig(), Signatures: DefaultSignatures()}
}

// Validate checks the codec settings.
func (c Config) Validate() error {
	return c.Codec.Validate()
}

func (c Config) signature(version string) (Signature, error) {
	sigs := c.Signatures
	if sigs == nil {
		sigs = DefaultSignatures()
	}
	sig, ok := sigs.Lookup(version)
	if !ok {
		return Signature{}, &UnknownVersionError{Version: version}
	}
	return sig, nil
}

// Decode parses a manifest that must carry the given format version.
// Bytes after the last bundle record are ignored.
func Decode(data []byte, version string, cfg Config) (*Manifest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sig, err := cfg.signature(version)
	if err != nil {
		return nil, err
	}

	r := binio.NewReader(data, cfg.Codec)

	magic, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("read signature: %w", err)
	}
	if want := sig.Uint32(cfg.Codec.Endian); magic != want {
		return nil, &SignatureError{Found: magic, Expected: want}
	}

	m := &Manifest{}
	if m.FileVersion, err = r.Text(); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if m.FileVersion != version {
		return nil, &VersionError{Found: m.FileVersion, Expected: version}
	}

	if err := decodeHeader(r, m); err != nil {
		return nil, err
	}
	if err := decodeAssets(r, m); err != nil {
		return nil, err
	}
	if err := decodeBundles(r, m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeHeader(r *binio.Reader, m *Manifest) error {
	var err error
	if m.EnableAddressable, err = r.Bool(); err != nil {
		return fmt.Errorf("read enableAddressable: %w", err)
	}
	if m.LocationToLower, err = r.Bool(); err != nil {
		return fmt.Errorf("read locationToLower: %w", err)
	}
	if m.IncludeAssetGUID, err = r.Bool(); err != nil {
		return fmt.Errorf("read includeAssetGUID: %w", err)
	}
	if err := m.Validate(); err != nil {
		return err
	}

	outputNameType, err := r.Int32()
	if err != nil {
		return fmt.Errorf("read outputNameType: %w", err)
	}
	m.OutputNameType = OutputNameType(outputNameType)

	if m.PackageName, err = r.Text(); err != nil {
		return fmt.Errorf("read packageName: %w", err)
	}
	if m.PackageVersion, err = r.Text(); err != nil {
		return fmt.Errorf("read packageVersion: %w", err)
	}
	return nil
}

func decodeAssets(r *binio.Reader, m *Manifest) error {
	width := int(r.Config().LengthWidth)
	count, err := readCount(r, width+4+2)
	if err != nil {
		return fmt.Errorf("read asset count: %w", err)
	}

	m.Assets = make([]AssetInfo, count)
	for i := range m.Assets {
		a := &m.Assets[i]
		if a.AssetPath, err = r.Text(); err != nil {
			return fmt.Errorf("read asset %d path: %w", i, err)
		}
		if a.BundleID, err = r.Int32(); err != nil {
			return fmt.Errorf("read asset %d bundleID: %w", i, err)
		}
		if a.DependIDs, err = readIDs(r); err != nil {
			return fmt.Errorf("read asset %d dependIDs: %w", i, err)
		}
	}
	return nil
}

func decodeBundles(r *binio.Reader, m *Manifest) error {
	width := int(r.Config().LengthWidth)
	count, err := readCount(r, 3*width+4+8+1+1+2)
	if err != nil {
		return fmt.Errorf("read bundle count: %w", err)
	}

	m.Bundles = make([]BundleInfo, count)
	for i := range m.Bundles {
		b := &m.Bundles[i]
		if b.BundleName, err = r.Text(); err != nil {
			return fmt.Errorf("read bundle %d name: %w", i, err)
		}
		if b.UnityCRC, err = r.Uint32(); err != nil {
			return fmt.Errorf("read bundle %d unityCRC: %w", i, err)
		}
		if b.FileHash, err = r.Text(); err != nil {
			return fmt.Errorf("read bundle %d fileHash: %w", i, err)
		}
		if b.FileCRC, err = r.Text(); err != nil {
			return fmt.Errorf("read bundle %d fileCRC: %w", i, err)
		}
		if b.FileSize, err = r.Int64(); err != nil {
			return fmt.Errorf("read bundle %d fileSize: %w", i, err)
		}
		if b.IsRawFile, err = r.Bool(); err != nil {
			return fmt.Errorf("read bundle %d isRawFile: %w", i, err)
		}
		if b.LoadMethod, err = r.Byte(); err != nil {
			return fmt.Errorf("read bundle %d loadMethod: %w", i, err)
		}
		if b.ReferenceIDs, err = readIDs(r); err != nil {
			return fmt.Errorf("read bundle %d referenceIDs: %w", i, err)
		}
	}
	return nil
}

// readCount reads an int32 record count and rejects counts whose records
// cannot fit in the remaining bytes, each record taking at least minSize.
func readCount(r *binio.Reader, minSize int) (int, error) {
	off := r.Offset()
	n, err := r.Int32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int64(n)*int64(minSize) > int64(r.Remaining()) {
		return 0, &binio.BoundsError{Offset: off, Need: int(n) * minSize, Remaining: r.Remaining()}
	}
	return int(n), nil
}

func readIDs(r *binio.Reader) ([]int32, error) {
	n, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	if int(n)*4 > r.Remaining() {
		return nil, &binio.BoundsError{Offset: r.Offset(), Need: int(n) * 4, Remaining: r.Remaining()}
	}
	ids := make([]int32, n)
	for i := range ids {
		if ids[i], err = r.Int32(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Encode serializes m in the layout Decode reads. The signature is looked
// up by m.FileVersion.
func Encode(m *Manifest, cfg Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	sig, err := cfg.signature(m.FileVersion)
	if err != nil {
		return nil, err
	}
	if len(m.Assets) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d assets", ErrTooManyItems, len(m.Assets))
	}
	if len(m.Bundles) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d bundles", ErrTooManyItems, len(m.Bundles))
	}

	header, err := binio.Bundle(cfg.Codec,
		binio.RawField(sig[:]),
		binio.TextField(m.FileVersion),
		binio.BoolField(m.EnableAddressable),
		binio.BoolField(m.LocationToLower),
		binio.BoolField(m.IncludeAssetGUID),
		binio.Int32Field(int32(m.OutputNameType)),
		binio.TextField(m.PackageName),
		binio.TextField(m.PackageVersion),
		binio.Int32Field(int32(len(m.Assets))),
	)
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	w := binio.NewWriter(cfg.Codec)
	w.Raw(header)

	for i, a := range m.Assets {
		if len(a.DependIDs) > math.MaxUint16 {
			return nil, fmt.Errorf("asset %d: %w: %d dependIDs", i, ErrTooManyItems, len(a.DependIDs))
		}
		w.Text(a.AssetPath)
		w.Int32(a.BundleID)
		writeIDs(w, a.DependIDs)
	}

	w.Int32(int32(len(m.Bundles)))
	for i, b := range m.Bundles {
		if len(b.ReferenceIDs) > math.MaxUint16 {
			return nil, fmt.Errorf("bundle %d: %w: %d referenceIDs", i, ErrTooManyItems, len(b.ReferenceIDs))
		}
		w.Text(b.BundleName)
		w.Uint32(b.UnityCRC)
		w.Text(b.FileHash)
		w.Text(b.FileCRC)
		w.Int64(b.FileSize)
		w.Bool(b.IsRawFile)
		w.Byte(b.LoadMethod)
		writeIDs(w, b.ReferenceIDs)
	}

	data, err := w.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}

func writeIDs(w *binio.Writer, ids []int32) {
	w.Uint16(uint16(len(ids)))
	for _, id := range ids {
		w.Int32(id)
	}
}
