package batch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yooasset/manifestTools/pkg/archive"
	"github.com/yooasset/manifestTools/pkg/manifest"
)

// CompressedExt marks manifest files stored in an archive container.
const CompressedExt = ".zst"

// Decoding copies every field out of the input, so read buffers are reused.
var readPool = sync.Pool{New: func() any { return make([]byte, 0, 64*1024) }}

// ReadFile reads and decodes the manifest at path. A manifest stored in an
// archive container is decompressed first.
func ReadFile(path, version string, cfg manifest.Config) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat manifest: %w", err)
	}

	buf := readPool.Get().([]byte)
	defer func() { readPool.Put(buf[:0]) }()

	size := int(info.Size())
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	data := buf
	if archive.IsContainer(buf) {
		inner, kind, err := archive.ReadAll(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("open container: %w", err)
		}
		if kind != archive.KindManifest {
			return nil, fmt.Errorf("container holds %s, not a manifest", kind)
		}
		data = inner
	}

	m, err := manifest.Decode(data, version, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// WriteFile encodes m and writes it to path. A path ending in CompressedExt
// gets the manifest inside an archive container.
func WriteFile(path string, m *manifest.Manifest, cfg manifest.Config) error {
	data, err := manifest.Encode(m, cfg)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if !strings.HasSuffix(strings.ToLower(path), CompressedExt) {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	err = archive.Encode(f, archive.KindManifest, data, archive.WithCompressionLevel(archive.BestCompressionLevel))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
