package manifest_test

import (
	"testing"

	"github.com/yooasset/manifestTools/pkg/manifest"
	"github.com/yooasset/manifestTools/testutil"
)

// BenchmarkManifest benchmarks manifest encoding and decoding.
func BenchmarkManifest(b *testing.B) {
	m := testutil.LargeManifest(10000)
	cfg := manifest.DefaultConfig()

	b.Run("Encode", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := manifest.Encode(m, cfg); err != nil {
				b.Fatal(err)
			}
		}
	})

	data := testutil.MustEncode(b, m)
	b.SetBytes(int64(len(data)))

	b.Run("Decode", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := manifest.Decode(data, manifest.DefaultVersion, cfg); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkAssetLookup compares path lookup strategies over decoded assets.
func BenchmarkAssetLookup(b *testing.B) {
	m := testutil.LargeManifest(10000)
	paths := make([]string, len(m.Assets))
	for i, a := range m.Assets {
		paths[i] = a.AssetPath
	}

	b.Run("LinearScan", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			want := paths[i%len(paths)]
			for j := range m.Assets {
				if m.Assets[j].AssetPath == want {
					break
				}
			}
		}
	})

	b.Run("PrebuiltIndex", func(b *testing.B) {
		index := make(map[string]int, len(m.Assets))
		for i, a := range m.Assets {
			index[a.AssetPath] = i
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = index[paths[i%len(paths)]]
		}
	})
}
