// Package testutil holds manifest fixtures shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/yooasset/manifestTools/pkg/manifest"
)

// SampleManifest returns a small manifest with cross-referencing assets and bundles.
func SampleManifest() *manifest.Manifest {
	return &manifest.Manifest{
		FileVersion:      manifest.DefaultVersion,
		IncludeAssetGUID: true,
		OutputNameType:   manifest.OutputBundleNameHashName,
		PackageName:      "DefaultPackage",
		PackageVersion:   "2024-05-01-1130",
		Assets: []manifest.AssetInfo{
			{AssetPath: "Assets/Prefabs/Hero.prefab", BundleID: 0, DependIDs: []int32{1, 2}},
			{AssetPath: "Assets/Textures/Hero.png", BundleID: 1, DependIDs: []int32{}},
			{AssetPath: "Assets/Audio/Theme.ogg", BundleID: 2, DependIDs: []int32{}},
		},
		Bundles: []manifest.BundleInfo{
			{
				BundleName:   "prefabs_hero.bundle",
				UnityCRC:     0xdeadbeef,
				FileHash:     "9f86d081884c7d659a2feaa0c55ad015",
				FileCRC:      "a1b2c3d4",
				FileSize:     48213,
				LoadMethod:   0,
				ReferenceIDs: []int32{},
			},
			{
				BundleName:   "textures_hero.bundle",
				UnityCRC:     1234567,
				FileHash:     "2c26b46b68ffc68ff99b453c1d304134",
				FileCRC:      "0badf00d",
				FileSize:     1 << 33,
				LoadMethod:   1,
				ReferenceIDs: []int32{0},
			},
			{
				BundleName:   "audio_theme.rawfile",
				FileHash:     "fcde2b2edba56bf408601fb721fe9b5c",
				FileCRC:      "00000001",
				FileSize:     7,
				IsRawFile:    true,
				LoadMethod:   2,
				ReferenceIDs: []int32{0},
			},
		},
	}
}

// LargeManifest returns a manifest with n assets spread over n/10+1 bundles.
func LargeManifest(n int) *manifest.Manifest {
	m := &manifest.Manifest{
		FileVersion:    manifest.DefaultVersion,
		OutputNameType: manifest.OutputHashName,
		PackageName:    "BenchPackage",
		PackageVersion: "1.0.0",
		Assets:         make([]manifest.AssetInfo, n),
		Bundles:        make([]manifest.BundleInfo, n/10+1),
	}
	for i := range m.Bundles {
		m.Bundles[i] = manifest.BundleInfo{
			BundleName:   fmt.Sprintf("bundle_%04d.bundle", i),
			UnityCRC:     uint32(i * 7919),
			FileHash:     fmt.Sprintf("%032x", i),
			FileCRC:      fmt.Sprintf("%08x", i),
			FileSize:     int64(i) * 4096,
			ReferenceIDs: []int32{},
		}
	}
	for i := range m.Assets {
		m.Assets[i] = manifest.AssetInfo{
			AssetPath: fmt.Sprintf("Assets/Generated/Item%05d.asset", i),
			BundleID:  int32(i / 10),
			DependIDs: []int32{int32(i % len(m.Bundles))},
		}
	}
	return m
}

// MustEncode encodes m with the default configuration or fails the test.
func MustEncode(t testing.TB, m *manifest.Manifest) []byte {
	t.Helper()
	data, err := manifest.Encode(m, manifest.DefaultConfig())
	if err != nil {
		t.Fatalf("encode manifest: %v", err)
	}
	return data
}

// WriteFile writes data to dir/rel, creating parent directories.
func WriteFile(t testing.TB, dir, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}
