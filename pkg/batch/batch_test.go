package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooasset/manifestTools/pkg/archive"
	"github.com/yooasset/manifestTools/pkg/export"
	"github.com/yooasset/manifestTools/pkg/manifest"
	"github.com/yooasset/manifestTools/testutil"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "b/PackageManifest_b.bytes", nil)
	testutil.WriteFile(t, dir, "a/nested/PackageManifest_a.BYTES", nil)
	testutil.WriteFile(t, dir, "a/readme.txt", nil)
	testutil.WriteFile(t, dir, "root.bytes", nil)

	paths, err := Scan(dir, []string{".bytes"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a/nested/PackageManifest_a.BYTES",
		"b/PackageManifest_b.bytes",
		"root.bytes",
	}, paths)

	all, err := Scan(dir, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = Scan(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PackageManifest.bytes")
	want := testutil.SampleManifest()
	cfg := manifest.DefaultConfig()

	require.NoError(t, WriteFile(path, want, cfg))

	for i := 0; i < 3; i++ { // pooled buffers are reused
		got, err := ReadFile(path, manifest.DefaultVersion, cfg)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
		}
	}

	_, err := ReadFile(path, "2.0.0", cfg)
	assert.ErrorIs(t, err, manifest.ErrUnknownVersion)
	_, err = ReadFile(filepath.Join(dir, "absent.bytes"), manifest.DefaultVersion, cfg)
	assert.Error(t, err)
}

func TestReadWriteCompressedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PackageManifest.bytes.zst")
	want := testutil.SampleManifest()
	cfg := manifest.DefaultConfig()

	require.NoError(t, WriteFile(path, want, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, archive.IsContainer(data))

	got, err := ReadFile(path, manifest.DefaultVersion, cfg)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	doc, err := archive.Compress(archive.KindJSON, []byte("{}"), archive.DefaultCompressionLevel)
	require.NoError(t, err)
	wrongKind := testutil.WriteFile(t, dir, "doc.bytes", doc)
	_, err = ReadFile(wrongKind, manifest.DefaultVersion, cfg)
	assert.ErrorContains(t, err, "not a manifest")
}

func TestRun(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	sample := testutil.MustEncode(t, testutil.SampleManifest())
	testutil.WriteFile(t, input, "DefaultPackage/PackageManifest_v1.bytes", sample)
	testutil.WriteFile(t, input, "Extra/deep/PackageManifest_v2.bytes", sample)
	testutil.WriteFile(t, input, "Broken/PackageManifest_bad.bytes", sample[:20])
	testutil.WriteFile(t, input, "Broken/notes.txt", []byte("skip me"))

	var logs bytes.Buffer
	summary, err := Run(context.Background(), Options{
		InputDir:   input,
		OutputDir:  output,
		Version:    manifest.DefaultVersion,
		Config:     manifest.DefaultConfig(),
		Format:     export.FormatJSON,
		Extensions: []string{".bytes"},
		Workers:    2,
		Logger:     zerolog.New(&logs),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Decoded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)

	broken := summary.Results[0]
	assert.Equal(t, "Broken/PackageManifest_bad.bytes", broken.Path)
	assert.Error(t, broken.Err)
	assert.Contains(t, logs.String(), `"file":"Broken/PackageManifest_bad.bytes"`)
	assert.ErrorContains(t, summary.Err(), "Broken/PackageManifest_bad.bytes")

	ok := summary.Results[1]
	assert.Equal(t, "DefaultPackage/PackageManifest_v1.json", ok.Output)
	assert.Equal(t, 3, ok.Assets)

	data, err := os.ReadFile(filepath.Join(output, "Extra", "deep", "PackageManifest_v2.json"))
	require.NoError(t, err)
	got, err := export.Unmarshal(data, export.FormatJSON)
	require.NoError(t, err)
	if diff := cmp.Diff(testutil.SampleManifest(), got); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	_, err = os.Stat(filepath.Join(output, "Broken", "PackageManifest_bad.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunWrongVersion(t *testing.T) {
	input := t.TempDir()
	testutil.WriteFile(t, input, "PackageManifest.bytes", testutil.MustEncode(t, testutil.SampleManifest()))

	sigs := manifest.DefaultSignatures()
	sigs.Register("2.0.0", manifest.DefaultSignature)

	summary, err := Run(context.Background(), Options{
		InputDir:   input,
		OutputDir:  t.TempDir(),
		Version:    "2.0.0",
		Config:     manifest.Config{Signatures: sigs},
		Extensions: []string{".bytes"},
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)

	var verErr *manifest.VersionError
	require.ErrorAs(t, summary.Results[0].Err, &verErr)
	assert.Equal(t, "1.5.2", verErr.Found)
}

func TestRunCancelled(t *testing.T) {
	input := t.TempDir()
	testutil.WriteFile(t, input, "a.bytes", testutil.MustEncode(t, testutil.SampleManifest()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := Run(ctx, Options{
		InputDir:   input,
		OutputDir:  t.TempDir(),
		Version:    manifest.DefaultVersion,
		Extensions: []string{".bytes"},
		Logger:     zerolog.Nop(),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunFormats(t *testing.T) {
	for _, format := range []export.Format{export.FormatYAML, export.FormatJSONZst} {
		t.Run(string(format), func(t *testing.T) {
			input := t.TempDir()
			output := t.TempDir()
			testutil.WriteFile(t, input, "p.bytes", testutil.MustEncode(t, testutil.SampleManifest()))

			summary, err := Run(context.Background(), Options{
				InputDir:   input,
				OutputDir:  output,
				Version:    manifest.DefaultVersion,
				Format:     format,
				Extensions: []string{".bytes"},
				Logger:     zerolog.Nop(),
			})
			require.NoError(t, err)
			require.Equal(t, 1, summary.Decoded)

			data, err := os.ReadFile(filepath.Join(output, "p"+format.Ext()))
			require.NoError(t, err)
			assert.Equal(t, format == export.FormatJSONZst, archive.IsContainer(data))
			got, err := export.Unmarshal(data, format)
			require.NoError(t, err)
			assert.Equal(t, "DefaultPackage", got.PackageName)
		})
	}
}
