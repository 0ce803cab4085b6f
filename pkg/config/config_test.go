package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooasset/manifestTools/pkg/binio"
	"github.com/yooasset/manifestTools/pkg/export"
	"github.com/yooasset/manifestTools/pkg/manifest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
version = "2.0.0"
endian = "big"
length_width = 4
workers = 8
format = "yaml"
extensions = [".bytes", ".json"]
log_level = "debug"

[signatures]
"2.0.0" = "59 41 32 00"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, binio.Config{Endian: binio.BigEndian, LengthWidth: binio.Length32}, cfg.Codec())
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, export.FormatYAML, cfg.Format)
	assert.Equal(t, []string{".bytes", ".json"}, cfg.Extensions)
	assert.Equal(t, "debug", cfg.LogLevel)

	sig, ok := cfg.Manifest().Signatures.Lookup("2.0.0")
	require.True(t, ok)
	assert.Equal(t, manifest.Signature{'Y', 'A', '2', 0}, sig)
	_, ok = cfg.Signatures.Lookup(manifest.DefaultVersion)
	assert.True(t, ok, "built-in signature kept")
}

func TestLoadPartial(t *testing.T) {
	cfg, err := Load(writeConfig(t, `workers = 2`))
	require.NoError(t, err)

	want := Default()
	want.Workers = 2
	assert.Equal(t, want, cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"UnknownKey":      `colour = "red"`,
		"BadEndian":       `endian = "middle"`,
		"BadWidth":        `length_width = 3`,
		"WrappedWidth":    `length_width = 258`,
		"ZeroWidth":       `length_width = 0`,
		"BadFormat":       `format = "xml"`,
		"ZeroWorkers":     `workers = 0`,
		"BadSignature":    "[signatures]\n\"2.0.0\" = \"zz\"",
		"ShortSignature":  "[signatures]\n\"2.0.0\" = \"4f4f\"",
		"UnregisteredVer": `version = "9.9.9"`,
		"Syntax":          `workers = `,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	t.Run("Missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})
}

func TestParseSignature(t *testing.T) {
	sig, err := ParseSignature("4f4f5900")
	require.NoError(t, err)
	assert.Equal(t, manifest.DefaultSignature, sig)
}
