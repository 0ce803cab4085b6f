// Package config loads tool settings from TOML files.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yooasset/manifestTools/pkg/binio"
	"github.com/yooasset/manifestTools/pkg/export"
	"github.com/yooasset/manifestTools/pkg/manifest"
)

// Config holds the settings shared by the command-line tools.
type Config struct {
	Version     string
	Endian      binio.Endian
	LengthWidth binio.LengthWidth
	Workers     int
	Format      export.Format
	Extensions  []string
	LogLevel    string
	Signatures  manifest.Signatures
}

// Default returns the settings for current manifests: version 1.5.2,
// little-endian, 2-byte length prefixes, JSON output.
func Default() Config {
	return Config{
		Version:     manifest.DefaultVersion,
		Endian:      binio.LittleEndian,
		LengthWidth: binio.Length16,
		Workers:     4,
		Format:      export.FormatJSON,
		Extensions:  []string{".bytes"},
		LogLevel:    "info",
		Signatures:  manifest.DefaultSignatures(),
	}
}

// config.toml key mapping.
type fileConfig struct {
	Version     string            `toml:"version"`
	Endian      string            `toml:"endian"`
	LengthWidth int               `toml:"length_width"`
	Workers     int               `toml:"workers"`
	Format      string            `toml:"format"`
	Extensions  []string          `toml:"extensions"`
	LogLevel    string            `toml:"log_level"`
	Signatures  map[string]string `toml:"signatures"`
}

// Load overlays the keys defined in the TOML file at path on Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("version") {
		cfg.Version = strings.TrimSpace(raw.Version)
	}
	if meta.IsDefined("endian") {
		if cfg.Endian, err = ParseEndian(raw.Endian); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	if meta.IsDefined("length_width") {
		if cfg.LengthWidth, err = binio.ParseLengthWidth(raw.LengthWidth); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}
	if meta.IsDefined("format") {
		if cfg.Format, err = export.ParseFormat(raw.Format); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	if meta.IsDefined("extensions") {
		cfg.Extensions = raw.Extensions
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	for version, magic := range raw.Signatures {
		sig, err := ParseSignature(magic)
		if err != nil {
			return Config{}, fmt.Errorf("load config: signature for %q: %w", version, err)
		}
		cfg.Signatures.Register(version, sig)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := c.Codec().Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Version == "" {
		return fmt.Errorf("version is empty")
	}
	if _, ok := c.Signatures.Lookup(c.Version); !ok {
		return fmt.Errorf("no signature registered for version %q", c.Version)
	}
	return nil
}

// Codec returns the binary codec settings.
func (c Config) Codec() binio.Config {
	return binio.Config{Endian: c.Endian, LengthWidth: c.LengthWidth}
}

// Manifest returns the manifest codec settings.
func (c Config) Manifest() manifest.Config {
	return manifest.Config{Codec: c.Codec(), Signatures: c.Signatures}
}

// ParseEndian parses "little" or "big".
func ParseEndian(s string) (binio.Endian, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "le":
		return binio.LittleEndian, nil
	case "big", "be":
		return binio.BigEndian, nil
	}
	return 0, fmt.Errorf("unknown endian %q", s)
}

// ParseSignature parses 4 hex-encoded bytes; spaces are ignored.
func ParseSignature(s string) (manifest.Signature, error) {
	var sig manifest.Signature
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return sig, err
	}
	if len(b) != len(sig) {
		return sig, fmt.Errorf("signature must be %d bytes, got %d", len(sig), len(b))
	}
	copy(sig[:], b)
	return sig, nil
}
