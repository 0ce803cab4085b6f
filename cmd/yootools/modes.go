package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/yooasset/manifestTools/pkg/archive"
	"github.com/yooasset/manifestTools/pkg/batch"
	"github.com/yooasset/manifestTools/pkg/binio"
	"github.com/yooasset/manifestTools/pkg/config"
	"github.com/yooasset/manifestTools/pkg/export"
	"github.com/yooasset/manifestTools/pkg/manifest"
)

func runDecode(ctx context.Context, o *options, cfg config.Config, logger zerolog.Logger) error {
	if err := prepareOutputDir(o.output, o.force); err != nil {
		return err
	}

	summary, err := batch.Run(ctx, batch.Options{
		InputDir:   o.input,
		OutputDir:  o.output,
		Version:    cfg.Version,
		Config:     cfg.Manifest(),
		Format:     cfg.Format,
		Extensions: cfg.Extensions,
		Workers:    cfg.Workers,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	logger.Info().
		Int("decoded", summary.Decoded).
		Int("failed", summary.Failed).
		Str("output", o.output).
		Msg("decode complete")

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d manifests failed", summary.Failed, len(summary.Results))
	}
	return nil
}

func runEncode(o *options, cfg config.Config, logger zerolog.Logger) error {
	data, err := os.ReadFile(o.input)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	var m *manifest.Manifest
	if archive.IsContainer(data) {
		m, err = readContainer(data, cfg)
	} else {
		m, err = readDocument(o, cfg, data)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(o.output), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if !o.force {
		if _, err := os.Stat(o.output); err == nil {
			return fmt.Errorf("output file exists (use -force to override)")
		}
	}
	if err := batch.WriteFile(o.output, m, cfg.Manifest()); err != nil {
		return err
	}

	logger.Info().
		Str("output", o.output).
		Int("assets", m.AssetCount()).
		Int("bundles", m.BundleCount()).
		Msg("manifest encoded")
	return nil
}

// readContainer opens an archive container by its magic, whatever the
// file is named. Manifest containers are decoded so they can be re-encoded
// with the configured codec.
func readContainer(data []byte, cfg config.Config) (*manifest.Manifest, error) {
	inner, kind, err := archive.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	var m *manifest.Manifest
	switch kind {
	case archive.KindJSON:
		m, err = export.Unmarshal(inner, export.FormatJSON)
	case archive.KindYAML:
		m, err = export.Unmarshal(inner, export.FormatYAML)
	case archive.KindManifest:
		m, err = manifest.Decode(inner, cfg.Version, cfg.Manifest())
	default:
		return nil, fmt.Errorf("open container: unsupported kind %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s container: %w", kind, err)
	}
	return m, nil
}

func readDocument(o *options, cfg config.Config, data []byte) (*manifest.Manifest, error) {
	format, err := export.FormatForPath(o.input)
	if o.format != "" {
		format, err = cfg.Format, nil
	}
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	m, err := export.Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return m, nil
}

func runQuery(o *options, cfg config.Config, stdout io.Writer) error {
	filter, err := parseFilter(o)
	if err != nil {
		return err
	}

	m, err := batch.ReadFile(o.input, cfg.Version, cfg.Manifest())
	if err != nil {
		return err
	}

	matches, err := filter.Run(m)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	enc := json.NewEncoder(stdout)
	for _, match := range matches {
		if err := enc.Encode(match.Fields); err != nil {
			return fmt.Errorf("write match: %w", err)
		}
	}
	return nil
}

func runCarve(o *options, cfg config.Config, logger zerolog.Logger) error {
	data, err := os.ReadFile(o.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	blocks, err := binio.FindImageBlocks(data, cfg.Codec())
	if err != nil {
		return fmt.Errorf("carve: %w", err)
	}

	if err := prepareOutputDir(o.output, o.force); err != nil {
		return err
	}
	stem := trimExt(filepath.Base(o.input))
	for i, block := range blocks {
		path := filepath.Join(o.output, fmt.Sprintf("%s_%03d.png", stem, i))
		if err := os.WriteFile(path, block, 0644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		logger.Debug().Str("path", path).Int("size", len(block)).Msg("image extracted")
	}

	logger.Info().Int("images", len(blocks)).Str("output", o.output).Msg("carve complete")
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func prepareOutputDir(dir string, force bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if !force {
		empty, err := isDirEmpty(dir)
		if err != nil {
			return fmt.Errorf("check output directory: %w", err)
		}
		if !empty {
			return fmt.Errorf("output directory is not empty (use -force to override)")
		}
	}

	return nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}
