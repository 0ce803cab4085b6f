package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yooasset/manifestTools/pkg/export"
	"github.com/yooasset/manifestTools/pkg/manifest"
)

// Options configures Run.
type Options struct {
	InputDir   string
	OutputDir  string
	Version    string
	Config     manifest.Config
	Format     export.Format
	Extensions []string
	Workers    int
	Logger     zerolog.Logger
}

// Result is the outcome for one input file.
type Result struct {
	Path    string // relative to the input directory
	Output  string // relative to the output directory
	Assets  int
	Bundles int
	Err     error
}

// Summary collects the per-file results of a run in scan order.
type Summary struct {
	Results []Result
	Decoded int
	Failed  int
}

// Err joins the per-file failures.
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Run decodes every matching file under opts.InputDir and writes one
// document per manifest under opts.OutputDir with the same relative layout.
// A file that fails is logged and recorded; the others still run. The
// returned error covers only scanning and cancellation.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Format == "" {
		opts.Format = export.FormatJSON
	}

	paths, err := Scan(opts.InputDir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug().Int("files", len(paths)).Str("input", opts.InputDir).Msg("scan complete")

	summary := &Summary{Results: make([]Result, len(paths))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				summary.Results[i] = Result{Path: rel, Err: err}
				return nil
			}
			summary.Results[i] = process(opts, rel)
			return nil
		})
	}
	g.Wait()

	for _, r := range summary.Results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Decoded++
		}
	}
	return summary, ctx.Err()
}

func process(opts Options, rel string) Result {
	start := time.Now()
	res := Result{
		Path:   rel,
		Output: trimExtension(rel, opts.Extensions) + opts.Format.Ext(),
	}
	log := opts.Logger.With().Str("file", rel).Logger()

	m, err := ReadFile(filepath.Join(opts.InputDir, filepath.FromSlash(rel)), opts.Version, opts.Config)
	if err == nil {
		res.Assets, res.Bundles = m.AssetCount(), m.BundleCount()
		err = writeDocument(filepath.Join(opts.OutputDir, filepath.FromSlash(res.Output)), m, opts.Format)
	}
	if err != nil {
		res.Err = err
		log.Error().Err(err).Msg("manifest failed")
		return res
	}

	log.Info().
		Str("output", res.Output).
		Int("assets", res.Assets).
		Int("bundles", res.Bundles).
		Dur("elapsed", time.Since(start)).
		Msg("manifest decoded")
	return res
}

func writeDocument(path string, m *manifest.Manifest, format export.Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	err = export.Write(f, m, format)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("render %s: %w", format, err)
	}
	return nil
}
