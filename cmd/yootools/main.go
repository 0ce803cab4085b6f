// Package main provides a command-line tool for working with YooAsset
// package manifest files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/yooasset/manifestTools/pkg/config"
	"github.com/yooasset/manifestTools/pkg/export"
	"github.com/yooasset/manifestTools/pkg/logging"
	"github.com/yooasset/manifestTools/pkg/query"
)

type options struct {
	mode       string
	configPath string
	input      string
	output     string
	version    string
	format     string
	workers    int
	filter     string
	filterLang string
	target     string
	force      bool
	logLevel   string
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.mode, "mode", "", "Operation mode: decode, encode, query, carve")
	fs.StringVar(&o.configPath, "config", "", "Path to a TOML config file")
	fs.StringVar(&o.input, "input", "", "Input directory (decode) or file (encode, query, carve)")
	fs.StringVar(&o.output, "output", "", "Output directory (decode, carve) or file (encode)")
	fs.StringVar(&o.version, "version", "", "Expected manifest version (default 1.5.2)")
	fs.StringVar(&o.format, "format", "", "Document format: json, yaml, json.zst")
	fs.IntVar(&o.workers, "workers", 0, "Concurrent decodes in decode mode")
	fs.StringVar(&o.filter, "filter", "", "Filter expression for query mode")
	fs.StringVar(&o.filterLang, "filter-lang", "expr", "Filter language: expr, cel")
	fs.StringVar(&o.target, "target", "bundles", "Query target: bundles, assets")
	fs.BoolVar(&o.force, "force", false, "Allow non-empty output directory")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			fs.Usage()
		}
		os.Exit(1)
	}
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	if err := validateOptions(opts); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New("yootools", cfg.LogLevel, stderr)
	if err != nil {
		return err
	}

	switch opts.mode {
	case "decode":
		return runDecode(ctx, opts, cfg, logger)
	case "encode":
		return runEncode(opts, cfg, logger)
	case "query":
		return runQuery(opts, cfg, stdout)
	case "carve":
		return runCarve(opts, cfg, logger)
	}
	return usageError{fmt.Sprintf("unknown mode: %s", opts.mode)}
}

func validateOptions(o *options) error {
	if o.mode == "" {
		return usageError{"mode is required"}
	}
	if o.input == "" {
		return usageError{"input is required"}
	}

	switch o.mode {
	case "decode", "encode", "carve":
		if o.output == "" {
			return usageError{fmt.Sprintf("%s mode requires -output", o.mode)}
		}
	case "query":
	default:
		return usageError{"mode must be 'decode', 'encode', 'query' or 'carve'"}
	}
	return nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(o *options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if o.version != "" {
		cfg.Version = o.version
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.format != "" {
		format, err := export.ParseFormat(o.format)
		if err != nil {
			return config.Config{}, usageError{err.Error()}
		}
		cfg.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseFilter(o *options) (*query.Filter, error) {
	target, err := query.ParseTarget(o.target)
	if err != nil {
		return nil, usageError{err.Error()}
	}
	return query.Compile(query.Language(o.filterLang), target, o.filter)
}
