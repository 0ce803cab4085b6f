// Command yooasset-benthos runs benthos with a processor that decodes and
// encodes YooAsset package manifests.
package main

import (
	"context"
	"fmt"

	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/yooasset/manifestTools/pkg/binio"
	"github.com/yooasset/manifestTools/pkg/export"
	"github.com/yooasset/manifestTools/pkg/manifest"
)

// ManifestProcessor converts manifest bytes to structured documents and back.
type ManifestProcessor struct {
	decode  bool
	version string
	cfg     manifest.Config

	logger   *service.Logger
	mDecoded *service.MetricCounter
	mEncoded *service.MetricCounter
	mErrors  *service.MetricCounter
}

func init() {
	err := service.RegisterProcessor(
		"yooasset_manifest",
		manifestProcessorConfig(),
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
			return newManifestProcessorFromConfig(conf, mgr)
		},
	)
	if err != nil {
		panic(err)
	}
}

func manifestProcessorConfig() *service.ConfigSpec {
	return service.NewConfigSpec().
		Summary("Decodes YooAsset package manifests into structured documents, or encodes documents into manifests.").
		Description("In decode mode the message payload must be a binary manifest and becomes a structured document with the fields fileVersion, packageName, packageAssetInfos, packageBundleInfos and so on. In encode mode the payload must be such a document in JSON and becomes the binary manifest.").
		Field(service.NewStringEnumField("operation", "decode", "encode").
			Description("Whether to decode manifests or encode documents.").
			Default("decode")).
		Field(service.NewStringField("version").
			Description("Manifest format version expected when decoding.").
			Default(manifest.DefaultVersion)).
		Field(service.NewIntField("length_width").
			Description("Byte width of text length prefixes: 1, 2 or 4.").
			Default(2)).
		Field(service.NewBoolField("big_endian").
			Description("Read and write multi-byte values big-endian.").
			Default(false)).
		Version("0.1.0")
}

func newManifestProcessorFromConfig(conf *service.ParsedConfig, mgr *service.Resources) (*ManifestProcessor, error) {
	operation, err := conf.FieldString("operation")
	if err != nil {
		return nil, err
	}
	if operation != "decode" && operation != "encode" {
		return nil, fmt.Errorf("unknown operation %q", operation)
	}
	version, err := conf.FieldString("version")
	if err != nil {
		return nil, err
	}
	width, err := conf.FieldInt("length_width")
	if err != nil {
		return nil, err
	}
	bigEndian, err := conf.FieldBool("big_endian")
	if err != nil {
		return nil, err
	}

	lengthWidth, err := binio.ParseLengthWidth(width)
	if err != nil {
		return nil, fmt.Errorf("invalid length_width: %w", err)
	}
	codec := binio.Config{LengthWidth: lengthWidth}
	if bigEndian {
		codec.Endian = binio.BigEndian
	}
	cfg := manifest.Config{Codec: codec, Signatures: manifest.DefaultSignatures()}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid codec: %w", err)
	}
	if _, ok := cfg.Signatures.Lookup(version); !ok {
		return nil, fmt.Errorf("no signature registered for version %q", version)
	}

	metrics := mgr.Metrics()
	return &ManifestProcessor{
		decode:   operation == "decode",
		version:  version,
		cfg:      cfg,
		logger:   mgr.Logger(),
		mDecoded: metrics.NewCounter("yooasset_decoded_manifests"),
		mEncoded: metrics.NewCounter("yooasset_encoded_manifests"),
		mErrors:  metrics.NewCounter("yooasset_processing_errors"),
	}, nil
}

// Process decodes or encodes one message. Failures are attached to the
// message rather than returned.
func (p *ManifestProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	if p.decode {
		return p.decodeManifest(msg)
	}
	return p.encodeManifest(msg)
}

func (p *ManifestProcessor) fail(msg *service.Message, err error) (service.MessageBatch, error) {
	p.logger.Errorf("%v", err)
	p.mErrors.Incr(1)
	msg.SetError(err)
	return service.MessageBatch{msg}, nil
}

func (p *ManifestProcessor) decodeManifest(msg *service.Message) (service.MessageBatch, error) {
	data, err := msg.AsBytes()
	if err != nil {
		return p.fail(msg, fmt.Errorf("read message: %w", err))
	}

	m, err := manifest.Decode(data, p.version, p.cfg)
	if err != nil {
		return p.fail(msg, fmt.Errorf("decode manifest of %d bytes: %w", len(data), err))
	}
	p.logger.Debugf("Decoded manifest %s %s with %d assets and %d bundles", m.PackageName, m.PackageVersion, m.AssetCount(), m.BundleCount())
	p.mDecoded.Incr(1)

	out := service.NewMessage(nil)
	out.SetStructured(export.Generic(m))
	copyMeta(msg, out)
	out.MetaSet("yooasset_package_name", m.PackageName)
	out.MetaSet("yooasset_package_version", m.PackageVersion)
	return service.MessageBatch{out}, nil
}

func (p *ManifestProcessor) encodeManifest(msg *service.Message) (service.MessageBatch, error) {
	data, err := msg.AsBytes()
	if err != nil {
		return p.fail(msg, fmt.Errorf("read message: %w", err))
	}

	m, err := export.Unmarshal(data, export.FormatJSON)
	if err != nil {
		return p.fail(msg, fmt.Errorf("parse document: %w", err))
	}
	bin, err := manifest.Encode(m, p.cfg)
	if err != nil {
		return p.fail(msg, fmt.Errorf("encode manifest: %w", err))
	}
	p.logger.Debugf("Encoded manifest %s to %d bytes", m.PackageName, len(bin))
	p.mEncoded.Incr(1)

	out := service.NewMessage(bin)
	copyMeta(msg, out)
	return service.MessageBatch{out}, nil
}

func copyMeta(from, to *service.Message) {
	_ = from.MetaWalk(func(key, value string) error {
		to.MetaSet(key, value)
		return nil
	})
}

// Close releases nothing; the processor holds no resources.
func (p *ManifestProcessor) Close(ctx context.Context) error {
	return nil
}

func main() {
	service.RunCLI(context.Background())
}
