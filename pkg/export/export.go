// Package export renders decoded manifests as JSON or YAML documents and
// reads such documents back into manifests.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yooasset/manifestTools/pkg/archive"
	"github.com/yooasset/manifestTools/pkg/manifest"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatJSONZst Format = "json.zst" // JSON inside a zstd container
)

// Ext returns the file extension for documents of this format.
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json.zst", "zst":
		return FormatJSONZst, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatForPath picks a format from a file name suffix.
func FormatForPath(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json.zst"):
		return FormatJSONZst, nil
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML, nil
	}
	return "", fmt.Errorf("no document format for %q", path)
}

// Document is the rendered form of a manifest.
type Document struct {
	FileVersion        string      `json:"fileVersion" yaml:"fileVersion"`
	EnableAddressable  bool        `json:"enableAddressable" yaml:"enableAddressable"`
	LocationToLower    bool        `json:"locationToLower" yaml:"locationToLower"`
	IncludeAssetGUID   bool        `json:"includeAssetGUID" yaml:"includeAssetGUID"`
	OutputNameType     int32       `json:"outputNameType" yaml:"outputNameType"`
	PackageName        string      `json:"packageName" yaml:"packageName"`
	PackageVersion     string      `json:"packageVersion" yaml:"packageVersion"`
	PackageAssetCount  int         `json:"packageAssetCount" yaml:"packageAssetCount"`
	PackageAssetInfos  []AssetDoc  `json:"packageAssetInfos" yaml:"packageAssetInfos"`
	PackageBundleCount int         `json:"packageBundleCount" yaml:"packageBundleCount"`
	PackageBundleInfos []BundleDoc `json:"packageBundleInfos" yaml:"packageBundleInfos"`
}

// AssetDoc is the rendered form of an asset record.
type AssetDoc struct {
	AssetPath string  `json:"assetPath" yaml:"assetPath"`
	BundleID  int32   `json:"bundleID" yaml:"bundleID"`
	DependIDs []int32 `json:"dependIDs" yaml:"dependIDs,flow"`
}

// BundleDoc is the rendered form of a bundle record.
type BundleDoc struct {
	BundleName   string  `json:"bundleName" yaml:"bundleName"`
	UnityCRC     uint32  `json:"unityCRC" yaml:"unityCRC"`
	FileHash     string  `json:"fileHash" yaml:"fileHash"`
	FileCRC      string  `json:"fileCRC" yaml:"fileCRC"`
	FileSize     int64   `json:"fileSize" yaml:"fileSize"`
	IsRawFile    bool    `json:"isRawFile" yaml:"isRawFile"`
	LoadMethod   uint8   `json:"loadMethod" yaml:"loadMethod"`
	ReferenceIDs []int32 `json:"referenceIDs" yaml:"referenceIDs,flow"`
}

// FromManifest builds a document. Empty collections render as [] rather than null.
func FromManifest(m *manifest.Manifest) *Document {
	doc := &Document{
		FileVersion:        m.FileVersion,
		EnableAddressable:  m.EnableAddressable,
		LocationToLower:    m.LocationToLower,
		IncludeAssetGUID:   m.IncludeAssetGUID,
		OutputNameType:     int32(m.OutputNameType),
		PackageName:        m.PackageName,
		PackageVersion:     m.PackageVersion,
		PackageAssetCount:  m.AssetCount(),
		PackageAssetInfos:  make([]AssetDoc, len(m.Assets)),
		PackageBundleCount: m.BundleCount(),
		PackageBundleInfos: make([]BundleDoc, len(m.Bundles)),
	}
	for i, a := range m.Assets {
		doc.PackageAssetInfos[i] = AssetDoc{
			AssetPath: a.AssetPath,
			BundleID:  a.BundleID,
			DependIDs: ids(a.DependIDs),
		}
	}
	for i, b := range m.Bundles {
		doc.PackageBundleInfos[i] = BundleDoc{
			BundleName:   b.BundleName,
			UnityCRC:     b.UnityCRC,
			FileHash:     b.FileHash,
			FileCRC:      b.FileCRC,
			FileSize:     b.FileSize,
			IsRawFile:    b.IsRawFile,
			LoadMethod:   b.LoadMethod,
			ReferenceIDs: ids(b.ReferenceIDs),
		}
	}
	return doc
}

func ids(v []int32) []int32 {
	out := make([]int32, len(v))
	copy(out, v)
	return out
}

// Manifest converts the document back into a manifest. The declared counts
// must match the lengths of the record arrays.
func (d *Document) Manifest() (*manifest.Manifest, error) {
	if d.PackageAssetCount != len(d.PackageAssetInfos) {
		return nil, fmt.Errorf("packageAssetCount %d does not match %d asset infos", d.PackageAssetCount, len(d.PackageAssetInfos))
	}
	if d.PackageBundleCount != len(d.PackageBundleInfos) {
		return nil, fmt.Errorf("packageBundleCount %d does not match %d bundle infos", d.PackageBundleCount, len(d.PackageBundleInfos))
	}

	m := &manifest.Manifest{
		FileVersion:       d.FileVersion,
		EnableAddressable: d.EnableAddressable,
		LocationToLower:   d.LocationToLower,
		IncludeAssetGUID:  d.IncludeAssetGUID,
		OutputNameType:    manifest.OutputNameType(d.OutputNameType),
		PackageName:       d.PackageName,
		PackageVersion:    d.PackageVersion,
		Assets:            make([]manifest.AssetInfo, len(d.PackageAssetInfos)),
		Bundles:           make([]manifest.BundleInfo, len(d.PackageBundleInfos)),
	}
	for i, a := range d.PackageAssetInfos {
		m.Assets[i] = manifest.AssetInfo{
			AssetPath: a.AssetPath,
			BundleID:  a.BundleID,
			DependIDs: ids(a.DependIDs),
		}
	}
	for i, b := range d.PackageBundleInfos {
		m.Bundles[i] = manifest.BundleInfo{
			BundleName:   b.BundleName,
			UnityCRC:     b.UnityCRC,
			FileHash:     b.FileHash,
			FileCRC:      b.FileCRC,
			FileSize:     b.FileSize,
			IsRawFile:    b.IsRawFile,
			LoadMethod:   b.LoadMethod,
			ReferenceIDs: ids(b.ReferenceIDs),
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Marshal renders m in the given format.
func Marshal(m *manifest.Manifest, format Format) ([]byte, error) {
	doc := FromManifest(m)

	switch format {
	case FormatJSON:
		return marshalJSON(doc)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSONZst:
		data, err := marshalJSON(doc)
		if err != nil {
			return nil, err
		}
		return archive.Compress(archive.KindJSON, data, archive.DefaultCompressionLevel)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Write renders m to dst. JSON containers are streamed through an
// archive.Writer positioned at the current offset of dst.
func Write(dst io.WriteSeeker, m *manifest.Manifest, format Format, opts ...archive.WriterOption) error {
	if format != FormatJSONZst {
		data, err := Marshal(m, format)
		if err != nil {
			return err
		}
		if _, err := dst.Write(data); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		return nil
	}

	data, err := marshalJSON(FromManifest(m))
	if err != nil {
		return err
	}
	if err := archive.Encode(dst, archive.KindJSON, data, opts...); err != nil {
		return fmt.Errorf("write container: %w", err)
	}
	return nil
}

func marshalJSON(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal parses a document in the given format into a manifest.
func Unmarshal(data []byte, format Format) (*manifest.Manifest, error) {
	doc := &Document{}

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSONZst:
		return ReadContainer(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	return doc.Manifest()
}

// ReadContainer parses a JSON or YAML document stored in an archive container.
func ReadContainer(r io.Reader) (*manifest.Manifest, error) {
	inner, kind, err := archive.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	switch kind {
	case archive.KindJSON:
		return Unmarshal(inner, FormatJSON)
	case archive.KindYAML:
		return Unmarshal(inner, FormatYAML)
	}
	return nil, fmt.Errorf("container holds %s, not a document", kind)
}

// Generic returns the document as nested maps and slices with the same
// keys as the JSON rendering.
func Generic(m *manifest.Manifest) map[string]any {
	assets := make([]any, len(m.Assets))
	for i, a := range m.Assets {
		assets[i] = map[string]any{
			"assetPath": a.AssetPath,
			"bundleID":  int64(a.BundleID),
			"dependIDs": genericIDs(a.DependIDs),
		}
	}

	bundles := make([]any, len(m.Bundles))
	for i, b := range m.Bundles {
		bundles[i] = map[string]any{
			"bundleName":   b.BundleName,
			"unityCRC":     int64(b.UnityCRC),
			"fileHash":     b.FileHash,
			"fileCRC":      b.FileCRC,
			"fileSize":     b.FileSize,
			"isRawFile":    b.IsRawFile,
			"loadMethod":   int64(b.LoadMethod),
			"referenceIDs": genericIDs(b.ReferenceIDs),
		}
	}

	return map[string]any{
		"fileVersion":        m.FileVersion,
		"enableAddressable":  m.EnableAddressable,
		"locationToLower":    m.LocationToLower,
		"includeAssetGUID":   m.IncludeAssetGUID,
		"outputNameType":     int64(m.OutputNameType),
		"packageName":        m.PackageName,
		"packageVersion":     m.PackageVersion,
		"packageAssetCount":  int64(len(m.Assets)),
		"packageAssetInfos":  assets,
		"packageBundleCount": int64(len(m.Bundles)),
		"packageBundleInfos": bundles,
	}
}

func genericIDs(v []int32) []any {
	out := make([]any, len(v))
	for i, id := range v {
		out[i] = int64(id)
	}
	return out
}
