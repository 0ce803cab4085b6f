// Package manifest provides types and functions for working with YooAsset
// package manifest files.
package manifest

import (
	"fmt"
	"strconv"
)

// Manifest represents a parsed package manifest.
type Manifest struct {
	FileVersion       string
	EnableAddressable bool
	LocationToLower   bool
	IncludeAssetGUID  bool
	OutputNameType    OutputNameType
	PackageName       string
	PackageVersion    string
	Assets            []AssetInfo
	Bundles           []BundleInfo
}

// AssetInfo maps an asset path to its owning bundle and the bundles it depends on.
type AssetInfo struct {
	AssetPath string
	BundleID  int32   // Index into Bundles
	DependIDs []int32 // Indices into Bundles
}

// BundleInfo describes a bundle file.
type BundleInfo struct {
	BundleName   string
	UnityCRC     uint32
	FileHash     string
	FileCRC      string
	FileSize     int64
	IsRawFile    bool
	LoadMethod   uint8
	ReferenceIDs []int32 // Indices into Bundles
}

// OutputNameType selects how bundle files are named on disk.
// Values outside the known set are kept as-is.
type OutputNameType int32

const (
	OutputHashName           OutputNameType = 1
	OutputBundleNameHashName OutputNameType = 4
)

func (t OutputNameType) String() string {
	switch t {
	case OutputHashName:
		return "HashName"
	case OutputBundleNameHashName:
		return "BundleName_HashName"
	}
	return "OutputNameType(" + strconv.Itoa(int(t)) + ")"
}

// AssetCount returns the number of asset records.
func (m *Manifest) AssetCount() int {
	return len(m.Assets)
}

// BundleCount returns the number of bundle records.
func (m *Manifest) BundleCount() int {
	return len(m.Bundles)
}

// Validate reports header flag combinations that cannot be loaded.
func (m *Manifest) Validate() error {
	if m.EnableAddressable && m.LocationToLower {
		return &InvariantError{Reason: "enableAddressable and locationToLower are mutually exclusive"}
	}
	return nil
}

// Bundle returns the bundle at id, or false when id does not index Bundles.
// Record indices are not checked on decode, so callers resolving them use this.
func (m *Manifest) Bundle(id int32) (*BundleInfo, bool) {
	if id < 0 || int(id) >= len(m.Bundles) {
		return nil, false
	}
	return &m.Bundles[id], true
}

// UnmarshalBinary decodes a manifest with the default configuration. The
// expected version is m.FileVersion, or DefaultVersion when it is empty.
func (m *Manifest) UnmarshalBinary(data []byte) error {
	version := m.FileVersion
	if version == "" {
		version = DefaultVersion
	}
	decoded, err := Decode(data, version, DefaultConfig())
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// MarshalBinary encodes a manifest with the default configuration.
func (m *Manifest) MarshalBinary() ([]byte, error) {
	data, err := Encode(m, DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}
