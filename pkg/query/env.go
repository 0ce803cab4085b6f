package query

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/yooasset/manifestTools/pkg/manifest"
)

type varType int

const (
	varInt varType = iota
	varString
	varBool
	varIntList
)

func (t varType) zero() any {
	switch t {
	case varString:
		return ""
	case varBool:
		return false
	case varIntList:
		return []int64{}
	}
	return int64(0)
}

func (t varType) cel() *cel.Type {
	switch t {
	case varString:
		return cel.StringType
	case varBool:
		return cel.BoolType
	case varIntList:
		return cel.ListType(cel.IntType)
	}
	return cel.IntType
}

var bundleVars = map[string]varType{
	"index":          varInt,
	"bundleName":     varString,
	"unityCRC":       varInt,
	"fileHash":       varString,
	"fileCRC":        varString,
	"fileSize":       varInt,
	"isRawFile":      varBool,
	"loadMethod":     varInt,
	"referenceIDs":   varIntList,
	"referenceCount": varInt,
}

var assetVars = map[string]varType{
	"index":       varInt,
	"assetPath":   varString,
	"bundleID":    varInt,
	"bundleName":  varString,
	"dependIDs":   varIntList,
	"dependCount": varInt,
}

func variables(target Target) (map[string]varType, error) {
	switch target {
	case TargetBundles:
		return bundleVars, nil
	case TargetAssets:
		return assetVars, nil
	}
	return nil, fmt.Errorf("unknown query target %q", target)
}

// BundleEnv returns the variables a bundle filter sees for b at index i.
func BundleEnv(i int, b *manifest.BundleInfo) map[string]any {
	return map[string]any{
		"index":          int64(i),
		"bundleName":     b.BundleName,
		"unityCRC":       int64(b.UnityCRC),
		"fileHash":       b.FileHash,
		"fileCRC":        b.FileCRC,
		"fileSize":       b.FileSize,
		"isRawFile":      b.IsRawFile,
		"loadMethod":     int64(b.LoadMethod),
		"referenceIDs":   widen(b.ReferenceIDs),
		"referenceCount": int64(len(b.ReferenceIDs)),
	}
}

// AssetEnv returns the variables an asset filter sees for asset i of m.
// bundleName is empty when the asset's bundle ID does not resolve.
func AssetEnv(m *manifest.Manifest, i int) map[string]any {
	a := &m.Assets[i]
	var bundleName string
	if b, ok := m.Bundle(a.BundleID); ok {
		bundleName = b.BundleName
	}
	return map[string]any{
		"index":       int64(i),
		"assetPath":   a.AssetPath,
		"bundleID":    int64(a.BundleID),
		"bundleName":  bundleName,
		"dependIDs":   widen(a.DependIDs),
		"dependCount": int64(len(a.DependIDs)),
	}
}

func widen(ids []int32) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
