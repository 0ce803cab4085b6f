package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yooasset/manifestTools/testutil"
)

func indices(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}

func TestBundles(t *testing.T) {
	m := testutil.SampleManifest()

	tests := []struct {
		name   string
		lang   Language
		source string
		want   []int
	}{
		{"All", LangExpr, "", []int{0, 1, 2}},
		{"RawFiles", LangExpr, "isRawFile", []int{2}},
		{"Size", LangExpr, "fileSize > 1000 && loadMethod == 1", []int{1}},
		{"Referenced", LangExpr, "referenceCount > 0", []int{1, 2}},
		{"Prefix", LangExpr, `bundleName startsWith "textures_"`, []int{1}},
		{"CELRawFiles", LangCEL, "isRawFile", []int{2}},
		{"CELSize", LangCEL, "fileSize > 1000 && loadMethod == 1", []int{1}},
		{"CELReferenced", LangCEL, "0 in referenceIDs", []int{1, 2}},
		{"CELSuffix", LangCEL, `bundleName.endsWith(".bundle")`, []int{0, 1}},
		{"CELNone", LangCEL, "referenceCount > 5", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.lang, TargetBundles, tt.source)
			require.NoError(t, err)

			matches, err := f.Bundles(m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, indices(matches))
		})
	}
}

func TestAssets(t *testing.T) {
	m := testutil.SampleManifest()
	m.Assets[2].BundleID = 42

	f, err := CompileAssets(`bundleName == "textures_hero.bundle" || dependCount == 2`)
	require.NoError(t, err)
	matches, err := f.Run(m)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indices(matches))
	assert.Equal(t, "Assets/Textures/Hero.png", matches[1].Fields["assetPath"])

	f, err = Compile(LangCEL, TargetAssets, `bundleName == ""`)
	require.NoError(t, err)
	matches, err = f.Assets(m)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, indices(matches))
	assert.Equal(t, int64(42), matches[0].Fields["bundleID"])
}

func TestCompile(t *testing.T) {
	t.Run("NotBoolean", func(t *testing.T) {
		_, err := CompileBundles("fileSize + 1")
		assert.Error(t, err)
		_, err = Compile(LangCEL, TargetBundles, "fileSize + 1")
		assert.Error(t, err)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := CompileBundles("assetPath == \"x\"")
		assert.Error(t, err)
		_, err = Compile(LangCEL, TargetAssets, "unityCRC == 1")
		assert.Error(t, err)
	})

	t.Run("UnknownLanguage", func(t *testing.T) {
		_, err := Compile("lua", TargetBundles, "true")
		assert.Error(t, err)
	})

	t.Run("DefaultLanguage", func(t *testing.T) {
		f, err := Compile("", TargetBundles, "true")
		require.NoError(t, err)
		assert.Equal(t, LangExpr, f.Language())
	})

	t.Run("WrongTarget", func(t *testing.T) {
		f, err := CompileAssets("true")
		require.NoError(t, err)
		_, err = f.Bundles(testutil.SampleManifest())
		assert.Error(t, err)
	})

	t.Run("ParseTarget", func(t *testing.T) {
		target, err := ParseTarget("asset")
		require.NoError(t, err)
		assert.Equal(t, TargetAssets, target)
		_, err = ParseTarget("frames")
		assert.Error(t, err)
	})
}
