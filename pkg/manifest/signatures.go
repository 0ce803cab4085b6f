package manifest

import (
	"encoding/binary"
	"sort"

	"github.com/yooasset/manifestTools/pkg/binio"
)

// DefaultVersion is the manifest format version produced by current builds.
const DefaultVersion = "1.5.2"

// Signature is the 4-byte magic that opens a manifest file.
type Signature [4]byte

// DefaultSignature identifies DefaultVersion manifests ("OOY\x00").
var DefaultSignature = Signature{0x4f, 0x4f, 0x59, 0x00}

// Uint32 returns the signature as read by a cursor with the given byte order.
func (s Signature) Uint32(e binio.Endian) uint32 {
	if e == binio.BigEndian {
		return binary.BigEndian.Uint32(s[:])
	}
	return binary.LittleEndian.Uint32(s[:])
}

// Signatures maps a format version to its magic. A table is only read
// during decoding, so one table can be shared by concurrent decodes.
type Signatures map[string]Signature

// DefaultSignatures returns a new table holding the built-in versions.
func DefaultSignatures() Signatures {
	return Signatures{DefaultVersion: DefaultSignature}
}

// Register adds or replaces the signature for version.
func (s Signatures) Register(version string, sig Signature) {
	s[version] = sig
}

// Lookup returns the signature registered for version.
func (s Signatures) Lookup(version string) (Signature, bool) {
	sig, ok := s[version]
	return sig, ok
}

// Versions returns the registered versions in sorted order.
func (s Signatures) Versions() []string {
	versions := make([]string, 0, len(s))
	for v := range s {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
