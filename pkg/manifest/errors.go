package manifest

import (
	"errors"
	"fmt"
)

var (
	ErrSignature      = errors.New("manifest: signature mismatch")
	ErrVersion        = errors.New("manifest: version mismatch")
	ErrInvariant      = errors.New("manifest: invariant violated")
	ErrUnknownVersion = errors.New("manifest: no signature registered for version")
	ErrTooManyItems   = errors.New("manifest: too many items for count field")
)

// SignatureError reports a magic value that does not match the registered signature.
type SignatureError struct {
	Found    uint32
	Expected uint32
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("manifest: invalid signature: expected %#08x, got %#08x", e.Expected, e.Found)
}

func (e *SignatureError) Is(target error) bool {
	return target == ErrSignature
}

// VersionError reports an on-disk version different from the requested one.
type VersionError struct {
	Found    string
	Expected string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("manifest: unsupported version %q, expected %q", e.Found, e.Expected)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrVersion
}

// InvariantError reports a structurally invalid combination of header fields.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "manifest: invalid manifest: " + e.Reason
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// UnknownVersionError reports a version with no registered signature.
type UnknownVersionError struct {
	Version string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("manifest: no signature registered for version %q", e.Version)
}

func (e *UnknownVersionError) Is(target error) bool {
	return target == ErrUnknownVersion
}
