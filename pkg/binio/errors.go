package binio

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("binio: out of bounds")
	ErrFormat      = errors.New("binio: format error")
	ErrLengthWidth = errors.New("binio: unsupported length width")
	ErrTextTooLong = errors.New("binio: text exceeds length prefix")
)

// BoundsError reports a read or seek past the end of the buffer.
type BoundsError struct {
	Offset    int
	Need      int
	Remaining int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("binio: out of bounds at offset %d: need %d bytes, %d remaining", e.Offset, e.Need, e.Remaining)
}

func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// FormatError reports an embedded block that does not match its expected layout.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("binio: format error at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
