package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedContainer is returned when a file is neither JPEG nor
	// TIFF.
	ErrUnsupportedContainer = errors.New("unsupported metadata container")

	// ErrMalformedContainer is returned when the segment structure of a
	// supported container is broken.
	ErrMalformedContainer = errors.New("malformed metadata container")

	// ErrDimensionUnavailable is returned when a structured decode
	// succeeded but produced no dimension-bearing directory.
	ErrDimensionUnavailable = errors.New("no dimension source in structured metadata")

	// ErrProbeUnavailable is returned when the header probe does not
	// recognize the file.
	ErrProbeUnavailable = errors.New("unrecognized image header")

	// ErrAttributeUnsupported is returned on platforms without a creation
	// timestamp.
	ErrAttributeUnsupported = errors.New("creation time not supported")
)

// DecodeError reports that the structured decode of a file failed as a
// whole.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AttributeReadError reports that a filesystem timestamp could not be read.
type AttributeReadError struct {
	Path string
	Err  error
}

func (e *AttributeReadError) Error() string {
	return fmt.Sprintf("read attributes of %q: %v", e.Path, e.Err)
}

func (e *AttributeReadError) Unwrap() error {
	return e.Err
}
