package metadata

import "time"

// AttributeReader reads filesystem timestamps. Platforms or filesystems
// without a creation time report an *AttributeReadError.
type AttributeReader interface {
	CreationTime(path string) (time.Time, error)
}

// AttributeReaderFunc adapts a function to the AttributeReader interface.
type AttributeReaderFunc func(path string) (time.Time, error)

func (f AttributeReaderFunc) CreationTime(path string) (time.Time, error) {
	return f(path)
}

// FileAttributes reads creation times from the local filesystem.
type FileAttributes struct{}

func (FileAttributes) CreationTime(path string) (time.Time, error) {
	t, err := creationTime(path)
	if err != nil {
		return time.Time{}, &AttributeReadError{Path: path, Err: err}
	}
	return t, nil
}
