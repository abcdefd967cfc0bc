//go:build !linux && !darwin && !windows

package metadata

import "time"

func creationTime(path string) (time.Time, error) {
	return time.Time{}, ErrAttributeUnsupported
}
