package metadata

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

var dateTags = []uint16{
	TagDateTime,
	TagDateTimeOriginal,
	TagDateTimeDigitized,
}

// resolveDate walks the date tags of the EXIF extended directory in order
// and falls back to the file's creation time. Without an extended
// directory no date is resolved here; only the header probe tier uses the
// creation time on its own.
func (r *Resolver) resolveDate(logger hclog.Logger, path string, set *DirectorySet) (time.Time, bool) {
	dir, ok := set.ExifExtended()
	if !ok {
		return time.Time{}, false
	}
	for _, tag := range dateTags {
		if !dir.ContainsTag(tag) {
			continue
		}
		if t, ok := dir.Date(tag); ok {
			return t, true
		}
		logger.Trace("Ignoring unparseable date tag", "path", path, "tag", tag)
	}
	return r.creationTime(logger, path)
}

func (r *Resolver) creationTime(logger hclog.Logger, path string) (time.Time, bool) {
	t, err := r.Attributes.CreationTime(path)
	if err != nil {
		logger.Warn("Unable to read creation time", "path", path, "error", err)
		return time.Time{}, false
	}
	return t.UTC(), true
}
