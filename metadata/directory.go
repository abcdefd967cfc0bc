package metadata

import (
	"strconv"
	"strings"
	"time"
)

// Tag ids used by the resolver. EXIF ids follow the TIFF/EXIF tag table,
// IPTC ids are (record << 8) | dataset and JPEG frame ids are the field
// positions inside the SOF segment.
const (
	TagOrientation       uint16 = 0x0112
	TagDateTime          uint16 = 0x0132
	TagExifIFDPointer    uint16 = 0x8769
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004
	TagImageUniqueID     uint16 = 0xA420

	TagIPTCKeywords uint16 = 0x0219

	TagJPEGDataPrecision uint16 = 0
	TagJPEGImageHeight   uint16 = 1
	TagJPEGImageWidth    uint16 = 3
	TagJPEGNumComponents uint16 = 5
)

var dateLayouts = []string{
	"2006:01:02 15:04:05",
	"2006:01:02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006:01:02",
	"2006-01-02",
}

// Directory is one decoded block of tags. Every lookup reports whether the
// tag was present and convertible instead of returning a zero value.
type Directory struct {
	name string
	ints map[uint16]int
	strs map[uint16][]string
}

// NewDirectory returns an empty directory with the given name.
func NewDirectory(name string) *Directory {
	return &Directory{
		name: name,
		ints: make(map[uint16]int),
		strs: make(map[uint16][]string),
	}
}

func (d *Directory) Name() string {
	return d.name
}

// SetInt stores an integer tag, replacing any previous value.
func (d *Directory) SetInt(id uint16, v int) {
	d.ints[id] = v
}

// SetString stores a text tag, replacing any previous value.
func (d *Directory) SetString(id uint16, v string) {
	d.strs[id] = []string{v}
}

// AddString appends a value to a repeatable text tag.
func (d *Directory) AddString(id uint16, v string) {
	d.strs[id] = append(d.strs[id], v)
}

// merge copies the tags of o into d. Text values accumulate.
func (d *Directory) merge(o *Directory) {
	for id, v := range o.ints {
		d.ints[id] = v
	}
	for id, vs := range o.strs {
		d.strs[id] = append(d.strs[id], vs...)
	}
}

func (d *Directory) ContainsTag(id uint16) bool {
	if _, ok := d.ints[id]; ok {
		return true
	}
	_, ok := d.strs[id]
	return ok
}

// Int returns an integer tag. Text tags holding a decimal number are
// converted.
func (d *Directory) Int(id uint16) (int, bool) {
	if v, ok := d.ints[id]; ok {
		return v, true
	}
	s, ok := d.String(id)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the first value of a text tag with NUL and space padding
// removed.
func (d *Directory) String(id uint16) (string, bool) {
	vs, ok := d.strs[id]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return trimValue(vs[0]), true
}

// Strings returns every value of a repeatable text tag.
func (d *Directory) Strings(id uint16) ([]string, bool) {
	vs, ok := d.strs[id]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, trimValue(v))
	}
	return out, true
}

// Date parses a text tag as a timestamp in UTC. A value that does not
// match any known layout is reported as absent.
func (d *Directory) Date(id uint16) (time.Time, bool) {
	s, ok := d.String(id)
	if !ok {
		return time.Time{}, false
	}
	return parseDate(s)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func trimValue(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "\x00 ")
}

// DirectorySet is the result of a structured decode. Each directory is
// present or absent independently of the others.
type DirectorySet struct {
	exifBase     *Directory
	exifExtended *Directory
	iptc         *Directory
	jpegFrame    *Directory
}

func (s *DirectorySet) ExifBase() (*Directory, bool) {
	return s.exifBase, s.exifBase != nil
}

func (s *DirectorySet) ExifExtended() (*Directory, bool) {
	return s.exifExtended, s.exifExtended != nil
}

func (s *DirectorySet) IPTC() (*Directory, bool) {
	return s.iptc, s.iptc != nil
}

func (s *DirectorySet) JPEGFrame() (*Directory, bool) {
	return s.jpegFrame, s.jpegFrame != nil
}

// DirectorySetBuilder assembles a DirectorySet for decoders living outside
// this package and for tests.
type DirectorySetBuilder struct {
	set DirectorySet
}

func (b *DirectorySetBuilder) ExifBase(d *Directory) *DirectorySetBuilder {
	b.set.exifBase = d
	return b
}

func (b *DirectorySetBuilder) ExifExtended(d *Directory) *DirectorySetBuilder {
	b.set.exifExtended = d
	return b
}

func (b *DirectorySetBuilder) IPTC(d *Directory) *DirectorySetBuilder {
	b.set.iptc = d
	return b
}

func (b *DirectorySetBuilder) JPEGFrame(d *Directory) *DirectorySetBuilder {
	b.set.jpegFrame = d
	return b
}

func (b *DirectorySetBuilder) Build() *DirectorySet {
	set := b.set
	return &set
}
