package metadata

import (
	"fmt"
	"time"
)

// ImageInformation is the resolved metadata of one image. It is built once
// and never changed afterwards.
type ImageInformation struct {
	orientation  int
	width        int
	height       int
	hasDeleteTag bool
	uniqueID     string
	dateTaken    time.Time
	hasDate      bool
}

// NewImageInformation builds a value from already resolved fields. An
// orientation outside 1..8 is replaced by DefaultOrientation and a zero
// dateTaken means no date.
func NewImageInformation(orientation, width, height int, hasDeleteTag bool, uniqueID string, dateTaken time.Time) ImageInformation {
	return ImageInformation{
		orientation:  NormalizeOrientation(orientation, true),
		width:        width,
		height:       height,
		hasDeleteTag: hasDeleteTag,
		uniqueID:     uniqueID,
		dateTaken:    dateTaken,
		hasDate:      !dateTaken.IsZero(),
	}
}

func (i ImageInformation) Orientation() int {
	return i.orientation
}

func (i ImageInformation) Width() int {
	return i.width
}

func (i ImageInformation) Height() int {
	return i.height
}

func (i ImageInformation) HasDeleteTag() bool {
	return i.hasDeleteTag
}

// UniqueID is empty when the file embeds no image unique identifier.
func (i ImageInformation) UniqueID() string {
	return i.uniqueID
}

func (i ImageInformation) DateTaken() (time.Time, bool) {
	return i.dateTaken, i.hasDate
}

// Transposed reports whether width and height swap when the image is
// displayed upright.
func (i ImageInformation) Transposed() bool {
	return Transposed(i.orientation)
}

func (i ImageInformation) String() string {
	return fmt.Sprintf("%dx%d,%d", i.width, i.height, i.orientation)
}
